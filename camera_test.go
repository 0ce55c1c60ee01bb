package pinfield

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

const epsilon = 1e-6

func newBuildingCamera() *OrbitCamera {
	return NewOrbitCamera(r3.Vector{X: -14, Y: 16, Z: 14}, r3.Vector{Y: 3}, 1280, 720)
}

func TestOrbitCameraConstruction(t *testing.T) {
	c := newBuildingCamera()
	if want := math.Sqrt(561); math.Abs(c.Distance()-want) > epsilon {
		t.Errorf("Distance = %v, want %v", c.Distance(), want)
	}
	if p := c.Position(); p.Sub(r3.Vector{X: -14, Y: 16, Z: 14}).Norm() > epsilon {
		t.Errorf("Position = %v", p)
	}
	if w, h := c.ViewportSize(); w != 1280 || h != 720 {
		t.Errorf("ViewportSize = %v x %v", w, h)
	}
}

func TestOrbitCameraProjectTarget(t *testing.T) {
	c := newBuildingCamera()
	s, ok := c.Project(c.Target)
	if !ok {
		t.Fatal("target not projectable")
	}
	if math.Abs(s.X-640) > epsilon || math.Abs(s.Y-360) > epsilon {
		t.Errorf("target projects to %v, want center", s)
	}
	if _, ok := c.Project(c.Position().Add(c.Position().Sub(c.Target))); ok {
		t.Error("point behind the camera projected")
	}
}

func TestOrbitCameraPickRayRoundTrip(t *testing.T) {
	c := newBuildingCamera()
	points := []r3.Vector{
		{X: 2, Y: 0.22, Z: -3},
		{X: -5, Y: 3, Z: 4},
		{X: 0, Y: 6, Z: 0},
	}
	for _, p := range points {
		s, ok := c.Project(p)
		if !ok {
			t.Fatalf("%v not projectable", p)
		}
		ray := c.PickRay(ScreenToNDC(s.X, s.Y, 1280, 720))
		// Distance from p to the ray.
		v := p.Sub(ray.Origin)
		off := v.Sub(ray.Dir.Mul(v.Dot(ray.Dir))).Norm()
		if off > 1e-6 {
			t.Errorf("ray through projection of %v misses by %v", p, off)
		}
	}
}

func TestOrbitCameraDistanceLimits(t *testing.T) {
	c := newBuildingCamera()
	c.SetDistance(100)
	if c.Distance() != DefaultMaxDistance {
		t.Errorf("Distance = %v, want %v", c.Distance(), DefaultMaxDistance)
	}
	c.Dolly(0.01)
	if c.Distance() != DefaultMinDistance {
		t.Errorf("Distance = %v, want %v", c.Distance(), DefaultMinDistance)
	}
	c.Dolly(-1)
	if c.Distance() != DefaultMinDistance {
		t.Error("negative dolly factor changed the distance")
	}
}

func TestOrbitCameraPan(t *testing.T) {
	c := newBuildingCamera()
	before := c.Distance()
	target := c.Target
	c.Pan(100, 0)
	if c.Distance() != before {
		t.Error("pan changed the distance")
	}
	if c.Target.Sub(target).Norm() < epsilon {
		t.Error("pan did not move the target")
	}
	// Dragging right moves the world right, so the old target ends up right of center.
	s, _ := c.Project(target)
	if math.Abs(s.X-740) > 1e-3 {
		t.Errorf("old target at %v, want x=740", s)
	}
}

func TestOrbitCameraMoveTargetTo(t *testing.T) {
	c := newBuildingCamera()
	floors := DefaultBuildingFloors
	c.FocusFloor(2, floors, 0.5)
	want := floors.FocusHeight(2)
	for i := 0; i < 10; i++ {
		c.Update(0.1)
	}
	if math.Abs(c.Target.Y-want) > 1e-4 {
		t.Errorf("Target.Y = %v, want %v", c.Target.Y, want)
	}
	c.Update(0.1)
	if math.Abs(c.Target.Y-want) > 1e-4 {
		t.Error("target moved after the tween finished")
	}
}

func TestBuildingFloors(t *testing.T) {
	f := DefaultBuildingFloors
	tests := []struct {
		floor int
		want  float64
	}{
		{0, 0.22},
		{1, 2.82 + 0.22},
		{-1, -2.82 - 0.9 + 0.22},
	}
	for _, tt := range tests {
		if got := f.SlabTop(tt.floor); math.Abs(got-tt.want) > epsilon {
			t.Errorf("SlabTop(%d) = %v, want %v", tt.floor, got, tt.want)
		}
	}
	if got := f.FocusHeight(0); math.Abs(got-(0.22+1.7*0.55)) > epsilon {
		t.Errorf("FocusHeight(0) = %v", got)
	}
}

func TestRayIntersections(t *testing.T) {
	down := Ray{Origin: r3.Vector{Y: 10}, Dir: r3.Vector{Y: -1}}
	if p, ok := down.IntersectPlaneY(2); !ok || p.Y != 2 {
		t.Errorf("IntersectPlaneY = %v, %v", p, ok)
	}
	if _, ok := down.IntersectPlaneY(12); ok {
		t.Error("plane behind the ray intersected")
	}
	flat := Ray{Dir: r3.Vector{X: 1}}
	if _, ok := flat.IntersectPlaneY(0); ok {
		t.Error("parallel ray intersected")
	}

	if d, ok := down.IntersectSphere(r3.Vector{Y: 5}, 1); !ok || math.Abs(d-4) > epsilon {
		t.Errorf("IntersectSphere = %v, %v; want 4", d, ok)
	}
	if _, ok := down.IntersectSphere(r3.Vector{X: 3, Y: 5}, 1); ok {
		t.Error("miss reported as hit")
	}
	inside := Ray{Origin: r3.Vector{}, Dir: r3.Vector{X: 1}}
	if d, ok := inside.IntersectSphere(r3.Vector{}, 2); !ok || math.Abs(d-2) > epsilon {
		t.Errorf("from inside = %v, %v; want exit at 2", d, ok)
	}
}

func TestScreenToNDC(t *testing.T) {
	tests := []struct {
		x, y float64
		want r2.Point
	}{
		{0, 0, r2.Point{X: -1, Y: 1}},
		{400, 300, r2.Point{}},
		{800, 600, r2.Point{X: 1, Y: -1}},
	}
	for _, tt := range tests {
		if got := ScreenToNDC(tt.x, tt.y, 800, 600); got != tt.want {
			t.Errorf("ScreenToNDC(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if got := ScreenToNDC(1, 1, 0, 0); got != (r2.Point{}) {
		t.Errorf("empty viewport = %v", got)
	}
}
