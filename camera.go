package pinfield

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera is what the annotator needs from the host's 3D view: projection of
// world points to screen pixels, picking rays from normalized device
// coordinates, and the current viewing distance.
type Camera interface {
	// Project maps a world point to screen pixels. ok is false when the
	// point lies behind the camera.
	Project(world r3.Vector) (screen r2.Point, ok bool)
	// PickRay returns the world-space ray through a point in normalized
	// device coordinates (x and y in [-1, 1], y up).
	PickRay(ndc r2.Point) Ray
	// Distance is the distance from the camera to its orbit target.
	Distance() float64
	// ViewportSize returns the drawing surface size in pixels.
	ViewportSize() (w, h float64)
}

// ScreenToNDC converts surface pixel coordinates to normalized device coordinates.
func ScreenToNDC(x, y, w, h float64) r2.Point {
	if w <= 0 || h <= 0 {
		return r2.Point{}
	}
	return r2.Point{X: x/w*2 - 1, Y: -(y/h)*2 + 1}
}

// --- Rays ---

// Ray is a half-line with a normalized direction.
type Ray struct {
	Origin r3.Vector
	Dir    r3.Vector
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) r3.Vector {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectPlaneY intersects the ray with the horizontal plane at height y.
// Rays parallel to the plane or pointing away from it report false.
func (r Ray) IntersectPlaneY(y float64) (r3.Vector, bool) {
	if math.Abs(r.Dir.Y) < 1e-9 {
		return r3.Vector{}, false
	}
	t := (y - r.Origin.Y) / r.Dir.Y
	if t < 0 {
		return r3.Vector{}, false
	}
	return r.At(t), true
}

// IntersectSphere returns the nearest non-negative distance at which the ray
// enters the sphere.
func (r Ray) IntersectSphere(center r3.Vector, radius float64) (float64, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// --- Floors ---

// FloorLayout maps floor indices to world heights.
type FloorLayout interface {
	// SlabTop is the world Y of the walkable surface of a floor.
	SlabTop(floor int) float64
}

// BuildingFloors is a stack of equally tall floors. Basement floors (negative
// indices) are shifted by BelowGroundOffset.
type BuildingFloors struct {
	Height            float64
	SlabThickness     float64
	BelowGroundOffset float64
	WallHeight        float64
}

// DefaultBuildingFloors matches the procedural building the demo renders.
var DefaultBuildingFloors = BuildingFloors{
	Height:            2.6,
	SlabThickness:     0.22,
	BelowGroundOffset: -0.9,
	WallHeight:        1.7,
}

// SlabTop implements FloorLayout.
func (b BuildingFloors) SlabTop(floor int) float64 {
	base := float64(floor) * (b.Height + b.SlabThickness)
	if floor < 0 {
		base += b.BelowGroundOffset
	}
	return base + b.SlabThickness
}

// FocusHeight is the camera target height that frames a floor.
func (b BuildingFloors) FocusHeight(floor int) float64 {
	return float64(floor)*(b.Height+b.SlabThickness) + b.SlabThickness + b.WallHeight*0.55
}

// --- Orbit camera ---

const (
	DefaultMinDistance = 6.0
	DefaultMaxDistance = 40.0
	defaultFOV         = 50.0 // degrees, vertical
	defaultNear        = 0.1
)

// focusAnim holds an active target-height tween.
type focusAnim struct {
	tween *gween.Tween
}

// OrbitCamera is a perspective camera orbiting a target at a fixed polar and
// azimuth angle. It pans in screen space and dollies between MinDistance and
// MaxDistance.
type OrbitCamera struct {
	Target r3.Vector
	// Azimuth and Polar are in radians. Polar is measured from +Y.
	Azimuth, Polar float64
	// FOV is the vertical field of view in degrees.
	FOV float64

	MinDistance, MaxDistance float64

	distance      float64
	width, height float64
	focus         *focusAnim
}

// NewOrbitCamera returns a camera at position looking at target, with the
// default distance limits. The distance is clamped into those limits.
func NewOrbitCamera(position, target r3.Vector, width, height float64) *OrbitCamera {
	off := position.Sub(target)
	c := &OrbitCamera{
		Target:      target,
		FOV:         defaultFOV,
		MinDistance: DefaultMinDistance,
		MaxDistance: DefaultMaxDistance,
		width:       width,
		height:      height,
	}
	d := off.Norm()
	if d > 0 {
		c.Azimuth = math.Atan2(off.X, off.Z)
		c.Polar = math.Acos(clamp(off.Y/d, -1, 1))
	}
	c.distance = clamp(d, c.MinDistance, c.MaxDistance)
	return c
}

// Distance implements Camera.
func (c *OrbitCamera) Distance() float64 { return c.distance }

// SetDistance sets the orbit distance, clamped to the limits.
func (c *OrbitCamera) SetDistance(d float64) {
	c.distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// Dolly scales the orbit distance. Factors above 1 move away from the target.
func (c *OrbitCamera) Dolly(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.distance * factor)
}

// ViewportSize implements Camera.
func (c *OrbitCamera) ViewportSize() (w, h float64) { return c.width, c.height }

// SetViewport updates the surface size in pixels.
func (c *OrbitCamera) SetViewport(w, h float64) {
	c.width, c.height = w, h
}

// Position returns the camera's world position.
func (c *OrbitCamera) Position() r3.Vector {
	sp := math.Sin(c.Polar)
	off := r3.Vector{
		X: c.distance * sp * math.Sin(c.Azimuth),
		Y: c.distance * math.Cos(c.Polar),
		Z: c.distance * sp * math.Cos(c.Azimuth),
	}
	return c.Target.Add(off)
}

// basis returns the camera's forward, right and up unit vectors.
func (c *OrbitCamera) basis() (forward, right, up r3.Vector) {
	forward = c.Target.Sub(c.Position()).Normalize()
	right = forward.Cross(r3.Vector{Y: 1})
	if right.Norm() < 1e-9 {
		right = r3.Vector{X: 1}
	}
	right = right.Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

func (c *OrbitCamera) aspect() float64 {
	if c.height <= 0 {
		return 1
	}
	return c.width / c.height
}

func (c *OrbitCamera) tanHalfFOV() float64 {
	return math.Tan(c.FOV * math.Pi / 360)
}

// Project implements Camera.
func (c *OrbitCamera) Project(world r3.Vector) (r2.Point, bool) {
	forward, right, up := c.basis()
	d := world.Sub(c.Position())
	z := d.Dot(forward)
	if z <= defaultNear {
		return r2.Point{}, false
	}
	th := c.tanHalfFOV()
	ndcX := d.Dot(right) / (z * th * c.aspect())
	ndcY := d.Dot(up) / (z * th)
	return r2.Point{
		X: (ndcX*0.5 + 0.5) * c.width,
		Y: (-ndcY*0.5 + 0.5) * c.height,
	}, true
}

// PickRay implements Camera.
func (c *OrbitCamera) PickRay(ndc r2.Point) Ray {
	forward, right, up := c.basis()
	th := c.tanHalfFOV()
	dir := forward.
		Add(right.Mul(ndc.X * th * c.aspect())).
		Add(up.Mul(ndc.Y * th)).
		Normalize()
	return Ray{Origin: c.Position(), Dir: dir}
}

// Pan shifts camera and target in screen space by a pointer delta in pixels.
func (c *OrbitCamera) Pan(dx, dy float64) {
	if c.height <= 0 {
		return
	}
	_, right, up := c.basis()
	scale := 2 * c.distance * c.tanHalfFOV() / c.height
	c.Target = c.Target.Add(right.Mul(-dx * scale)).Add(up.Mul(dy * scale))
}

// MoveTargetTo animates the target's height to y over duration seconds.
func (c *OrbitCamera) MoveTargetTo(y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.OutQuad
	}
	c.focus = &focusAnim{tween: gween.New(float32(c.Target.Y), float32(y), duration, easeFn)}
}

// FocusFloor moves the target to the framing height of a floor.
func (c *OrbitCamera) FocusFloor(floor int, floors BuildingFloors, duration float32) {
	c.MoveTargetTo(floors.FocusHeight(floor), duration, ease.OutQuad)
}

// Update advances the focus animation by dt seconds.
func (c *OrbitCamera) Update(dt float32) {
	if c.focus == nil {
		return
	}
	val, done := c.focus.tween.Update(dt)
	c.Target.Y = float64(val)
	if done {
		c.focus = nil
	}
}
