package pinfield

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

const (
	clusterBaseThreshold  = 14.0 // px at close range
	clusterThresholdSpan  = 24.0 // px added at far range
	clusterNearDistance   = 10.0
	clusterDistanceRange  = 30.0
	clusterAnchorLift     = 0.2
	clusterRebuildEpsilon = 0.6
)

// ClusterThreshold returns the screen-space merge radius in pixels for a
// camera at the given distance. It grows linearly from 14px at distance 10
// to 38px at distance 40 and is flat outside that band.
func ClusterThreshold(distance float64) float64 {
	t := clamp01((distance - clusterNearDistance) / clusterDistanceRange)
	return clusterBaseThreshold + t*clusterThresholdSpan
}

// ClusterAnchor is the world point a pin is projected from.
func ClusterAnchor(p Pin) r3.Vector {
	return r3.Vector{X: p.Position.X, Y: p.Position.Y + clusterAnchorLift, Z: p.Position.Z}
}

// Cluster is a group of pins that project close together on screen.
type Cluster struct {
	Pins []Pin
	// Screen is the running mean of the members' projected positions.
	Screen r2.Point
	// World is the mean of the members' anchors.
	World r3.Vector

	screenSum r2.Point
	worldSum  r3.Vector
	// projected is false for a pin that lies behind the camera; such a
	// cluster never absorbs other pins.
	projected bool
}

func newCluster(p Pin, screen r2.Point, world r3.Vector, projected bool) Cluster {
	return Cluster{
		Pins:      []Pin{p},
		Screen:    screen,
		World:     world,
		screenSum: screen,
		worldSum:  world,
		projected: projected,
	}
}

func (c *Cluster) add(p Pin, screen r2.Point, world r3.Vector) {
	c.Pins = append(c.Pins, p)
	c.screenSum = c.screenSum.Add(screen)
	c.worldSum = c.worldSum.Add(world)
	inv := 1 / float64(len(c.Pins))
	c.Screen = c.screenSum.Mul(inv)
	c.World = c.worldSum.Mul(inv)
}

// BuildClusters groups pins greedily in input order: each pin joins the
// first existing cluster whose centroid lies within the distance-dependent
// threshold, otherwise it starts a new cluster. Pins behind the camera
// always stay on their own.
func BuildClusters(pins []Pin, cam Camera) []Cluster {
	threshold := ClusterThreshold(cam.Distance())
	clusters := make([]Cluster, 0, len(pins))
	for _, p := range pins {
		world := ClusterAnchor(p)
		screen, ok := cam.Project(world)
		if !ok {
			clusters = append(clusters, newCluster(p, screen, world, false))
			continue
		}
		joined := false
		for i := range clusters {
			c := &clusters[i]
			if !c.projected {
				continue
			}
			if math.Hypot(c.Screen.X-screen.X, c.Screen.Y-screen.Y) < threshold {
				c.add(p, screen, world)
				joined = true
				break
			}
		}
		if !joined {
			clusters = append(clusters, newCluster(p, screen, world, true))
		}
	}
	return clusters
}

// Clusterer caches a clustering and decides when the camera has moved far
// enough to warrant a rebuild.
type Clusterer struct {
	lastDistance float64
	primed       bool
	dirty        bool
	clusters     []Cluster
}

// Invalidate forces the next NeedsRebuild to report true.
func (c *Clusterer) Invalidate() {
	c.dirty = true
}

// NeedsRebuild reports whether the clustering is stale for a camera at
// distance: nothing built yet, invalidated, or a distance change above 0.6.
func (c *Clusterer) NeedsRebuild(distance float64) bool {
	return !c.primed || c.dirty || math.Abs(distance-c.lastDistance) > clusterRebuildEpsilon
}

// Rebuild clusters pins against cam and remembers the distance it used.
func (c *Clusterer) Rebuild(pins []Pin, cam Camera) []Cluster {
	c.clusters = BuildClusters(pins, cam)
	c.lastDistance = cam.Distance()
	c.primed = true
	c.dirty = false
	return c.clusters
}

// Clusters returns the clustering from the last rebuild.
func (c *Clusterer) Clusters() []Cluster {
	return c.clusters
}
