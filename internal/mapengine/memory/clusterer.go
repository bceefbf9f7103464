package memory

import (
	"sync"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/ecomap/wastemap/internal/geo"
	"github.com/ecomap/wastemap/internal/mapengine"
)

const (
	// DefaultPointSize is the clustering radius in screen pixels
	DefaultPointSize = 64
	// DefaultMaxZoom is the last zoom level at which placemarks are clustered
	DefaultMaxZoom = 18
)

// Clusterer implements mapengine.Clusterer.
type Clusterer struct {
	PointSize int
	MaxZoom   int

	opts   mapengine.ClustererOptions
	events *mapengine.Events

	mu         sync.RWMutex
	placemarks []mapengine.Placemark
}

func (c *Clusterer) Add(placemarks []mapengine.Placemark) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.placemarks = append(c.placemarks, placemarks...)
}

func (c *Clusterer) RemoveAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.placemarks = nil
}

func (c *Clusterer) Placemarks() []mapengine.Placemark {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]mapengine.Placemark, len(c.placemarks))
	copy(out, c.placemarks)
	return out
}

func (c *Clusterer) Options() mapengine.ClustererOptions { return c.opts }

func (c *Clusterer) Events() *mapengine.Events { return c.events }

// group is one drawn icon: a lone placemark when it has a single member.
type group struct {
	first   int
	members []int
	center  geom.Point
}

// groups clusters the current placemarks for zoom. Each placemark, in
// insertion order, seeds a group unless an earlier seed already took it;
// unclaimed placemarks within PointSize pixels of the seed join it.
func (c *Clusterer) groups(zoom int) ([]group, []mapengine.Placemark) {
	pms := c.Placemarks()
	points := make([]geom.Point, len(pms))
	for i, pm := range pms {
		points[i] = geo.Point3857(pm.Coordinates())
	}

	clustering := zoom <= c.MaxZoom
	claimed := make([]bool, len(pms))
	var out []group

	for i := range pms {
		if claimed[i] {
			continue
		}
		claimed[i] = true
		g := group{first: i, members: []int{i}}

		if clustering {
			for j := i + 1; j < len(pms); j++ {
				if claimed[j] {
					continue
				}
				if geo.PixelDistance(points[i], points[j], zoom) <= float64(c.PointSize) {
					claimed[j] = true
					g.members = append(g.members, j)
				}
			}
		}

		memberPoints := make([]geom.Point, len(g.members))
		for k, idx := range g.members {
			memberPoints[k] = points[idx]
		}
		g.center = geo.Centroid(memberPoints)
		out = append(out, g)
	}
	return out, pms
}
