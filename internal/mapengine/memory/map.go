package memory

import (
	"fmt"
	"sync"

	"github.com/ecomap/wastemap/internal/geo"
	"github.com/ecomap/wastemap/internal/mapengine"
	"github.com/ecomap/wastemap/pkg/core"
)

// Map implements mapengine.Map and mapengine.Interactive.
type Map struct {
	container string

	mu         sync.RWMutex
	center     core.Coordinates
	zoom       int
	clusterers []*Clusterer
	others     []any
}

var (
	_ mapengine.Map         = (*Map)(nil)
	_ mapengine.Interactive = (*Map)(nil)
)

// Add attaches an object to the map. Clusterers created by this package
// take part in Objects and Click.
func (m *Map) Add(obj any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := obj.(*Clusterer); ok {
		m.clusterers = append(m.clusterers, c)
		return
	}
	m.others = append(m.others, obj)
}

// Container returns the element ID the map was created for.
func (m *Map) Container() string {
	return m.container
}

func (m *Map) Center() core.Coordinates {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.center
}

func (m *Map) Zoom() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.zoom
}

func (m *Map) SetZoom(zoom int) {
	if zoom < 0 {
		zoom = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zoom = zoom
}

func objectID(kind mapengine.ObjectKind, clusterer, first int) string {
	if kind == mapengine.KindCluster {
		return fmt.Sprintf("cl-%d-%d", clusterer, first)
	}
	return fmt.Sprintf("pm-%d-%d", clusterer, first)
}

// Objects lists the icons drawn at the current zoom.
func (m *Map) Objects() []mapengine.Object {
	zoom := m.Zoom()
	m.mu.RLock()
	clusterers := append([]*Clusterer(nil), m.clusterers...)
	m.mu.RUnlock()

	var out []mapengine.Object
	for ci, c := range clusterers {
		groups, pms := c.groups(zoom)
		for _, g := range groups {
			if len(g.members) == 1 {
				pm := pms[g.first]
				out = append(out, mapengine.Object{
					ID:          objectID(mapengine.KindPlacemark, ci, g.first),
					Kind:        mapengine.KindPlacemark,
					Coordinates: pm.Coordinates(),
					Size:        1,
					HintContent: pm.Properties().String(core.PropHintContent),
					IconColor:   pm.Options().IconColor,
				})
				continue
			}
			out = append(out, mapengine.Object{
				ID:          objectID(mapengine.KindCluster, ci, g.first),
				Kind:        mapengine.KindCluster,
				Coordinates: geo.Coordinates4326(g.center),
				Size:        len(g.members),
			})
		}
	}
	return out
}

// Click fires the owning clusterer's click event for the object with id.
// Clicking a cluster zooms in one level unless the clusterer disables it.
func (m *Map) Click(id string) error {
	zoom := m.Zoom()
	m.mu.RLock()
	clusterers := append([]*Clusterer(nil), m.clusterers...)
	m.mu.RUnlock()

	for ci, c := range clusterers {
		groups, pms := c.groups(zoom)
		for _, g := range groups {
			if len(g.members) == 1 {
				if objectID(mapengine.KindPlacemark, ci, g.first) != id {
					continue
				}
				c.Events().Fire(mapengine.Event{Name: mapengine.EventClick, Target: pms[g.first]})
				return nil
			}

			if objectID(mapengine.KindCluster, ci, g.first) != id {
				continue
			}
			members := make([]mapengine.GeoObject, len(g.members))
			for k, idx := range g.members {
				members[k] = pms[idx]
			}
			target := &Cluster{coords: geo.Coordinates4326(g.center), members: members}
			c.Events().Fire(mapengine.Event{Name: mapengine.EventClick, Target: target})
			if !c.Options().DisableClickZoom {
				m.SetZoom(zoom + 1)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", mapengine.ErrUnknownObject, id)
}
