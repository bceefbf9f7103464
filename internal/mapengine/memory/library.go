// Package memory is a headless, in-process map engine. It keeps placemarks
// in memory, clusters them for the current zoom and lets callers click on
// objects by ID.
package memory

import (
	"sync"

	"github.com/ecomap/wastemap/internal/mapengine"
	"github.com/ecomap/wastemap/pkg/core"
)

// Library implements mapengine.Library.
type Library struct {
	ready     chan struct{}
	readyOnce sync.Once
}

var _ mapengine.Library = (*Library)(nil)

// NewLibrary creates a library that is not ready yet.
func NewLibrary() *Library {
	return &Library{ready: make(chan struct{})}
}

// MarkReady resolves the readiness signal. Later calls do nothing.
func (l *Library) MarkReady() {
	l.readyOnce.Do(func() { close(l.ready) })
}

func (l *Library) Ready() <-chan struct{} {
	return l.ready
}

func (l *Library) NewMap(container string, opts mapengine.MapOptions) mapengine.Map {
	return &Map{
		container: container,
		center:    opts.Center,
		zoom:      opts.Zoom,
	}
}

func (l *Library) NewClusterer(opts mapengine.ClustererOptions) mapengine.Clusterer {
	return &Clusterer{
		opts:      opts,
		events:    mapengine.NewEvents(),
		PointSize: DefaultPointSize,
		MaxZoom:   DefaultMaxZoom,
	}
}

func (l *Library) NewPlacemark(coords core.Coordinates, props mapengine.PropertyBag, opts mapengine.PlacemarkOptions) mapengine.Placemark {
	return &Placemark{
		coords: coords,
		props:  props.GetAll(),
		opts:   opts,
	}
}

// Placemark implements mapengine.Placemark
type Placemark struct {
	coords core.Coordinates
	props  mapengine.PropertyBag
	opts   mapengine.PlacemarkOptions
}

func (p *Placemark) Properties() mapengine.PropertyBag   { return p.props }
func (p *Placemark) Coordinates() core.Coordinates       { return p.coords }
func (p *Placemark) Options() mapengine.PlacemarkOptions { return p.opts }

// Cluster implements mapengine.Cluster
type Cluster struct {
	coords  core.Coordinates
	members []mapengine.GeoObject
}

func (c *Cluster) Coordinates() core.Coordinates     { return c.coords }
func (c *Cluster) GeoObjects() []mapengine.GeoObject { return c.members }
