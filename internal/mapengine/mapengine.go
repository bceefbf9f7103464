// Package mapengine describes the part of a mapping library the widget drives:
// a map, a clusterer, placemarks and click events. Implementations live in
// subpackages.
package mapengine

import "github.com/ecomap/wastemap/pkg/core"

// Library is the entry point of a mapping library.
type Library interface {
	// Ready is closed exactly once, when the library can build objects.
	Ready() <-chan struct{}

	NewMap(container string, opts MapOptions) Map
	NewClusterer(opts ClustererOptions) Clusterer
	NewPlacemark(coords core.Coordinates, props PropertyBag, opts PlacemarkOptions) Placemark
}

// Map is a map view bound to a container element.
type Map interface {
	Add(obj any)
	Center() core.Coordinates
	Zoom() int
	SetZoom(zoom int)
}

// Clusterer groups nearby placemarks into clusters.
type Clusterer interface {
	// Add puts placemarks on the map in a single batch.
	Add(placemarks []Placemark)
	RemoveAll()
	Placemarks() []Placemark
	Options() ClustererOptions
	Events() *Events
}

// GeoObject is anything that carries a property bag.
type GeoObject interface {
	Properties() PropertyBag
}

// Placemark is a single point marker.
type Placemark interface {
	GeoObject
	Coordinates() core.Coordinates
	Options() PlacemarkOptions
}

// Cluster is a group of placemarks drawn as one icon.
type Cluster interface {
	Coordinates() core.Coordinates
	GeoObjects() []GeoObject
}

// MapOptions configures a new map
type MapOptions struct {
	Center core.Coordinates
	Zoom   int
}

// ClustererOptions configures a new clusterer
type ClustererOptions struct {
	DisableClickZoom         bool
	OpenBalloonOnClick       bool
	IconLayout               string
	PieChartRadius           int
	PieChartCoreRadius       int
	PieChartStrokeWidth      int
	BalloonContentLayout     string
	BalloonItemContentLayout string
	BalloonPanelMaxMapArea   int
}

// PlacemarkOptions configures how a placemark is drawn
type PlacemarkOptions struct {
	Preset             string
	IconColor          string
	BalloonCloseButton bool
	HasBalloon         bool
}

// ObjectKind tells lone placemarks and clusters apart in Object listings
type ObjectKind string

const (
	KindPlacemark ObjectKind = "placemark"
	KindCluster   ObjectKind = "cluster"
)

// Object is one icon currently drawn on the map.
type Object struct {
	ID          string           `json:"id"`
	Kind        ObjectKind       `json:"kind"`
	Coordinates core.Coordinates `json:"coordinates"`
	Size        int              `json:"size"`
	HintContent string           `json:"hintContent,omitempty"`
	IconColor   string           `json:"iconColor,omitempty"`
}

// Interactive is implemented by maps that can list their visible objects
// and simulate clicks on them. Headless engines use it in place of a pointer.
type Interactive interface {
	Objects() []Object
	Click(id string) error
}
