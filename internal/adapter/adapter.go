// Package adapter binds the marker catalog and the widget's UI state to a
// mapping library: it builds the map and clusterer, renders placemarks for
// the active category and turns click events into popup content.
package adapter

import (
	"errors"
	"log/slog"

	"github.com/ecomap/wastemap/internal/mapengine"
	"github.com/ecomap/wastemap/pkg/core"
)

// ErrLibraryNotReady is returned by Initialize before the library signals readiness
var ErrLibraryNotReady = errors.New("map library not ready")

// Phase is the adapter lifecycle. Ready is terminal.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseReady         Phase = "ready"
)

// Store is the marker catalog the adapter renders from.
type Store interface {
	Markers(c core.Category) []core.MarkerRecord
}

// Config holds the map view settings
type Config struct {
	Container string
	Center    core.Coordinates
	Zoom      int
	Category  core.Category
}

// DefaultConfig centers the map on Rostov-on-Don with dumps selected.
func DefaultConfig() Config {
	return Config{
		Container: "map",
		Center:    core.Coordinates{Lat: 47.222109, Lon: 39.718813},
		Zoom:      9,
		Category:  core.CategoryDumps,
	}
}

// State is a snapshot of everything the UI binds to.
type State struct {
	Phase        Phase                  `json:"phase"`
	Category     core.Category          `json:"category"`
	Loading      bool                   `json:"loading"`
	PopupVisible bool                   `json:"popupVisible"`
	ActiveMarker *core.ActiveMarkerInfo `json:"activeMarker"`
}

// Adapter owns the map objects and the popup state. It is not safe for
// concurrent use; callers run it on a single event loop.
type Adapter struct {
	lib   mapengine.Library
	store Store
	cfg   Config
	log   *slog.Logger

	phase     Phase
	m         mapengine.Map
	clusterer mapengine.Clusterer

	category     core.Category
	loading      bool
	popupVisible bool
	active       *core.ActiveMarkerInfo
}

// New creates an uninitialized adapter.
func New(lib mapengine.Library, store Store, cfg Config, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	if !cfg.Category.Valid() {
		cfg.Category = core.CategoryDumps
	}
	return &Adapter{
		lib:      lib,
		store:    store,
		cfg:      cfg,
		log:      log,
		phase:    PhaseUninitialized,
		category: cfg.Category,
		loading:  true,
	}
}

// ClustererOptions is the clusterer configuration the adapter uses: no zoom
// or native balloon on click, pie chart icons, no balloon panel.
func ClustererOptions() mapengine.ClustererOptions {
	return mapengine.ClustererOptions{
		DisableClickZoom:         true,
		OpenBalloonOnClick:       false,
		IconLayout:               "default#pieChart",
		PieChartRadius:           25,
		PieChartCoreRadius:       15,
		PieChartStrokeWidth:      2,
		BalloonContentLayout:     "cluster#balloonCarousel",
		BalloonItemContentLayout: "my#customLayout",
		BalloonPanelMaxMapArea:   0,
	}
}

// Initialize builds the map and clusterer and renders the active category.
// It does nothing once the adapter is Ready.
func (a *Adapter) Initialize() error {
	if a.phase == PhaseReady {
		return nil
	}
	select {
	case <-a.lib.Ready():
	default:
		return ErrLibraryNotReady
	}

	a.m = a.lib.NewMap(a.cfg.Container, mapengine.MapOptions{
		Center: a.cfg.Center,
		Zoom:   a.cfg.Zoom,
	})
	a.clusterer = a.lib.NewClusterer(ClustererOptions())
	a.m.Add(a.clusterer)
	a.clusterer.Events().Add(mapengine.EventClick, a.OnObjectClick)

	a.phase = PhaseReady
	a.log.Info("Map initialized", "container", a.cfg.Container, "zoom", a.cfg.Zoom)

	a.Render(a.category)
	return nil
}

// Phase returns the lifecycle phase.
func (a *Adapter) Phase() Phase {
	return a.phase
}

// Map returns the map view, nil until Ready.
func (a *Adapter) Map() mapengine.Map {
	return a.m
}

// Render replaces every placemark on the clusterer with the collection of c.
// Before Initialize it does nothing.
func (a *Adapter) Render(c core.Category) {
	if a.phase != PhaseReady {
		a.log.Debug("Render skipped, map not ready", "category", c)
		return
	}

	a.clusterer.RemoveAll()

	records := a.store.Markers(c)
	placemarks := make([]mapengine.Placemark, len(records))
	for i, r := range records {
		placemarks[i] = a.lib.NewPlacemark(
			r.Coordinates,
			mapengine.PropertyBag(r.Properties.Bag()),
			mapengine.PlacemarkOptions{
				Preset:             IconPreset(r.Properties.Status),
				IconColor:          IconColor(r.Properties.Status),
				BalloonCloseButton: false,
				HasBalloon:         false,
			},
		)
	}
	a.clusterer.Add(placemarks)

	a.log.Debug("Rendered markers", "category", c, "count", len(placemarks))
}

// SelectCategory makes c the active category and renders it. The popup is
// left as it is.
func (a *Adapter) SelectCategory(c core.Category) error {
	if !c.Valid() {
		return core.ErrUnknownCategory
	}
	a.category = c
	a.Render(c)
	return nil
}

// Category returns the active category.
func (a *Adapter) Category() core.Category {
	return a.category
}

// ClosePopup hides the popup. The last info is kept until the next click.
func (a *Adapter) ClosePopup() {
	a.popupVisible = false
}

// SetLoaded clears the loading flag.
func (a *Adapter) SetLoaded() {
	a.loading = false
}

// State returns the current UI bindings. ActiveMarker is nil while the
// popup is closed.
func (a *Adapter) State() State {
	s := State{
		Phase:        a.phase,
		Category:     a.category,
		Loading:      a.loading,
		PopupVisible: a.popupVisible,
	}
	if a.popupVisible && a.active != nil {
		info := *a.active
		s.ActiveMarker = &info
	}
	return s
}

func (a *Adapter) openPopup(info *core.ActiveMarkerInfo) {
	a.active = info
	a.popupVisible = true
}
