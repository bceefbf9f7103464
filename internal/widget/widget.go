// Package widget runs the map adapter on a single event loop and exposes the
// actions and state bindings a page uses.
package widget

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/ecomap/wastemap/internal/adapter"
	"github.com/ecomap/wastemap/internal/dispatcher"
	"github.com/ecomap/wastemap/internal/mapengine"
	"github.com/ecomap/wastemap/pkg/core"
)

// DefaultLoaderDelay is how long the loading indicator stays up after the
// map becomes ready.
const DefaultLoaderDelay = 800 * time.Millisecond

// Commands handled on the event loop
const (
	CmdInit           = "init"
	CmdLoaded         = "loaded"
	CmdSelectCategory = "selectCategory"
	CmdClosePopup     = "closePopup"
	CmdClick          = "click"
	CmdSetZoom        = "setZoom"
	CmdObjects        = "objects"
	CmdMarkers        = "markers"
)

// Options configures a Widget.
type Options struct {
	Adapter     adapter.Config
	LoaderDelay time.Duration
	QueueSize   int
}

// DefaultOptions returns the stock view with the standard loader delay.
func DefaultOptions() Options {
	return Options{
		Adapter:     adapter.DefaultConfig(),
		LoaderDelay: DefaultLoaderDelay,
	}
}

// Widget owns one adapter. All adapter access happens inside dispatcher
// handlers; other goroutines read published snapshots.
type Widget struct {
	lib     mapengine.Library
	adapter *adapter.Adapter
	loop    *dispatcher.Dispatcher
	opts    Options
	log     *slog.Logger

	mountOnce sync.Once

	mu    sync.RWMutex
	state adapter.State
	subs  map[<-chan adapter.State]chan adapter.State
}

// New wires an adapter for store onto a fresh event loop. loopLog receives
// the loop's own diagnostics.
func New(lib mapengine.Library, store adapter.Store, opts Options, log *slog.Logger, loopLog dispatcher.Logger) (*Widget, error) {
	if log == nil {
		log = slog.Default()
	}
	if opts.LoaderDelay <= 0 {
		opts.LoaderDelay = DefaultLoaderDelay
	}

	loop, err := dispatcher.New(loopLog, opts.QueueSize)
	if err != nil {
		return nil, fmt.Errorf("creating event loop: %w", err)
	}

	a := adapter.New(lib, store, opts.Adapter, log)
	w := &Widget{
		lib:     lib,
		adapter: a,
		loop:    loop,
		opts:    opts,
		log:     log,
		state:   a.State(),
		subs:    make(map[<-chan adapter.State]chan adapter.State),
	}
	w.registerHandlers()
	return w, nil
}

func (w *Widget) registerHandlers() {
	w.loop.Register(CmdInit, w.publishing(func(dispatcher.Event) (any, error) {
		return nil, w.adapter.Initialize()
	}), dispatcher.Logged())

	w.loop.Register(CmdLoaded, w.publishing(func(dispatcher.Event) (any, error) {
		w.adapter.SetLoaded()
		return nil, nil
	}))

	w.loop.Register(CmdSelectCategory, w.publishing(func(e dispatcher.Event) (any, error) {
		c, err := core.ParseCategory(arg(e, 0))
		if err != nil {
			return nil, err
		}
		return nil, w.adapter.SelectCategory(c)
	}), dispatcher.Logged())

	w.loop.Register(CmdClosePopup, w.publishing(func(dispatcher.Event) (any, error) {
		w.adapter.ClosePopup()
		return nil, nil
	}), dispatcher.Logged())

	w.loop.Register(CmdClick, w.publishing(func(e dispatcher.Event) (any, error) {
		m, ok := w.interactive()
		if !ok {
			return nil, fmt.Errorf("%w: %s", mapengine.ErrUnknownObject, arg(e, 0))
		}
		return nil, m.Click(arg(e, 0))
	}), dispatcher.Logged())

	w.loop.Register(CmdSetZoom, w.publishing(func(e dispatcher.Event) (any, error) {
		zoom, err := strconv.Atoi(arg(e, 0))
		if err != nil {
			return nil, fmt.Errorf("invalid zoom %q: %w", arg(e, 0), err)
		}
		m := w.adapter.Map()
		if m == nil {
			return nil, adapter.ErrLibraryNotReady
		}
		m.SetZoom(zoom)
		return m.Zoom(), nil
	}), dispatcher.Logged())

	w.loop.Register(CmdObjects, func(dispatcher.Event) (any, error) {
		m, ok := w.interactive()
		if !ok {
			return []mapengine.Object{}, nil
		}
		return m.Objects(), nil
	})

	w.loop.Register(CmdMarkers, func(dispatcher.Event) (any, error) {
		return w.adapter.MarkersInfo(), nil
	})
}

func arg(e dispatcher.Event, i int) string {
	if i < len(e.Args) {
		return e.Args[i]
	}
	return ""
}

func (w *Widget) interactive() (mapengine.Interactive, bool) {
	m, ok := w.adapter.Map().(mapengine.Interactive)
	return m, ok
}

// publishing wraps a mutating handler so subscribers see the state it left
// behind, even when it failed.
func (w *Widget) publishing(h dispatcher.HandlerFunc) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		v, err := h(e)
		w.publish(w.adapter.State())
		return v, err
	}
}

// Run mounts the widget and processes events until ctx is done.
func (w *Widget) Run(ctx context.Context) error {
	w.Mount(ctx)
	return w.loop.Run(ctx)
}

// Mount waits for the library in the background and runs init once it is
// ready, then clears the loading flag after the loader delay. A library that
// never becomes ready leaves the widget loading. Mount is idempotent.
func (w *Widget) Mount(ctx context.Context) {
	w.mountOnce.Do(func() {
		go func() {
			select {
			case <-w.lib.Ready():
			case <-ctx.Done():
				return
			}
			// init must not be dropped, so wait for queue space
			if _, err := w.loop.Dispatch(ctx, dispatcher.Event{Command: CmdInit}); err != nil {
				if ctx.Err() != nil {
					return
				}
				w.log.Error("Map init failed", "error", err)
			}
			time.AfterFunc(w.opts.LoaderDelay, func() {
				if _, err := w.loop.Dispatch(ctx, dispatcher.Event{Command: CmdLoaded}); err != nil && ctx.Err() == nil {
					w.log.Error("Failed to hide loader", "error", err)
				}
			})
		}()
	})
}

func (w *Widget) dispatch(ctx context.Context, command string, args ...string) (any, error) {
	return w.loop.Dispatch(ctx, dispatcher.Event{Command: command, Args: args})
}

// SelectCategory switches the rendered collection.
func (w *Widget) SelectCategory(ctx context.Context, c core.Category) error {
	_, err := w.dispatch(ctx, CmdSelectCategory, string(c))
	return err
}

// ClosePopup hides the popup.
func (w *Widget) ClosePopup(ctx context.Context) error {
	_, err := w.dispatch(ctx, CmdClosePopup)
	return err
}

// Click simulates a click on the placemark or cluster with id.
func (w *Widget) Click(ctx context.Context, id string) error {
	_, err := w.dispatch(ctx, CmdClick, id)
	return err
}

// SetZoom changes the map zoom and returns the zoom actually applied.
func (w *Widget) SetZoom(ctx context.Context, zoom int) (int, error) {
	v, err := w.dispatch(ctx, CmdSetZoom, strconv.Itoa(zoom))
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Objects lists the icons currently drawn on the map.
func (w *Widget) Objects(ctx context.Context) ([]mapengine.Object, error) {
	v, err := w.dispatch(ctx, CmdObjects)
	if err != nil {
		return nil, err
	}
	return v.([]mapengine.Object), nil
}

// MarkersInfo lists the active category's sites for the sidebar.
func (w *Widget) MarkersInfo(ctx context.Context) ([]adapter.MarkerSummary, error) {
	v, err := w.dispatch(ctx, CmdMarkers)
	if err != nil {
		return nil, err
	}
	return v.([]adapter.MarkerSummary), nil
}

// State returns the last published snapshot.
func (w *Widget) State() adapter.State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}
