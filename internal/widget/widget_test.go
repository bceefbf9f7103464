package widget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomap/wastemap/internal/adapter"
	"github.com/ecomap/wastemap/internal/dispatcher"
	"github.com/ecomap/wastemap/internal/mapengine"
	"github.com/ecomap/wastemap/internal/mapengine/memory"
	"github.com/ecomap/wastemap/internal/markers"
	"github.com/ecomap/wastemap/pkg/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func testStore() *markers.Store {
	dump := func(lat, lon float64, hint string) core.MarkerRecord {
		return core.MarkerRecord{
			Coordinates: core.Coordinates{Lat: lat, Lon: lon},
			Properties: core.MarkerProperties{
				HintContent: hint,
				Status:      core.StatusActive,
				Details:     core.DumpDetails{Area: "10 м²"},
			},
		}
	}
	return markers.New(map[core.Category][]core.MarkerRecord{
		core.CategoryDumps: {
			dump(47.2, 39.7, "A"),
			dump(47.2, 39.7, "B"),
			dump(48.2, 40.7, ""),
		},
		core.CategoryPolygons: {
			{
				Coordinates: core.Coordinates{Lat: 47.5, Lon: 39.5},
				Properties: core.MarkerProperties{
					HintContent: "Полигон",
					Status:      core.StatusAtWork,
					Details:     core.PolygonDetails{Capacity: "1000 т"},
				},
			},
		},
	})
}

// startWidget runs a widget on a ready library until the test ends.
func startWidget(t *testing.T, lib *memory.Library, delay time.Duration) *Widget {
	t.Helper()

	opts := DefaultOptions()
	opts.LoaderDelay = delay
	w, err := New(lib, testStore(), opts, nil, nopLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func waitFor(t *testing.T, ch <-chan adapter.State, cond func(adapter.State) bool) adapter.State {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if cond(s) {
				return s
			}
		case <-timeout:
			t.Fatal("state condition not reached")
		}
	}
}

func readyWidget(t *testing.T) *Widget {
	t.Helper()
	lib := memory.NewLibrary()
	lib.MarkReady()
	w := startWidget(t, lib, 10*time.Millisecond)

	ch := w.Subscribe()
	t.Cleanup(func() { w.Unsubscribe(ch) })
	waitFor(t, ch, func(s adapter.State) bool { return s.Phase == adapter.PhaseReady && !s.Loading })
	return w
}

func TestNew_InitialState(t *testing.T) {
	w, err := New(memory.NewLibrary(), testStore(), DefaultOptions(), nil, nopLogger{})
	require.NoError(t, err)

	s := w.State()
	assert.Equal(t, adapter.PhaseUninitialized, s.Phase)
	assert.Equal(t, core.CategoryDumps, s.Category)
	assert.True(t, s.Loading)
	assert.False(t, s.PopupVisible)
	assert.Nil(t, s.ActiveMarker)
}

func TestMount_InitializesWhenReady(t *testing.T) {
	lib := memory.NewLibrary()
	w := startWidget(t, lib, 100*time.Millisecond)
	ch := w.Subscribe()
	defer w.Unsubscribe(ch)

	first := <-ch
	assert.Equal(t, adapter.PhaseUninitialized, first.Phase)

	lib.MarkReady()

	s := waitFor(t, ch, func(s adapter.State) bool { return s.Phase == adapter.PhaseReady })
	assert.True(t, s.Loading, "loader stays up until the delay passes")

	waitFor(t, ch, func(s adapter.State) bool { return !s.Loading })
}

func TestMount_NeverReadyStaysLoading(t *testing.T) {
	w := startWidget(t, memory.NewLibrary(), time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	s := w.State()
	assert.Equal(t, adapter.PhaseUninitialized, s.Phase)
	assert.True(t, s.Loading)

	objs, err := w.Objects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, objs)

	err = w.Click(context.Background(), "pm-0-0")
	assert.ErrorIs(t, err, mapengine.ErrUnknownObject)

	_, err = w.SetZoom(context.Background(), 5)
	assert.ErrorIs(t, err, adapter.ErrLibraryNotReady)
}

func TestMount_Idempotent(t *testing.T) {
	lib := memory.NewLibrary()
	lib.MarkReady()
	w := startWidget(t, lib, time.Millisecond)

	w.Mount(context.Background())
	w.Mount(context.Background())

	ch := w.Subscribe()
	defer w.Unsubscribe(ch)
	waitFor(t, ch, func(s adapter.State) bool { return s.Phase == adapter.PhaseReady && !s.Loading })

	objs, err := w.Objects(context.Background())
	require.NoError(t, err)
	assert.Len(t, objs, 2, "one cluster and one placemark, rendered once")
}

func TestMount_InitWaitsForQueueSpace(t *testing.T) {
	lib := memory.NewLibrary()
	lib.MarkReady()

	opts := DefaultOptions()
	opts.LoaderDelay = time.Millisecond
	opts.QueueSize = 1
	w, err := New(lib, testStore(), opts, nil, nopLogger{})
	require.NoError(t, err)

	// no loop yet, so this fills the queue
	require.NoError(t, w.loop.Post(dispatcher.Event{Command: CmdClosePopup}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Mount(ctx)
	time.Sleep(20 * time.Millisecond)

	ch := w.Subscribe()
	defer w.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		w.loop.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	waitFor(t, ch, func(s adapter.State) bool { return s.Phase == adapter.PhaseReady && !s.Loading })
}

func TestObjects_ClusterAndPlacemark(t *testing.T) {
	w := readyWidget(t)

	objs, err := w.Objects(context.Background())
	require.NoError(t, err)
	require.Len(t, objs, 2)

	assert.Equal(t, mapengine.KindCluster, objs[0].Kind)
	assert.Equal(t, 2, objs[0].Size)
	assert.Equal(t, mapengine.KindPlacemark, objs[1].Kind)
	assert.Equal(t, "#FF0000", objs[1].IconColor)
}

func TestClick_PlacemarkOpensPopup(t *testing.T) {
	w := readyWidget(t)

	require.NoError(t, w.Click(context.Background(), "pm-0-2"))

	s := w.State()
	require.True(t, s.PopupVisible)
	require.NotNil(t, s.ActiveMarker)
	assert.Equal(t, adapter.DefaultHintContent, s.ActiveMarker.HintContent)
	assert.Equal(t, adapter.DefaultAddress, s.ActiveMarker.Address)
	assert.Nil(t, s.ActiveMarker.ClusterSize)
	assert.Equal(t, core.DumpDetails{Area: "10 м²"}, s.ActiveMarker.Details)
}

func TestClick_ClusterReplacesPopup(t *testing.T) {
	w := readyWidget(t)
	ctx := context.Background()

	require.NoError(t, w.Click(ctx, "pm-0-2"))
	require.NoError(t, w.Click(ctx, "cl-0-0"))

	s := w.State()
	require.NotNil(t, s.ActiveMarker)
	assert.True(t, s.ActiveMarker.IsCluster)
	require.NotNil(t, s.ActiveMarker.ClusterSize)
	assert.Equal(t, 2, *s.ActiveMarker.ClusterSize)
	assert.Equal(t, adapter.ClusterTitle, s.ActiveMarker.HintContent)
	assert.Contains(t, s.ActiveMarker.BalloonContent, "<h4>A</h4>")
	assert.Contains(t, s.ActiveMarker.BalloonContent, "<h4>B</h4>")
}

func TestClick_ClusterDoesNotZoom(t *testing.T) {
	w := readyWidget(t)
	ctx := context.Background()

	require.NoError(t, w.Click(ctx, "cl-0-0"))

	objs, err := w.Objects(ctx)
	require.NoError(t, err)
	assert.Len(t, objs, 2, "zoom unchanged, cluster still drawn")
}

func TestClick_UnknownObject(t *testing.T) {
	w := readyWidget(t)

	err := w.Click(context.Background(), "pm-9-9")
	assert.True(t, errors.Is(err, mapengine.ErrUnknownObject))
}

func TestSetZoom_SplitsCluster(t *testing.T) {
	w := readyWidget(t)
	ctx := context.Background()

	zoom, err := w.SetZoom(ctx, 19)
	require.NoError(t, err)
	assert.Equal(t, 19, zoom)

	objs, err := w.Objects(ctx)
	require.NoError(t, err)
	assert.Len(t, objs, 3)
	for _, o := range objs {
		assert.Equal(t, mapengine.KindPlacemark, o.Kind)
	}
}

func TestSetZoom_ClampsNegative(t *testing.T) {
	w := readyWidget(t)

	zoom, err := w.SetZoom(context.Background(), -3)
	require.NoError(t, err)
	assert.Equal(t, 0, zoom)
}

func TestSelectCategory_RendersAndKeepsPopupClosed(t *testing.T) {
	w := readyWidget(t)
	ctx := context.Background()

	require.NoError(t, w.Click(ctx, "pm-0-2"))
	require.NoError(t, w.ClosePopup(ctx))
	require.NoError(t, w.SelectCategory(ctx, core.CategoryPolygons))

	s := w.State()
	assert.Equal(t, core.CategoryPolygons, s.Category)
	assert.False(t, s.PopupVisible)
	assert.Nil(t, s.ActiveMarker)

	objs, err := w.Objects(ctx)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "Полигон", objs[0].HintContent)
}

func TestSelectCategory_Unknown(t *testing.T) {
	w := readyWidget(t)

	err := w.SelectCategory(context.Background(), core.Category("landfills"))
	assert.ErrorIs(t, err, core.ErrUnknownCategory)
	assert.Equal(t, core.CategoryDumps, w.State().Category)
}

func TestMarkersInfo_FollowsCategory(t *testing.T) {
	w := readyWidget(t)
	ctx := context.Background()

	info, err := w.MarkersInfo(ctx)
	require.NoError(t, err)
	require.Len(t, info, 3)
	assert.Equal(t, "A", info[0].Title)

	require.NoError(t, w.SelectCategory(ctx, core.CategoryPolygons))
	info, err = w.MarkersInfo(ctx)
	require.NoError(t, err)
	require.Len(t, info, 1)
	assert.Equal(t, "Полигон", info[0].Title)
}

func TestSubscribe_ReceivesCurrentState(t *testing.T) {
	w, err := New(memory.NewLibrary(), testStore(), DefaultOptions(), nil, nopLogger{})
	require.NoError(t, err)

	ch := w.Subscribe()
	s := <-ch
	assert.Equal(t, w.State(), s)
}

func TestPublish_LatestWins(t *testing.T) {
	w, err := New(memory.NewLibrary(), testStore(), DefaultOptions(), nil, nopLogger{})
	require.NoError(t, err)
	ch := w.Subscribe()

	first := w.State()
	second := first
	second.Loading = false

	w.publish(first)
	w.publish(second)

	assert.Equal(t, second, <-ch)
	select {
	case s := <-ch:
		t.Fatalf("unexpected extra snapshot %+v", s)
	default:
	}
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	w, err := New(memory.NewLibrary(), testStore(), DefaultOptions(), nil, nopLogger{})
	require.NoError(t, err)

	ch := w.Subscribe()
	<-ch
	w.Unsubscribe(ch)
	w.Unsubscribe(ch)

	_, ok := <-ch
	assert.False(t, ok)
}
