package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_FileOnly_NoStdout(t *testing.T) {
	console := captureStdout(t)

	var fileBuf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&fileBuf, "info")
	m.Logger().Info("hello file")

	assert.Contains(t, fileBuf.String(), "hello file", "log should appear in file")
	assert.Empty(t, console.String(), "nothing should be written to stdout when file is provided")
}

func TestSetup_NoFile_WritesToStdout(t *testing.T) {
	console := captureStdout(t)

	m := NewSlogManager()
	m.Setup(nil, "info")
	m.Logger().Info("hello console")

	assert.Contains(t, console.String(), "hello console", "log should appear on stdout")
}

func TestSetup_ExtraWritersGetJSON(t *testing.T) {
	var fileBuf, sink bytes.Buffer
	m := NewSlogManager()
	m.Setup(&fileBuf, "info", &sink, nil)

	m.Logger().Info("to graylog", "category", "dumps")

	assert.Contains(t, fileBuf.String(), "to graylog")
	assert.Contains(t, sink.String(), `"msg":"to graylog"`)
	assert.Contains(t, sink.String(), `"category":"dumps"`)
}

func TestSetup_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "debug")

	m.Logger().Debug("debug msg")
	m.Logger().Info("info msg")

	output := buf.String()
	assert.Contains(t, output, "debug msg")
	assert.Contains(t, output, "info msg")
}

func TestSetup_InfoLevel_FiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info")

	m.Logger().Debug("should be filtered")
	m.Logger().Info("should appear")

	output := buf.String()
	assert.NotContains(t, output, "should be filtered")
	assert.Contains(t, output, "should appear")
}

func TestSetup_ReplacesLogger(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	m := NewSlogManager()

	m.Setup(&buf1, "info")
	m.Logger().Info("first")

	m.Setup(&buf2, "info")
	m.Logger().Info("second")

	assert.Contains(t, buf1.String(), "first")
	assert.NotContains(t, buf1.String(), "second", "old file should not receive new logs")
	assert.Contains(t, buf2.String(), "second")
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	m := NewSlogManager()
	logger := m.Logger()
	assert.Equal(t, slog.Default(), logger)
}

func TestClose_WithoutGraylog(t *testing.T) {
	m := NewSlogManager()
	assert.NoError(t, m.Close())
}

func TestGraylog_OpensUDPWriter(t *testing.T) {
	m := NewSlogManager()

	w, err := m.Graylog("127.0.0.1:12201")
	require.NoError(t, err)
	require.NotNil(t, w)

	assert.NoError(t, m.Close())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestFanout_WritesEverySink(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := slog.NewTextHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := slog.NewJSONHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(newFanout(h1, h2))
	logger.Info("category selected", "category", "polygons")

	assert.Contains(t, buf1.String(), "category=polygons")
	assert.Contains(t, buf2.String(), `"category":"polygons"`)
}

func TestFanout_SkipsNilSinks(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, nil)

	f := newFanout(nil, h, nil)
	require.Len(t, f.sinks, 1)

	slog.New(f).Info("works")
	assert.Contains(t, buf.String(), "works")
}

func TestFanout_Enabled(t *testing.T) {
	infoHandler := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	debugHandler := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})

	infoOnly := newFanout(infoHandler)
	assert.False(t, infoOnly.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, infoOnly.Enabled(context.Background(), slog.LevelInfo))

	// any enabled sink is enough
	both := newFanout(infoHandler, debugHandler)
	assert.True(t, both.Enabled(context.Background(), slog.LevelDebug))
}

func TestFanout_LevelPerSink(t *testing.T) {
	var file, graylog bytes.Buffer
	f := newFanout(
		slog.NewTextHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&graylog, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)

	slog.New(f).Debug("render")

	assert.Contains(t, file.String(), "render")
	assert.Empty(t, graylog.String())
}

func TestFanout_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	f := newFanout(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	slog.New(f.WithAttrs([]slog.Attr{slog.String("component", "widget")})).Info("with attrs")

	assert.Contains(t, buf.String(), "component=widget")
}

func TestFanout_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	f := newFanout(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	slog.New(f.WithGroup("popup")).Info("opened", "id", "pm-0-2")

	assert.Contains(t, buf.String(), "popup.id=pm-0-2")
}

func TestFanout_WithGroupEmpty(t *testing.T) {
	f := newFanout(slog.NewTextHandler(&bytes.Buffer{}, nil))

	assert.Same(t, f, f.WithGroup(""))
}

// failingHandler is a slog.Handler that always returns an error from Handle.
type failingHandler struct {
	slog.Handler
}

func (h *failingHandler) Handle(_ context.Context, _ slog.Record) error {
	return errors.New("sink down")
}

func (h *failingHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func TestFanout_HandleError(t *testing.T) {
	var buf bytes.Buffer
	spy := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	f := newFanout(&failingHandler{}, spy)
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "should reach spy", 0)

	err := f.Handle(context.Background(), r)

	assert.EqualError(t, err, "sink down")
	assert.Contains(t, buf.String(), "should reach spy")
}

// captureStdout swaps the console writer for a buffer until the test ends.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = orig })

	return &buf
}
