package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// badKey holds values that arrive without a string key, as slog does
const badKey = "!BADKEY"

// Component is the zerolog logger one part of the widget writes through,
// tagged with that part's name. It satisfies dispatcher.Logger, so the
// event loop can log through it directly.
type Component struct {
	name   string
	logger zerolog.Logger
}

// NewComponent builds a component logger writing JSON lines to w, or to
// stdout when w is nil. Unknown levels fall back to info.
func NewComponent(w io.Writer, level, name string) *Component {
	if w == nil {
		w = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return &Component{
		name:   name,
		logger: zerolog.New(w).Level(lvl).With().Timestamp().Str("component", name).Logger(),
	}
}

// Name returns the component tag.
func (c *Component) Name() string {
	return c.name
}

// Zerolog exposes the underlying logger for packages that take one, such as
// the database manager.
func (c *Component) Zerolog() zerolog.Logger {
	return c.logger
}

func (c *Component) Debug(msg string, keysAndValues ...any) {
	c.logger.Debug().Fields(fields(keysAndValues)).Msg(msg)
}

func (c *Component) Info(msg string, keysAndValues ...any) {
	c.logger.Info().Fields(fields(keysAndValues)).Msg(msg)
}

func (c *Component) Error(msg string, keysAndValues ...any) {
	c.logger.Error().Fields(fields(keysAndValues)).Msg(msg)
}

// fields turns slog style key/value pairs into a zerolog field map. A
// non-string key or a trailing value is kept under badKey.
func fields(keysAndValues []any) map[string]any {
	out := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); {
		key, ok := keysAndValues[i].(string)
		if !ok || i+1 == len(keysAndValues) {
			out[badKey] = keysAndValues[i]
			i++
			continue
		}
		out[key] = keysAndValues[i+1]
		i += 2
	}
	return out
}
