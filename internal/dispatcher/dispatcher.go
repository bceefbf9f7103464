package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultQueueSize is the event loop queue length used when New gets zero
const DefaultQueueSize = 256

// ErrQueueFull is returned by Post when the event loop is saturated
var ErrQueueFull = errors.New("event queue full")

// Event is a UI action or library signal waiting to run on the loop.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	logged bool
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

type result struct {
	value any
	err   error
}

type job struct {
	event Event
	reply chan result // nil for Post
}

// Dispatcher routes events to registered handlers. Handlers run one at a
// time on the goroutine that calls Run, so state they touch has a single
// writer.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	logger   Logger
	queue    chan job

	// OTEL metrics
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger, queueSize int) (*Dispatcher, error) {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
		queue:    make(chan job, queueSize),
	}

	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of events in queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(d.queueSize, int64(len(d.queue)))
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Total events processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Total events dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given command with optional configuration.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h
	if cfg.logged {
		handler = d.withLogging(command, handler)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[command] = handler
}

// HasHandler returns true if a handler is registered for the command.
func (d *Dispatcher) HasHandler(command string) bool {
	_, ok := d.handler(command)
	return ok
}

func (d *Dispatcher) handler(command string) (HandlerFunc, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[command]
	return h, ok
}

// Run processes queued events until ctx is done. Only one Run may be active.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j := <-d.queue:
			d.process(ctx, j)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, j job) {
	h, ok := d.handler(j.event.Command)
	var res result
	if ok {
		res.value, res.err = h(j.event)
	} else {
		res.err = fmt.Errorf("unknown command: %s", j.event.Command)
	}

	d.processed.Add(ctx, 1, metric.WithAttributes(attribute.String("command", j.event.Command)))

	if j.reply != nil {
		j.reply <- res
		return
	}
	if res.err != nil {
		d.logger.Error("posted event failed", "command", j.event.Command, "error", res.err)
	}
}

// Dispatch queues an event and waits for its handler to finish on the loop.
// It blocks while the queue is full.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) (any, error) {
	if !d.HasHandler(e.Command) {
		return nil, fmt.Errorf("unknown command: %s", e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	reply := make(chan result, 1)
	select {
	case d.queue <- job{event: e, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Post queues an event without waiting for it. Events are dropped when the
// queue is full.
func (d *Dispatcher) Post(e Event) error {
	if !d.HasHandler(e.Command) {
		return fmt.Errorf("unknown command: %s", e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	select {
	case d.queue <- job{event: e}:
		return nil
	default:
		d.dropped.Add(context.Background(), 1, metric.WithAttributes(attribute.String("command", e.Command)))
		return fmt.Errorf("%w: %s", ErrQueueFull, e.Command)
	}
}

func (d *Dispatcher) withLogging(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "args", len(e.Args), "queued", start.Sub(e.Timestamp))

		result, err := h(e)

		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		}

		return result, err
	}
}
