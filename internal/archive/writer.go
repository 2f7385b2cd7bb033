package archive

import (
	"context"
	"time"

	"quizbuzzer/internal/events"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBatchSize     = 50
	DefaultFlushInterval = 500 * time.Millisecond
	shutdownTimeout      = 5 * time.Second
)

// Sink receives batches of room events.
type Sink interface {
	Write(ctx context.Context, batch []events.Event) error
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(ctx context.Context, batch []events.Event) error

func (f SinkFunc) Write(ctx context.Context, batch []events.Event) error {
	return f(ctx, batch)
}

type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	Clock         clockwork.Clock
}

// Writer drains the event bus and hands events to every sink in batches,
// by size or on a timer, whichever comes first. A failing sink is logged
// and does not hold up the others.
type Writer struct {
	bus   *events.Bus
	sinks map[string]Sink
	cfg   Config
}

func NewWriter(bus *events.Bus, cfg Config) *Writer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Writer{bus: bus, sinks: make(map[string]Sink), cfg: cfg}
}

// AddSink registers a named sink. Call before Run.
func (w *Writer) AddSink(name string, s Sink) {
	w.sinks[name] = s
}

func (w *Writer) Sinks() int {
	return len(w.sinks)
}

// Run blocks until ctx is cancelled, then flushes what is still queued.
func (w *Writer) Run(ctx context.Context) {
	ticker := w.cfg.Clock.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]events.Event, 0, w.cfg.BatchSize)
	for {
		select {
		case ev := <-w.bus.Events:
			batch = append(batch, ev)
			if len(batch) >= w.cfg.BatchSize {
				w.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.Chan():
			if len(batch) > 0 {
				w.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ctx.Done():
			w.drain(batch)
			return
		}
	}
}

func (w *Writer) drain(batch []events.Event) {
drain:
	for {
		select {
		case ev := <-w.bus.Events:
			batch = append(batch, ev)
		default:
			break drain
		}
	}
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	w.flush(ctx, batch)
}

func (w *Writer) flush(ctx context.Context, batch []events.Event) {
	for name, s := range w.sinks {
		if err := s.Write(ctx, batch); err != nil {
			log.Error().Err(err).Str("sink", name).Int("events", len(batch)).Msg("archive write failed")
			continue
		}
		log.Debug().Str("sink", name).Int("events", len(batch)).Msg("archived events")
	}
}
