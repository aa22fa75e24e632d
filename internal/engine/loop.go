package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/store"
)

// tickInterval drives the remaining-time display.
const tickInterval = time.Second

// Loop is the single-writer event loop wiring an App to its Store.
//
// Run consumes three inputs on one goroutine: the store's delivery
// stream, the intent queue, and a one-second tick. Each event goes
// through App.Apply; the writes it produces are submitted fire-and-
// forget, and a failed submission is folded back in as a store failure
// rather than retried.
type Loop struct {
	app   *App
	store store.Store
	queue *Queue
}

// NewLoop wires an app to a store.
func NewLoop(app *App, st store.Store) *Loop {
	return &Loop{
		app:   app,
		store: st,
		queue: NewQueue(),
	}
}

// Enqueue submits a user intent for processing.
// Thread-safe: may be called from any goroutine.
func (l *Loop) Enqueue(ev Event) bool {
	return l.queue.Enqueue(ev)
}

// App exposes the state tree, for projection by the shell. Read it only
// from the Run goroutine's callbacks or after Run returns.
func (l *Loop) App() *App {
	return l.app
}

// Run starts the loop. Blocks until the context is cancelled or the
// store's delivery stream closes.
//
// Must be called from exactly one goroutine; all state mutation happens
// here.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("event loop starting")

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	defer l.queue.Close()

	deliveries := l.store.Deliveries()

	for {
		// Drain pending intents before waiting.
		if ev, ok := l.queue.TryDequeue(); ok {
			l.process(ctx, ev)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("event loop stopping", "reason", "context cancelled")
			return ctx.Err()

		case d, ok := <-deliveries:
			if !ok {
				slog.Info("event loop stopping", "reason", "store closed")
				return nil
			}
			l.process(ctx, FromStore{Delivery: d})

		case now := <-ticker.C:
			l.process(ctx, Tick{Now: model.TimestampOf(now)})

		case <-l.queue.Wait():
			// Loop back to TryDequeue.
		}
	}
}

func (l *Loop) process(ctx context.Context, ev Event) {
	writes := l.app.Apply(ev)
	if len(writes) == 0 {
		return
	}
	if err := l.store.Apply(ctx, writes); err != nil {
		// Fire-and-forget from the core's perspective: surface on the
		// banner, no retry.
		l.app.ReportWriteError(err)
	}
}
