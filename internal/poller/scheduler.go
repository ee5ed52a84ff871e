package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwpoller/cwpoller/internal/cursor"
	"github.com/cwpoller/cwpoller/internal/emitter"
	"github.com/cwpoller/cwpoller/internal/metrics"
)

// Scheduler drives resolve → fetch → emit → persist once per interval. It is
// the only writer of cursor state and the only issuer of remote calls, so
// all mutation stays confined to the one loop and no locking is needed.
type Scheduler struct {
	Catalog  *Catalog
	Fetcher  *Fetcher
	Emitter  *emitter.Emitter
	Cursors  *cursor.Store
	Interval time.Duration

	// StartTimeMs is the start-time horizon in epoch milliseconds, computed
	// once at startup. Zero means no horizon. It is applied only to streams
	// that have no persisted cursor yet.
	StartTimeMs int64

	Logger *slog.Logger
}

// Run blocks until ctx is cancelled. Ticks follow a monotonic schedule: the
// next tick is the previous scheduled time plus the interval, and when a
// cycle overruns, the loop fires again immediately rather than skipping or
// coalescing ticks. Cancellation is observed between per-stream units, never
// mid-unit, so a cursor is only persisted for events that were offered to
// the pipeline.
func (s *Scheduler) Run(ctx context.Context) {
	log := s.Logger.With("component", "scheduler")
	next := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("poll loop stopped")
			return
		case <-timer.C:
		}

		s.RunCycle(ctx)

		next = next.Add(s.Interval)
		wait := time.Until(next)
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
	}
}

// RunCycle resolves the stream set and walks it sequentially. One stream's
// failure aborts only that stream's turn for this cycle; the persisted
// cursor stays at its last good value so the next tick retries naturally.
func (s *Scheduler) RunCycle(ctx context.Context) {
	log := s.Logger.With("component", "scheduler")

	streams, err := s.Catalog.Resolve(ctx)
	if err != nil {
		log.Error("stream discovery failed", "error", err)
		return
	}

	for _, st := range streams {
		if ctx.Err() != nil {
			return
		}
		if err := s.pollStream(ctx, st.Name); err != nil {
			metrics.StreamErrorsTotal.WithLabelValues(st.Name).Inc()
			log.Error("stream poll failed", "stream", st.Name, "error", err)
		}
	}
	metrics.CyclesTotal.Inc()
}

// pollStream is one fetch-emit-persist unit.
func (s *Scheduler) pollStream(ctx context.Context, stream string) error {
	token, ok, err := s.Cursors.Load(stream)
	if err != nil {
		return err
	}
	var startMs int64
	if !ok {
		startMs = s.StartTimeMs
	}

	page, err := s.Fetcher.Fetch(ctx, stream, token, startMs)
	if err != nil {
		return err
	}
	metrics.EventsFetchedTotal.WithLabelValues(stream).Add(float64(len(page.Events)))

	for _, ev := range page.Events {
		// Fire-and-forget: a pipeline failure is logged but does not hold
		// the cursor back.
		if err := s.Emitter.EmitEvent(stream, ev); err != nil {
			s.Logger.Error("emit failed", "stream", stream, "error", err)
		}
	}

	if page.NextToken != "" {
		if err := s.Cursors.Save(stream, page.NextToken); err != nil {
			metrics.CursorSaveErrorsTotal.Inc()
			return fmt.Errorf("persisting cursor: %w", err)
		}
	}
	return nil
}
