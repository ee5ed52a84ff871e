// Package metrics exposes the poller's Prometheus collectors.
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cwpoller_cycles_total",
		Help: "The total number of completed poll cycles",
	})
	EventsFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cwpoller_events_fetched_total",
		Help: "The total number of log events fetched, per stream",
	}, []string{"stream"})
	StreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cwpoller_stream_errors_total",
		Help: "The total number of failed per-stream poll turns",
	}, []string{"stream"})
	RecordsEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cwpoller_records_emitted_total",
		Help: "The total number of records handed to the downstream pipeline",
	})
	EmitErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cwpoller_emit_errors_total",
		Help: "The total number of failed pipeline emissions",
	})
	ParseErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cwpoller_parse_errors_total",
		Help: "The total number of events dropped as unparseable",
	})
	CursorSaveErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cwpoller_cursor_save_errors_total",
		Help: "The total number of failed cursor writes",
	})
)

// Serve starts a /metrics listener on addr in the background.
func Serve(addr string, logger *slog.Logger) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("metrics listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics listener stopped", "error", err)
		}
	}()
}
