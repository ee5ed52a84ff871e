// Package emitter converts fetched log events into tagged records and hands
// them to the downstream pipeline.
package emitter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwpoller/cwpoller/internal/metrics"
	"github.com/cwpoller/cwpoller/internal/model"
	"github.com/cwpoller/cwpoller/internal/parser"
)

// StreamKey is the reserved field carrying the originating stream name.
const StreamKey = "_stream"

// Pipeline receives tagged records. Implementations own their durability;
// the poller treats Emit as fire-and-forget.
type Pipeline interface {
	Emit(tag string, eventTime time.Time, fields map[string]any) error
}

// Emitter converts events into records. With no Parser configured, message
// bodies are decoded as self-describing JSON objects and the event's own
// timestamp (converted from epoch milliseconds to whole seconds) is used as
// the record time.
type Emitter struct {
	tag           string
	parser        parser.Parser
	pipeline      Pipeline
	omitStreamKey bool
	logger        *slog.Logger
}

// New creates an Emitter. parser may be nil to select the JSON fallback.
func New(tag string, p parser.Parser, pipe Pipeline, omitStreamKey bool, logger *slog.Logger) *Emitter {
	return &Emitter{
		tag:           tag,
		parser:        p,
		pipeline:      pipe,
		omitStreamKey: omitStreamKey,
		logger:        logger.With("component", "emitter"),
	}
}

// EmitEvent converts one event from the named stream and hands the resulting
// records to the pipeline. A malformed body drops only that event and is not
// an error; a pipeline failure is reported but, being fire-and-forget, the
// caller is expected to carry on.
func (e *Emitter) EmitEvent(stream string, ev model.Event) error {
	records, err := e.convert(ev)
	if err != nil {
		metrics.ParseErrorsTotal.Inc()
		e.logger.Debug("dropping unparseable event", "stream", stream, "error", err)
		return nil
	}

	var emitErr error
	for _, rec := range records {
		t := rec.Time
		if t.IsZero() {
			t = time.Unix(ev.Timestamp/1000, 0)
		}
		if rec.Fields == nil {
			rec.Fields = make(map[string]any, 1)
		}
		if !e.omitStreamKey {
			rec.Fields[StreamKey] = stream
		}
		if err := e.pipeline.Emit(e.tag, t, rec.Fields); err != nil {
			metrics.EmitErrorsTotal.Inc()
			emitErr = fmt.Errorf("emitting record from %s: %w", stream, err)
			continue
		}
		metrics.RecordsEmittedTotal.Inc()
	}
	return emitErr
}

func (e *Emitter) convert(ev model.Event) ([]parser.Record, error) {
	if e.parser != nil {
		return e.parser.Parse([]byte(ev.Message))
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(ev.Message), &fields); err != nil {
		return nil, fmt.Errorf("decoding message body: %w", err)
	}
	if fields == nil {
		// A literal JSON null decodes without error but holds no record.
		return nil, nil
	}
	return []parser.Record{{Fields: fields}}, nil
}
