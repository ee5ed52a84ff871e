package emitter

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cwpoller/cwpoller/internal/model"
	"github.com/cwpoller/cwpoller/internal/parser"
)

type capturedEmit struct {
	tag    string
	time   time.Time
	fields map[string]any
}

type fakePipeline struct {
	emits []capturedEmit
	err   error
}

func (f *fakePipeline) Emit(tag string, t time.Time, fields map[string]any) error {
	if f.err != nil {
		return f.err
	}
	f.emits = append(f.emits, capturedEmit{tag: tag, time: t, fields: fields})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFallbackEmitsJSONBodyWithStreamKey(t *testing.T) {
	pipe := &fakePipeline{}
	em := New("cloudwatch.app", nil, pipe, false, discardLogger())

	ev := model.Event{Timestamp: 1_700_000_000_789, Message: `{"hello":"world"}`}
	if err := em.EmitEvent("web-1", ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pipe.emits) != 1 {
		t.Fatalf("emits = %d, want 1", len(pipe.emits))
	}
	got := pipe.emits[0]
	if got.tag != "cloudwatch.app" {
		t.Errorf("tag = %q, want %q", got.tag, "cloudwatch.app")
	}
	// Event time is floor(timestamp/1000).
	if got.time.Unix() != 1_700_000_000 {
		t.Errorf("event time = %d, want %d", got.time.Unix(), 1_700_000_000)
	}
	if got.fields["hello"] != "world" {
		t.Errorf("fields[hello] = %v, want world", got.fields["hello"])
	}
	if got.fields[StreamKey] != "web-1" {
		t.Errorf("fields[%s] = %v, want web-1", StreamKey, got.fields[StreamKey])
	}
}

func TestFallbackDropsMalformedBody(t *testing.T) {
	pipe := &fakePipeline{}
	em := New("t", nil, pipe, false, discardLogger())

	if err := em.EmitEvent("s", model.Event{Timestamp: 1, Message: "not json"}); err != nil {
		t.Fatalf("parse failure must not be an error: %v", err)
	}
	if len(pipe.emits) != 0 {
		t.Fatalf("emits = %d, want 0", len(pipe.emits))
	}
}

func TestFallbackDropsNullBody(t *testing.T) {
	// A body of literally "null" is valid JSON that decodes to a nil map;
	// it must be dropped, not emitted and never panic on key injection.
	pipe := &fakePipeline{}
	em := New("t", nil, pipe, false, discardLogger())

	if err := em.EmitEvent("s", model.Event{Timestamp: 1000, Message: "null"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pipe.emits) != 0 {
		t.Fatalf("emits = %d, want 0", len(pipe.emits))
	}
}

func TestOmitStreamKey(t *testing.T) {
	pipe := &fakePipeline{}
	em := New("t", nil, pipe, true, discardLogger())

	if err := em.EmitEvent("s", model.Event{Timestamp: 1000, Message: `{"a":1}`}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, present := pipe.emits[0].fields[StreamKey]; present {
		t.Fatalf("stream key injected despite suppression")
	}
}

type staticParser struct {
	records []parser.Record
	err     error
}

func (p *staticParser) Parse(body []byte) ([]parser.Record, error) {
	return p.records, p.err
}

func TestParserRecordsCarryTheirOwnTime(t *testing.T) {
	parsed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	pipe := &fakePipeline{}
	em := New("t", &staticParser{records: []parser.Record{
		{Time: parsed, Fields: map[string]any{"k": "v"}},
		{Fields: map[string]any{"k2": "v2"}}, // zero time falls back to the event timestamp
	}}, pipe, false, discardLogger())

	ev := model.Event{Timestamp: 1_700_000_001_500, Message: "ignored"}
	if err := em.EmitEvent("s", ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pipe.emits) != 2 {
		t.Fatalf("emits = %d, want 2", len(pipe.emits))
	}
	if !pipe.emits[0].time.Equal(parsed) {
		t.Errorf("record 0 time = %v, want %v", pipe.emits[0].time, parsed)
	}
	if pipe.emits[1].time.Unix() != 1_700_000_001 {
		t.Errorf("record 1 time = %d, want %d", pipe.emits[1].time.Unix(), 1_700_000_001)
	}
	for _, e := range pipe.emits {
		if e.fields[StreamKey] != "s" {
			t.Errorf("stream key missing from parsed record fields: %+v", e.fields)
		}
	}
}

func TestParserNilFieldsGetsStreamKey(t *testing.T) {
	// A parser returning a record with a nil field map must not crash the
	// injection; the record goes out carrying only the stream key.
	pipe := &fakePipeline{}
	em := New("t", &staticParser{records: []parser.Record{{Fields: nil}}}, pipe, false, discardLogger())

	if err := em.EmitEvent("s", model.Event{Timestamp: 2000, Message: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pipe.emits) != 1 {
		t.Fatalf("emits = %d, want 1", len(pipe.emits))
	}
	if pipe.emits[0].fields[StreamKey] != "s" {
		t.Fatalf("fields = %+v, want stream key injected", pipe.emits[0].fields)
	}
}

func TestParserZeroRecordsDropsSilently(t *testing.T) {
	pipe := &fakePipeline{}
	em := New("t", &staticParser{}, pipe, false, discardLogger())

	if err := em.EmitEvent("s", model.Event{Timestamp: 1, Message: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pipe.emits) != 0 {
		t.Fatalf("emits = %d, want 0", len(pipe.emits))
	}
}

func TestParserErrorDropsEventWithoutError(t *testing.T) {
	pipe := &fakePipeline{}
	em := New("t", &staticParser{err: errors.New("bad")}, pipe, false, discardLogger())

	if err := em.EmitEvent("s", model.Event{Timestamp: 1, Message: "x"}); err != nil {
		t.Fatalf("parse failure must not be an error: %v", err)
	}
}

func TestPipelineFailureIsReported(t *testing.T) {
	pipe := &fakePipeline{err: errors.New("broker down")}
	em := New("t", nil, pipe, false, discardLogger())

	if err := em.EmitEvent("s", model.Event{Timestamp: 1000, Message: `{"a":1}`}); err == nil {
		t.Fatalf("expected pipeline error to surface")
	}
}
