// Package pipeline provides the downstream sinks records are forwarded to.
package pipeline

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// envelope is the JSON shape both pipelines write.
type envelope struct {
	Tag    string         `json:"tag"`
	Time   int64          `json:"time"`
	Record map[string]any `json:"record"`
}

// Stdout writes one JSON object per record to the given writer.
type Stdout struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

// NewStdout creates a JSON-lines pipeline over w.
func NewStdout(w io.Writer) *Stdout {
	bw := bufio.NewWriter(w)
	return &Stdout{w: bw, enc: json.NewEncoder(bw)}
}

func (s *Stdout) Emit(tag string, eventTime time.Time, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(envelope{Tag: tag, Time: eventTime.Unix(), Record: fields}); err != nil {
		return err
	}
	return s.w.Flush()
}
