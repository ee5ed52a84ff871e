// Package parser turns raw log message bodies into structured records.
package parser

import "time"

// Record is one parsed (time, fields) pair produced from a message body.
// A zero Time means the parser found no event time of its own; the caller
// substitutes the remote store's event timestamp. Fields may be nil; the
// caller treats a nil map as empty and allocates before writing into it.
type Record struct {
	Time   time.Time
	Fields map[string]any
}

// Parser extracts zero or more records from a raw message body. Returning
// no records and no error drops the message silently.
type Parser interface {
	Parse(body []byte) ([]Record, error)
}
