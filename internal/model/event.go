package model

// Event is one log event as stored remotely. Timestamps are epoch
// milliseconds assigned by CloudWatch; the message body is opaque.
type Event struct {
	Timestamp int64
	Message   string
}

// Stream describes a log stream eligible for polling. LastEventTimestamp is
// nil when CloudWatch has not reported one for the stream yet.
type Stream struct {
	Name               string
	LastEventTimestamp *int64
}
