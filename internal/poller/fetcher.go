package poller

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/cwpoller/cwpoller/internal/model"
)

// Fetcher issues one forward GetLogEvents page per stream per cycle. Reading
// one page per tick bounds per-cycle work so a very active stream cannot
// starve the others.
type Fetcher struct {
	client LogsAPI
	group  string
}

// NewFetcher creates a Fetcher for the given log group.
func NewFetcher(client LogsAPI, group string) *Fetcher {
	return &Fetcher{client: client, group: group}
}

// Page is one response worth of events plus the store-issued token that
// resumes after them. CloudWatch returns NextForwardToken on every
// successful call, so an empty page still advances the cursor.
type Page struct {
	Events    []model.Event
	NextToken string
}

// Fetch reads the next page for a stream. A stored cursor takes precedence
// over the start-time horizon; with neither, the store's full history
// applies. Tokens are replayed unmodified: they are opaque to this system.
func (f *Fetcher) Fetch(ctx context.Context, stream, cursor string, startMs int64) (Page, error) {
	input := &cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(f.group),
		LogStreamName: aws.String(stream),
		StartFromHead: aws.Bool(true),
	}
	if cursor != "" {
		input.NextToken = aws.String(cursor)
	} else if startMs > 0 {
		input.StartTime = aws.Int64(startMs)
	}

	out, err := f.client.GetLogEvents(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("getting log events for %s/%s: %w", f.group, stream, err)
	}

	events := make([]model.Event, 0, len(out.Events))
	for _, e := range out.Events {
		events = append(events, model.Event{
			Timestamp: aws.ToInt64(e.Timestamp),
			Message:   aws.ToString(e.Message),
		})
	}
	return Page{Events: events, NextToken: aws.ToString(out.NextForwardToken)}, nil
}
