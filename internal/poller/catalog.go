// Package poller implements the incremental CloudWatch Logs poll loop:
// stream discovery, single-page forward fetches, and the cycle scheduler
// that wires them to the emitter and cursor store.
package poller

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/cwpoller/cwpoller/internal/model"
)

// LogsAPI is the subset of the CloudWatch Logs API the poller uses.
type LogsAPI interface {
	GetLogEvents(ctx context.Context, params *cloudwatchlogs.GetLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error)
	DescribeLogStreams(ctx context.Context, params *cloudwatchlogs.DescribeLogStreamsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogStreamsOutput, error)
}

// Catalog resolves which log streams to poll each cycle. With a fixed stream
// name no remote call is made; otherwise streams are discovered by prefix.
type Catalog struct {
	client    LogsAPI
	group     string
	stream    string
	prefix    string
	horizonMs int64
}

// NewFixedCatalog returns a catalog that always resolves the one given stream.
func NewFixedCatalog(stream string) *Catalog {
	return &Catalog{stream: stream}
}

// NewPrefixCatalog returns a catalog that discovers streams in group whose
// names start with prefix. When horizonMs is non-zero, discovered streams
// whose last event is older than the horizon (or unreported) are excluded.
func NewPrefixCatalog(client LogsAPI, group, prefix string, horizonMs int64) *Catalog {
	return &Catalog{client: client, group: group, prefix: prefix, horizonMs: horizonMs}
}

// Resolve returns the streams to poll this cycle, in the order the store
// reports them. Discovery follows continuation tokens until exhausted.
func (c *Catalog) Resolve(ctx context.Context) ([]model.Stream, error) {
	if c.stream != "" {
		return []model.Stream{{Name: c.stream}}, nil
	}

	var streams []model.Stream
	var next *string
	for {
		input := &cloudwatchlogs.DescribeLogStreamsInput{
			LogGroupName: aws.String(c.group),
			NextToken:    next,
		}
		if c.prefix != "" {
			input.LogStreamNamePrefix = aws.String(c.prefix)
		}
		out, err := c.client.DescribeLogStreams(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("describing log streams for %s: %w", c.group, err)
		}
		for _, s := range out.LogStreams {
			if c.horizonMs > 0 && (s.LastEventTimestamp == nil || aws.ToInt64(s.LastEventTimestamp) < c.horizonMs) {
				continue
			}
			streams = append(streams, model.Stream{
				Name:               aws.ToString(s.LogStreamName),
				LastEventTimestamp: s.LastEventTimestamp,
			})
		}
		if out.NextToken == nil || (next != nil && aws.ToString(out.NextToken) == aws.ToString(next)) {
			break
		}
		next = out.NextToken
	}
	return streams, nil
}
