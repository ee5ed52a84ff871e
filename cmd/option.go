package cmd

import (
	"flag"
	"os"
	"strings"
	"time"
)

// Options holds CLI options after parsing flags and env defaults.
type Options struct {
	Group        string
	Stream       string
	StreamPrefix string
	Tag          string
	Interval     time.Duration
	StatePath    string
	StartDaysAgo int
	JMESPath     string
	NoStreamKey  bool

	Region   string
	Profile  string
	Endpoint string
	ProxyURL string

	KafkaBrokersCSV string
	KafkaTopic      string
	MetricsAddr     string
}

// Validate checks relationships and required flags.
// Returns an error message and exit code; if the group is missing,
// it returns ("", 2) and the caller should invoke usage().
func (o *Options) Validate() (string, int) {
	if o.Group == "" {
		// Caller prints usage() which exits(2)
		return "", 2
	}
	if o.Stream == "" && o.StreamPrefix == "" {
		return "error: one of --stream or --stream-prefix is required", 2
	}
	if o.Stream != "" && o.StreamPrefix != "" {
		return "error: --stream and --stream-prefix are mutually exclusive", 2
	}
	if o.StatePath == "" {
		return "error: --state-path is required", 2
	}
	if o.Interval <= 0 {
		return "error: --interval must be positive", 2
	}
	if o.StartDaysAgo < 0 {
		return "error: --start-days-ago must not be negative", 2
	}
	if o.KafkaTopic != "" && o.KafkaBrokersCSV == "" {
		return "error: --kafka-topic requires --kafka-brokers", 2
	}
	if o.KafkaBrokersCSV != "" && o.KafkaTopic == "" {
		return "error: --kafka-brokers requires --kafka-topic", 2
	}
	return "", 0
}

// StartTimeMillis computes the absolute start-time horizon in epoch
// milliseconds, or 0 when no horizon is configured. Call once at startup;
// the value is never re-derived per cycle.
func (o *Options) StartTimeMillis(now time.Time) int64 {
	if o.StartDaysAgo <= 0 {
		return 0
	}
	return now.Add(-time.Duration(o.StartDaysAgo) * 24 * time.Hour).UnixMilli()
}

// CollectOptions parses flags with environment-backed defaults and returns Options.
func CollectOptions() *Options {
	var groupName string
	var brokersCSV string

	if v := os.Getenv("LOG_GROUP_NAME"); v != "" {
		groupName = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokersCSV = v
	}

	o := &Options{}
	flag.StringVar(&o.Group, "group", groupName, "CloudWatch log group name")
	flag.StringVar(&o.Stream, "stream", "", "Fixed log stream name to poll")
	flag.StringVar(&o.StreamPrefix, "stream-prefix", "", "Discover and poll all streams with this name prefix")
	flag.StringVar(&o.Tag, "tag", "cloudwatch", "Tag attached to emitted records")
	flag.DurationVar(&o.Interval, "interval", time.Minute, "Poll interval (e.g., 30s, 5m)")
	flag.StringVar(&o.StatePath, "state-path", "", "Base path for per-stream cursor files")
	flag.IntVar(&o.StartDaysAgo, "start-days-ago", 0, "Initial horizon in days for streams with no cursor (0 = full history)")
	flag.StringVar(&o.JMESPath, "jmespath", "", "Optional JMESPath expression reshaping JSON message bodies")
	flag.BoolVar(&o.NoStreamKey, "no-stream-key", false, "Do not inject the _stream origin field")
	flag.StringVar(&o.Region, "region", os.Getenv("AWS_REGION"), "AWS region (optional; falls back to AWS defaults)")
	flag.StringVar(&o.Profile, "profile", os.Getenv("AWS_PROFILE"), "AWS shared config profile")
	flag.StringVar(&o.Endpoint, "endpoint", "", "Custom CloudWatch Logs endpoint URL")
	flag.StringVar(&o.ProxyURL, "proxy", "", "HTTP proxy URL for AWS calls")
	flag.StringVar(&o.KafkaBrokersCSV, "kafka-brokers", brokersCSV, "Comma-separated Kafka brokers for the downstream pipeline")
	flag.StringVar(&o.KafkaTopic, "kafka-topic", "", "Kafka topic for the downstream pipeline (default pipeline is stdout)")
	flag.StringVar(&o.MetricsAddr, "metrics-addr", "", "Listen address for Prometheus /metrics (empty disables)")
	flag.Parse()

	return o
}

// ParseBrokersCSV turns a comma-separated broker string into a slice, trimming empties.
func ParseBrokersCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
