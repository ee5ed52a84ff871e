package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwpoller/cwpoller/internal/client"
	"github.com/cwpoller/cwpoller/internal/cursor"
	"github.com/cwpoller/cwpoller/internal/emitter"
	"github.com/cwpoller/cwpoller/internal/metrics"
	"github.com/cwpoller/cwpoller/internal/parser"
	"github.com/cwpoller/cwpoller/internal/pipeline"
	"github.com/cwpoller/cwpoller/internal/poller"

	"github.com/cwpoller/cwpoller/cmd"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: cwpoller --group <name> (--stream <name> | --stream-prefix <prefix>) --state-path <path> [--interval 1m] [--start-days-ago N]")
	fmt.Fprintln(os.Stderr, "Environment: LOG_GROUP_NAME, KAFKA_BROKERS, AWS_REGION, AWS_PROFILE; AWS credentials from default sources.")
	os.Exit(2)
}

func main() {
	// Parse flags/env and validate relationships
	opts := cmd.CollectOptions()
	if msg, code := opts.Validate(); code != 0 {
		if opts.Group == "" {
			usage()
		}
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(code)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cw, err := client.NewCloudWatchClient(ctx, client.AuthOptions{
		Region:   opts.Region,
		Profile:  opts.Profile,
		Endpoint: opts.Endpoint,
		ProxyURL: opts.ProxyURL,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create CloudWatch client: %v\n", err)
		os.Exit(1)
	}

	var p parser.Parser
	if opts.JMESPath != "" {
		p, err = parser.NewJMESPath(opts.JMESPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --jmespath: %v\n", err)
			os.Exit(2)
		}
	}

	var pipe emitter.Pipeline
	if opts.KafkaTopic != "" {
		k := pipeline.NewKafka(ctx, cmd.ParseBrokersCSV(opts.KafkaBrokersCSV), opts.KafkaTopic)
		defer k.Close()
		pipe = k
	} else {
		pipe = pipeline.NewStdout(os.Stdout)
	}

	if opts.MetricsAddr != "" {
		metrics.Serve(opts.MetricsAddr, logger)
	}

	// The horizon is computed exactly once; streams that already have a
	// persisted cursor never see it.
	startMs := opts.StartTimeMillis(time.Now())

	var catalog *poller.Catalog
	if opts.Stream != "" {
		catalog = poller.NewFixedCatalog(opts.Stream)
	} else {
		catalog = poller.NewPrefixCatalog(cw, opts.Group, opts.StreamPrefix, startMs)
	}

	sched := &poller.Scheduler{
		Catalog:     catalog,
		Fetcher:     poller.NewFetcher(cw, opts.Group),
		Emitter:     emitter.New(opts.Tag, p, pipe, opts.NoStreamKey, logger),
		Cursors:     cursor.NewStore(opts.StatePath),
		Interval:    opts.Interval,
		StartTimeMs: startMs,
		Logger:      logger,
	}

	logger.Info("poller starting",
		"group", opts.Group,
		"stream", opts.Stream,
		"streamPrefix", opts.StreamPrefix,
		"interval", opts.Interval.String(),
		"statePath", opts.StatePath,
	)
	sched.Run(ctx)
}
