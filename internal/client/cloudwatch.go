package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
)

// AuthOptions carries the transport parameters for the CloudWatch Logs
// client. All fields are optional; empty values fall back to the AWS
// default resolution chain.
type AuthOptions struct {
	Region   string
	Profile  string
	Endpoint string
	ProxyURL string
}

// NewCloudWatchOptions builds the config load options for the given
// AuthOptions. Exported separately so tests can assert which options
// are selected without dialing AWS.
func NewCloudWatchOptions(o AuthOptions) ([]func(*config.LoadOptions) error, error) {
	var opts []func(*config.LoadOptions) error
	if o.Region != "" {
		opts = append(opts, config.WithRegion(o.Region))
	}
	if o.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(o.Profile))
	}
	if o.ProxyURL != "" {
		u, err := url.Parse(o.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", o.ProxyURL, err)
		}
		hc := awshttp.NewBuildableClient().WithTransportOptions(func(tr *http.Transport) {
			tr.Proxy = http.ProxyURL(u)
		})
		opts = append(opts, config.WithHTTPClient(hc))
	}
	return opts, nil
}

// NewCloudWatchClient loads AWS configuration from the given options and
// returns a CloudWatch Logs client. A non-empty Endpoint overrides the
// resolved service endpoint (VPC interface endpoints, local test stacks).
func NewCloudWatchClient(ctx context.Context, o AuthOptions) (*cloudwatchlogs.Client, error) {
	cfgOpts, err := NewCloudWatchOptions(o)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	var clientOpts []func(*cloudwatchlogs.Options)
	if o.Endpoint != "" {
		clientOpts = append(clientOpts, func(co *cloudwatchlogs.Options) {
			co.BaseEndpoint = aws.String(o.Endpoint)
		})
	}
	return cloudwatchlogs.NewFromConfig(cfg, clientOpts...), nil
}
