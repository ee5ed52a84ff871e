package client_test

import (
	"testing"

	"github.com/cwpoller/cwpoller/internal/client"
)

func TestNewCloudWatchOptions(t *testing.T) {
	tests := []struct {
		name    string
		options client.AuthOptions
		wantLen int
		wantErr bool
	}{
		{
			name:    "no options",
			options: client.AuthOptions{},
			wantLen: 0,
		},
		{
			name:    "with region",
			options: client.AuthOptions{Region: "us-east-1"},
			wantLen: 1,
		},
		{
			name:    "with profile",
			options: client.AuthOptions{Profile: "my-profile"},
			wantLen: 1,
		},
		{
			name:    "with region and profile",
			options: client.AuthOptions{Region: "us-west-2", Profile: "another-profile"},
			wantLen: 2,
		},
		{
			name:    "with proxy",
			options: client.AuthOptions{ProxyURL: "http://proxy.internal:3128"},
			wantLen: 1,
		},
		{
			name:    "region, profile and proxy",
			options: client.AuthOptions{Region: "eu-west-1", Profile: "p", ProxyURL: "http://proxy.internal:3128"},
			wantLen: 3,
		},
		{
			name:    "invalid proxy URL",
			options: client.AuthOptions{ProxyURL: "http://bad url with spaces"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := client.NewCloudWatchOptions(tt.options)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(opts) != tt.wantLen {
				t.Errorf("NewCloudWatchOptions() returned %d options, want %d", len(opts), tt.wantLen)
			}
		})
	}
}
