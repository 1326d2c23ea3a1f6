// Package centralclient provides the main entry point for creating Sophos Central API clients
package centralclient

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/sophos-central/internal/client"
	"github.com/fivetwenty-io/sophos-central/pkg/central"
)

// New creates a new Sophos Central API client with automatic data region
// discovery.
func New(ctx context.Context, config *central.Config) (central.Client, error) {
	if config == nil {
		return nil, central.ErrConfigRequired
	}

	if config.ClientID == "" {
		return nil, central.ErrMissingClientID
	}

	if config.ClientSecret == "" {
		return nil, central.ErrMissingClientSecret
	}

	// Use the internal client implementation
	cli, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return cli, nil
}

// NewWithCredentials creates a new client using Sophos Central API
// credentials. The tenant data region host is resolved through the whoami
// endpoint.
func NewWithCredentials(ctx context.Context, clientID, clientSecret string) (central.Client, error) {
	return New(ctx, &central.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}
