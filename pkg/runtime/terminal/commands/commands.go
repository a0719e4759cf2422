package commands

import (
	"context"
	"time"

	"github.com/de-tools/pricelist-atlas/pkg/client"
	"github.com/de-tools/pricelist-atlas/pkg/models/api"
)

const requestTimeout = 60 * time.Second

// API is the subset of the HTTP client the commands talk to.
type API interface {
	ServiceOptions(ctx context.Context) ([]api.Option, error)
	VersionOptions(ctx context.Context) ([]api.Option, error)
	RegionOptions(ctx context.Context) ([]api.Option, error)
	ProductOptions(ctx context.Context, regions []string) ([]api.Option, error)
	Durations(ctx context.Context) ([]api.Option, error)
	PricingTable(ctx context.Context, q client.TableQuery) (*api.PricingTable, error)
	Chat(ctx context.Context, messages []api.ChatMessage) (string, error)
}

// APIFactory resolves the client after flags are parsed.
type APIFactory func() API

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, requestTimeout)
}

func optionValues(options []api.Option) []string {
	values := make([]string, 0, len(options))
	for _, o := range options {
		values = append(values, o.Value)
	}
	return values
}
