package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/de-tools/pricelist-atlas/pkg/config"
	"github.com/de-tools/pricelist-atlas/pkg/runtime/terminal"
	"github.com/de-tools/pricelist-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/pricelist-atlas/pkg/store/pricelist"
	pricesync "github.com/de-tools/pricelist-atlas/pkg/services/sync"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func newSyncer(ctx context.Context, configPath string, withAWS bool) (commands.Syncer, *config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	store, err := pricelist.DefaultRegistry().Create(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pricing store: %w", err)
	}

	var (
		pricingAPI pricesync.PricingAPI
		regionsAPI pricesync.RegionsAPI
	)
	if withAWS {
		pricingAPI, regionsAPI, err = pricesync.NewAWSClients(ctx, cfg.Store, cfg.Sync)
		if err != nil {
			return nil, nil, err
		}
	}

	httpClient := &http.Client{Timeout: 5 * time.Minute}
	return pricesync.NewSyncer(store, httpClient, pricingAPI, regionsAPI), cfg, nil
}

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()

	cli := terminal.NewCLI(terminal.Options{
		Sync:   newSyncer,
		Output: os.Stdout,
		Logger: &logger,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
