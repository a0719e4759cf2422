package commands

import (
	"context"
	"fmt"

	"github.com/de-tools/pricelist-atlas/pkg/config"
	"github.com/de-tools/pricelist-atlas/pkg/runtime/terminal/export"
	pricesync "github.com/de-tools/pricelist-atlas/pkg/services/sync"
	"github.com/spf13/cobra"
)

type Syncer interface {
	Sync(ctx context.Context, opts pricesync.Options) (*pricesync.Report, error)
}

// SyncFactory loads configuration from configPath and builds a Syncer over
// the configured store. withAWS asks for pricing and EC2 clients, which are
// only needed for per-region files.
type SyncFactory func(ctx context.Context, configPath string, withAWS bool) (Syncer, *config.Config, error)

type SyncCmd struct {
	configPath  string
	offerCode   string
	family      string
	baseURL     string
	regions     []string
	allRegions  bool
	concurrency int
	factory     SyncFactory
	reporter    *export.Reporter
}

func NewSyncCmd(factory SyncFactory, reporter *export.Reporter) *cobra.Command {
	sc := &SyncCmd{factory: factory, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download AWS price list documents into the configured store",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}

	cmd.Flags().StringVarP(&sc.configPath, "config", "c", "", "Path to the configuration file")
	cmd.Flags().StringVar(&sc.offerCode, "offer-code", "", "Offer code to sync (defaults to sync.offer_code)")
	cmd.Flags().StringVar(&sc.family, "family", "", "Store family to write into (defaults to pricing.family)")
	cmd.Flags().StringVar(&sc.baseURL, "base-url", "", "Bulk pricing endpoint (defaults to sync.base_url)")
	cmd.Flags().StringSliceVar(&sc.regions, "region", nil, "Regions to download per-region price lists for")
	cmd.Flags().BoolVar(&sc.allRegions, "all-regions", false, "Download per-region price lists for every enabled region")
	cmd.Flags().IntVar(&sc.concurrency, "concurrency", 4, "Parallel region downloads")
	cmd.MarkFlagsMutuallyExclusive("region", "all-regions")

	return cmd
}

func (sc *SyncCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	withAWS := sc.allRegions || len(sc.regions) > 0

	syncer, cfg, err := sc.factory(ctx, sc.configPath, withAWS)
	if err != nil {
		return fmt.Errorf("failed to initialize sync: %w", err)
	}

	opts := pricesync.Options{
		BaseURL:     firstNonEmpty(sc.baseURL, cfg.Sync.BaseURL),
		OfferCode:   firstNonEmpty(sc.offerCode, cfg.Sync.OfferCode),
		Family:      firstNonEmpty(sc.family, cfg.Pricing.Family),
		Regions:     sc.regions,
		AllRegions:  sc.allRegions,
		Concurrency: sc.concurrency,
	}

	report, err := syncer.Sync(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to sync price lists: %w", err)
	}

	return sc.reporter.Sync(export.SyncSummary{
		RunID:   report.RunID,
		Files:   report.Files,
		Skipped: report.Skipped,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
