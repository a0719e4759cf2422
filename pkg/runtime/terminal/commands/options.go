package commands

import (
	"context"

	"github.com/de-tools/pricelist-atlas/pkg/models/api"
	"github.com/de-tools/pricelist-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type optionsLoader func(ctx context.Context, c API) ([]api.Option, error)

// newOptionsCmd lists one picker's options. A failed fetch prints the picker's
// failure placeholder rather than aborting.
func newOptionsCmd(
	use, short, failure string,
	apiFactory APIFactory,
	reporter *export.Reporter,
	load optionsLoader,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()

			options, err := load(ctx, apiFactory())
			if err != nil {
				return reporter.Message(failure)
			}
			return reporter.Options(options)
		},
	}
}

func NewServicesCmd(apiFactory APIFactory, reporter *export.Reporter) *cobra.Command {
	return newOptionsCmd("services", "List AWS services", "Failed to load services", apiFactory, reporter,
		func(ctx context.Context, c API) ([]api.Option, error) {
			return c.ServiceOptions(ctx)
		})
}

func NewVersionsCmd(apiFactory APIFactory, reporter *export.Reporter) *cobra.Command {
	return newOptionsCmd("versions", "List price list versions, newest first", "Failed to load versions", apiFactory, reporter,
		func(ctx context.Context, c API) ([]api.Option, error) {
			return c.VersionOptions(ctx)
		})
}

func NewRegionsCmd(apiFactory APIFactory, reporter *export.Reporter) *cobra.Command {
	return newOptionsCmd("regions", "List regions", "Failed to load regions", apiFactory, reporter,
		func(ctx context.Context, c API) ([]api.Option, error) {
			return c.RegionOptions(ctx)
		})
}

func NewDurationsCmd(apiFactory APIFactory, reporter *export.Reporter) *cobra.Command {
	return newOptionsCmd("durations", "List billing durations", "Failed to load durations", apiFactory, reporter,
		func(ctx context.Context, c API) ([]api.Option, error) {
			return c.Durations(ctx)
		})
}

func NewProductsCmd(apiFactory APIFactory, reporter *export.Reporter) *cobra.Command {
	var regions []string
	cmd := newOptionsCmd("products", "List usage types available in the selected regions", "Failed to load products", apiFactory, reporter,
		func(ctx context.Context, c API) ([]api.Option, error) {
			return c.ProductOptions(ctx, regions)
		})
	cmd.Flags().StringSliceVar(&regions, "region", nil, "Region codes to list products for (__ALL__ for every region)")
	return cmd
}
