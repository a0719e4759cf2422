package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/de-tools/pricelist-atlas/pkg/client"
	"github.com/de-tools/pricelist-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/pricelist-atlas/pkg/services/pricing"
	"github.com/de-tools/pricelist-atlas/pkg/services/selection"
	"github.com/spf13/cobra"
)

var ErrIncompleteSelection = errors.New(
	"select a service, version, at least one region and product, and a duration to view pricing")

type TableCmd struct {
	service   string
	version   string
	regions   []string
	products  []string
	duration  string
	search    string
	sort      string
	discounts bool
	api       APIFactory
	reporter  *export.Reporter
}

func NewTableCmd(apiFactory APIFactory, reporter *export.Reporter) *cobra.Command {
	tc := &TableCmd{api: apiFactory, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Show the aggregated pricing table for a selection",
		Args:  cobra.NoArgs,
		RunE:  tc.run,
	}

	cmd.Flags().StringVar(&tc.service, "service", "", "Service key (e.g. AmazonVerifiedPermissions)")
	cmd.Flags().StringVar(&tc.version, "version", "", "Price list version id")
	cmd.Flags().StringSliceVar(&tc.regions, "region", nil, "Region codes (__ALL__ for every region)")
	cmd.Flags().StringSliceVar(&tc.products, "product", nil, "Usage types (__ALL__ for every product in the regions)")
	cmd.Flags().StringVar(&tc.duration, "duration", "", "Billing duration (e.g. OnDemand)")
	cmd.Flags().StringVar(&tc.search, "search", "", "Case-insensitive text filter")
	cmd.Flags().StringVar(&tc.sort, "sort", pricing.DefaultSort().String(), "Sort as <minPrice|sku|regionCodes>_<asc|desc>")
	cmd.Flags().BoolVar(&tc.discounts, "discounts", false, "Also show the discounts panel")

	return cmd
}

func (tc *TableCmd) run(cmd *cobra.Command, _ []string) error {
	if _, err := pricing.ParseSort(tc.sort); err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()
	c := tc.api()

	s, ok := tc.selection(ctx, c)
	if !ok {
		return nil
	}
	if tc.discounts {
		s = selection.Reduce(s, selection.ShowDiscounts{})
	}
	if !s.ShowPricingTable && !s.ShowDiscounts {
		return ErrIncompleteSelection
	}

	if s.ShowPricingTable {
		table, err := c.PricingTable(ctx, client.TableQuery{
			Version:  s.Version,
			Regions:  s.Regions,
			Products: s.Products,
			Duration: s.Duration,
			Search:   tc.search,
			Sort:     tc.sort,
		})
		if err != nil {
			if err := tc.reporter.Message("Failed to load pricing data."); err != nil {
				return err
			}
		} else if err := tc.reporter.Table(table); err != nil {
			return fmt.Errorf("failed to render pricing table: %w", err)
		}
	}

	if s.ShowDiscounts {
		return tc.reporter.Discounts(s.Service)
	}
	return nil
}

// selection replays the flags through the picker state machine, expanding
// "Select All" against the options available at this moment. It returns false
// after printing a placeholder when an expansion fetch fails.
func (tc *TableCmd) selection(ctx context.Context, c API) (selection.Selection, bool) {
	s := selection.Selection{}
	s = selection.Reduce(s, selection.ServiceChanged{Service: tc.service})
	s = selection.Reduce(s, selection.VersionChanged{Version: tc.version})

	regions := tc.regions
	if slices.Contains(regions, selection.SelectAllValue) {
		options, err := c.RegionOptions(ctx)
		if err != nil {
			_ = tc.reporter.Message("Failed to load regions")
			return s, false
		}
		regions = selection.ExpandSelectAll(regions, optionValues(options))
	}
	s = selection.Reduce(s, selection.RegionsChanged{Regions: regions})

	products := tc.products
	if slices.Contains(products, selection.SelectAllValue) {
		options, err := c.ProductOptions(ctx, s.Regions)
		if err != nil {
			_ = tc.reporter.Message("Failed to load products")
			return s, false
		}
		products = selection.ExpandSelectAll(products, optionValues(options))
	}
	s = selection.Reduce(s, selection.ProductsChanged{Products: products})
	s = selection.Reduce(s, selection.DurationChanged{Duration: tc.duration})

	return selection.Reduce(s, selection.ViewPricing{}), true
}
