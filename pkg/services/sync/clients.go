package sync

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/de-tools/pricelist-atlas/pkg/config"
)

// PricingAPI is the part of the AWS Price List Query API used to locate
// per-region price list files.
type PricingAPI interface {
	pricing.ListPriceListsAPIClient
	GetPriceListFileUrl(ctx context.Context, params *pricing.GetPriceListFileUrlInput, optFns ...func(*pricing.Options)) (*pricing.GetPriceListFileUrlOutput, error)
}

// RegionsAPI wraps DescribeRegions (no SDK paginator interface exists).
type RegionsAPI interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// NewAWSClients builds the pricing and ec2 clients. The Price List Query API
// is only served from a few regions, so it gets its own region.
func NewAWSClients(ctx context.Context, store config.Store, cfg config.Sync) (PricingAPI, RegionsAPI, error) {
	pricingCfg, err := config.LoadAWSConfig(ctx, store.Profile, cfg.PricingRegion)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load AWS config for pricing API: %w", err)
	}
	ec2Cfg, err := config.LoadAWSConfig(ctx, store.Profile, store.Region)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load AWS config for EC2 [region=%s]: %w", store.Region, err)
	}
	return pricing.NewFromConfig(*pricingCfg), ec2.NewFromConfig(*ec2Cfg), nil
}
