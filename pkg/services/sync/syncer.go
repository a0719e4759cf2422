// Package sync downloads AWS price list documents into a pricelist store.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"github.com/de-tools/pricelist-atlas/pkg/services/catalog"
	"github.com/de-tools/pricelist-atlas/pkg/store/pricelist"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	catalogPath        = "/offers/v1.0/aws/index.json"
	fileFormatJSON     = "json"
	defaultConcurrency = 4
)

var (
	ErrOfferNotFound = errors.New("offer not found in services catalog")
	ErrNoRegions     = errors.New("no regions to sync")
)

type Options struct {
	BaseURL    string
	OfferCode  string
	Family     string
	Regions    []string
	AllRegions bool
	// Concurrency bounds parallel region downloads; zero means 4.
	Concurrency int
}

type Report struct {
	RunID   string
	Files   []string
	Skipped []string
}

type Syncer struct {
	store   pricelist.Store
	http    *http.Client
	pricing PricingAPI
	regions RegionsAPI
	now     func() time.Time
}

// NewSyncer builds a Syncer. pricing and regions may be nil when only the
// offer index files are synced.
func NewSyncer(store pricelist.Store, httpClient *http.Client, pricing PricingAPI, regions RegionsAPI) *Syncer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Syncer{
		store:   store,
		http:    httpClient,
		pricing: pricing,
		regions: regions,
		now:     time.Now,
	}
}

func (s *Syncer) Sync(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	logger := zerolog.Ctx(ctx).With().
		Str("run_id", report.RunID).
		Str("offer_code", opts.OfferCode).
		Logger()
	ctx = logger.WithContext(ctx)

	data, err := s.download(ctx, joinURL(opts.BaseURL, catalogPath))
	if err != nil {
		return nil, fmt.Errorf("failed to download services catalog: %w", err)
	}
	if err := s.write(ctx, pricelist.CatalogKey(), data, report); err != nil {
		return nil, err
	}

	var services domain.ServiceCatalog
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services catalog: %w", err)
	}
	offer, ok := findOffer(services, opts.OfferCode)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOfferNotFound, opts.OfferCode)
	}

	files := []struct {
		name string
		path string
	}{
		{catalog.FileVersionIndex, offer.VersionIndexURL},
		{catalog.FileCurrentVersion, offer.CurrentVersionURL},
		{catalog.FileCurrentRegion, offer.CurrentRegionIndexURL},
	}
	for _, f := range files {
		data, err := s.download(ctx, joinURL(opts.BaseURL, f.path))
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", f.name, err)
		}
		if err := s.write(ctx, pricelist.FileKey(opts.Family, f.name), data, report); err != nil {
			return nil, err
		}
	}

	regions, err := s.resolveRegions(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(regions) > 0 {
		if err := s.syncRegions(ctx, opts, regions, report); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Int("files", len(report.Files)).
		Int("skipped", len(report.Skipped)).
		Msg("price list sync completed")
	return report, nil
}

func findOffer(services domain.ServiceCatalog, code string) (domain.Offer, bool) {
	if offer, ok := services.Offers[code]; ok {
		return offer, true
	}
	for _, offer := range services.Offers {
		if offer.OfferCode == code {
			return offer, true
		}
	}
	return domain.Offer{}, false
}

func (s *Syncer) resolveRegions(ctx context.Context, opts Options) ([]string, error) {
	if !opts.AllRegions {
		return opts.Regions, nil
	}
	if s.regions == nil {
		return nil, fmt.Errorf("%w: no EC2 client configured", ErrNoRegions)
	}

	out, err := s.regions.DescribeRegions(ctx, &ec2.DescribeRegionsInput{AllRegions: aws.Bool(false)})
	if err != nil {
		return nil, fmt.Errorf("failed to describe regions: %w", err)
	}

	regions := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		regions = append(regions, aws.ToString(r.RegionName))
	}
	slices.Sort(regions)
	return regions, nil
}

type regionResult struct {
	file    string
	skipped bool
}

func (s *Syncer) syncRegions(ctx context.Context, opts Options, regions []string, report *Report) error {
	if s.pricing == nil {
		return errors.New("no pricing client configured for region sync")
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	results := make([]regionResult, len(regions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, region := range regions {
		g.Go(func() error {
			res, err := s.syncRegion(gctx, opts, region)
			if err != nil {
				return fmt.Errorf("region %s: %w", region, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, res := range results {
		if res.skipped {
			report.Skipped = append(report.Skipped, regions[i])
			continue
		}
		report.Files = append(report.Files, res.file)
	}
	return nil
}

func (s *Syncer) syncRegion(ctx context.Context, opts Options, region string) (regionResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("region", region).Logger()

	name, err := catalog.RegionFileName(region)
	if err != nil {
		return regionResult{}, err
	}

	arn, err := s.findPriceList(ctx, opts.OfferCode, region)
	if err != nil {
		return regionResult{}, err
	}
	if arn == "" {
		logger.Warn().Msg("no price list available for region, skipping")
		return regionResult{skipped: true}, nil
	}

	out, err := s.pricing.GetPriceListFileUrl(ctx, &pricing.GetPriceListFileUrlInput{
		FileFormat:   aws.String(fileFormatJSON),
		PriceListArn: aws.String(arn),
	})
	if err != nil {
		return regionResult{}, fmt.Errorf("failed to get price list file url: %w", err)
	}

	data, err := s.download(ctx, aws.ToString(out.Url))
	if err != nil {
		return regionResult{}, fmt.Errorf("failed to download price list: %w", err)
	}

	key := pricelist.FileKey(opts.Family, name)
	if err := s.store.Write(ctx, key, data); err != nil {
		return regionResult{}, fmt.Errorf("failed to store %s: %w", key, err)
	}
	logger.Debug().Str("key", key.String()).Int("bytes", len(data)).Msg("stored region price list")
	return regionResult{file: key.String()}, nil
}

// findPriceList returns the ARN of the first price list for the region that
// is offered as JSON, or "" when there is none.
func (s *Syncer) findPriceList(ctx context.Context, offerCode, region string) (string, error) {
	paginator := pricing.NewListPriceListsPaginator(s.pricing, &pricing.ListPriceListsInput{
		ServiceCode:   aws.String(offerCode),
		CurrencyCode:  aws.String(domain.CurrencyUSD),
		EffectiveDate: aws.Time(s.now()),
		RegionCode:    aws.String(region),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list price lists: %w", err)
		}
		for _, pl := range page.PriceLists {
			if slices.Contains(pl.FileFormats, fileFormatJSON) {
				return aws.ToString(pl.PriceListArn), nil
			}
		}
	}
	return "", nil
}

func (s *Syncer) write(ctx context.Context, key pricelist.Key, data []byte, report *Report) error {
	if err := s.store.Write(ctx, key, data); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	zerolog.Ctx(ctx).Debug().Str("key", key.String()).Int("bytes", len(data)).Msg("stored pricing document")
	report.Files = append(report.Files, key.String())
	return nil
}

func (s *Syncer) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			zerolog.Ctx(ctx).Warn().Err(closeErr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("GET %s: response is not valid JSON", rawURL)
	}
	return data, nil
}

// joinURL resolves offer paths, which the catalog gives relative to the
// pricing endpoint, against base. Absolute URLs pass through.
func joinURL(base, ref string) string {
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}
