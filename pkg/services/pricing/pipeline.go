package pricing

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type State string

const (
	// StateReady means the selection was complete and the document usable;
	// the table may still have zero rows.
	StateReady State = "ready"
	// StateEmptySelection means a region, product or duration is missing.
	StateEmptySelection State = "empty_selection"
	// StateNoData means the price list is missing or lacks products/OnDemand terms.
	StateNoData State = "no_data"
)

type Query struct {
	Regions  []string
	Products []string
	Duration string
	Search   string
	Sort     SortSpec
}

type Table struct {
	State State
	Rows  []domain.AggregatedRow
}

// BuildTable runs filter, expand, group, aggregate, search and sort over doc.
// It has no side effects besides logging.
func BuildTable(ctx context.Context, doc *domain.PriceList, q Query) Table {
	if len(q.Regions) == 0 || len(q.Products) == 0 || q.Duration == "" {
		return Table{State: StateEmptySelection}
	}
	if !doc.HasOnDemandData() {
		return Table{State: StateNoData}
	}

	observations := Extract(ctx, doc, q.Regions, q.Products, q.Duration)
	rows := Aggregate(observations)
	rows = Search(rows, q.Search)
	rows = Sort(rows, q.Sort)

	return Table{State: StateReady, Rows: rows}
}

// Extract returns one observation per priced dimension of every product that
// matches a selected region and usage type. SKUs, term keys and dimension keys
// are visited in ascending order. Only the OnDemand term is supported; any
// other duration yields nothing.
func Extract(
	ctx context.Context,
	doc *domain.PriceList,
	regions, products []string,
	duration string,
) (observations []domain.Observation) {
	logger := zerolog.Ctx(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Msg("error extracting pricing data")
			observations = nil
		}
	}()

	if duration != domain.TermOnDemand || !doc.HasOnDemandData() {
		return nil
	}

	onDemand := doc.OnDemand()
	for _, sku := range slices.Sorted(maps.Keys(doc.Products)) {
		product := doc.Products[sku]

		regionCode := product.RegionCode()
		if !slices.Contains(regions, regionCode) {
			continue
		}
		usageType := product.UsageType(sku)
		if !slices.Contains(products, usageType) {
			continue
		}

		terms, ok := onDemand[sku]
		if !ok {
			continue
		}

		for _, termKey := range slices.Sorted(maps.Keys(terms)) {
			dimensions := terms[termKey].PriceDimensions
			for _, dimKey := range slices.Sorted(maps.Keys(dimensions)) {
				dim := dimensions[dimKey]

				usd, ok := dim.PricePerUnit[domain.CurrencyUSD]
				if !ok {
					logger.Debug().
						Str("sku", sku).
						Str("dimension", dimKey).
						Msg("price dimension has no USD price")
					continue
				}
				price, err := decimal.NewFromString(usd)
				if err != nil {
					logger.Debug().
						Err(err).
						Str("sku", sku).
						Str("dimension", dimKey).
						Msg("failed to parse USD price")
					continue
				}

				observations = append(observations, domain.Observation{
					UsageType:   usageType,
					RegionCode:  regionCode,
					Location:    product.Location(),
					Price:       price.InexactFloat64(),
					Unit:        dim.Unit,
					Description: dim.Description,
				})
			}
		}
	}

	return observations
}

// Aggregate groups observations by usage type in order of first appearance.
// The first observation of a group supplies its description and unit.
func Aggregate(observations []domain.Observation) []domain.AggregatedRow {
	rows := []domain.AggregatedRow{}
	index := make(map[string]int)

	for _, o := range observations {
		i, ok := index[o.UsageType]
		if !ok {
			rows = append(rows, domain.AggregatedRow{
				UsageType:   o.UsageType,
				Description: o.Description,
				Unit:        o.Unit,
				MinPrice:    o.Price,
				MaxPrice:    o.Price,
			})
			i = len(rows) - 1
			index[o.UsageType] = i
		}

		row := &rows[i]
		row.MinPrice = min(row.MinPrice, o.Price)
		row.MaxPrice = max(row.MaxPrice, o.Price)
		row.RegionCodes = appendUnique(row.RegionCodes, o.RegionCode)
		row.Locations = appendUnique(row.Locations, o.Location)
	}

	return rows
}

func appendUnique(values []string, v string) []string {
	if v == "" || slices.Contains(values, v) {
		return values
	}
	return append(values, v)
}

// Search keeps rows whose usage type, region codes, locations or description
// contain text, ignoring case. Empty text keeps everything.
func Search(rows []domain.AggregatedRow, text string) []domain.AggregatedRow {
	if text == "" {
		return rows
	}

	needle := strings.ToLower(text)
	filtered := []domain.AggregatedRow{}
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.UsageType), needle) ||
			strings.Contains(strings.ToLower(row.JoinedRegionCodes()), needle) ||
			strings.Contains(strings.ToLower(row.JoinedLocations()), needle) ||
			strings.Contains(strings.ToLower(row.Description), needle) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// PriceRange renders a row's price with six decimals, collapsing to a single
// value when min and max are equal.
func PriceRange(row domain.AggregatedRow) string {
	lo := decimal.NewFromFloat(row.MinPrice).StringFixed(6)
	if row.MinPrice == row.MaxPrice {
		return lo
	}
	return lo + " - " + decimal.NewFromFloat(row.MaxPrice).StringFixed(6)
}
