package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var durationLabels = map[string]string{
	domain.TermOnDemand: "On-Demand",
}

// sortByLabel orders options the way a browser's localeCompare would.
func sortByLabel(options []domain.Option) {
	c := collate.New(language.English)
	sort.Slice(options, func(i, j int) bool {
		if cmp := c.CompareString(options[i].Label, options[j].Label); cmp != 0 {
			return cmp < 0
		}
		return options[i].Value < options[j].Value
	})
}

func ServiceOptions(doc *domain.ServiceCatalog) []domain.Option {
	options := make([]domain.Option, 0, len(doc.Offers))
	for key, offer := range doc.Offers {
		options = append(options, domain.Option{Label: offer.OfferCode, Value: key})
	}
	sortByLabel(options)
	return options
}

// VersionOptions lists versions newest first, labelled with their begin date.
func VersionOptions(doc *domain.VersionIndex) []domain.Option {
	options := make([]domain.Option, 0, len(doc.Versions))
	for id, info := range doc.Versions {
		options = append(options, domain.Option{
			Label: id + " (" + info.EffectiveBeginDate.Format("2006-01-02") + ")",
			Value: id,
		})
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].Value > options[j].Value
	})
	return options
}

func RegionOptions(doc *domain.RegionIndex) []domain.Option {
	options := make([]domain.Option, 0, len(doc.Regions))
	for key, region := range doc.Regions {
		options = append(options, domain.Option{Label: region.RegionCode, Value: key})
	}
	sortByLabel(options)
	return options
}

// ProductOptions lists the distinct usage types of products located in one of
// the given regions. No regions means no options.
func ProductOptions(doc *domain.PriceList, regions []string) []domain.Option {
	if doc == nil || len(regions) == 0 {
		return []domain.Option{}
	}

	selected := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		selected[r] = struct{}{}
	}

	seen := make(map[string]struct{})
	for sku, product := range doc.Products {
		if _, ok := selected[product.RegionCode()]; !ok {
			continue
		}
		seen[product.UsageType(sku)] = struct{}{}
	}

	options := make([]domain.Option, 0, len(seen))
	for usageType := range seen {
		options = append(options, domain.Option{Label: usageType, Value: usageType})
	}
	sortByLabel(options)
	return options
}

// DurationOptions derives billing terms from the price list's top-level term
// keys.
func DurationOptions(doc *domain.PriceList) []domain.Option {
	if doc == nil {
		return []domain.Option{}
	}

	options := make([]domain.Option, 0, len(doc.Terms))
	for key := range doc.Terms {
		label, ok := durationLabels[key]
		if !ok {
			label = key
		}
		options = append(options, domain.Option{Label: label, Value: key})
	}
	sort.Slice(options, func(i, j int) bool {
		return strings.Compare(options[i].Value, options[j].Value) < 0
	})
	return options
}

func (s *Service) ServiceOptions(ctx context.Context) ([]domain.Option, error) {
	doc, err := s.Services(ctx)
	if err != nil {
		return nil, err
	}
	return ServiceOptions(doc), nil
}

func (s *Service) VersionOptions(ctx context.Context) ([]domain.Option, error) {
	doc, err := s.Versions(ctx)
	if err != nil {
		return nil, err
	}
	return VersionOptions(doc), nil
}

func (s *Service) RegionOptions(ctx context.Context) ([]domain.Option, error) {
	doc, err := s.Regions(ctx)
	if err != nil {
		return nil, err
	}
	return RegionOptions(doc), nil
}

func (s *Service) ProductOptions(ctx context.Context, regions []string) ([]domain.Option, error) {
	doc, err := s.CurrentPriceList(ctx)
	if err != nil {
		return nil, err
	}
	return ProductOptions(doc, regions), nil
}

func (s *Service) DurationOptions(ctx context.Context) ([]domain.Option, error) {
	doc, err := s.CurrentPriceList(ctx)
	if err != nil {
		return nil, err
	}
	return DurationOptions(doc), nil
}

// VersionInfo looks up the effective dates of a version. Unknown ids return
// false; callers render "N/A".
func (s *Service) VersionInfo(ctx context.Context, id string) (domain.VersionInfo, bool, error) {
	if id == "" {
		return domain.VersionInfo{}, false, nil
	}
	doc, err := s.Versions(ctx)
	if err != nil {
		return domain.VersionInfo{}, false, err
	}
	info, ok := doc.Versions[id]
	return info, ok, nil
}
