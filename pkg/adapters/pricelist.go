package adapters

import (
	"github.com/de-tools/pricelist-atlas/pkg/models/api"
	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"github.com/de-tools/pricelist-atlas/pkg/services/pricing"
)

const (
	MessageNoPricingData = "No pricing data for this selection."
	notAvailable         = "N/A"
	dateLayout           = "2006-01-02"
)

func MapOptionDomainToApi(o domain.Option) api.Option {
	return api.Option{Label: o.Label, Value: o.Value}
}

func MapOptionsDomainToApi(options []domain.Option) []api.Option {
	res := make([]api.Option, 0, len(options))
	for _, o := range options {
		res = append(res, MapOptionDomainToApi(o))
	}
	return res
}

func MapAggregatedRowDomainToApi(r domain.AggregatedRow) api.PricingRow {
	return api.PricingRow{
		UsageType:   r.UsageType,
		RegionCodes: r.JoinedRegionCodes(),
		Locations:   r.JoinedLocations(),
		Description: r.Description,
		PriceRange:  pricing.PriceRange(r),
		MinPrice:    r.MinPrice,
		MaxPrice:    r.MaxPrice,
		Unit:        r.Unit,
	}
}

// MapPricingTableDomainToApi renders a pipeline result. version may be nil when
// the requested version is unknown; its dates then render as N/A.
func MapPricingTableDomainToApi(t pricing.Table, version *domain.VersionInfo) api.PricingTable {
	res := api.PricingTable{
		State:        string(t.State),
		Rows:         make([]api.PricingRow, 0, len(t.Rows)),
		VersionBegin: notAvailable,
		VersionEnd:   notAvailable,
	}
	for _, r := range t.Rows {
		res.Rows = append(res.Rows, MapAggregatedRowDomainToApi(r))
	}
	if len(res.Rows) == 0 {
		res.Message = MessageNoPricingData
	}

	if version != nil {
		if !version.EffectiveBeginDate.IsZero() {
			res.VersionBegin = version.EffectiveBeginDate.Format(dateLayout)
		}
		if version.EffectiveEndDate != nil {
			res.VersionEnd = version.EffectiveEndDate.Format(dateLayout)
		}
	}
	return res
}

func MapChatMessagesApiToDomain(messages []api.ChatMessage) []domain.ChatMessage {
	res := make([]domain.ChatMessage, 0, len(messages))
	for _, m := range messages {
		res = append(res, domain.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return res
}
