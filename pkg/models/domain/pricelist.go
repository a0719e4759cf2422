package domain

import (
	"strings"
	"time"
)

const (
	TermOnDemand = "OnDemand"
	CurrencyUSD  = "USD"
)

type Offer struct {
	OfferCode             string `json:"offerCode"`
	VersionIndexURL       string `json:"versionIndexUrl"`
	CurrentVersionURL     string `json:"currentVersionUrl"`
	CurrentRegionIndexURL string `json:"currentRegionIndexUrl"`
}

// ServiceCatalog is the top-level offer index, keyed by service key.
type ServiceCatalog struct {
	FormatVersion   string           `json:"formatVersion"`
	PublicationDate string           `json:"publicationDate"`
	Offers          map[string]Offer `json:"offers"`
}

type VersionInfo struct {
	ID                 string
	EffectiveBeginDate time.Time
	EffectiveEndDate   *time.Time
	OfferVersionURL    string
}

type VersionIndex struct {
	OfferCode      string
	CurrentVersion string
	Versions       map[string]VersionInfo
}

type RegionInfo struct {
	RegionCode        string `json:"regionCode"`
	CurrentVersionURL string `json:"currentVersionUrl"`
}

type RegionIndex struct {
	Regions map[string]RegionInfo `json:"regions"`
}

type Product struct {
	Sku           string            `json:"sku"`
	ProductFamily string            `json:"productFamily"`
	Attributes    map[string]string `json:"attributes"`
}

// UsageType is the grouping key shown to users; products without a
// usagetype attribute fall back to their sku.
func (p Product) UsageType(sku string) string {
	if ut := p.Attributes["usagetype"]; ut != "" {
		return ut
	}
	if p.Sku != "" {
		return p.Sku
	}
	return sku
}

func (p Product) RegionCode() string {
	return p.Attributes["regionCode"]
}

func (p Product) Location() string {
	return p.Attributes["location"]
}

type PriceDimension struct {
	RateCode     string            `json:"rateCode"`
	Description  string            `json:"description"`
	BeginRange   string            `json:"beginRange"`
	EndRange     string            `json:"endRange"`
	Unit         string            `json:"unit"`
	PricePerUnit map[string]string `json:"pricePerUnit"`
	AppliesTo    []string          `json:"appliesTo"`
}

type Term struct {
	OfferTermCode   string                    `json:"offerTermCode"`
	Sku             string                    `json:"sku"`
	EffectiveDate   string                    `json:"effectiveDate"`
	PriceDimensions map[string]PriceDimension `json:"priceDimensions"`
}

// PriceList is one pricing snapshot. Terms is keyed term type -> sku -> term key.
type PriceList struct {
	FormatVersion   string                                `json:"formatVersion"`
	OfferCode       string                                `json:"offerCode"`
	Version         string                                `json:"version"`
	PublicationDate string                                `json:"publicationDate"`
	Products        map[string]Product                    `json:"products"`
	Terms           map[string]map[string]map[string]Term `json:"terms"`
}

func (pl *PriceList) OnDemand() map[string]map[string]Term {
	if pl == nil || pl.Terms == nil {
		return nil
	}
	return pl.Terms[TermOnDemand]
}

// HasOnDemandData reports whether the document carries the sections the
// pricing table is built from.
func (pl *PriceList) HasOnDemandData() bool {
	return pl != nil && pl.Products != nil && pl.OnDemand() != nil
}

// Observation is a single priced dimension of a selected product.
type Observation struct {
	UsageType   string
	RegionCode  string
	Location    string
	Price       float64
	Unit        string
	Description string
}

type AggregatedRow struct {
	UsageType   string
	RegionCodes []string
	Locations   []string
	Description string
	MinPrice    float64
	MaxPrice    float64
	Unit        string
}

type Option struct {
	Label string
	Value string
}

func (r AggregatedRow) JoinedRegionCodes() string {
	return strings.Join(r.RegionCodes, ", ")
}

func (r AggregatedRow) JoinedLocations() string {
	return strings.Join(r.Locations, ", ")
}
