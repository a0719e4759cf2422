package api

type ErrorResponse struct {
	Error string `json:"error"`
}

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type PricingRow struct {
	UsageType   string  `json:"sku"`
	RegionCodes string  `json:"regionCodes"`
	Locations   string  `json:"locations"`
	Description string  `json:"description"`
	PriceRange  string  `json:"priceRange"`
	MinPrice    float64 `json:"minPrice"`
	MaxPrice    float64 `json:"maxPrice"`
	Unit        string  `json:"unit"`
}

type PricingTable struct {
	State        string       `json:"state"`
	Message      string       `json:"message,omitempty"`
	Rows         []PricingRow `json:"rows"`
	VersionBegin string       `json:"versionBegin"`
	VersionEnd   string       `json:"versionEnd"`
}
