package pricelist

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/de-tools/pricelist-atlas/pkg/adapters"
	"github.com/de-tools/pricelist-atlas/pkg/handlers/response"
	"github.com/de-tools/pricelist-atlas/pkg/models/api"
	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"github.com/de-tools/pricelist-atlas/pkg/services/catalog"
	"github.com/de-tools/pricelist-atlas/pkg/services/pricing"
	"github.com/de-tools/pricelist-atlas/pkg/services/selection"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	MsgNotFound      = "File not found or invalid JSON"
	MsgInvalidFile   = "Invalid file requested"
	MsgInvalidRegion = "Invalid region requested"
	MsgNoDurations   = "Could not extract durations."
	MsgOptionsFailed = "Could not load options."
	msgHealthy       = "healthy"
)

const (
	queryRegion   = "region"
	queryProduct  = "product"
	queryVersion  = "version"
	queryDuration = "duration"
	querySearch   = "search"
	querySort     = "sort"
)

// Catalog is the read side of the pricing documents the handler serves.
type Catalog interface {
	RawServices(ctx context.Context) ([]byte, error)
	RawFile(ctx context.Context, name string) ([]byte, error)
	RawRegionFile(ctx context.Context, region string) ([]byte, error)
	ServiceOptions(ctx context.Context) ([]domain.Option, error)
	VersionOptions(ctx context.Context) ([]domain.Option, error)
	RegionOptions(ctx context.Context) ([]domain.Option, error)
	ProductOptions(ctx context.Context, regions []string) ([]domain.Option, error)
	DurationOptions(ctx context.Context) ([]domain.Option, error)
	CurrentPriceList(ctx context.Context) (*domain.PriceList, error)
	VersionInfo(ctx context.Context, id string) (domain.VersionInfo, bool, error)
}

type Handler struct {
	catalog Catalog
}

func NewHandler(catalog Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) GetAllServices(w http.ResponseWriter, r *http.Request) {
	data, err := h.catalog.RawServices(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to read services catalog")
		response.Error(w, r, http.StatusNotFound, MsgNotFound)
		return
	}
	response.Raw(w, r, http.StatusOK, data)
}

func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	file := chi.URLParam(r, "file")

	if !catalog.IsAllowedFile(file) {
		response.Error(w, r, http.StatusBadRequest, MsgInvalidFile)
		return
	}

	data, err := h.catalog.RawFile(ctx, file)
	if err != nil {
		logger.Error().
			Err(err).
			Str("file", file).
			Msg("failed to read pricing file")
		response.Error(w, r, http.StatusNotFound, MsgNotFound)
		return
	}
	response.Raw(w, r, http.StatusOK, data)
}

func (h *Handler) GetRegionFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	region := chi.URLParam(r, "region")

	data, err := h.catalog.RawRegionFile(ctx, region)
	if errors.Is(err, catalog.ErrInvalidRegion) {
		response.Error(w, r, http.StatusBadRequest, MsgInvalidRegion)
		return
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("region", region).
			Msg("failed to read region price list")
		response.Error(w, r, http.StatusNotFound, MsgNotFound)
		return
	}
	response.Raw(w, r, http.StatusOK, data)
}

func (h *Handler) GetDurations(w http.ResponseWriter, r *http.Request) {
	options, err := h.catalog.DurationOptions(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to extract durations")
		response.Error(w, r, http.StatusInternalServerError, MsgNoDurations)
		return
	}
	response.JSON(w, r, http.StatusOK, adapters.MapOptionsDomainToApi(options))
}

func (h *Handler) GetServiceOptions(w http.ResponseWriter, r *http.Request) {
	h.writeOptions(w, r, "services", h.catalog.ServiceOptions)
}

func (h *Handler) GetVersionOptions(w http.ResponseWriter, r *http.Request) {
	h.writeOptions(w, r, "versions", h.catalog.VersionOptions)
}

func (h *Handler) GetRegionOptions(w http.ResponseWriter, r *http.Request) {
	h.writeOptions(w, r, "regions", h.catalog.RegionOptions)
}

func (h *Handler) GetProductOptions(w http.ResponseWriter, r *http.Request) {
	h.writeOptions(w, r, "products", func(ctx context.Context) ([]domain.Option, error) {
		regions, err := h.expandRegions(ctx, r.URL.Query()[queryRegion])
		if err != nil {
			return nil, err
		}
		return h.catalog.ProductOptions(ctx, regions)
	})
}

func (h *Handler) writeOptions(
	w http.ResponseWriter,
	r *http.Request,
	kind string,
	load func(ctx context.Context) ([]domain.Option, error),
) {
	options, err := load(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("kind", kind).
			Msg("failed to load options")
		response.Error(w, r, http.StatusNotFound, MsgOptionsFailed)
		return
	}
	response.JSON(w, r, http.StatusOK, adapters.MapOptionsDomainToApi(options))
}

func (h *Handler) GetPricingTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	query := r.URL.Query()

	sortSpec, err := pricing.ParseSort(query.Get(querySort))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.catalog.CurrentPriceList(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to read current price list")
		response.Error(w, r, http.StatusNotFound, MsgNotFound)
		return
	}

	regions, err := h.expandRegions(ctx, query[queryRegion])
	if err != nil {
		logger.Error().Err(err).Msg("failed to expand regions")
		response.Error(w, r, http.StatusNotFound, MsgNotFound)
		return
	}
	products := query[queryProduct]
	if isSelectAll(products) {
		products = optionValues(catalog.ProductOptions(doc, regions))
	}

	table := pricing.BuildTable(ctx, doc, pricing.Query{
		Regions:  regions,
		Products: products,
		Duration: query.Get(queryDuration),
		Search:   query.Get(querySearch),
		Sort:     sortSpec,
	})

	var version *domain.VersionInfo
	if id := query.Get(queryVersion); id != "" {
		info, ok, err := h.catalog.VersionInfo(ctx, id)
		switch {
		case err != nil:
			logger.Warn().Err(err).Str("version", id).Msg("failed to read version info")
		case ok:
			version = &info
		}
	}

	response.JSON(w, r, http.StatusOK, adapters.MapPricingTableDomainToApi(table, version))
}

func (h *Handler) expandRegions(ctx context.Context, selected []string) ([]string, error) {
	if !isSelectAll(selected) {
		return selected, nil
	}
	options, err := h.catalog.RegionOptions(ctx)
	if err != nil {
		return nil, err
	}
	return selection.ExpandSelectAll(selected, optionValues(options)), nil
}

func isSelectAll(selected []string) bool {
	return slices.Contains(selected, selection.SelectAllValue)
}

func optionValues(options []domain.Option) []string {
	values := make([]string, 0, len(options))
	for _, o := range options {
		values = append(values, o.Value)
	}
	return values
}

func Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, api.HealthResponse{Status: msgHealthy})
}
