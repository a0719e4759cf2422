package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"github.com/de-tools/pricelist-atlas/pkg/store/pricelist"
	json "github.com/goccy/go-json"
)

const (
	FileVersionIndex   = "index-version"
	FileCurrentVersion = "index-current-version"
	FileCurrentRegion  = "index-current-region"

	regionFilePrefix = "region-"
)

var (
	ErrInvalidDocument = errors.New("invalid pricing document")
	ErrInvalidFile     = errors.New("invalid file requested")
	ErrInvalidRegion   = errors.New("invalid region code")
)

var regionCode = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-[0-9]+$`)

// IsAllowedFile reports whether name is one of the per-family index files
// served to clients.
func IsAllowedFile(name string) bool {
	switch name {
	case FileVersionIndex, FileCurrentVersion, FileCurrentRegion:
		return true
	}
	return false
}

func RegionFileName(region string) (string, error) {
	if !regionCode.MatchString(region) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRegion, region)
	}
	return regionFilePrefix + region, nil
}

// Service reads pricing documents for one product family and decodes them
// into typed records, rejecting malformed documents at the boundary.
type Service struct {
	store  pricelist.Store
	family string
}

func NewService(store pricelist.Store, family string) *Service {
	return &Service{
		store:  store,
		family: family,
	}
}

func (s *Service) Family() string {
	return s.family
}

// RawServices returns the services catalog verbatim after checking it is JSON.
func (s *Service) RawServices(ctx context.Context) ([]byte, error) {
	return s.readRaw(ctx, pricelist.CatalogKey())
}

// RawFile returns one of the allowed index files verbatim.
func (s *Service) RawFile(ctx context.Context, name string) ([]byte, error) {
	if !IsAllowedFile(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFile, name)
	}
	return s.readRaw(ctx, pricelist.FileKey(s.family, name))
}

// RawRegionFile returns a synced per-region price list verbatim.
func (s *Service) RawRegionFile(ctx context.Context, region string) ([]byte, error) {
	name, err := RegionFileName(region)
	if err != nil {
		return nil, err
	}
	return s.readRaw(ctx, pricelist.FileKey(s.family, name))
}

func (s *Service) readRaw(ctx context.Context, key pricelist.Key) ([]byte, error) {
	data, err := s.store.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", ErrInvalidDocument, key)
	}
	return data, nil
}

func (s *Service) decode(ctx context.Context, key pricelist.Key, v any) error {
	data, err := s.store.Read(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, key, err)
	}
	return nil
}

func (s *Service) Services(ctx context.Context) (*domain.ServiceCatalog, error) {
	var doc domain.ServiceCatalog
	if err := s.decode(ctx, pricelist.CatalogKey(), &doc); err != nil {
		return nil, err
	}
	if doc.Offers == nil {
		return nil, fmt.Errorf("%w: services catalog has no offers", ErrInvalidDocument)
	}
	return &doc, nil
}

type versionIndexDoc struct {
	OfferCode      string `json:"offerCode"`
	CurrentVersion string `json:"currentVersion"`
	Versions       map[string]struct {
		VersionEffectiveBeginDate string `json:"versionEffectiveBeginDate"`
		VersionEffectiveEndDate   string `json:"versionEffectiveEndDate"`
		OfferVersionURL           string `json:"offerVersionUrl"`
	} `json:"versions"`
}

func (s *Service) Versions(ctx context.Context) (*domain.VersionIndex, error) {
	var doc versionIndexDoc
	if err := s.decode(ctx, pricelist.FileKey(s.family, FileVersionIndex), &doc); err != nil {
		return nil, err
	}
	if doc.Versions == nil {
		return nil, fmt.Errorf("%w: version index has no versions", ErrInvalidDocument)
	}

	index := &domain.VersionIndex{
		OfferCode:      doc.OfferCode,
		CurrentVersion: doc.CurrentVersion,
		Versions:       make(map[string]domain.VersionInfo, len(doc.Versions)),
	}
	for id, v := range doc.Versions {
		begin, err := time.Parse(time.RFC3339, v.VersionEffectiveBeginDate)
		if err != nil {
			return nil, fmt.Errorf("%w: version %s has invalid begin date: %v", ErrInvalidDocument, id, err)
		}

		info := domain.VersionInfo{
			ID:                 id,
			EffectiveBeginDate: begin,
			OfferVersionURL:    v.OfferVersionURL,
		}
		if v.VersionEffectiveEndDate != "" {
			end, err := time.Parse(time.RFC3339, v.VersionEffectiveEndDate)
			if err != nil {
				return nil, fmt.Errorf("%w: version %s has invalid end date: %v", ErrInvalidDocument, id, err)
			}
			info.EffectiveEndDate = &end
		}
		index.Versions[id] = info
	}
	return index, nil
}

func (s *Service) Regions(ctx context.Context) (*domain.RegionIndex, error) {
	var doc domain.RegionIndex
	if err := s.decode(ctx, pricelist.FileKey(s.family, FileCurrentRegion), &doc); err != nil {
		return nil, err
	}
	if doc.Regions == nil {
		return nil, fmt.Errorf("%w: region index has no regions", ErrInvalidDocument)
	}
	return &doc, nil
}

// CurrentPriceList decodes the current price list. Missing products or terms
// are not rejected here; the pricing table reports them as "no data".
func (s *Service) CurrentPriceList(ctx context.Context) (*domain.PriceList, error) {
	var doc domain.PriceList
	if err := s.decode(ctx, pricelist.FileKey(s.family, FileCurrentVersion), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Service) RegionPriceList(ctx context.Context, region string) (*domain.PriceList, error) {
	name, err := RegionFileName(region)
	if err != nil {
		return nil, err
	}

	var doc domain.PriceList
	if err := s.decode(ctx, pricelist.FileKey(s.family, name), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
