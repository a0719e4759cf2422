package pricing

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var ErrInvalidSort = errors.New("invalid sort option")

type SortField string

const (
	SortByMinPrice    SortField = "minPrice"
	SortByUsageType   SortField = "sku"
	SortByRegionCodes SortField = "regionCodes"
)

const (
	directionAsc  = "asc"
	directionDesc = "desc"
)

type SortSpec struct {
	Field      SortField
	Descending bool
}

// DefaultSort is lowest price first.
func DefaultSort() SortSpec {
	return SortSpec{Field: SortByMinPrice}
}

func (s SortSpec) String() string {
	field := s.Field
	if field == "" {
		field = SortByMinPrice
	}
	if s.Descending {
		return string(field) + "_" + directionDesc
	}
	return string(field) + "_" + directionAsc
}

// ParseSort accepts "<field>_<asc|desc>" where field is minPrice, sku (or
// usageType) or regionCodes. The empty string is the default sort.
func ParseSort(value string) (SortSpec, error) {
	if value == "" {
		return DefaultSort(), nil
	}

	field, direction, ok := strings.Cut(value, "_")
	if !ok {
		return SortSpec{}, fmt.Errorf("%w: %q", ErrInvalidSort, value)
	}

	var spec SortSpec
	switch field {
	case string(SortByMinPrice):
		spec.Field = SortByMinPrice
	case string(SortByUsageType), "usageType":
		spec.Field = SortByUsageType
	case string(SortByRegionCodes):
		spec.Field = SortByRegionCodes
	default:
		return SortSpec{}, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, field)
	}

	switch direction {
	case directionAsc:
	case directionDesc:
		spec.Descending = true
	default:
		return SortSpec{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidSort, direction)
	}

	return spec, nil
}

// Sort returns a sorted copy of rows. The sort is stable, so ties keep the
// aggregation order.
func Sort(rows []domain.AggregatedRow, spec SortSpec) []domain.AggregatedRow {
	sorted := slices.Clone(rows)
	if sorted == nil {
		sorted = []domain.AggregatedRow{}
	}
	c := collate.New(language.English)

	slices.SortStableFunc(sorted, func(a, b domain.AggregatedRow) int {
		var result int
		switch spec.Field {
		case SortByUsageType:
			result = c.CompareString(a.UsageType, b.UsageType)
		case SortByRegionCodes:
			result = c.CompareString(a.JoinedRegionCodes(), b.JoinedRegionCodes())
		default:
			result = cmp.Compare(a.MinPrice, b.MinPrice)
		}
		if spec.Descending {
			return -result
		}
		return result
	})

	return sorted
}
