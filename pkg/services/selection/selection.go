// Package selection holds the state of the pricing browser's pickers and the
// reducer that moves it forward. Every change is an Event; Reduce never
// mutates its input.
package selection

import "slices"

// SelectAllValue is the option value that stands for every available option.
const SelectAllValue = "__ALL__"

type Selection struct {
	Service          string
	Version          string
	Regions          []string
	Products         []string
	Duration         string
	ShowPricingTable bool
	ShowDiscounts    bool
	ShowGlobalSearch bool
}

// CanViewPricing reports whether every picker needed by the table has a value.
func (s Selection) CanViewPricing() bool {
	return s.Service != "" &&
		s.Version != "" &&
		len(s.Regions) > 0 &&
		len(s.Products) > 0 &&
		s.Duration != ""
}

type Event interface {
	apply(s Selection) Selection
}

type ServiceChanged struct{ Service string }

type VersionChanged struct{ Version string }

type RegionsChanged struct{ Regions []string }

type ProductsChanged struct{ Products []string }

type DurationChanged struct{ Duration string }

type ViewPricing struct{}

type ShowDiscounts struct{}

type ToggleGlobalSearch struct{}

func Reduce(s Selection, e Event) Selection {
	if e == nil {
		return s
	}
	return e.apply(s.clone())
}

func (s Selection) clone() Selection {
	s.Regions = slices.Clone(s.Regions)
	s.Products = slices.Clone(s.Products)
	return s
}

// hidePanels closes everything rendered from the current selection.
func (s Selection) hidePanels() Selection {
	s.ShowPricingTable = false
	s.ShowDiscounts = false
	s.ShowGlobalSearch = false
	return s
}

// resetFrom clears everything chosen after the service/version pickers.
func (s Selection) resetFrom() Selection {
	s.Regions = nil
	s.Products = nil
	s.Duration = ""
	return s.hidePanels()
}

func (e ServiceChanged) apply(s Selection) Selection {
	s = s.resetFrom()
	s.Service = e.Service
	return s
}

func (e VersionChanged) apply(s Selection) Selection {
	s = s.resetFrom()
	s.Version = e.Version
	return s
}

func (e RegionsChanged) apply(s Selection) Selection {
	s.Regions = slices.Clone(e.Regions)
	s.Products = nil
	s.Duration = ""
	return s.hidePanels()
}

func (e ProductsChanged) apply(s Selection) Selection {
	s.Products = slices.Clone(e.Products)
	return s.hidePanels()
}

func (e DurationChanged) apply(s Selection) Selection {
	s.Duration = e.Duration
	return s.hidePanels()
}

func (ViewPricing) apply(s Selection) Selection {
	if s.CanViewPricing() {
		s.ShowPricingTable = true
	}
	return s
}

func (ShowDiscounts) apply(s Selection) Selection {
	if s.Service != "" {
		s.ShowDiscounts = true
	}
	return s
}

func (ToggleGlobalSearch) apply(s Selection) Selection {
	if s.Service != "" {
		s.ShowGlobalSearch = !s.ShowGlobalSearch
	}
	return s
}

// ExpandSelectAll replaces a selection containing SelectAllValue with a
// snapshot of every available value.
func ExpandSelectAll(selected, available []string) []string {
	if slices.Contains(selected, SelectAllValue) {
		return slices.Clone(available)
	}
	return selected
}
