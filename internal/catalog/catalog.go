package catalog

import (
	"cmp"
	"slices"
	"strings"

	"driveeasy-rental-backend/internal/domain"
)

type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortYearAsc   SortKey = "year_asc"
	SortYearDesc  SortKey = "year_desc"
	SortName      SortKey = "name"
)

func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(s); k {
	case SortNone, SortPriceAsc, SortPriceDesc, SortYearAsc, SortYearDesc, SortName:
		return k, true
	}
	return "", false
}

// Filter returns the cars whose name, type, brand or any feature contains q,
// ignoring case. The input slice is never modified.
func Filter(cars []domain.Car, q string) []domain.Car {
	if q == "" {
		return slices.Clone(cars)
	}
	needle := strings.ToLower(q)
	out := make([]domain.Car, 0, len(cars))
	for _, c := range cars {
		if Matches(c, needle) {
			out = append(out, c)
		}
	}
	return out
}

// Matches expects needle to be lower case already.
func Matches(c domain.Car, needle string) bool {
	if contains(c.Name, needle) || contains(c.Type, needle) || contains(c.Brand, needle) {
		return true
	}
	for _, f := range c.Features {
		if contains(f, needle) {
			return true
		}
	}
	return false
}

func contains(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}

// Sort returns a stably sorted copy of cars.
func Sort(cars []domain.Car, key SortKey) []domain.Car {
	out := slices.Clone(cars)
	var less func(a, b domain.Car) int
	switch key {
	case SortPriceAsc:
		less = func(a, b domain.Car) int { return cmp.Compare(a.PricePerDayCents, b.PricePerDayCents) }
	case SortPriceDesc:
		less = func(a, b domain.Car) int { return cmp.Compare(b.PricePerDayCents, a.PricePerDayCents) }
	case SortYearAsc:
		less = func(a, b domain.Car) int { return cmp.Compare(a.Year, b.Year) }
	case SortYearDesc:
		less = func(a, b domain.Car) int { return cmp.Compare(b.Year, a.Year) }
	case SortName:
		less = func(a, b domain.Car) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	default:
		return out
	}
	slices.SortStableFunc(out, less)
	return out
}

// Search applies Filter and then Sort.
func Search(cars []domain.Car, q string, key SortKey) []domain.Car {
	return Sort(Filter(cars, q), key)
}
