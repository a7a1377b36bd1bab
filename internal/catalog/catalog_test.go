package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"driveeasy-rental-backend/internal/domain"
)

func fleet() []domain.Car {
	return []domain.Car{
		{ID: "1", Name: "Corolla", Type: "Sedan", Brand: "Toyota", Year: 2021, PricePerDayCents: 3500, Features: []string{"Bluetooth", "Cruise Control"}},
		{ID: "2", Name: "Wrangler", Type: "SUV", Brand: "Jeep", Year: 2019, PricePerDayCents: 6500, Features: []string{"4x4"}},
		{ID: "3", Name: "model 3", Type: "Electric", Brand: "Tesla", Year: 2023, PricePerDayCents: 8000},
		{ID: "4", Name: "Camry", Type: "Sedan", Brand: "Toyota", Year: 2021, PricePerDayCents: 3500},
	}
}

func ids(cars []domain.Car) []string {
	out := make([]string, len(cars))
	for i, c := range cars {
		out[i] = c.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	cars := fleet()

	t.Run("Empty query returns all in order", func(t *testing.T) {
		assert.Equal(t, []string{"1", "2", "3", "4"}, ids(Filter(cars, "")))
	})

	t.Run("Case-insensitive on each field", func(t *testing.T) {
		assert.Equal(t, []string{"1", "4"}, ids(Filter(cars, "TOYOTA")))
		assert.Equal(t, []string{"2"}, ids(Filter(cars, "suv")))
		assert.Equal(t, []string{"3"}, ids(Filter(cars, "Model")))
		assert.Equal(t, []string{"1"}, ids(Filter(cars, "cruise")))
	})

	t.Run("Result is a subset where every car matches", func(t *testing.T) {
		for _, q := range []string{"a", "o", "x", "zz", "Sed"} {
			got := Filter(cars, q)
			assert.LessOrEqual(t, len(got), len(cars))
			for _, c := range got {
				assert.True(t, Matches(c, strings.ToLower(q)), "q=%s id=%s", q, c.ID)
			}
		}
	})
}

func TestSort(t *testing.T) {
	cars := fleet()

	assert.Equal(t, []string{"1", "4", "2", "3"}, ids(Sort(cars, SortPriceAsc)))
	assert.Equal(t, []string{"3", "2", "1", "4"}, ids(Sort(cars, SortPriceDesc)))
	assert.Equal(t, []string{"2", "1", "4", "3"}, ids(Sort(cars, SortYearAsc)))
	assert.Equal(t, []string{"3", "1", "4", "2"}, ids(Sort(cars, SortYearDesc)))
	assert.Equal(t, []string{"4", "1", "3", "2"}, ids(Sort(cars, SortName)))

	// Input untouched.
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(cars))
}

func TestSearch(t *testing.T) {
	assert.Equal(t, []string{"4", "1"}, ids(Search(fleet(), "sedan", SortName)))
}

func TestParseSortKey(t *testing.T) {
	k, ok := ParseSortKey("year_desc")
	assert.True(t, ok)
	assert.Equal(t, SortYearDesc, k)
	_, ok = ParseSortKey("color")
	assert.False(t, ok)
}
