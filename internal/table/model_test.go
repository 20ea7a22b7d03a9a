package table

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/adressen/internal/model"
)

var blockweg = model.Address{PostalCode: "18147", District: "Gehlsdorf", Street: "Blockweg", HouseNumber: "3"}

// sampleAddresses returns n addresses spread over three postal codes and districts
func sampleAddresses(n int) []model.Address {
	codes := []string{"18055", "18147", "18119"}
	districts := []string{"Stadtmitte", "Gehlsdorf", "Warnemünde"}
	out := make([]model.Address, n)
	for i := range out {
		out[i] = model.Address{
			PostalCode:  codes[i%3],
			District:    districts[i%3],
			Street:      fmt.Sprintf("Straße %d", i/3),
			HouseNumber: fmt.Sprintf("%d", i+1),
		}
	}
	return out
}

func loaded(records []model.Address) Model {
	return New(AddressColumns(), DefaultPageSize).Update(DataLoaded{Records: records})
}

func TestModel_Empty(t *testing.T) {
	m := New(AddressColumns(), 0)

	assert.Equal(t, DefaultPageSize, m.PageSize())
	assert.Equal(t, 1, m.PageCount())
	assert.Equal(t, 0, m.PageIndex())
	assert.Empty(t, m.VisibleRows())
	assert.NotNil(t, m.VisibleRows())
	assert.Equal(t, 0, m.FacetedUniqueValues(ColPostalCode))
	assert.False(t, m.CanNextPage())
	assert.False(t, m.CanPreviousPage())
	assert.False(t, m.Source().Loaded)

	m.NextPage()
	m.PreviousPage()
	assert.Equal(t, 0, m.PageIndex())
}

func TestModel_ZeroValueIsUsable(t *testing.T) {
	var m Model
	assert.Equal(t, 1, m.PageCount())
	assert.Empty(t, m.VisibleRows())
	m = m.Update(SetFilterMsg{Column: ColStreet, Value: "x"})
	assert.Equal(t, "", m.Filter(ColStreet))
}

func TestModel_PostalCodeScenario(t *testing.T) {
	m := loaded([]model.Address{blockweg})

	m = m.Update(SetFilterMsg{Column: ColPostalCode, Value: "181"})
	assert.Equal(t, []model.Address{blockweg}, m.VisibleRows())

	m = m.Update(SetFilterMsg{Column: ColPostalCode, Value: "999"})
	assert.Empty(t, m.VisibleRows())
	assert.Equal(t, 1, m.PageCount())
}

func TestModel_PostalCodeIsPrefixMatch(t *testing.T) {
	m := loaded([]model.Address{blockweg})

	// "147" is contained in "18147" but is not a prefix.
	m = m.Update(SetFilterMsg{Column: ColPostalCode, Value: "147"})
	assert.Empty(t, m.FilteredRows())
}

func TestModel_FilterCorrectness(t *testing.T) {
	data := sampleAddresses(95)

	tests := []struct {
		name   string
		column ColumnID
		value  string
		check  func(model.Address) bool
	}{
		{
			name:   "postal prefix",
			column: ColPostalCode,
			value:  "1814",
			check:  func(a model.Address) bool { return strings.HasPrefix(a.PostalCode, "1814") },
		},
		{
			name:   "district substring",
			column: ColDistrict,
			value:  "münde",
			check:  func(a model.Address) bool { return strings.Contains(a.District, "münde") },
		},
		{
			name:   "street substring",
			column: ColStreet,
			value:  "1",
			check:  func(a model.Address) bool { return strings.Contains(a.Street, "1") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loaded(data).Update(SetFilterMsg{Column: tt.column, Value: tt.value})

			want := 0
			for _, a := range data {
				if tt.check(a) {
					want++
				}
			}
			require.NotZero(t, want)
			assert.Len(t, m.FilteredRows(), want)
			for _, a := range m.FilteredRows() {
				assert.True(t, tt.check(a), "row %+v does not match %q", a, tt.value)
			}
		})
	}
}

func TestModel_FilterIsCaseInsensitive(t *testing.T) {
	m := loaded([]model.Address{blockweg}).Update(SetFilterMsg{Column: ColDistrict, Value: "GEHLS"})
	assert.Len(t, m.FilteredRows(), 1)

	m = m.Update(SetFilterMsg{Column: ColStreet, Value: "blockWEG"})
	assert.Len(t, m.FilteredRows(), 1)
}

func TestModel_FilterIgnoresUnicodeComposition(t *testing.T) {
	decomposed := model.Address{PostalCode: "18119", District: "Warnemu\u0308nde", Street: "Am Strom", HouseNumber: "1"}
	m := loaded([]model.Address{decomposed}).Update(SetFilterMsg{Column: ColDistrict, Value: "WARNEMÜ"})
	assert.Len(t, m.FilteredRows(), 1)
}

func TestModel_DisabledColumnIgnoresFilter(t *testing.T) {
	m := loaded(sampleAddresses(20))

	for _, id := range []ColumnID{ColHouseNumber, ColMapLink, ColumnID("nope")} {
		m = m.Update(SetFilterMsg{Column: id, Value: "zzz"})
		assert.Len(t, m.FilteredRows(), 20)
		assert.Equal(t, "", m.Filter(id))
	}
}

func TestModel_EmptyValueClearsFilter(t *testing.T) {
	m := loaded(sampleAddresses(30)).Update(SetFilterMsg{Column: ColPostalCode, Value: "18055"})
	require.Len(t, m.FilteredRows(), 10)

	m = m.Update(SetFilterMsg{Column: ColPostalCode, Value: ""})
	assert.Len(t, m.FilteredRows(), 30)
	assert.Empty(t, m.Filters())
}

func TestModel_ClearFilters(t *testing.T) {
	m := loaded(sampleAddresses(30)).
		Update(SetFilterMsg{Column: ColPostalCode, Value: "18055"}).
		Update(SetFilterMsg{Column: ColStreet, Value: "Straße 1"}).
		Update(ClearFiltersMsg{})

	assert.Len(t, m.FilteredRows(), 30)
	assert.Empty(t, m.Filters())
}

func TestModel_PaginationCoverage(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 95, 100} {
		t.Run(fmt.Sprintf("%d rows", n), func(t *testing.T) {
			data := sampleAddresses(n)
			m := loaded(data).Update(SetFilterMsg{Column: ColDistrict, Value: "e"})
			want := m.FilteredRows()

			var got []model.Address
			for i := 0; i < m.PageCount(); i++ {
				m = m.Update(GotoPageMsg{Index: i})
				require.Equal(t, i, m.PageIndex())
				rows := m.VisibleRows()
				assert.LessOrEqual(t, len(rows), m.PageSize())
				got = append(got, rows...)
			}

			if len(want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestModel_FilteredOrderIsSourceOrder(t *testing.T) {
	data := sampleAddresses(30)
	m := loaded(data).Update(SetFilterMsg{Column: ColPostalCode, Value: "18147"})

	var want []model.Address
	for _, a := range data {
		if a.PostalCode == "18147" {
			want = append(want, a)
		}
	}
	assert.Equal(t, want, m.FilteredRows())
}

func TestModel_PageNavigationClamps(t *testing.T) {
	m := loaded(sampleAddresses(25))
	require.Equal(t, 3, m.PageCount())

	m = m.Update(PrevPageMsg{})
	assert.Equal(t, 0, m.PageIndex())

	m = m.Update(NextPageMsg{}).Update(NextPageMsg{}).Update(NextPageMsg{}).Update(NextPageMsg{})
	assert.Equal(t, 2, m.PageIndex())
	assert.False(t, m.CanNextPage())
	assert.True(t, m.CanPreviousPage())
	assert.Len(t, m.VisibleRows(), 5)

	m = m.Update(GotoPageMsg{Index: -4})
	assert.Equal(t, 0, m.PageIndex())
	m = m.Update(GotoPageMsg{Index: 99})
	assert.Equal(t, 2, m.PageIndex())
}

func TestModel_NarrowingFilterClampsPage(t *testing.T) {
	m := loaded(sampleAddresses(90)).Update(GotoPageMsg{Index: 8})
	require.Equal(t, 8, m.PageIndex())

	// 30 rows remain: three pages.
	m = m.Update(SetFilterMsg{Column: ColPostalCode, Value: "18119"})
	assert.Equal(t, 3, m.PageCount())
	assert.Equal(t, 2, m.PageIndex())
	assert.NotEmpty(t, m.VisibleRows())

	// No match at all: one empty page.
	m = m.Update(SetFilterMsg{Column: ColPostalCode, Value: "0"})
	assert.Equal(t, 1, m.PageCount())
	assert.Equal(t, 0, m.PageIndex())
	assert.Empty(t, m.VisibleRows())
}

func TestModel_WideningFilterKeepsPage(t *testing.T) {
	m := loaded(sampleAddresses(90)).
		Update(SetFilterMsg{Column: ColPostalCode, Value: "18119"}).
		Update(GotoPageMsg{Index: 1})

	m = m.Update(SetFilterMsg{Column: ColPostalCode, Value: "181"})
	assert.Equal(t, 1, m.PageIndex())
}

func TestModel_FacetCounts(t *testing.T) {
	data := []model.Address{
		{PostalCode: "18147", District: "Gehlsdorf", Street: "Blockweg", HouseNumber: "3"},
		{PostalCode: "18146", District: "Gehlsdorf", Street: "Pressentinstraße", HouseNumber: "1"},
	}
	m := loaded(data)

	assert.Equal(t, 2, m.FacetedUniqueValues(ColPostalCode))
	assert.Equal(t, 1, m.FacetedUniqueValues(ColDistrict))
	assert.Equal(t, 2, m.FacetedUniqueValues(ColStreet))
	assert.Equal(t, 0, m.FacetedUniqueValues(ColMapLink))
}

func TestModel_FacetsIgnoreOwnFilter(t *testing.T) {
	m := loaded(sampleAddresses(30))
	require.Equal(t, 3, m.FacetedUniqueValues(ColPostalCode))
	require.Equal(t, 10, m.FacetedUniqueValues(ColStreet))

	m = m.Update(SetFilterMsg{Column: ColPostalCode, Value: "18055"})
	// The postal-code facet still counts every code.
	assert.Equal(t, 3, m.FacetedUniqueValues(ColPostalCode))
	// Other columns only see rows with postal code 18055.
	assert.Equal(t, 1, m.FacetedUniqueValues(ColDistrict))
	assert.Equal(t, 10, m.FacetedUniqueValues(ColStreet))

	m = m.Update(SetFilterMsg{Column: ColStreet, Value: "Straße 1"})
	// Only "Straße 1" matches, and it has all three postal codes.
	assert.Equal(t, 3, m.FacetedUniqueValues(ColPostalCode))
	// The street facet still ignores the street filter.
	assert.Equal(t, 10, m.FacetedUniqueValues(ColStreet))
	assert.Equal(t, 1, m.FacetedUniqueValues(ColDistrict))
	assert.Len(t, m.FilteredRows(), 1)
}

func TestModel_UpdateDoesNotMutateReceiver(t *testing.T) {
	before := loaded(sampleAddresses(30))
	after := before.Update(SetFilterMsg{Column: ColPostalCode, Value: "18055"}).Update(NextPageMsg{})

	assert.Equal(t, "", before.Filter(ColPostalCode))
	assert.Len(t, before.FilteredRows(), 30)
	assert.Equal(t, 0, before.PageIndex())
	assert.Equal(t, "18055", after.Filter(ColPostalCode))
}

func TestModel_DataLoadedReplacesAll(t *testing.T) {
	captured := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	m := loaded(sampleAddresses(50)).
		Update(SetFilterMsg{Column: ColDistrict, Value: "gehls"}).
		Update(GotoPageMsg{Index: 1})

	m = m.Update(DataLoaded{Records: []model.Address{blockweg}, CapturedAt: captured, FromCache: true})

	assert.Equal(t, 1, m.TotalRows())
	assert.Equal(t, []model.Address{blockweg}, m.VisibleRows())
	assert.Equal(t, 0, m.PageIndex())
	assert.Equal(t, "gehls", m.Filter(ColDistrict), "filters survive a reload")
	assert.Equal(t, Source{Loaded: true, CapturedAt: captured, FromCache: true}, m.Source())
}

func TestModel_DataFailed(t *testing.T) {
	err := errors.New("boom")

	m := New(AddressColumns(), 10).Update(DataFailed{Err: err})
	assert.Equal(t, 0, m.TotalRows())
	assert.Equal(t, 1, m.PageCount())
	assert.Empty(t, m.VisibleRows())
	assert.ErrorIs(t, m.Source().Err, err)

	m = loaded([]model.Address{blockweg}).Update(DataFailed{Err: err})
	assert.Equal(t, 1, m.TotalRows())
}

func TestModel_SetFiltersMatchesSequentialFilters(t *testing.T) {
	data := sampleAddresses(95)

	sequential := loaded(data).
		Update(SetFilterMsg{Column: ColPostalCode, Value: "1814"}).
		Update(SetFilterMsg{Column: ColStreet, Value: "straße 1"})
	bulk := loaded(data).Update(SetFiltersMsg{Filters: FilterState{
		ColPostalCode: "1814",
		ColDistrict:   "",
		ColStreet:     "straße 1",
	}})

	require.NotEmpty(t, bulk.FilteredRows())
	assert.Equal(t, sequential.FilteredRows(), bulk.FilteredRows())
	assert.Equal(t, sequential.Filters(), bulk.Filters())
	for _, id := range []ColumnID{ColPostalCode, ColDistrict, ColStreet} {
		assert.Equal(t, sequential.FacetedUniqueValues(id), bulk.FacetedUniqueValues(id), id)
	}
}

func TestModel_SetFiltersReplacesAndIgnores(t *testing.T) {
	m := loaded(sampleAddresses(30)).Update(SetFilterMsg{Column: ColDistrict, Value: "gehls"})
	require.Len(t, m.FilteredRows(), 10)

	m = m.Update(SetFiltersMsg{Filters: FilterState{
		ColPostalCode:    "18055",
		ColHouseNumber:   "zzz",
		ColMapLink:       "zzz",
		ColumnID("nope"): "zzz",
	}})

	assert.Equal(t, FilterState{ColPostalCode: "18055"}, m.Filters())
	assert.Len(t, m.FilteredRows(), 10)
	for _, a := range m.FilteredRows() {
		assert.Equal(t, "18055", a.PostalCode)
	}

	m = m.Update(SetFiltersMsg{})
	assert.Empty(t, m.Filters())
	assert.Len(t, m.FilteredRows(), 30)
}

func TestModel_SetFiltersKeepsPageClamped(t *testing.T) {
	m := loaded(sampleAddresses(95)).Update(GotoPageMsg{Index: 9})
	require.Equal(t, 9, m.PageIndex())

	m = m.Update(SetFiltersMsg{Filters: FilterState{ColPostalCode: "18055"}})
	assert.Equal(t, m.PageCount()-1, m.PageIndex())
}

func TestModel_NewDataRefoldsCells(t *testing.T) {
	m := loaded([]model.Address{blockweg}).Update(SetFilterMsg{Column: ColStreet, Value: "ring"})
	require.Empty(t, m.FilteredRows())

	ring := model.Address{PostalCode: "18057", District: "Reutershagen", Street: "Ringstraße", HouseNumber: "1"}
	m = m.Update(DataLoaded{Records: []model.Address{blockweg, ring}})
	assert.Equal(t, []model.Address{ring}, m.FilteredRows())
}

func BenchmarkModel_SetFilters(b *testing.B) {
	m := loaded(sampleAddresses(60000))
	filters := FilterState{ColPostalCode: "181", ColDistrict: "gehls", ColStreet: "straße 1"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Update(SetFiltersMsg{Filters: filters})
	}
}
