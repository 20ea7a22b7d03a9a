package table

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jjenkins/adressen/internal/model"
)

// ColumnID identifies a table column. The IDs match the JSON field names of
// the open-data feed so they can be used directly as query parameters.
type ColumnID string

const (
	ColPostalCode  ColumnID = "postleitzahl"
	ColDistrict    ColumnID = "gemeindeteil_name"
	ColStreet      ColumnID = "strasse_name"
	ColHouseNumber ColumnID = "hausnummer"
	ColMapLink     ColumnID = "osm"
)

// FilterMode selects how a column's filter value is matched against a cell
type FilterMode int

const (
	// FilterDisabled columns render no filter input and ignore filter values
	FilterDisabled FilterMode = iota
	// FilterSubstring keeps rows whose cell contains the filter value
	FilterSubstring
	// FilterPrefix keeps rows whose cell starts with the filter value
	FilterPrefix
)

func (m FilterMode) String() string {
	switch m {
	case FilterSubstring:
		return "substring"
	case FilterPrefix:
		return "prefix"
	default:
		return "disabled"
	}
}

// Match reports whether cell passes filter. Both arguments must already be
// folded with foldCase. An empty filter matches everything.
func (m FilterMode) Match(cell, filter string) bool {
	if filter == "" {
		return true
	}
	switch m {
	case FilterSubstring:
		return strings.Contains(cell, filter)
	case FilterPrefix:
		return strings.HasPrefix(cell, filter)
	default:
		return true
	}
}

// foldCase normalises text for case-insensitive matching. NFC makes a
// decomposed "u" + U+0308 in the feed equal to a typed "ü".
func foldCase(s string) string {
	return norm.NFC.String(strings.ToLower(s))
}

// Column describes one table column
type Column struct {
	ID     ColumnID
	Header string
	// Width is a rendering hint in pixels; 0 lets the column flex.
	Width int
	// InputMode is the HTML inputmode of the filter box ("text", "numeric").
	InputMode string
	Filter    FilterMode
	// Value extracts the cell text. Display-only columns leave it nil.
	Value func(model.Address) string
}

// CanFilter reports whether the column accepts a filter value
func (c Column) CanFilter() bool {
	return c.Filter != FilterDisabled && c.Value != nil
}

// AddressColumns returns the column layout of the address list
func AddressColumns() []Column {
	return []Column{
		{
			ID:        ColPostalCode,
			Header:    "Postleitzahl",
			Width:     80,
			InputMode: "numeric",
			// Postal codes are typed left to right, so match on the prefix.
			Filter: FilterPrefix,
			Value:  func(a model.Address) string { return a.PostalCode },
		},
		{
			ID:        ColDistrict,
			Header:    "Gemeindeteil",
			InputMode: "text",
			Filter:    FilterSubstring,
			Value:     func(a model.Address) string { return a.District },
		},
		{
			ID:        ColStreet,
			Header:    "Straße",
			InputMode: "text",
			Filter:    FilterSubstring,
			Value:     func(a model.Address) string { return a.Street },
		},
		{
			ID:     ColHouseNumber,
			Header: "Hausnummer",
			Width:  80,
			Filter: FilterDisabled,
			Value:  func(a model.Address) string { return a.HouseNumber },
		},
		{
			ID:     ColMapLink,
			Header: "OSM",
			Width:  30,
			Filter: FilterDisabled,
		},
	}
}
