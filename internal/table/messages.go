package table

import (
	"time"

	"github.com/jjenkins/adressen/internal/model"
)

// Msg is any input the model reacts to in Update
type Msg interface{}

// DataLoaded replaces the data source with a freshly resolved record set
type DataLoaded struct {
	Records    []model.Address
	CapturedAt time.Time
	// FromCache is set when the records came from a stored entry without a fetch.
	FromCache bool
	// Stale is set when the fetch failed and an outdated entry was served instead.
	Stale bool
}

// DataFailed reports that no data could be loaded
type DataFailed struct {
	Err error
}

// SetFilterMsg sets (or with an empty Value, clears) one column filter
type SetFilterMsg struct {
	Column ColumnID
	Value  string
}

// SetFiltersMsg replaces every column filter at once. Columns not present
// in Filters are cleared.
type SetFiltersMsg struct {
	Filters FilterState
}

// ClearFiltersMsg removes all column filters
type ClearFiltersMsg struct{}

// NextPageMsg advances one page
type NextPageMsg struct{}

// PrevPageMsg goes back one page
type PrevPageMsg struct{}

// GotoPageMsg jumps to a zero-based page index, clamped to the valid range
type GotoPageMsg struct {
	Index int
}
