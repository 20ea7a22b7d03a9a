package table

import (
	"time"

	"github.com/jjenkins/adressen/internal/model"
)

// DefaultPageSize is the number of rows per page
const DefaultPageSize = 10

// FilterState maps a column to its current filter value
type FilterState map[ColumnID]string

// Source describes where the current data set came from
type Source struct {
	Loaded     bool
	CapturedAt time.Time
	FromCache  bool
	Stale      bool
	Err        error
}

// Model derives the visible table rows from a record set, the column
// filters and the page index. The derived row set and facet counts are
// rebuilt wholesale on every change.
type Model struct {
	columns  []Column
	pageSize int

	data      []model.Address
	filters   FilterState
	pageIndex int
	source    Source

	// folded holds the case-folded cells of each filterable column,
	// indexed like data. It is rebuilt only by SetData.
	folded map[ColumnID][]string

	filtered []model.Address
	facets   map[ColumnID]int
}

// New creates an empty model. A non-positive pageSize falls back to DefaultPageSize.
func New(columns []Column, pageSize int) Model {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	m := Model{
		columns:  columns,
		pageSize: pageSize,
		filters:  FilterState{},
	}
	m.recompute()
	return m
}

// Update applies msg and returns the resulting model. The receiver is left
// untouched, so a Model value can be shared between readers.
func (m Model) Update(msg Msg) Model {
	next := m.clone()

	switch msg := msg.(type) {
	case DataLoaded:
		next.source = Source{
			Loaded:     true,
			CapturedAt: msg.CapturedAt,
			FromCache:  msg.FromCache,
			Stale:      msg.Stale,
		}
		next.SetData(msg.Records)
	case DataFailed:
		// Whatever was shown before stays; a model that never loaded stays empty.
		next.source.Err = msg.Err
	case SetFilterMsg:
		next.SetFilter(msg.Column, msg.Value)
	case SetFiltersMsg:
		next.SetFilters(msg.Filters)
	case ClearFiltersMsg:
		next.ClearFilters()
	case NextPageMsg:
		next.NextPage()
	case PrevPageMsg:
		next.PreviousPage()
	case GotoPageMsg:
		next.SetPageIndex(msg.Index)
	}

	return next
}

func (m Model) clone() Model {
	filters := make(FilterState, len(m.filters))
	for k, v := range m.filters {
		filters[k] = v
	}
	m.filters = filters
	return m
}

// SetData replaces the whole data source
func (m *Model) SetData(records []model.Address) {
	m.data = records
	m.folded = make(map[ColumnID][]string)
	for _, c := range m.columns {
		if !c.CanFilter() {
			continue
		}
		cells := make([]string, len(records))
		for i, row := range records {
			cells[i] = foldCase(c.Value(row))
		}
		m.folded[c.ID] = cells
	}
	m.recompute()
}

// SetFilter sets the filter for a column. An empty value clears it. Values
// for unknown or non-filterable columns are ignored. The page index is kept
// unless it falls past the last page, in which case it moves to the last page.
func (m *Model) SetFilter(id ColumnID, value string) {
	col, ok := m.column(id)
	if !ok || !col.CanFilter() {
		return
	}
	if value == "" {
		delete(m.filters, id)
	} else {
		m.filters[id] = value
	}
	m.recompute()
}

// SetFilters replaces all column filters at once with a single recompute.
// Columns missing from filters are cleared. Unknown, non-filterable and
// empty entries are ignored like in SetFilter.
func (m *Model) SetFilters(filters FilterState) {
	next := make(FilterState, len(filters))
	for id, value := range filters {
		col, ok := m.column(id)
		if !ok || !col.CanFilter() || value == "" {
			continue
		}
		next[id] = value
	}
	m.filters = next
	m.recompute()
}

// ClearFilters removes every column filter
func (m *Model) ClearFilters() {
	m.filters = FilterState{}
	m.recompute()
}

// Filter returns the current filter value of a column
func (m Model) Filter(id ColumnID) string {
	return m.filters[id]
}

// Filters returns a copy of the active filters
func (m Model) Filters() FilterState {
	out := make(FilterState, len(m.filters))
	for k, v := range m.filters {
		out[k] = v
	}
	return out
}

func (m Model) Columns() []Column {
	return m.columns
}

func (m Model) Source() Source {
	return m.source
}

func (m Model) PageSize() int {
	if m.pageSize <= 0 {
		return DefaultPageSize
	}
	return m.pageSize
}

func (m Model) PageIndex() int {
	return m.pageIndex
}

// PageCount returns the number of pages, never less than one
func (m Model) PageCount() int {
	size := m.PageSize()
	n := (len(m.filtered) + size - 1) / size
	if n < 1 {
		return 1
	}
	return n
}

func (m Model) CanPreviousPage() bool {
	return m.pageIndex > 0
}

func (m Model) CanNextPage() bool {
	return m.pageIndex < m.PageCount()-1
}

// NextPage advances one page; it is a no-op on the last page
func (m *Model) NextPage() {
	m.SetPageIndex(m.pageIndex + 1)
}

// PreviousPage goes back one page; it is a no-op on the first page
func (m *Model) PreviousPage() {
	m.SetPageIndex(m.pageIndex - 1)
}

// SetPageIndex moves to page i, clamped to [0, PageCount()-1]
func (m *Model) SetPageIndex(i int) {
	m.pageIndex = i
	m.clampPage()
}

// TotalRows returns the size of the unfiltered data set
func (m Model) TotalRows() int {
	return len(m.data)
}

// FilteredRows returns all rows passing the filters, in source order
func (m Model) FilteredRows() []model.Address {
	return m.filtered
}

// VisibleRows returns the rows of the current page
func (m Model) VisibleRows() []model.Address {
	size := m.PageSize()
	start := m.pageIndex * size
	if start >= len(m.filtered) {
		return []model.Address{}
	}
	end := start + size
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	return m.filtered[start:end]
}

// FacetedUniqueValues returns the number of distinct values of a column
// among the rows that pass the filters of all other columns
func (m Model) FacetedUniqueValues(id ColumnID) int {
	return m.facets[id]
}

func (m Model) column(id ColumnID) (Column, bool) {
	for _, c := range m.columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

type activeFilter struct {
	id    ColumnID
	mode  FilterMode
	cells []string
	// folded filter text
	needle string
}

func (m *Model) activeFilters() []activeFilter {
	var active []activeFilter
	for _, c := range m.columns {
		v, ok := m.filters[c.ID]
		if !ok || v == "" || !c.CanFilter() {
			continue
		}
		active = append(active, activeFilter{id: c.ID, mode: c.Filter, cells: m.folded[c.ID], needle: foldCase(v)})
	}
	return active
}

// recompute rebuilds the filtered rows and facet counts, then clamps the page
func (m *Model) recompute() {
	active := m.activeFilters()

	filtered := make([]model.Address, 0, len(m.data))
	facetSets := make(map[ColumnID]map[string]struct{})
	for _, c := range m.columns {
		if c.Value != nil {
			facetSets[c.ID] = make(map[string]struct{})
		}
	}

	for r, row := range m.data {
		// failed is the index of the single failing filter, -1 if all pass,
		// -2 if two or more fail.
		failed := -1
		for i, f := range active {
			if f.mode.Match(f.cells[r], f.needle) {
				continue
			}
			if failed == -1 {
				failed = i
			} else {
				failed = -2
				break
			}
		}

		if failed == -1 {
			filtered = append(filtered, row)
		}

		for _, c := range m.columns {
			set, ok := facetSets[c.ID]
			if !ok {
				continue
			}
			// A row counts towards a column's facets if it passes every
			// filter except possibly that column's own.
			if failed == -1 || (failed >= 0 && active[failed].id == c.ID) {
				set[c.Value(row)] = struct{}{}
			}
		}
	}

	facets := make(map[ColumnID]int, len(facetSets))
	for id, set := range facetSets {
		facets[id] = len(set)
	}

	m.filtered = filtered
	m.facets = facets
	m.clampPage()
}

func (m *Model) clampPage() {
	if last := m.PageCount() - 1; m.pageIndex > last {
		m.pageIndex = last
	}
	if m.pageIndex < 0 {
		m.pageIndex = 0
	}
}
