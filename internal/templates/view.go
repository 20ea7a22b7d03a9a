package templates

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/jjenkins/adressen/internal/table"
)

// Element IDs shared between the full page and partial updates
const (
	TableID  = "address-table"
	RowsID   = "address-rows"
	PagerID  = "address-pager"
	FormID   = "address-filters"
	inputPfx = "filter-"
)

// CurrentPageParam carries the page the filter form was rendered on, so a
// filter change keeps (and clamps) the current page instead of resetting it
const CurrentPageParam = "current"

// PageParam is the 1-based page requested by the pager links
const PageParam = "page"

// AddressView is everything the address table needs to render
type AddressView struct {
	Model    table.Model
	Path     string
	Debounce time.Duration
}

// PageURL returns the link to a zero-based page index with the given filters
func PageURL(path string, filters table.FilterState, index int) string {
	q := url.Values{}
	for id, value := range filters {
		q.Set(string(id), value)
	}
	q.Set(PageParam, strconv.Itoa(index+1))
	return path + "?" + q.Encode()
}

// formatCount formats n with German thousands separators
func formatCount(n int) string {
	return humanize.FormatInteger("#.###,", n)
}

func columnWidth(col table.Column) templ.SafeCSS {
	return templ.SafeCSS(fmt.Sprintf("width: %dpx;", col.Width))
}

func inputMode(col table.Column) string {
	if col.InputMode == "" {
		return "text"
	}
	return col.InputMode
}

func filterPlaceholder(m table.Model, id table.ColumnID) string {
	return fmt.Sprintf("Suchen… (%d)", m.FacetedUniqueValues(id))
}

func filterTrigger(debounce time.Duration) string {
	return fmt.Sprintf("input changed delay:%dms", debounce.Milliseconds())
}

func stand(src table.Source) string {
	return src.CapturedAt.Local().Format("02.01.2006 15:04")
}
