package handlers

import (
	"context"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jjenkins/adressen/internal/table"
	"github.com/jjenkins/adressen/internal/templates"
)

// AddressesPath is the route of the address table
const AddressesPath = "/addresses"

// Loader produces a table.DataLoaded or table.DataFailed event
type Loader interface {
	Load(ctx context.Context) table.Msg
}

// AddressesHandler renders the address table. A full page load resolves the
// data through the loader first; htmx requests only re-filter and re-page
// the data already loaded.
func AddressesHandler(loader Loader, dataset *Dataset, debounce time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		isHTMX := c.Get("HX-Request") == "true"

		if !isHTMX {
			dataset.Apply(loader.Load(c.UserContext()))
		}

		m := ApplyQuery(dataset.Snapshot(), c)
		view := templates.AddressView{
			Model:    m,
			Path:     AddressesPath,
			Debounce: debounce,
		}

		// Check if this is an HTMX request for just the table body
		if isHTMX {
			page := templates.AddressTableUpdate(view, c.Get("HX-Trigger-Name"))
			handler := adaptor.HTTPHandler(templ.Handler(page))
			return handler(c)
		}

		page := templates.AddressesPage(view)
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}

// ApplyQuery applies the filter and page query parameters to m. The page
// link parameter wins over the page the filter form was rendered on.
func ApplyQuery(m table.Model, c *fiber.Ctx) table.Model {
	filters := table.FilterState{}
	for _, col := range m.Columns() {
		if col.CanFilter() {
			filters[col.ID] = c.Query(string(col.ID))
		}
	}
	m = m.Update(table.SetFiltersMsg{Filters: filters})

	page := c.QueryInt(templates.PageParam, 0)
	if page <= 0 {
		page = c.QueryInt(templates.CurrentPageParam, 1)
	}
	return m.Update(table.GotoPageMsg{Index: page - 1})
}
