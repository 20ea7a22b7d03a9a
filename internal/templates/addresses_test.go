package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/adressen/internal/model"
	"github.com/jjenkins/adressen/internal/table"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func testView(n int) AddressView {
	records := make([]model.Address, n)
	for i := range records {
		records[i] = model.Address{
			PostalCode:  fmt.Sprintf("181%02d", i%4),
			District:    "Südstadt",
			Street:      fmt.Sprintf("Weg %d", i),
			HouseNumber: "1",
		}
	}
	m := table.New(table.AddressColumns(), 10).Update(table.DataLoaded{
		Records:    records,
		CapturedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local),
	})
	return AddressView{Model: m, Path: "/addresses", Debounce: 300 * time.Millisecond}
}

func TestAddressesPage(t *testing.T) {
	html := render(t, AddressesPage(testView(3)))

	assert.True(t, strings.HasPrefix(html, "<!doctype html><html lang=\"de\">"))
	assert.Contains(t, html, "<title>Adressenliste</title>")
	assert.Contains(t, html, "<h1>Adressenliste</h1>")
	assert.Contains(t, html, "3 Adressen, Stand 01.03.2024 12:00")
	assert.Contains(t, html, "<th style=\"width: 80px;\">Post&shy;leit&shy;zahl<input id=\"filter-postleitzahl\"")
	assert.Contains(t, html, "<abbr title=\"OpenStreetMap\">OSM</abbr>")
	assert.Contains(t, html, "hx-trigger=\"input changed delay:300ms\"")
	assert.Contains(t, html, "<input id=\"address-filters-current\" type=\"hidden\" name=\"current\" value=\"1\">")
	assert.NotContains(t, html, "hx-swap-oob")
	assert.True(t, strings.HasSuffix(html, "</div></div></div></body></html>"))
}

func TestSourceStatus(t *testing.T) {
	captured := time.Date(2024, 3, 1, 8, 5, 0, 0, time.Local)

	tests := []struct {
		name  string
		src   table.Source
		total int
		want  string
	}{
		{
			name: "loading",
			src:  table.Source{},
			want: "wird geladen",
		},
		{
			name: "failed",
			src:  table.Source{Err: errors.New("offline")},
			want: "<p class=\"text-danger\" role=\"status\">Die Adressenliste konnte nicht geladen werden.</p>",
		},
		{
			name:  "fresh",
			src:   table.Source{Loaded: true, CapturedAt: captured},
			total: 61234,
			want:  "61.234 Adressen, Stand 01.03.2024 08:05",
		},
		{
			name:  "stale",
			src:   table.Source{Loaded: true, CapturedAt: captured, Stale: true},
			total: 12,
			want:  "(veraltet, Aktualisierung fehlgeschlagen)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, render(t, SourceStatus(tt.src, tt.total)), tt.want)
		})
	}
}

func TestAddressTableUpdate_SkipsTriggeringInput(t *testing.T) {
	v := testView(25)
	v.Model = v.Model.Update(table.SetFiltersMsg{Filters: table.FilterState{table.ColStreet: "Weg 1"}})

	html := render(t, AddressTableUpdate(v, string(table.ColStreet)))

	assert.True(t, strings.HasPrefix(html, "<tbody id=\"address-rows\"><tr><td"))
	assert.Contains(t, html, "<nav id=\"address-pager\" class=\"d-flex align-items-center justify-content-end gap-3\" hx-swap-oob=\"true\">")
	assert.Contains(t, html, "value=\"1\" hx-swap-oob=\"true\">")
	assert.Contains(t, html, "id=\"filter-postleitzahl\"")
	assert.Contains(t, html, "id=\"filter-gemeindeteil_name\"")
	assert.NotContains(t, html, "id=\"filter-strasse_name\"")
	assert.NotContains(t, html, "<html")
}

func TestRows_EscapesCells(t *testing.T) {
	m := table.New(table.AddressColumns(), 10).Update(table.DataLoaded{Records: []model.Address{
		{PostalCode: "18055", District: "Stadtmitte", Street: "<b>Markt</b>", HouseNumber: "1"},
	}})

	html := render(t, Rows(m))

	assert.Contains(t, html, "<td style=\"hyphens: auto\">&lt;b&gt;Markt&lt;/b&gt;</td>")
	assert.Contains(t, html, "<a href=\"https://www.openstreetmap.org/search?query=")
	assert.Contains(t, html, "Öffnen&nbsp;↗</a>")
	assert.NotContains(t, html, "<b>")
}

func TestPager(t *testing.T) {
	v := testView(25)
	v.Model = v.Model.Update(table.NextPageMsg{})

	html := render(t, Pager(v, false))

	assert.Contains(t, html, "<p>Seite 2 von 3</p>")
	prev := PageURL("/addresses", v.Model.Filters(), 0)
	assert.Contains(t, html, fmt.Sprintf("aria-label=\"Zurück\" href=\"%s\" hx-get=\"%s\"", prev, prev))
	assert.Contains(t, html, "aria-label=\"Weiter\" href=\"/addresses?page=3\"")
}

func TestPager_DisabledAtBounds(t *testing.T) {
	html := render(t, Pager(testView(3), false))

	assert.Contains(t, html, "<p>Seite 1 von 1</p>")
	assert.Equal(t, 2, strings.Count(html, "<li class=\"page-item disabled\">"))
	assert.NotContains(t, html, "href=")
}

func TestPageURL(t *testing.T) {
	filters := table.FilterState{table.ColPostalCode: "18055", table.ColStreet: "Am Strom"}

	assert.Equal(t, "/addresses?page=1&postleitzahl=18055&strasse_name=Am+Strom", PageURL("/addresses", filters, 0))
	assert.Equal(t, "/addresses?page=4", PageURL("/addresses", nil, 3))
}
