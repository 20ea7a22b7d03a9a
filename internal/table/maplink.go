package table

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jjenkins/adressen/internal/model"
)

const (
	mapSearchURL  = "https://www.openstreetmap.org/search?query="
	countrySuffix = "Deutschland"
)

// MapSearchQuery returns the free-text OpenStreetMap query for an address
func MapSearchQuery(a model.Address) string {
	return fmt.Sprintf("%s %s, %s %s, %s", a.Street, a.HouseNumber, a.PostalCode, a.District, countrySuffix)
}

// MapSearchURL returns the OpenStreetMap search link for an address. The
// query is encoded as a single component, with spaces as %20.
func MapSearchURL(a model.Address) string {
	return mapSearchURL + encodeComponent(MapSearchQuery(a))
}

// encodeComponent percent-encodes s the way browsers encode a URI component.
// url.QueryEscape encodes spaces as "+" and escapes a few characters that
// encodeURIComponent leaves alone, so those are put back.
func encodeComponent(s string) string {
	return componentReplacer.Replace(url.QueryEscape(s))
}

var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)
