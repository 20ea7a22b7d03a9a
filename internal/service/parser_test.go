package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/adressen/internal/model"
)

func TestParseAddresses(t *testing.T) {
	body := []byte(`[
		{"postleitzahl":"18147","gemeindeteil_name":"Gehlsdorf","strasse_name":"Blockweg","hausnummer":"3","extra":1},
		{"postleitzahl":"18119","gemeindeteil_name":"Warnemünde","strasse_name":"Am Strom","hausnummer":"3a"}
	]`)

	got, err := ParseAddresses(body)
	require.NoError(t, err)
	assert.Equal(t, []model.Address{
		{PostalCode: "18147", District: "Gehlsdorf", Street: "Blockweg", HouseNumber: "3"},
		{PostalCode: "18119", District: "Warnemünde", Street: "Am Strom", HouseNumber: "3a"},
	}, got)
}

func TestParseAddresses_EmptyArray(t *testing.T) {
	got, err := ParseAddresses([]byte(` [ ] `))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseAddresses_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ``},
		{name: "not json", body: `<html>Wartung</html>`},
		{name: "truncated", body: `[{"postleitzahl":"18147"`},
		{name: "object instead of array", body: `{"postleitzahl":"18147"}`},
		{name: "element not an object", body: `[` + blockwegRecord + `, "oops"]`},
		{name: "missing field", body: `[{"postleitzahl":"18147","gemeindeteil_name":"Gehlsdorf","strasse_name":"Blockweg"}]`},
		{name: "numeric postal code", body: `[{"postleitzahl":18147,"gemeindeteil_name":"Gehlsdorf","strasse_name":"Blockweg","hausnummer":"3"}]`},
		{name: "null field", body: `[{"postleitzahl":"18147","gemeindeteil_name":null,"strasse_name":"Blockweg","hausnummer":"3"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddresses([]byte(tt.body))
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Nil(t, got, "no partial result")
		})
	}
}

const blockwegRecord = `{"postleitzahl":"18147","gemeindeteil_name":"Gehlsdorf","strasse_name":"Blockweg","hausnummer":"3"}`
