package table

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/adressen/internal/model"
)

func TestMapSearchURL(t *testing.T) {
	tests := []struct {
		name string
		addr model.Address
		want string
	}{
		{
			name: "plain",
			addr: blockweg,
			want: "https://www.openstreetmap.org/search?query=Blockweg%203%2C%2018147%20Gehlsdorf%2C%20Deutschland",
		},
		{
			name: "umlauts and letters in house number",
			addr: model.Address{PostalCode: "18119", District: "Warnemünde", Street: "Am Strom", HouseNumber: "3a"},
			want: "https://www.openstreetmap.org/search?query=Am%20Strom%203a%2C%2018119%20Warnem%C3%BCnde%2C%20Deutschland",
		},
		{
			name: "characters left alone by encodeURIComponent",
			addr: model.Address{PostalCode: "18055", District: "Stadtmitte", Street: "Platz (Nord)", HouseNumber: "1!"},
			want: "https://www.openstreetmap.org/search?query=Platz%20(Nord)%201!%2C%2018055%20Stadtmitte%2C%20Deutschland",
		},
		{
			name: "plus and ampersand are escaped",
			addr: model.Address{PostalCode: "18055", District: "A&B", Street: "C+D", HouseNumber: "1"},
			want: "https://www.openstreetmap.org/search?query=C%2BD%201%2C%2018055%20A%26B%2C%20Deutschland",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapSearchURL(tt.addr)
			assert.Equal(t, tt.want, got)

			u, err := url.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, MapSearchQuery(tt.addr), u.Query().Get("query"))
		})
	}
}
