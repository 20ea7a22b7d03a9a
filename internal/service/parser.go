package service

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/jjenkins/adressen/internal/model"
)

// ErrMalformedResponse is returned when a payload is not a JSON array of address objects
var ErrMalformedResponse = errors.New("malformed address list")

// addressFields are the object keys every record must carry, as strings
var addressFields = [4]string{"postleitzahl", "gemeindeteil_name", "strasse_name", "hausnummer"}

// ParseAddresses decodes the open-data address list. The whole payload is
// validated before anything is returned: on error the result is always nil.
func ParseAddresses(body []byte) ([]model.Address, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrMalformedResponse, root.Type)
	}

	items := root.Array()
	addresses := make([]model.Address, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformedResponse, i)
		}

		var values [4]string
		for j, field := range addressFields {
			v := item.Get(field)
			if v.Type != gjson.String {
				return nil, fmt.Errorf("%w: element %d: field %q missing or not a string", ErrMalformedResponse, i, field)
			}
			values[j] = v.Str
		}

		addresses = append(addresses, model.Address{
			PostalCode:  values[0],
			District:    values[1],
			Street:      values[2],
			HouseNumber: values[3],
		})
	}

	return addresses, nil
}

// ValidateAddresses reports whether body is a well-formed address list
func ValidateAddresses(body []byte) error {
	_, err := ParseAddresses(body)
	return err
}
