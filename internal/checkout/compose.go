package checkout

import (
	"strings"

	"github.com/alexivanou/checkout-address/internal/model"
)

// Bulgarian address abbreviations
const (
	blokPrefix      = "бл. "
	entrancePrefix  = "вх. "
	floorPrefix     = "ет. "
	apartmentPrefix = "ап. "
)

// ComposeAddress1 builds the first address line of a street delivery.
// A selected street wins over a quarter; the street number and blok follow.
func ComposeAddress1(street *model.StreetResult, quarter *model.QuarterResult, details model.AddressDetails) string {
	parts := make([]string, 0, 3)
	switch {
	case street != nil:
		parts = append(parts, street.Data.StreetName)
	case quarter != nil:
		parts = append(parts, quarter.Data.QuarterName)
	}
	if details.StreetNumber != "" {
		parts = append(parts, details.StreetNumber)
	}
	if details.Blok != "" {
		parts = append(parts, blokPrefix+details.Blok)
	}
	return strings.Join(parts, " ")
}

// ComposeAddress2 builds "вх. 2, ет. 3, ап. 5", skipping empty parts
func ComposeAddress2(details model.AddressDetails) string {
	parts := make([]string, 0, 3)
	if details.Entrance != "" {
		parts = append(parts, entrancePrefix+details.Entrance)
	}
	if details.Floor != "" {
		parts = append(parts, floorPrefix+details.Floor)
	}
	if details.Apartment != "" {
		parts = append(parts, apartmentPrefix+details.Apartment)
	}
	return strings.Join(parts, ", ")
}
