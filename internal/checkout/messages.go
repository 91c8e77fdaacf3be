package checkout

import (
	"github.com/alexivanou/checkout-address/internal/autocomplete"
	"github.com/alexivanou/checkout-address/internal/model"
)

// Form field names, used both as Set keys and as error keys
const (
	FieldCity          = "city"
	FieldOffice        = "office"
	FieldQuarter       = "quarter"
	FieldStreet        = "street"
	FieldAddress       = "address"
	FieldAddress1      = "address_1"
	FieldPostalCode    = "postal_code"
	FieldStreetNumber  = "street_number"
	FieldBlok          = "blok"
	FieldEntrance      = "entrance"
	FieldFloor         = "floor"
	FieldApartment     = "apartment"
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldCompany       = "company"
	FieldPhone         = "phone"
	FieldEmail         = "email"
	// FieldSameAsBilling takes "true" or "false"
	FieldSameAsBilling = "same_as_billing"
)

const (
	msgSelectCity          = "Please select a city from the list"
	msgSelectOffice        = "Please select an office from the list"
	msgLocationRequired    = "Please select at least a street or quarter"
	msgStreetRequired      = "Required if quarter not provided"
	msgQuarterRequired     = "Required if street not provided"
	msgBuildingRequired    = "Please enter at least a number or blok"
	msgNumberRequired      = "Required if blok not provided"
	msgBlokRequired        = "Required if number not provided"
	msgAddressRequired     = "Address is required"
	msgCityRequired        = "City is required"
	msgPostalCodeRequired  = "Postal code is required"
	msgPostalCodeFormat    = "Postal code must be 4 digits"
	msgPhoneInvalid        = "Please enter a valid phone number"
	msgOfficeNameRequired  = "Office name is required"
	msgOfficeCodeRequired  = "The selected office has no courier code"
	msgCityIDRequired      = "The selected city has no courier id"
	msgOfficeCityMismatch  = "The selected office is not in the selected city"
	msgQuarterCityMismatch = "The selected quarter is not in the selected city"
	msgStreetCityMismatch  = "The selected street is not in the selected city"
)

// SearchMessages returns the shopper-facing search messages for a lookup kind
func SearchMessages(kind model.LocationKind) autocomplete.Messages {
	switch kind {
	case model.KindCity:
		return autocomplete.Messages{
			NoResults: "Няма намерени градове. Опитайте със друг термин.",
			Failed:    "Неудача при търсене на градове. Моля, опитайте отново.",
		}
	case model.KindOffice:
		return autocomplete.Messages{
			NoResults: "Няма намерени офиси. Опитайте със друг термин.",
			Failed:    "Неудача при търсене на офиси. Моля, опитайте отново.",
		}
	case model.KindQuarter:
		return autocomplete.Messages{
			NoResults: "Няма намерени квартали. Опитайте със друг термин.",
			Failed:    "Неудача при търсене на квартали. Моля, опитайте отново.",
		}
	case model.KindStreet:
		return autocomplete.Messages{
			NoResults: "Няма намерени улици. Опитайте със друг термин.",
			Failed:    "Неудача при търсене на улици. Моля, опитайте отново.",
		}
	}
	return autocomplete.Messages{}
}
