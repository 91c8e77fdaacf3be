package model

// FlatAddress is the address shape the cart API accepts.
//
// Province carries the quarter name for street deliveries; the cart API has no
// quarter field.
type FlatAddress struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address1    string `json:"address_1"`
	Address2    string `json:"address_2"`
	Company     string `json:"company"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
	Province    string `json:"province"`
	Phone       string `json:"phone"`
}

// AddressDetails holds the free-text building fields of a street address
type AddressDetails struct {
	StreetNumber string `json:"street_number"`
	Blok         string `json:"blok"`
	Entrance     string `json:"entrance"`
	Floor        string `json:"floor"`
	Apartment    string `json:"apartment"`
}

// Metadata keys sent alongside the flat address
const (
	MetadataCity    = "city_metadata"
	MetadataOffice  = "office_metadata"
	MetadataQuarter = "quarter_metadata"
	MetadataStreet  = "street_metadata"
)

// Submission is the final payload sent to the cart API
type Submission struct {
	Email           string            `json:"email"`
	SameAsBilling   bool              `json:"same_as_billing"`
	ProviderID      string            `json:"shipping_provider_id,omitempty"`
	AddressType     AddressType       `json:"address_type"`
	ShippingAddress FlatAddress       `json:"shipping_address"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}
