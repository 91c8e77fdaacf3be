package model

// AddressType selects which address form the checkout collects
type AddressType string

const (
	AddressTypeAddress AddressType = "address"
	AddressTypeOffice  AddressType = "office"
)

// ShippingOption is the shipping method chosen for the cart
type ShippingOption struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	ProviderID string              `json:"provider_id"`
	Type       *ShippingOptionType `json:"type,omitempty"`
}

// ShippingOptionType carries the method-type code ("office", "address", ...)
type ShippingOptionType struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Code        string `json:"code"`
}
