// Package shipping maps the cart's shipping method onto the address form it needs.
package shipping

import "github.com/alexivanou/checkout-address/internal/model"

const officeCode = "office"

// AddressType returns AddressTypeOffice when the option's type code is exactly
// "office". Anything else, including a missing option or code, collects a
// street address.
func AddressType(option *model.ShippingOption) model.AddressType {
	if option != nil && option.Type != nil && option.Type.Code == officeCode {
		return model.AddressTypeOffice
	}
	return model.AddressTypeAddress
}

// ProviderID returns the courier provider of the option, or "" when unknown.
func ProviderID(option *model.ShippingOption) string {
	if option == nil {
		return ""
	}
	return option.ProviderID
}

// FindOption returns the option with the given id from the cart's available methods.
func FindOption(options []model.ShippingOption, id string) *model.ShippingOption {
	if id == "" {
		return nil
	}
	for i := range options {
		if options[i].ID == id {
			return &options[i]
		}
	}
	return nil
}
