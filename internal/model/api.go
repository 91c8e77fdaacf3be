package model

// AddressTypeResponse is the body of GET /api/v1/shipping/address-type
type AddressTypeResponse struct {
	AddressType AddressType `json:"address_type"`
}

// OpenCheckoutRequest starts or resumes the address step of a cart.
//
// The shipping option is either sent resolved, or picked from
// AvailableOptions by the option id of the cart's last shipping method,
// falling back to the id kept in the cart metadata.
type OpenCheckoutRequest struct {
	ShippingOption         *ShippingOption  `json:"shipping_option,omitempty"`
	AvailableOptions       []ShippingOption `json:"available_options,omitempty"`
	ShippingMethodOptionID string           `json:"shipping_method_option_id,omitempty"`
	SelectedOptionID       string           `json:"selected_option_id,omitempty"`

	Address        *FlatAddress `json:"address,omitempty"`
	BillingAddress *FlatAddress `json:"billing_address,omitempty"`
	Email          string       `json:"email,omitempty"`
	// CustomerEmail is used when the cart has no email yet
	CustomerEmail string `json:"customer_email,omitempty"`
}

// QueryRequest carries a keystroke for an autocomplete field
type QueryRequest struct {
	Query string `json:"query"`
}

// SelectRequest picks a search result by id. An empty id clears the field.
type SelectRequest struct {
	ID string `json:"id"`
}

// FieldRequest sets a free-text form field
type FieldRequest struct {
	Value string `json:"value"`
}

// FieldState is the visible state of one autocomplete field
type FieldState[T any] struct {
	Query    string `json:"query"`
	Results  []T    `json:"results"`
	Loading  bool   `json:"loading"`
	Error    string `json:"error,omitempty"`
	Selected *T     `json:"selected,omitempty"`
}

// CheckoutState is the full address step of a cart as rendered to the client
type CheckoutState struct {
	CartID        string                     `json:"cart_id"`
	AddressType   AddressType                `json:"address_type"`
	ProviderID    string                     `json:"provider_id"`
	Email         string                     `json:"email"`
	SameAsBilling bool                       `json:"same_as_billing"`
	Address       FlatAddress                `json:"address"`
	Details       *AddressDetails            `json:"details,omitempty"`
	City          FieldState[CityResult]     `json:"city"`
	Office        *FieldState[OfficeResult]  `json:"office,omitempty"`
	Quarter       *FieldState[QuarterResult] `json:"quarter,omitempty"`
	Street        *FieldState[StreetResult]  `json:"street,omitempty"`
	Errors        map[string]string          `json:"errors,omitempty"`
}

// SubmitResponse is returned by the submit endpoint
type SubmitResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}
