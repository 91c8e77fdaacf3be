// Package checkout composes and validates the shipping address of a checkout.
package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexivanou/checkout-address/internal/model"
)

const countryCode = "bg"

var (
	// ErrUnknownField is returned by Set for a field the form does not have
	ErrUnknownField = errors.New("unknown form field")
	// ErrFieldNotInMode is returned when a field does not belong to the form's address type
	ErrFieldNotInMode = errors.New("field is not used by this address type")
	// ErrInvalidValue is returned by Set for a value the field cannot hold
	ErrInvalidValue = errors.New("invalid field value")
)

// Form is the shipping address form of one checkout.
//
// In office mode address_1 is the selected office's name and address_2 and
// province stay empty. In address mode address_1, address_2 and province are
// recomposed from the selections and building fields after every change.
// Form is not safe for concurrent use.
type Form struct {
	mode      model.AddressType
	provider  string
	validator *AddressValidator

	address       model.FlatAddress
	details       model.AddressDetails
	email         string
	sameAsBilling bool

	city    *model.CityResult
	office  *model.OfficeResult
	quarter *model.QuarterResult
	street  *model.StreetResult

	errors map[string]string
}

// NewForm creates an empty form
func NewForm(mode model.AddressType, provider string, v *AddressValidator) *Form {
	if mode != model.AddressTypeOffice {
		mode = model.AddressTypeAddress
	}
	if v == nil {
		v = NewAddressValidator()
	}
	return &Form{
		mode:      mode,
		provider:  provider,
		validator:     v,
		address:       model.FlatAddress{CountryCode: countryCode},
		sameAsBilling: true,
		errors:        make(map[string]string),
	}
}

// Prefill copies an address already stored on the cart. The first non-empty
// email wins, so the cart's email can fall back to the customer's.
//
// The courier fields of an office form are not taken over: they belong to
// the office picked in this form.
func (f *Form) Prefill(addr *model.FlatAddress, emails ...string) {
	if addr != nil {
		f.address.FirstName = addr.FirstName
		f.address.LastName = addr.LastName
		f.address.Address1 = addr.Address1
		f.address.Address2 = addr.Address2
		f.address.Company = addr.Company
		f.address.PostalCode = addr.PostalCode
		f.address.City = addr.City
		f.address.Province = addr.Province
		f.address.Phone = addr.Phone
	}
	for _, email := range emails {
		if email = strings.TrimSpace(email); email != "" {
			f.email = email
			break
		}
	}
	if f.mode == model.AddressTypeOffice {
		f.composeOffice()
	}
}

// SameAddress reports whether a billing address matches the shipping address
// on the fields a shopper sees. A missing address counts as a match.
func SameAddress(shipping, billing *model.FlatAddress) bool {
	if shipping == nil || billing == nil {
		return true
	}
	a, b := *shipping, *billing
	return a.FirstName == b.FirstName &&
		a.LastName == b.LastName &&
		a.Address1 == b.Address1 &&
		a.Company == b.Company &&
		a.PostalCode == b.PostalCode &&
		a.City == b.City &&
		strings.EqualFold(a.CountryCode, b.CountryCode) &&
		a.Province == b.Province &&
		a.Phone == b.Phone
}

// SetSameAsBilling sets whether the cart's billing address follows the shipping address
func (f *Form) SetSameAsBilling(same bool) { f.sameAsBilling = same }

func (f *Form) Mode() model.AddressType       { return f.mode }
func (f *Form) Provider() string              { return f.provider }
func (f *Form) Email() string                 { return f.email }
func (f *Form) SameAsBilling() bool           { return f.sameAsBilling }
func (f *Form) Details() model.AddressDetails { return f.details }
func (f *Form) City() *model.CityResult       { return f.city }
func (f *Form) Office() *model.OfficeResult   { return f.office }
func (f *Form) Quarter() *model.QuarterResult { return f.quarter }
func (f *Form) Street() *model.StreetResult   { return f.street }

// Address returns the composed flat address
func (f *Form) Address() model.FlatAddress {
	addr := f.address
	addr.CountryCode = countryCode
	return addr
}

// Errors returns the field errors of the last validation and later edits
func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// SelectCity sets or clears the city. Dependent selections from another city
// are cleared together with their errors.
func (f *Form) SelectCity(city *model.CityResult) {
	f.city = clone(city)
	delete(f.errors, FieldCity)

	if f.office != nil && !sameCity(f.office.Data.CityID, city) {
		f.office = nil
		delete(f.errors, FieldOffice)
	}
	if f.quarter != nil && !sameCity(f.quarter.Data.CityID, city) {
		f.quarter = nil
		delete(f.errors, FieldQuarter)
	}
	if f.street != nil && !sameCity(f.street.Data.CityID, city) {
		f.street = nil
		delete(f.errors, FieldStreet)
	}

	if city != nil {
		f.address.City = city.Data.CityName
		f.address.PostalCode = city.Data.PostalCode
	} else {
		f.address.City = ""
		f.address.PostalCode = ""
	}

	if f.mode == model.AddressTypeOffice {
		f.composeOffice()
	} else {
		f.compose()
	}
}

// SelectOffice sets or clears the pickup office
func (f *Form) SelectOffice(office *model.OfficeResult) error {
	if f.mode != model.AddressTypeOffice {
		return fmt.Errorf("%s: %w", FieldOffice, ErrFieldNotInMode)
	}
	f.office = clone(office)
	delete(f.errors, FieldOffice)
	f.composeOffice()
	return nil
}

// SelectQuarter sets or clears the quarter
func (f *Form) SelectQuarter(quarter *model.QuarterResult) error {
	if f.mode != model.AddressTypeAddress {
		return fmt.Errorf("%s: %w", FieldQuarter, ErrFieldNotInMode)
	}
	f.quarter = clone(quarter)
	delete(f.errors, FieldQuarter)
	delete(f.errors, FieldAddress)
	f.compose()
	return nil
}

// SelectStreet sets or clears the street
func (f *Form) SelectStreet(street *model.StreetResult) error {
	if f.mode != model.AddressTypeAddress {
		return fmt.Errorf("%s: %w", FieldStreet, ErrFieldNotInMode)
	}
	f.street = clone(street)
	delete(f.errors, FieldStreet)
	delete(f.errors, FieldAddress)
	f.compose()
	return nil
}

// Set updates a free-text field
func (f *Form) Set(name, value string) error {
	switch name {
	case FieldStreetNumber, FieldBlok, FieldEntrance, FieldFloor, FieldApartment:
		if f.mode != model.AddressTypeAddress {
			return fmt.Errorf("%s: %w", name, ErrFieldNotInMode)
		}
		f.setDetail(name, strings.TrimSpace(value))
		f.compose()
	case FieldFirstName:
		f.address.FirstName = value
	case FieldLastName:
		f.address.LastName = value
	case FieldCompany:
		f.address.Company = value
	case FieldPhone:
		f.address.Phone = NormalizePhone(value)
		delete(f.errors, FieldPhone)
	case FieldEmail:
		f.email = strings.TrimSpace(value)
	case FieldSameAsBilling:
		same, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s=%q: %w", name, value, ErrInvalidValue)
		}
		f.sameAsBilling = same
	default:
		return fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
	return nil
}

func (f *Form) setDetail(name, value string) {
	switch name {
	case FieldStreetNumber:
		f.details.StreetNumber = value
		f.clearBuildingErrors()
	case FieldBlok:
		f.details.Blok = value
		f.clearBuildingErrors()
	case FieldEntrance:
		f.details.Entrance = value
	case FieldFloor:
		f.details.Floor = value
	case FieldApartment:
		f.details.Apartment = value
	}
}

func (f *Form) clearBuildingErrors() {
	delete(f.errors, FieldAddress)
	delete(f.errors, FieldStreetNumber)
	delete(f.errors, FieldBlok)
}

// Validate runs the submission gate and records the field errors.
//
// Office deliveries need a city and an office picked from search results.
// Street deliveries need a street or quarter, and a number or blok. The
// courier's own rules are checked on top.
func (f *Form) Validate() ValidationOutcome {
	errs := make(map[string]string)
	sel := f.selection()

	if f.mode == model.AddressTypeOffice {
		if f.city == nil {
			errs[FieldCity] = msgSelectCity
		}
		if f.office == nil {
			errs[FieldOffice] = msgSelectOffice
		}
		merge(errs, f.validator.ValidateOffice(f.provider, sel))
	} else {
		hasLocation := f.street != nil || f.quarter != nil
		hasBuilding := strings.TrimSpace(f.details.StreetNumber) != "" || strings.TrimSpace(f.details.Blok) != ""

		switch {
		case !hasLocation:
			errs[FieldAddress] = msgLocationRequired
			errs[FieldStreet] = msgStreetRequired
			errs[FieldQuarter] = msgQuarterRequired
		case !hasBuilding:
			errs[FieldAddress] = msgBuildingRequired
			errs[FieldStreetNumber] = msgNumberRequired
			errs[FieldBlok] = msgBlokRequired
		}
		merge(errs, f.validator.ValidateStandard(f.provider, sel))
	}

	f.errors = errs
	return outcome(f.Errors())
}

// Submission builds the cart update, including the JSON metadata of every
// structured selection of the form's mode.
func (f *Form) Submission() (model.Submission, error) {
	metadata := make(map[string]string)
	add := func(key string, present bool, data any) error {
		if !present {
			return nil
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		metadata[key] = string(raw)
		return nil
	}

	if err := add(model.MetadataCity, f.city != nil, dataOf(f.city)); err != nil {
		return model.Submission{}, err
	}
	if f.mode == model.AddressTypeOffice {
		if err := add(model.MetadataOffice, f.office != nil, dataOf(f.office)); err != nil {
			return model.Submission{}, err
		}
	} else {
		if err := add(model.MetadataQuarter, f.quarter != nil, dataOf(f.quarter)); err != nil {
			return model.Submission{}, err
		}
		if err := add(model.MetadataStreet, f.street != nil, dataOf(f.street)); err != nil {
			return model.Submission{}, err
		}
	}

	sub := model.Submission{
		Email:           f.email,
		SameAsBilling:   f.sameAsBilling,
		ProviderID:      f.provider,
		AddressType:     f.mode,
		ShippingAddress: f.Address(),
	}
	if len(metadata) > 0 {
		sub.Metadata = metadata
	}
	return sub, nil
}

func (f *Form) selection() Selection {
	return Selection{
		Address: f.Address(),
		City:    f.city,
		Office:  f.office,
		Quarter: f.quarter,
		Street:  f.street,
	}
}

func (f *Form) compose() {
	f.address.Address1 = ComposeAddress1(f.street, f.quarter, f.details)
	f.address.Address2 = ComposeAddress2(f.details)
	if f.quarter != nil {
		f.address.Province = f.quarter.Data.QuarterName
	} else {
		f.address.Province = ""
	}
}

func (f *Form) composeOffice() {
	f.address.Address2 = ""
	f.address.Province = ""
	if f.office == nil {
		f.address.Address1 = ""
		return
	}
	f.address.Address1 = f.office.Data.OfficeName
	if f.office.Data.PostalCode != "" {
		f.address.PostalCode = f.office.Data.PostalCode
	}
}

func sameCity(cityID int, city *model.CityResult) bool {
	return city != nil && city.Data.CityID == cityID
}

func merge(dst map[string]string, o ValidationOutcome) {
	for k, v := range o.Errors {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func dataOf[T model.Named](r *model.SearchResult[T]) any {
	if r == nil {
		return nil
	}
	return r.Data
}

// FormSnapshot is the persisted state of a form
type FormSnapshot struct {
	Address model.FlatAddress    `json:"address"`
	Details model.AddressDetails `json:"details"`
	Email   string               `json:"email,omitempty"`
	// nil in drafts written before the billing toggle existed
	SameAsBilling *bool                `json:"same_as_billing,omitempty"`
	City          *model.CityResult    `json:"city,omitempty"`
	Office        *model.OfficeResult  `json:"office,omitempty"`
	Quarter       *model.QuarterResult `json:"quarter,omitempty"`
	Street        *model.StreetResult  `json:"street,omitempty"`
}

// Snapshot captures the form's state for a draft
func (f *Form) Snapshot() FormSnapshot {
	sameAsBilling := f.sameAsBilling
	return FormSnapshot{
		Address:       f.Address(),
		Details:       f.details,
		Email:         f.email,
		SameAsBilling: &sameAsBilling,
		City:          clone(f.city),
		Office:        clone(f.office),
		Quarter:       clone(f.quarter),
		Street:        clone(f.street),
	}
}

// RestoreForm rebuilds a form from a snapshot. Selections outside the mode
// are dropped and the courier fields are recomposed for the mode, so a draft
// saved under the other address type leaves nothing of its own behind.
func RestoreForm(mode model.AddressType, provider string, v *AddressValidator, snap FormSnapshot) *Form {
	f := NewForm(mode, provider, v)
	f.address = snap.Address
	f.address.CountryCode = countryCode
	f.email = snap.Email
	if snap.SameAsBilling != nil {
		f.sameAsBilling = *snap.SameAsBilling
	}
	f.city = clone(snap.City)

	if f.mode == model.AddressTypeOffice {
		f.office = clone(snap.Office)
		f.composeOffice()
		return f
	}
	f.details = snap.Details
	f.quarter = clone(snap.Quarter)
	f.street = clone(snap.Street)
	f.compose()
	return f
}
