package checkout

import (
	"errors"
	"strings"

	"github.com/alexivanou/checkout-address/internal/model"
	"github.com/go-playground/validator/v10"
)

// ValidationOutcome is the result of validating a form or address
type ValidationOutcome struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

func outcome(errs map[string]string) ValidationOutcome {
	if len(errs) == 0 {
		return ValidationOutcome{Valid: true}
	}
	return ValidationOutcome{Valid: false, Errors: errs}
}

// Selection is what the provider validator inspects
type Selection struct {
	Address model.FlatAddress
	City    *model.CityResult
	Office  *model.OfficeResult
	Quarter *model.QuarterResult
	Street  *model.StreetResult
}

// AddressValidator checks courier-specific address rules
type AddressValidator struct {
	v *validator.Validate
}

type officeShape struct {
	OfficeName string `validate:"required"`
}

type econtOffice struct {
	OfficeCode string `validate:"required_without=OfficeID"`
	OfficeID   int    `validate:"required_without=OfficeCode"`
}

type standardAddress struct {
	Address1   string `validate:"required"`
	City       string `validate:"required"`
	PostalCode string `validate:"required"`
}

// NewAddressValidator creates a validator with the "bgphone" rule registered
func NewAddressValidator() *AddressValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("bgphone", func(fl validator.FieldLevel) bool {
		return validPhone(fl.Field().String())
	})
	return &AddressValidator{v: v}
}

// ValidateOffice checks an office delivery. A city/office pair from different
// cities is rejected even when both are present.
func (av *AddressValidator) ValidateOffice(provider string, sel Selection) ValidationOutcome {
	errs := make(map[string]string)

	if sel.Office != nil {
		if av.v.Struct(officeShape{OfficeName: strings.TrimSpace(sel.Office.Data.OfficeName)}) != nil {
			errs[FieldOffice] = msgOfficeNameRequired
		}
		if sel.City != nil && sel.Office.Data.CityID != sel.City.Data.CityID {
			errs[FieldOffice] = msgOfficeCityMismatch
		}
	}

	if isEcont(provider) {
		if sel.Office != nil {
			shape := econtOffice{OfficeCode: strings.TrimSpace(sel.Office.Data.OfficeCode), OfficeID: sel.Office.Data.OfficeID}
			if av.v.Struct(shape) != nil {
				setOnce(errs, FieldOffice, msgOfficeCodeRequired)
			}
		}
		if sel.City != nil && av.v.Var(sel.City.Data.CityID, "required") != nil {
			setOnce(errs, FieldCity, msgCityIDRequired)
		}
	}

	av.validatePhone(sel.Address.Phone, errs)
	return outcome(errs)
}

// ValidateStandard checks a street delivery's flat address
func (av *AddressValidator) ValidateStandard(provider string, sel Selection) ValidationOutcome {
	errs := make(map[string]string)

	addr := standardAddress{
		Address1:   strings.TrimSpace(sel.Address.Address1),
		City:       strings.TrimSpace(sel.Address.City),
		PostalCode: strings.TrimSpace(sel.Address.PostalCode),
	}
	if err := av.v.Struct(addr); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				switch fe.StructField() {
				case "Address1":
					errs[FieldAddress1] = msgAddressRequired
				case "City":
					errs[FieldCity] = msgCityRequired
				case "PostalCode":
					errs[FieldPostalCode] = msgPostalCodeRequired
				}
			}
		}
	}

	if isEcont(provider) && addr.PostalCode != "" {
		if av.v.Var(addr.PostalCode, "numeric,len=4") != nil {
			errs[FieldPostalCode] = msgPostalCodeFormat
		}
	}

	if sel.City != nil {
		if sel.Quarter != nil && sel.Quarter.Data.CityID != sel.City.Data.CityID {
			errs[FieldQuarter] = msgQuarterCityMismatch
		}
		if sel.Street != nil && sel.Street.Data.CityID != sel.City.Data.CityID {
			errs[FieldStreet] = msgStreetCityMismatch
		}
	}

	av.validatePhone(sel.Address.Phone, errs)
	return outcome(errs)
}

func (av *AddressValidator) validatePhone(phone string, errs map[string]string) {
	if strings.TrimSpace(phone) == "" {
		return
	}
	if av.v.Var(phone, "bgphone") != nil {
		errs[FieldPhone] = msgPhoneInvalid
	}
}

func isEcont(provider string) bool {
	return strings.HasPrefix(strings.ToLower(provider), "econt")
}

func setOnce(errs map[string]string, key, msg string) {
	if _, ok := errs[key]; !ok {
		errs[key] = msg
	}
}
