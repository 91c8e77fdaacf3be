package checkout

import (
	"testing"

	"github.com/alexivanou/checkout-address/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestAddressValidator_ValidateOffice(t *testing.T) {
	v := NewAddressValidator()

	tests := []struct {
		name     string
		provider string
		sel      Selection
		expected map[string]string
	}{
		{
			name:     "valid econt office",
			provider: "econt_econt",
			sel:      Selection{City: sofia(), Office: office(5, 41, "1127", "Офис Младост")},
		},
		{
			name:     "office without name",
			provider: "econt_econt",
			sel:      Selection{City: sofia(), Office: office(5, 41, "1127", "  ")},
			expected: map[string]string{FieldOffice: msgOfficeNameRequired},
		},
		{
			name:     "econt office without code or id",
			provider: "econt_econt",
			sel:      Selection{City: sofia(), Office: office(0, 41, "", "Офис")},
			expected: map[string]string{FieldOffice: msgOfficeCodeRequired},
		},
		{
			name:     "other couriers do not need an office code",
			provider: "speedy_speedy",
			sel:      Selection{City: sofia(), Office: office(0, 41, "", "Офис")},
		},
		{
			name:     "econt city without id",
			provider: "Econt",
			sel:      Selection{City: city(0, "София", "1000"), Office: office(5, 0, "1127", "Офис")},
			expected: map[string]string{FieldCity: msgCityIDRequired},
		},
		{
			name:     "office and city mismatch",
			provider: "econt_econt",
			sel:      Selection{City: sofia(), Office: office(5, 56, "4001", "Офис Пловдив")},
			expected: map[string]string{FieldOffice: msgOfficeCityMismatch},
		},
		{
			name:     "invalid phone",
			provider: "econt_econt",
			sel: Selection{
				Address: model.FlatAddress{Phone: "abc"},
				City:    sofia(),
				Office:  office(5, 41, "1127", "Офис"),
			},
			expected: map[string]string{FieldPhone: msgPhoneInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateOffice(tt.provider, tt.sel)
			assert.Equal(t, len(tt.expected) == 0, result.Valid)
			if len(tt.expected) == 0 {
				assert.Nil(t, result.Errors)
				return
			}
			assert.Equal(t, tt.expected, result.Errors)
		})
	}
}

func TestAddressValidator_ValidateStandard(t *testing.T) {
	v := NewAddressValidator()
	complete := model.FlatAddress{Address1: "ул. Витоша 12", City: "София", PostalCode: "1000"}

	tests := []struct {
		name     string
		provider string
		sel      Selection
		expected map[string]string
	}{
		{
			name:     "valid",
			provider: "econt_econt",
			sel:      Selection{Address: complete, City: sofia(), Street: street(7, 41, "ул. Витоша")},
		},
		{
			name:     "empty address",
			provider: "econt_econt",
			sel:      Selection{},
			expected: map[string]string{
				FieldAddress1:   msgAddressRequired,
				FieldCity:       msgCityRequired,
				FieldPostalCode: msgPostalCodeRequired,
			},
		},
		{
			name:     "econt postal code must have four digits",
			provider: "econt_econt",
			sel: Selection{Address: model.FlatAddress{
				Address1: "ул. Витоша 12", City: "София", PostalCode: "10000",
			}},
			expected: map[string]string{FieldPostalCode: msgPostalCodeFormat},
		},
		{
			name:     "other couriers accept any postal code",
			provider: "speedy_speedy",
			sel: Selection{Address: model.FlatAddress{
				Address1: "ул. Витоша 12", City: "София", PostalCode: "BG-1000",
			}},
		},
		{
			name:     "quarter from another city",
			provider: "econt_econt",
			sel:      Selection{Address: complete, City: sofia(), Quarter: quarter(3, 56, "Кършияка")},
			expected: map[string]string{FieldQuarter: msgQuarterCityMismatch},
		},
		{
			name:     "valid phone",
			provider: "econt_econt",
			sel: Selection{Address: model.FlatAddress{
				Address1: "ул. Витоша 12", City: "София", PostalCode: "1000", Phone: "+359888123456",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateStandard(tt.provider, tt.sel)
			assert.Equal(t, len(tt.expected) == 0, result.Valid)
			if len(tt.expected) == 0 {
				assert.Nil(t, result.Errors)
				return
			}
			assert.Equal(t, tt.expected, result.Errors)
		})
	}
}
