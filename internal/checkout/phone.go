package checkout

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const phoneRegion = "BG"

// NormalizePhone formats a Bulgarian phone number to E.164. Input that does not
// parse as a valid number is returned trimmed.
func NormalizePhone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, phoneRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

func validPhone(input string) bool {
	number, err := phonenumbers.Parse(strings.TrimSpace(input), phoneRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(number)
}
