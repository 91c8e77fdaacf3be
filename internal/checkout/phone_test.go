package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0888123456", "+359888123456"},
		{"0888 123 456", "+359888123456"},
		{"+359 888 123 456", "+359888123456"},
		{"  ", ""},
		{"12", "12"},
		{"not a phone", "not a phone"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}
