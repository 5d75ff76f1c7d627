package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"national number gets country code", "5512345678", "525512345678", false},
		{"plus prefix stripped", "+525512345678", "525512345678", false},
		{"separators stripped", "+52 (55) 1234-5678", "525512345678", false},
		{"leading zeros trimmed", "00525512345678", "525512345678", false},
		{"letters rejected", "55abc45678", "", true},
		{"too short", "12345", "", true},
		{"too long", "1234567890123456", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
