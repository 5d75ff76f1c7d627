package phone

import (
	"errors"
	"strings"
)

var ErrInvalid = errors.New("invalid phone number")

// DefaultCountryCode is prepended to national numbers that carry no
// country prefix of their own.
const DefaultCountryCode = "52"

// Normalize converts a phone number to the country-coded numeric form the
// messaging API expects: digits only, country code first, no leading plus
// or zeros. A national number (10 digits) gets the default country code.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// separators and the plus sign are dropped
		default:
			return "", ErrInvalid
		}
	}

	digits := strings.TrimLeft(b.String(), "0")
	switch {
	case len(digits) < 10 || len(digits) > 15:
		return "", ErrInvalid
	case len(digits) == 10:
		return DefaultCountryCode + digits, nil
	default:
		return digits, nil
	}
}
