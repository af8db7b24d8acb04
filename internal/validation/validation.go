package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ErrCountryCodeInvalid is returned when a country code is not exactly two ASCII letters.
var ErrCountryCodeInvalid = errors.New("country code must be two letters")

// IsPostalCode reports whether the location is a non-empty run of ASCII digits.
func IsPostalCode(location string) bool {
	if location == "" {
		return false
	}
	for _, c := range location {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// NormalizeLocation appends ",<country>" to postal codes so the provider does not
// treat them as a place name. Place names are returned unchanged.
func NormalizeLocation(location, country string) string {
	if IsPostalCode(location) && country != "" {
		return location + "," + country
	}
	return location
}

// ValidateCountryCode trims and upper-cases a two-letter country code.
func ValidateCountryCode(input string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(input))
	if len(s) != 2 {
		return "", ErrCountryCodeInvalid
	}
	for _, c := range s {
		if c > unicode.MaxASCII || !unicode.IsLetter(c) {
			return "", ErrCountryCodeInvalid
		}
	}
	return s, nil
}
