package validate

import (
	"errors"
	"regexp"
	"strings"
)

// CountryOption is a dial-prefix entry for the signup country selector.
type CountryOption struct {
	Code string
	Dial string
	Name string
}

// CountryCodes lists the supported dial prefixes.
var CountryCodes = []CountryOption{
	{Code: "IN", Dial: "+91", Name: "India"},
	{Code: "US", Dial: "+1", Name: "United States"},
	{Code: "GB", Dial: "+44", Name: "United Kingdom"},
	{Code: "AE", Dial: "+971", Name: "UAE"},
	{Code: "SG", Dial: "+65", Name: "Singapore"},
	{Code: "AU", Dial: "+61", Name: "Australia"},
	{Code: "CA", Dial: "+1", Name: "Canada"},
	{Code: "DE", Dial: "+49", Name: "Germany"},
	{Code: "FR", Dial: "+33", Name: "France"},
	{Code: "JP", Dial: "+81", Name: "Japan"},
}

var (
	ErrMobileTooShort = errors.New("phone number is too short")
	ErrMobileTooLong  = errors.New("phone number is too long")
	ErrMobileInvalid  = errors.New("enter a valid phone number")
)

var (
	nonDigits = regexp.MustCompile(`\D`)
	e164      = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)
)

// ToE164 combines a dial prefix and a national number into E.164 form.
// Returns "" when the national number has no digits.
func ToE164(dial, national string) string {
	cleaned := nonDigits.ReplaceAllString(national, "")
	if cleaned == "" {
		return ""
	}
	return dial + cleaned
}

// Mobile validates an optional national number against E.164 shape. A blank
// national number is valid: the field is optional.
func Mobile(dial, national string) error {
	if strings.TrimSpace(national) == "" {
		return nil
	}
	cleaned := nonDigits.ReplaceAllString(national, "")
	if len(cleaned) < 6 {
		return ErrMobileTooShort
	}
	if len(cleaned) > 15 {
		return ErrMobileTooLong
	}
	if !e164.MatchString(dial + cleaned) {
		return ErrMobileInvalid
	}
	return nil
}
