package domain

import "strings"

const (
	seniorPhoneMinDigits = 10
	strictPhoneDigits    = 11
	strictPhonePrefix    = "010"
)

var phoneSeparators = strings.NewReplacer("-", "", " ", "", ".", "", "(", "", ")", "")

// NormalizePhone strips separators from a phone number. The result may still
// contain non-digit characters; the validators reject those.
func NormalizePhone(phone string) string {
	return phoneSeparators.Replace(strings.TrimSpace(phone))
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// ValidateSeniorPhone accepts any number with at least 10 digits once
// separators are removed. It is the senior OTP sender's rule.
func ValidateSeniorPhone(phone string) (string, error) {
	p := NormalizePhone(phone)
	if p == "" {
		return "", invalid("phone", "phone number is required")
	}
	if !allDigits(p) || len(p) < seniorPhoneMinDigits {
		return "", invalid("phone", "enter a phone number with at least 10 digits")
	}
	return p, nil
}

// ValidateStrictPhone accepts exactly 11 digits beginning with 010. Signup,
// deferred signup and password recovery use it.
func ValidateStrictPhone(phone string) (string, error) {
	p := NormalizePhone(phone)
	if p == "" {
		return "", invalid("phone", "phone number is required")
	}
	if !allDigits(p) || len(p) != strictPhoneDigits || !strings.HasPrefix(p, strictPhonePrefix) {
		return "", invalid("phone", "phone number must be 11 digits starting with 010")
	}
	return p, nil
}

// MaskPhone hides all but the last four digits.
func MaskPhone(phone string) string {
	p := NormalizePhone(phone)
	if len(p) > 4 {
		return strings.Repeat("*", len(p)-4) + p[len(p)-4:]
	}
	return "****"
}
