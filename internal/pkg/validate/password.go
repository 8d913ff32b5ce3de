package validate

import (
	"regexp"
	"unicode"
)

// PasswordRule is one independent password requirement.
type PasswordRule struct {
	Label string
	Test  func(pw string) bool
}

var special = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>_\-+=/\\[\]` + "`" + `~;']`)

// PasswordRules are the five requirements a password must meet. A password is
// valid only when every rule passes.
var PasswordRules = []PasswordRule{
	{Label: "At least 12 characters", Test: func(pw string) bool { return len(pw) >= 12 }},
	{Label: "One uppercase letter", Test: func(pw string) bool { return containsFunc(pw, unicode.IsUpper) }},
	{Label: "One lowercase letter", Test: func(pw string) bool { return containsFunc(pw, unicode.IsLower) }},
	{Label: "One number", Test: func(pw string) bool { return containsFunc(pw, unicode.IsDigit) }},
	{Label: "One special character", Test: special.MatchString},
}

// StrengthTier labels password strength from weakest to strongest.
type StrengthTier string

const (
	StrengthVeryWeak   StrengthTier = "very weak"
	StrengthWeak       StrengthTier = "weak"
	StrengthFair       StrengthTier = "fair"
	StrengthStrong     StrengthTier = "strong"
	StrengthVeryStrong StrengthTier = "very strong"
)

// PasswordValid reports whether the password meets all rules.
func PasswordValid(password string) bool {
	for _, r := range PasswordRules {
		if !r.Test(password) {
			return false
		}
	}
	return true
}

// PasswordStrength buckets the fraction of passing rules into a tier:
// 0-1 rules very weak, 2 weak, 3 fair, 4 strong, 5 very strong.
func PasswordStrength(password string) StrengthTier {
	passed := 0
	for _, r := range PasswordRules {
		if r.Test(password) {
			passed++
		}
	}
	switch passed {
	case 5:
		return StrengthVeryStrong
	case 4:
		return StrengthStrong
	case 3:
		return StrengthFair
	case 2:
		return StrengthWeak
	default:
		return StrengthVeryWeak
	}
}

func containsFunc(s string, fn func(rune) bool) bool {
	for _, r := range s {
		if fn(r) {
			return true
		}
	}
	return false
}
