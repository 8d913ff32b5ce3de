package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordValid(t *testing.T) {
	assert.True(t, PasswordValid("Str0ng!Enough"))
	assert.False(t, PasswordValid("Sh0rt!pw"))       // under 12 chars
	assert.False(t, PasswordValid("alllower1234!")) // no uppercase
	assert.False(t, PasswordValid("ALLUPPER1234!")) // no lowercase
	assert.False(t, PasswordValid("NoDigitsHere!!")) // no number
	assert.False(t, PasswordValid("NoSpecials12345")) // no special char
}

func TestPasswordStrength_Tiers(t *testing.T) {
	tests := []struct {
		password string
		want     StrengthTier
	}{
		{"", StrengthVeryWeak},
		{"abc", StrengthVeryWeak},          // lowercase only
		{"abcdef1", StrengthWeak},          // lowercase + digit
		{"Abcdef1", StrengthFair},          // + uppercase
		{"Abcdef1!", StrengthStrong},       // + special, still short
		{"Abcdefgh1234!", StrengthVeryStrong},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PasswordStrength(tt.password), "password %q", tt.password)
	}
}
