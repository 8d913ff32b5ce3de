package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMobile_BlankIsValid(t *testing.T) {
	require.NoError(t, Mobile("+91", ""))
	require.NoError(t, Mobile("+91", "   "))
}

func TestMobile_Valid(t *testing.T) {
	require.NoError(t, Mobile("+91", "9876543210"))
	require.NoError(t, Mobile("+1", "4155550123"))
}

func TestMobile_StripsFormatting(t *testing.T) {
	require.NoError(t, Mobile("+44", "7911 123-456"))
}

func TestMobile_TooShort(t *testing.T) {
	assert.ErrorIs(t, Mobile("+91", "12345"), ErrMobileTooShort)
}

func TestMobile_TooLong(t *testing.T) {
	assert.ErrorIs(t, Mobile("+91", "1234567890123456"), ErrMobileTooLong)
}

func TestMobile_E164Overflow(t *testing.T) {
	// 14 national digits after a 3-digit dial prefix exceed 15 total.
	assert.ErrorIs(t, Mobile("+971", "12345678901234"), ErrMobileInvalid)
}

func TestToE164(t *testing.T) {
	assert.Equal(t, "+919876543210", ToE164("+91", "98765 43210"))
	assert.Equal(t, "", ToE164("+91", "   "))
}
