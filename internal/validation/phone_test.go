package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoneFormat_Mask(t *testing.T) {
	for _, tc := range []struct {
		format PhoneFormat
		in     string
		want   string
	}{
		{LocalPhone, "017-1234-5678", "01712345678"},
		{LocalPhone, "0171234567899", "01712345678"},
		{LocalPhone, "+8801712345678", "88017123456"},
		{IntlPhone, "+880 1712 345678", "+8801712345678"},
		{IntlPhone, "+880171234567899", "+8801712345678"},
		{IntlPhone, "01712345678", "01712345678"},
	} {
		assert.Equal(t, tc.want, tc.format.Mask(tc.in), "%s %q", tc.format.Name, tc.in)
	}
}

func TestPhoneFormat_MaskThenValidAgree(t *testing.T) {
	// whatever the mask accepts as a full number the validator accepts too
	assert.True(t, LocalPhone.Valid(LocalPhone.Mask(" 01712 345678 ")))
	assert.True(t, IntlPhone.Valid(IntlPhone.Mask("+880-1712-345678")))
	assert.False(t, LocalPhone.Valid(LocalPhone.Mask("0171")))
}

func TestParsePhoneFormat(t *testing.T) {
	f, err := ParsePhoneFormat("", "")
	require.NoError(t, err)
	assert.Equal(t, "local", f.Name)

	f, err = ParsePhoneFormat("INTL", "")
	require.NoError(t, err)
	assert.True(t, f.AllowPlus)

	f, err = ParsePhoneFormat("local", `^01[3-9]\d{8}$`)
	require.NoError(t, err)
	assert.True(t, f.Valid("01712345678"))
	assert.False(t, f.Valid("01212345678"))

	_, err = ParsePhoneFormat("mars", "")
	assert.Error(t, err)

	_, err = ParsePhoneFormat("local", "([")
	assert.Error(t, err)
}
