package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// PhoneFormat is the single phone rule shared by input masking and submit
// validation.
type PhoneFormat struct {
	Name      string
	Pattern   *regexp.Regexp
	MaxDigits int
	AllowPlus bool
	Example   string
}

var (
	// LocalPhone is the 11 digit national form, e.g. 01712345678.
	LocalPhone = PhoneFormat{
		Name:      "local",
		Pattern:   regexp.MustCompile(`^\d{11}$`),
		MaxDigits: 11,
		Example:   "01XXXXXXXXX",
	}
	// IntlPhone is the +880 prefixed form, e.g. +8801712345678.
	IntlPhone = PhoneFormat{
		Name:      "intl",
		Pattern:   regexp.MustCompile(`^\+880\d{10}$`),
		MaxDigits: 13,
		AllowPlus: true,
		Example:   "+8801XXXXXXXXX",
	}
)

// ParsePhoneFormat picks a preset by name. A non-empty pattern replaces the
// preset's regular expression but keeps its masking rules.
func ParsePhoneFormat(name, pattern string) (PhoneFormat, error) {
	var f PhoneFormat
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", LocalPhone.Name:
		f = LocalPhone
	case IntlPhone.Name:
		f = IntlPhone
	default:
		return PhoneFormat{}, fmt.Errorf("validation: unknown phone format %q", name)
	}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return PhoneFormat{}, fmt.Errorf("validation: phone pattern: %w", err)
		}
		f.Pattern = re
	}
	return f, nil
}

// Mask normalises raw input the way the form field does: non-digits are
// dropped (a leading + survives when allowed) and the digit count is capped.
func (f PhoneFormat) Mask(input string) string {
	input = strings.TrimSpace(input)
	var b strings.Builder
	if f.AllowPlus && strings.HasPrefix(input, "+") {
		b.WriteByte('+')
	}
	digits := 0
	for _, r := range input {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			continue
		}
		if f.MaxDigits > 0 && digits == f.MaxDigits {
			break
		}
		b.WriteRune(r)
		digits++
	}
	return b.String()
}

// Valid reports whether a masked number matches the format.
func (f PhoneFormat) Valid(phone string) bool {
	return f.Pattern != nil && f.Pattern.MatchString(phone)
}
