// internal/dms/parser.go
package dms

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	departmentPattern    = regexp.MustCompile(`^([0-9]{2,3}|2[AaBb])`)
	postalCodePattern    = regexp.MustCompile(`^[0-9]{5}`)
	idPieceNumberPattern = regexp.MustCompile(`^[A-Za-z0-9]{9,12}$`)
)

// NameValidator decides whether a subscription first or last name is usable.
type NameValidator interface {
	ValidName(name string) bool
}

// IDPieceNumberValidator checks the format of an identity document number.
type IDPieceNumberValidator interface {
	ValidIDPieceNumber(number string) bool
}

type NameValidatorFunc func(name string) bool

func (f NameValidatorFunc) ValidName(name string) bool { return f(name) }

type IDPieceNumberValidatorFunc func(number string) bool

func (f IDPieceNumberValidatorFunc) ValidIDPieceNumber(number string) bool { return f(number) }

var (
	DefaultNameValidator          NameValidator          = NameValidatorFunc(validName)
	DefaultIDPieceNumberValidator IDPieceNumberValidator = IDPieceNumberValidatorFunc(validIDPieceNumber)
)

// validName accepts letters (any script, with combining marks), spaces,
// hyphens, apostrophes and dots, and requires at least one letter.
func validName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	hasLetter := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.Is(unicode.Mn, r):
		case r == ' ', r == '-', r == '\'', r == '’', r == '.':
		default:
			return false
		}
	}
	return hasLetter
}

func validIDPieceNumber(number string) bool {
	return idPieceNumberPattern.MatchString(number)
}

// ParseDepartment extracts the leading department code: two or three digits,
// or a Corsican code (2A/2B, any case). A value without one yields false.
func ParseDepartment(value string) (string, bool) {
	code := departmentPattern.FindString(value)
	return code, code != ""
}

// ParsePostalCode drops surrounding and inner spaces and keeps the first five
// characters when they are digits.
func ParsePostalCode(value string) (string, bool) {
	spaceFree := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	code := postalCodePattern.FindString(spaceFree)
	return code, code != ""
}

// ParsePhone removes every space from a phone number.
func ParsePhone(value string) string {
	return strings.ReplaceAll(value, " ", "")
}
