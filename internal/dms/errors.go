// internal/dms/errors.go
package dms

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrMissingConfiguration = errors.New("dms: missing required configuration")
	ErrMissingWatermark     = errors.New("dms: last update watermark is required")
)

// ParsingErrorMessage is the fixed message carried by every ParsingError.
const ParsingErrorMessage = "Error validating"

// ParsingError reports every field of one application that failed to parse.
// Errors maps the canonical field key to the offending raw value.
type ParsingError struct {
	Email   string
	Errors  map[string]string
	Message string
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("%s: %s (fields: %s)", e.Message, e.Email, strings.Join(e.Fields(), ", "))
}

// Fields returns the failed field keys in sorted order.
func (e *ParsingError) Fields() []string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CannotRegisterBankInformationError is returned for an upstream state outside
// the known vocabulary.
type CannotRegisterBankInformationError struct {
	State string
}

func (e *CannotRegisterBankInformationError) Error() string {
	return fmt.Sprintf("Unknown Demarches Simplifiées state %s", e.State)
}

// UnknownVersionError is returned when a caller asks for a schema version
// that has no adapter.
type UnknownVersionError struct {
	Version int
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("Unknown version %d", e.Version)
}
