// internal/dms/bankaccount.go
package dms

import "strings"

// Normalizer cleans a raw IBAN or BIC before storage.
type Normalizer interface {
	Normalize(raw string) string
}

type NormalizerFunc func(raw string) string

func (f NormalizerFunc) Normalize(raw string) string { return f(raw) }

// NormalizeIBANOrBIC upper-cases the value and removes all whitespace.
func NormalizeIBANOrBIC(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

var DefaultNormalizer Normalizer = NormalizerFunc(NormalizeIBANOrBIC)
