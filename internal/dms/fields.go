// internal/dms/fields.go
package dms

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FieldKey is the canonical name of a beneficiary form field. It is also the
// key used in ParsingError.Errors.
type FieldKey string

const (
	KeyFirstName     FieldKey = "first_name"
	KeyLastName      FieldKey = "last_name"
	KeyActivity      FieldKey = "activity"
	KeyAddress       FieldKey = "address"
	KeyBirthDate     FieldKey = "birth_date"
	KeyCity          FieldKey = "city"
	KeyDepartment    FieldKey = "department"
	KeyIDPieceNumber FieldKey = "id_piece_number"
	KeyPhone         FieldKey = "phone"
	KeyPostalCode    FieldKey = "postal_code"
)

// RawApplicationField is one labelled answer of an upstream form.
type RawApplicationField struct {
	Label string  `json:"label"`
	Value *string `json:"value,omitempty"`
}

// labelSynonyms lists, per canonical key, every label used by the French
// resident (FR) and foreign resident (ET) forms over time.
var labelSynonyms = map[FieldKey][]string{
	KeyActivity: {
		"Merci d'indiquer votre statut",
		"Merci d'indiquer ton statut",
	},
	KeyAddress: {
		"Quelle est votre adresse de résidence",
		"Quelle est ton adresse de résidence",
	},
	KeyBirthDate: {
		"Quelle est votre date de naissance",
		"Quelle est ta date de naissance",
	},
	KeyCity: {
		"Quelle est votre ville de résidence ?",
		"Quelle est ta ville de résidence ?",
	},
	KeyDepartment: {
		"Veuillez indiquer votre département",
		"Veuillez indiquer votre département de résidence",
	},
	KeyIDPieceNumber: {
		"Quel est le numéro de la pièce que vous venez de saisir ?",
		"Quel est le numéro de la pièce que tu viens de saisir ?",
		"Quel est le numéro de la pièce d'identité que vous venez de saisir ?",
	},
	KeyPhone: {
		"Quel est votre numéro de téléphone ?",
		"Quel est ton numéro de téléphone ?",
	},
	KeyPostalCode: {
		"Quel est le code postal de votre commune de résidence ?",
		"Quel est le code postal de ta commune de résidence ?",
	},
}

var labelIndex = mustBuildLabelIndex(labelSynonyms)

// NormalizeLabel trims a label and puts it in Unicode NFC form so composed and
// decomposed accents compare equal.
func NormalizeLabel(label string) string {
	return norm.NFC.String(strings.TrimSpace(label))
}

// CanonicalKey resolves a raw label to its canonical key.
func CanonicalKey(label string) (FieldKey, bool) {
	key, ok := labelIndex[NormalizeLabel(label)]
	return key, ok
}

func buildLabelIndex(synonyms map[FieldKey][]string) (map[string]FieldKey, error) {
	index := make(map[string]FieldKey)
	for key, labels := range synonyms {
		for _, label := range labels {
			normalized := NormalizeLabel(label)
			if existing, ok := index[normalized]; ok && existing != key {
				return nil, fmt.Errorf("label %q claimed by both %s and %s", label, existing, key)
			}
			index[normalized] = key
		}
	}
	return index, nil
}

func mustBuildLabelIndex(synonyms map[FieldKey][]string) map[string]FieldKey {
	index, err := buildLabelIndex(synonyms)
	if err != nil {
		panic(err)
	}
	return index
}
