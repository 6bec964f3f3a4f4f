// internal/dms/extraction_test.go
package dms

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

// ==========================
// Test Helper Functions
// ==========================

func strPtr(s string) *string { return &s }

func field(label, value string) RawApplicationField {
	return RawApplicationField{Label: label, Value: strPtr(value)}
}

func createInput(fields ...RawApplicationField) ApplicationInput {
	return ApplicationInput{
		ApplicationID:        1,
		ProcedureID:          201201,
		Civility:             "M",
		Email:                "jean.valgean@example.com",
		FirstName:            "Jean",
		LastName:             "VALGEAN",
		RegistrationDatetime: time.Date(2021, 9, 15, 15, 1, 33, 0, time.UTC),
		State:                "accepte",
		Fields:               fields,
	}
}

func completeFields() []RawApplicationField {
	return []RawApplicationField{
		field("Veuillez indiquer votre département", "93 - Seine-Saint-Denis"),
		field("Quelle est votre date de naissance", "12/02/2004"),
		field("Quel est votre numéro de téléphone ?", "07 77 77 77 77"),
		field("Quel est le code postal de votre commune de résidence ?", "  93130  "),
		field("Merci d'indiquer votre statut", "Employé"),
		field("Quelle est votre adresse de résidence", "3 La Bigotte"),
		field("Quelle est votre ville de résidence ?", "Noisy-le-Sec"),
		field("Quel est le numéro de la pièce que vous venez de saisir ?", " F9GFAL123 "),
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExtractor_Parse_Success(t *testing.T) {
	extractor := NewExtractor(nil, nil)

	app, err := extractor.Parse(createInput(completeFields()...))

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, 1, app.ApplicationID)
	assert.Equal(t, 201201, app.ProcedureID)
	assert.Equal(t, "M", app.Civility)
	assert.Equal(t, "Jean", app.FirstName)
	assert.Equal(t, "VALGEAN", app.LastName)
	assert.Equal(t, "jean.valgean@example.com", app.Email)
	assert.Equal(t, "accepte", app.State)
	assert.Equal(t, "93", *app.Department)
	assert.Equal(t, time.Date(2004, time.February, 12, 0, 0, 0, 0, time.UTC), *app.BirthDate)
	assert.Equal(t, "0777777777", *app.Phone)
	assert.Equal(t, "93130", *app.PostalCode)
	assert.Equal(t, "Employé", *app.Activity)
	assert.Equal(t, "3 La Bigotte", *app.Address)
	assert.Equal(t, "Noisy-le-Sec", *app.City)
	assert.Equal(t, "F9GFAL123", *app.IDPieceNumber)
	assert.Nil(t, app.ProcessedDatetime)
}

func TestExtractor_Parse_ForeignResidentLabels(t *testing.T) {
	app, err := NewExtractor(nil, nil).Parse(createInput(
		field("Veuillez indiquer votre département de résidence", "2B"),
		field("Quelle est ta date de naissance", "1er mars 2004"),
		field("Quel est le code postal de ta commune de résidence ?", "20200"),
		field("Quel est le numéro de la pièce que tu viens de saisir ?", "K682T8YLO"),
	))

	require.NoError(t, err)
	assert.Equal(t, "2B", *app.Department)
	assert.Equal(t, "20200", *app.PostalCode)
	assert.Equal(t, "K682T8YLO", *app.IDPieceNumber)
	assert.Equal(t, time.March, app.BirthDate.Month())
}

func TestExtractor_Parse_IDPieceNumberTrimmed(t *testing.T) {
	for _, raw := range []string{"0123456789", " 0123456789", "0123456789 ", " 0123456789 "} {
		t.Run(raw, func(t *testing.T) {
			app, err := NewExtractor(nil, nil).Parse(createInput(
				field("Quel est le numéro de la pièce d'identité que vous venez de saisir ?", raw),
			))
			require.NoError(t, err)
			assert.Equal(t, "0123456789", *app.IDPieceNumber)
		})
	}
}

func TestExtractor_Parse_OptionalFieldsStayUnset(t *testing.T) {
	app, err := NewExtractor(nil, nil).Parse(createInput(
		field("Veuillez indiquer votre département", "Paris"),
		RawApplicationField{Label: "Quelle est votre date de naissance"},
		field("Une question sans rapport", "peu importe"),
	))

	require.NoError(t, err)
	assert.Nil(t, app.Department)
	assert.Nil(t, app.BirthDate)
	assert.Nil(t, app.Activity)
	assert.Nil(t, app.PostalCode)
}

func TestExtractor_Parse_ProcessedDatetime(t *testing.T) {
	processed := time.Date(2021, 9, 20, 10, 0, 0, 0, time.UTC)
	input := createInput()
	input.ProcessedDatetime = &processed

	app, err := NewExtractor(nil, nil).Parse(input)

	require.NoError(t, err)
	require.NotNil(t, app.ProcessedDatetime)
	assert.Equal(t, processed, *app.ProcessedDatetime)
}

func TestExtractor_Parse_DuplicateLabelLastWins(t *testing.T) {
	app, err := NewExtractor(nil, nil).Parse(createInput(
		field("Quelle est votre ville de résidence ?", "Paris"),
		field("Quelle est votre ville de résidence ?", "Lyon"),
	))

	require.NoError(t, err)
	assert.Equal(t, "Lyon", *app.City)
}

func TestExtractor_Parse_DecomposedAccentsInLabel(t *testing.T) {
	label := norm.NFD.String("Quelle est votre ville de résidence ?")

	app, err := NewExtractor(nil, nil).Parse(createInput(field(label, "Paris")))

	require.NoError(t, err)
	assert.Equal(t, "Paris", *app.City)
}

// ==========================
// Parsing Errors
// ==========================

func TestExtractor_Parse_Errors(t *testing.T) {
	tests := []struct {
		name         string
		input        ApplicationInput
		expectedErrs map[string]string
	}{
		{
			name:         "invalid birth date",
			input:        createInput(field("Quelle est votre date de naissance", "pas une date")),
			expectedErrs: map[string]string{"birth_date": "pas une date"},
		},
		{
			name:         "invalid postal code keeps the raw value",
			input:        createInput(field("Quel est le code postal de votre commune de résidence ?", " Strasbourg ")),
			expectedErrs: map[string]string{"postal_code": " Strasbourg "},
		},
		{
			name:         "invalid id piece number keeps the trimmed value",
			input:        createInput(field("Quel est le numéro de la pièce que vous venez de saisir ?", " 12 ")),
			expectedErrs: map[string]string{"id_piece_number": "12"},
		},
		{
			name: "every failure is reported",
			input: func() ApplicationInput {
				in := createInput(
					field("Quelle est votre date de naissance", "hier"),
					field("Quel est le code postal de votre commune de résidence ?", "abc"),
					field("Quelle est votre ville de résidence ?", "Paris"),
				)
				in.FirstName = " J0hn "
				in.LastName = ""
				return in
			}(),
			expectedErrs: map[string]string{
				"first_name":  " J0hn ",
				"last_name":   "",
				"birth_date":  "hier",
				"postal_code": "abc",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewExtractor(nil, nil).Parse(tt.input)

			assert.Nil(t, app)
			var parsingErr *ParsingError
			require.True(t, errors.As(err, &parsingErr))
			assert.Equal(t, tt.expectedErrs, parsingErr.Errors)
			assert.Equal(t, "jean.valgean@example.com", parsingErr.Email)
			assert.Equal(t, ParsingErrorMessage, parsingErr.Message)
		})
	}
}

func TestExtractor_Parse_CustomValidators(t *testing.T) {
	rejectAll := IDPieceNumberValidatorFunc(func(string) bool { return false })
	acceptAll := NameValidatorFunc(func(string) bool { return true })

	_, err := NewExtractor(acceptAll, rejectAll).Parse(createInput(
		field("Quel est le numéro de la pièce que vous venez de saisir ?", "F9GFAL123"),
	))

	var parsingErr *ParsingError
	require.True(t, errors.As(err, &parsingErr))
	assert.Equal(t, []string{"id_piece_number"}, parsingErr.Fields())
}

// ==========================
// Label index
// ==========================

func TestBuildLabelIndex_Conflict(t *testing.T) {
	_, err := buildLabelIndex(map[FieldKey][]string{
		KeyCity:    {"Ville"},
		KeyAddress: {"Ville "},
	})
	assert.Error(t, err)
}

func TestCanonicalKey_EveryParserHasSynonyms(t *testing.T) {
	for key := range fieldParsers {
		assert.NotEmpty(t, labelSynonyms[key], "no label for %s", key)
	}
	for key, labels := range labelSynonyms {
		for _, label := range labels {
			got, ok := CanonicalKey(label)
			require.True(t, ok, label)
			assert.Equal(t, key, got)
		}
	}
}
