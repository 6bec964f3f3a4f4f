// internal/dms/extraction.go
package dms

import (
	"strings"
	"time"
)

// NormalizedApplication is a fully parsed beneficiary application.
type NormalizedApplication struct {
	ApplicationID        int        `json:"applicationId"`
	ProcedureID          int        `json:"procedureId"`
	Civility             string     `json:"civility"`
	FirstName            string     `json:"firstName"`
	LastName             string     `json:"lastName"`
	Email                string     `json:"email"`
	BirthDate            *time.Time `json:"birthDate,omitempty"`
	Phone                *string    `json:"phone,omitempty"`
	Address              *string    `json:"address,omitempty"`
	City                 *string    `json:"city,omitempty"`
	PostalCode           *string    `json:"postalCode,omitempty"`
	Department           *string    `json:"department,omitempty"`
	Activity             *string    `json:"activity,omitempty"`
	IDPieceNumber        *string    `json:"idPieceNumber,omitempty"`
	RegistrationDatetime time.Time  `json:"registrationDatetime"`
	ProcessedDatetime    *time.Time `json:"processedDatetime,omitempty"`
	State                string     `json:"state"`
}

// ApplicationInput is what the extraction engine needs from one upstream
// application, whatever API shape it came from.
type ApplicationInput struct {
	ApplicationID        int
	ProcedureID          int
	Civility             string
	Email                string
	FirstName            string
	LastName             string
	RegistrationDatetime time.Time
	ProcessedDatetime    *time.Time
	State                string
	Fields               []RawApplicationField
}

// extraction holds the state of one Parse call.
type extraction struct {
	app      *NormalizedApplication
	errors   map[string]string
	idPieces IDPieceNumberValidator
}

func (x *extraction) fail(key FieldKey, raw string) {
	x.errors[string(key)] = raw
}

type fieldParser func(x *extraction, value string)

var fieldParsers = map[FieldKey]fieldParser{
	KeyDepartment: func(x *extraction, value string) {
		if code, ok := ParseDepartment(value); ok {
			x.app.Department = &code
		}
	},
	KeyBirthDate: func(x *extraction, value string) {
		birthDate, err := ParseBirthDate(value)
		if err != nil {
			x.fail(KeyBirthDate, value)
			return
		}
		x.app.BirthDate = &birthDate
	},
	KeyPhone: func(x *extraction, value string) {
		phone := ParsePhone(value)
		x.app.Phone = &phone
	},
	KeyPostalCode: func(x *extraction, value string) {
		code, ok := ParsePostalCode(value)
		if !ok {
			x.fail(KeyPostalCode, value)
			return
		}
		x.app.PostalCode = &code
	},
	KeyActivity: func(x *extraction, value string) {
		x.app.Activity = &value
	},
	KeyAddress: func(x *extraction, value string) {
		x.app.Address = &value
	},
	KeyCity: func(x *extraction, value string) {
		x.app.City = &value
	},
	KeyIDPieceNumber: func(x *extraction, value string) {
		number := strings.TrimSpace(value)
		if !x.idPieces.ValidIDPieceNumber(number) {
			x.fail(KeyIDPieceNumber, number)
			return
		}
		x.app.IDPieceNumber = &number
	},
}

// Extractor turns labelled form fields into a NormalizedApplication.
type Extractor struct {
	names    NameValidator
	idPieces IDPieceNumberValidator
}

// NewExtractor builds an Extractor. Nil validators fall back to the defaults.
func NewExtractor(names NameValidator, idPieces IDPieceNumberValidator) *Extractor {
	if names == nil {
		names = DefaultNameValidator
	}
	if idPieces == nil {
		idPieces = DefaultIDPieceNumberValidator
	}
	return &Extractor{names: names, idPieces: idPieces}
}

// Parse scans every field and returns the parsed application, or a
// *ParsingError listing every field that failed. Fields with an unknown label
// or no value are ignored. A label seen twice keeps its last value.
func (e *Extractor) Parse(in ApplicationInput) (*NormalizedApplication, error) {
	x := &extraction{
		app: &NormalizedApplication{
			ApplicationID:        in.ApplicationID,
			ProcedureID:          in.ProcedureID,
			Civility:             in.Civility,
			FirstName:            in.FirstName,
			LastName:             in.LastName,
			Email:                in.Email,
			RegistrationDatetime: in.RegistrationDatetime,
			ProcessedDatetime:    in.ProcessedDatetime,
			State:                in.State,
		},
		errors:   make(map[string]string),
		idPieces: e.idPieces,
	}

	if !e.names.ValidName(in.FirstName) {
		x.fail(KeyFirstName, in.FirstName)
	}
	if !e.names.ValidName(in.LastName) {
		x.fail(KeyLastName, in.LastName)
	}

	for _, field := range in.Fields {
		if field.Value == nil {
			continue
		}
		key, ok := CanonicalKey(field.Label)
		if !ok {
			continue
		}
		fieldParsers[key](x, *field.Value)
	}

	if len(x.errors) > 0 {
		return nil, &ParsingError{
			Email:   in.Email,
			Errors:  x.errors,
			Message: ParsingErrorMessage,
		}
	}
	return x.app, nil
}
