// internal/workers/dms/import-bank-information/models.go
package importbankinformation

import "time"

type Input struct {
	ApplicationID int    `json:"applicationId"`
	Kind          string `json:"kind"`              // "offerer", "venue"
	Version       int    `json:"version,omitempty"` // venue schema version, defaults to 1
}

type Output struct {
	ApplicationID int    `json:"applicationId"`
	Status        string `json:"status"`
	Siren         string `json:"siren"`
	Siret         string `json:"siret,omitempty"`
	VenueName     string `json:"venueName,omitempty"`
	Saved         bool   `json:"saved"`
	EventID       string `json:"eventId,omitempty"`
}

const (
	KindOfferer = "offerer"
	KindVenue   = "venue"
)

const EventBankInformationUpdated = "bank_information.updated"

// BankInformationUpdated is published once a newer bank information row has
// been stored. IBAN and BIC are left out of the event.
type BankInformationUpdated struct {
	ApplicationID    int       `json:"applicationId"`
	Kind             string    `json:"kind"`
	Status           string    `json:"status"`
	Siren            string    `json:"siren"`
	Siret            string    `json:"siret,omitempty"`
	VenueName        string    `json:"venueName,omitempty"`
	ModificationDate time.Time `json:"modificationDate"`
}
