// internal/dms/detail.go
package dms

import (
	"context"
	"fmt"
	"time"
)

// Legacy form labels of the bank information procedures.
const (
	LabelIBAN              = "IBAN"
	LabelBIC               = "BIC"
	LabelVenueWithSiret    = "Si vous souhaitez renseigner les coordonnées bancaires d'un lieu avec SIRET, merci de saisir son SIRET :"
	LabelVenueWithoutSiret = "Si vous souhaitez renseigner les coordonnées bancaires d'un lieu sans SIRET, merci de saisir le \"Nom du lieu\", à l'identique de celui dans le pass Culture Pro :"
)

// Field identifiers of the current bank information GraphQL form.
var bankInformationFieldNames = map[string]string{
	"Q2hhbXAtNDA3ODg5": "firstname",
	"Q2hhbXAtNDA3ODkw": "lastname",
	"Q2hhbXAtNDA3ODky": "phone_number",
	"Q2hhbXAtMzUyNzIy": "iban",
	"Q2hhbXAtMzUyNzI3": "bic",
}

// establishmentFieldID carries the SIRET/SIREN of the venue.
const establishmentFieldID = "Q2hhbXAtNzgyODAw"

// LegacyApplication is a detail payload of the legacy REST API.
type LegacyApplication struct {
	ID        int
	State     string
	UpdatedAt time.Time
	Siren     string
	Fields    []RawApplicationField
}

type Establishment struct {
	Siret string
	Siren string
}

// BankInformationField is a GraphQL champ, matched by ID.
type BankInformationField struct {
	ID            string
	Label         string
	Value         *string
	Establishment *Establishment
}

// BankInformationApplication is a detail payload of the bank information
// GraphQL query.
type BankInformationApplication struct {
	Number    int
	State     string
	UpdatedAt time.Time
	Fields    []BankInformationField
}

// BeneficiaryApplication is a detail payload of the beneficiary GraphQL query.
type BeneficiaryApplication struct {
	Number        int
	State         string
	Civility      string
	Email         string
	FirstName     string
	LastName      string
	DraftDate     time.Time
	ProcessedDate *time.Time
	Fields        []RawApplicationField
}

type DetailFetcher interface {
	FetchLegacyApplication(ctx context.Context, procedureID, applicationID int, token string) (*LegacyApplication, error)
	FetchBankInformationApplication(ctx context.Context, applicationID int, token string) (*BankInformationApplication, error)
	FetchBeneficiaryApplication(ctx context.Context, applicationNumber int, token string) (*BeneficiaryApplication, error)
}

// ApplicationDetail is the bank information carried by one application.
// At most one of Siret and VenueName is set; an empty string means unset.
type ApplicationDetail struct {
	ApplicationID    int                   `json:"applicationId"`
	Siren            string                `json:"siren"`
	Status           BankInformationStatus `json:"status"`
	IBAN             string                `json:"iban"`
	BIC              string                `json:"bic"`
	Siret            string                `json:"siret,omitempty"`
	VenueName        string                `json:"venueName,omitempty"`
	ModificationDate time.Time             `json:"modificationDate"`
}

// Schema versions of the venue bank information procedure.
const (
	VenueSchemaLegacy  = 1
	VenueSchemaGraphQL = 2
)

type FetcherConfig struct {
	Token              string
	OffererProcedureID int
	VenueProcedureID   int
}

type Fetcher struct {
	cfg        FetcherConfig
	client     DetailFetcher
	normalizer Normalizer
	extractor  *Extractor
}

type FetcherOption func(*Fetcher)

func WithNormalizer(n Normalizer) FetcherOption {
	return func(f *Fetcher) { f.normalizer = n }
}

func WithExtractor(e *Extractor) FetcherOption {
	return func(f *Fetcher) { f.extractor = e }
}

// NewFetcher requires a token. Procedure IDs are checked by the calls that
// use them.
func NewFetcher(cfg FetcherConfig, client DetailFetcher, opts ...FetcherOption) (*Fetcher, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: api token", ErrMissingConfiguration)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: detail client", ErrMissingConfiguration)
	}
	f := &Fetcher{
		cfg:        cfg,
		client:     client,
		normalizer: DefaultNormalizer,
		extractor:  NewExtractor(nil, nil),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// OffererApplicationDetail fetches an offerer bank information application
// from the legacy API.
func (f *Fetcher) OffererApplicationDetail(ctx context.Context, applicationID int) (*ApplicationDetail, error) {
	if f.cfg.OffererProcedureID <= 0 {
		return nil, fmt.Errorf("%w: offerer procedure id", ErrMissingConfiguration)
	}
	app, err := f.client.FetchLegacyApplication(ctx, f.cfg.OffererProcedureID, applicationID, f.cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("fetch offerer application %d: %w", applicationID, err)
	}
	fields, err := legacyBankFields(app, false)
	if err != nil {
		return nil, err
	}
	return f.assemble(fields), nil
}

// VenueApplicationDetail fetches a venue bank information application using
// the adapter of the given schema version.
func (f *Fetcher) VenueApplicationDetail(ctx context.Context, applicationID int, version int) (*ApplicationDetail, error) {
	switch version {
	case VenueSchemaLegacy:
		if f.cfg.VenueProcedureID <= 0 {
			return nil, fmt.Errorf("%w: venue procedure id", ErrMissingConfiguration)
		}
		app, err := f.client.FetchLegacyApplication(ctx, f.cfg.VenueProcedureID, applicationID, f.cfg.Token)
		if err != nil {
			return nil, fmt.Errorf("fetch venue application %d: %w", applicationID, err)
		}
		fields, err := legacyBankFields(app, true)
		if err != nil {
			return nil, err
		}
		return f.assemble(fields), nil

	case VenueSchemaGraphQL:
		app, err := f.client.FetchBankInformationApplication(ctx, applicationID, f.cfg.Token)
		if err != nil {
			return nil, fmt.Errorf("fetch venue application %d: %w", applicationID, err)
		}
		fields, err := graphQLBankFields(applicationID, app)
		if err != nil {
			return nil, err
		}
		return f.assemble(fields), nil

	default:
		return nil, &UnknownVersionError{Version: version}
	}
}

// BeneficiaryApplication fetches a beneficiary application and runs it through
// the extraction engine.
func (f *Fetcher) BeneficiaryApplication(ctx context.Context, procedureID, applicationNumber int) (*NormalizedApplication, error) {
	if procedureID <= 0 {
		return nil, fmt.Errorf("%w: procedure id", ErrMissingConfiguration)
	}
	app, err := f.client.FetchBeneficiaryApplication(ctx, applicationNumber, f.cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("fetch beneficiary application %d: %w", applicationNumber, err)
	}
	return f.extractor.Parse(BeneficiaryInput(app, procedureID))
}

// BeneficiaryInput adapts a beneficiary GraphQL payload to the extraction input.
func BeneficiaryInput(app *BeneficiaryApplication, procedureID int) ApplicationInput {
	return ApplicationInput{
		ApplicationID:        app.Number,
		ProcedureID:          procedureID,
		Civility:             app.Civility,
		Email:                app.Email,
		FirstName:            app.FirstName,
		LastName:             app.LastName,
		RegistrationDatetime: app.DraftDate,
		ProcessedDatetime:    app.ProcessedDate,
		State:                app.State,
		Fields:               app.Fields,
	}
}

// bankFields is the shape-independent intermediate of both bank adapters.
type bankFields struct {
	applicationID int
	siren         string
	status        BankInformationStatus
	iban          string
	bic           string
	siret         string
	venueName     string
	modified      time.Time
}

func (f *Fetcher) assemble(b bankFields) *ApplicationDetail {
	return &ApplicationDetail{
		ApplicationID:    b.applicationID,
		Siren:            b.siren,
		Status:           b.status,
		IBAN:             f.normalizer.Normalize(b.iban),
		BIC:              f.normalizer.Normalize(b.bic),
		Siret:            b.siret,
		VenueName:        b.venueName,
		ModificationDate: b.modified,
	}
}

func legacyBankFields(app *LegacyApplication, venue bool) (bankFields, error) {
	status, err := ClassifyState(app.State)
	if err != nil {
		return bankFields{}, err
	}
	b := bankFields{
		applicationID: app.ID,
		siren:         app.Siren,
		status:        status,
		iban:          findLegacyValue(app.Fields, LabelIBAN),
		bic:           findLegacyValue(app.Fields, LabelBIC),
		modified:      app.UpdatedAt,
	}
	if venue {
		if siret := findLegacyValue(app.Fields, LabelVenueWithSiret); siret != "" {
			b.siret = siret
		} else {
			b.venueName = findLegacyValue(app.Fields, LabelVenueWithoutSiret)
		}
	}
	return b, nil
}

func graphQLBankFields(applicationID int, app *BankInformationApplication) (bankFields, error) {
	data := ParseBankInformationFields(app)
	status, err := ClassifyGraphQLState(data.Status)
	if err != nil {
		return bankFields{}, err
	}
	return bankFields{
		applicationID: applicationID,
		siren:         data.Siren,
		status:        status,
		iban:          data.IBAN,
		bic:           data.BIC,
		siret:         data.Siret,
		modified:      data.UpdatedAt,
	}, nil
}

// BankInformationData is the flat view of a bank information GraphQL payload.
type BankInformationData struct {
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updatedAt"`
	FirstName   string    `json:"firstname,omitempty"`
	LastName    string    `json:"lastname,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	IBAN        string    `json:"iban,omitempty"`
	BIC         string    `json:"bic,omitempty"`
	Siret       string    `json:"siret,omitempty"`
	Siren       string    `json:"siren,omitempty"`
}

// ParseBankInformationFields picks the known fields out of a bank information
// payload by their identifiers. Values are returned as sent.
func ParseBankInformationFields(app *BankInformationApplication) BankInformationData {
	data := BankInformationData{
		Status:    app.State,
		UpdatedAt: app.UpdatedAt,
	}
	for _, field := range app.Fields {
		if field.ID == establishmentFieldID {
			if field.Establishment != nil {
				data.Siret = field.Establishment.Siret
				data.Siren = field.Establishment.Siren
			}
			continue
		}
		name, ok := bankInformationFieldNames[field.ID]
		if !ok || field.Value == nil {
			continue
		}
		value := *field.Value
		switch name {
		case "firstname":
			data.FirstName = value
		case "lastname":
			data.LastName = value
		case "phone_number":
			data.PhoneNumber = value
		case "iban":
			data.IBAN = value
		case "bic":
			data.BIC = value
		}
	}
	return data
}

// findLegacyValue returns the value of the first field carrying label, or ""
// when the label is absent or has no value.
func findLegacyValue(fields []RawApplicationField, label string) string {
	want := NormalizeLabel(label)
	for _, field := range fields {
		if NormalizeLabel(field.Label) != want {
			continue
		}
		if field.Value == nil {
			return ""
		}
		return *field.Value
	}
	return ""
}
