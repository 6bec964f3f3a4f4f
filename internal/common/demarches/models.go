// internal/common/demarches/models.go
package demarches

import (
	"bytes"
	"encoding/json"
	"time"

	"dms-workers/internal/dms"
)

// ==========================
// Legacy REST payloads
// ==========================

type listResponse struct {
	Dossiers   []dossierSummary `json:"dossiers"`
	Pagination pagination       `json:"pagination"`
}

type dossierSummary struct {
	ID        int       `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
	State     string    `json:"state"`
}

type pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"resultats_par_page"`
	TotalPages int `json:"nombre_de_page"`
}

type detailResponse struct {
	Dossier legacyDossier `json:"dossier"`
}

type legacyDossier struct {
	ID         int       `json:"id"`
	State      string    `json:"state"`
	UpdatedAt  time.Time `json:"updated_at"`
	Entreprise *struct {
		Siren string `json:"siren"`
	} `json:"entreprise"`
	Champs []legacyChamp `json:"champs"`
}

type legacyChamp struct {
	Value       json.RawMessage `json:"value"`
	TypeDeChamp struct {
		Libelle string `json:"libelle"`
	} `json:"type_de_champ"`
}

func (d legacyDossier) toDomain() *dms.LegacyApplication {
	app := &dms.LegacyApplication{
		ID:        d.ID,
		State:     d.State,
		UpdatedAt: d.UpdatedAt,
		Fields:    make([]dms.RawApplicationField, 0, len(d.Champs)),
	}
	if d.Entreprise != nil {
		app.Siren = d.Entreprise.Siren
	}
	for _, champ := range d.Champs {
		app.Fields = append(app.Fields, dms.RawApplicationField{
			Label: champ.TypeDeChamp.Libelle,
			Value: rawString(champ.Value),
		})
	}
	return app
}

// ==========================
// GraphQL payloads
// ==========================

type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage    `json:"data"`
	Errors []graphQLErrorItem `json:"errors"`
}

type graphQLErrorItem struct {
	Message string `json:"message"`
}

type dossierData struct {
	Dossier *gqlDossier `json:"dossier"`
}

type gqlDossier struct {
	Number        int        `json:"number"`
	State         string     `json:"state"`
	UpdatedAt     time.Time  `json:"dateDerniereModification"`
	DraftDate     time.Time  `json:"datePassageEnConstruction"`
	ProcessedDate *time.Time `json:"dateTraitement"`
	Usager        struct {
		Email string `json:"email"`
	} `json:"usager"`
	Demandeur struct {
		Civilite string `json:"civilite"`
		Nom      string `json:"nom"`
		Prenom   string `json:"prenom"`
	} `json:"demandeur"`
	Champs []gqlChamp `json:"champs"`
}

type gqlChamp struct {
	ID            string          `json:"id"`
	Label         string          `json:"label"`
	StringValue   *string         `json:"stringValue"`
	Value         json.RawMessage `json:"value"`
	Etablissement *struct {
		Siret      string `json:"siret"`
		Entreprise struct {
			Siren string `json:"siren"`
		} `json:"entreprise"`
	} `json:"etablissement"`
}

// value prefers stringValue and falls back to the typed value.
func (c gqlChamp) value() *string {
	if c.StringValue != nil {
		return c.StringValue
	}
	return rawString(c.Value)
}

func (d *gqlDossier) toBankInformation() *dms.BankInformationApplication {
	app := &dms.BankInformationApplication{
		Number:    d.Number,
		State:     d.State,
		UpdatedAt: d.UpdatedAt,
		Fields:    make([]dms.BankInformationField, 0, len(d.Champs)),
	}
	for _, champ := range d.Champs {
		field := dms.BankInformationField{
			ID:    champ.ID,
			Label: champ.Label,
			Value: champ.value(),
		}
		if champ.Etablissement != nil {
			field.Establishment = &dms.Establishment{
				Siret: champ.Etablissement.Siret,
				Siren: champ.Etablissement.Entreprise.Siren,
			}
		}
		app.Fields = append(app.Fields, field)
	}
	return app
}

func (d *gqlDossier) toBeneficiary() *dms.BeneficiaryApplication {
	app := &dms.BeneficiaryApplication{
		Number:        d.Number,
		State:         d.State,
		Civility:      d.Demandeur.Civilite,
		Email:         d.Usager.Email,
		FirstName:     d.Demandeur.Prenom,
		LastName:      d.Demandeur.Nom,
		DraftDate:     d.DraftDate,
		ProcessedDate: d.ProcessedDate,
		Fields:        make([]dms.RawApplicationField, 0, len(d.Champs)),
	}
	for _, champ := range d.Champs {
		app.Fields = append(app.Fields, dms.RawApplicationField{
			Label: champ.Label,
			Value: champ.value(),
		})
	}
	return app
}

// rawString turns a JSON scalar into its string form. null and absent values
// yield nil; strings are unquoted; other scalars keep their JSON text.
func rawString(raw json.RawMessage) *string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return &s
	}
	text := string(trimmed)
	return &text
}
