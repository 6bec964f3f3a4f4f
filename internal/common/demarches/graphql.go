// internal/common/demarches/graphql.go
package demarches

import (
	"strings"
)

const champFragment = `
fragment ChampFragment on Champ {
  id
  label
  stringValue
  ... on SiretChamp {
    etablissement {
      siret
      entreprise { siren }
    }
  }
}`

const bankInformationQuery = `
query getBankInformationApplication($dossierNumber: Int!) {
  dossier(number: $dossierNumber) {
    number
    state
    dateDerniereModification
    champs { ...ChampFragment }
  }
}` + champFragment

const beneficiaryQuery = `
query getBeneficiaryApplication($dossierNumber: Int!) {
  dossier(number: $dossierNumber) {
    number
    state
    dateDerniereModification
    datePassageEnConstruction
    dateTraitement
    usager { email }
    demandeur {
      ... on PersonnePhysique {
        civilite
        nom
        prenom
      }
    }
    champs { ...ChampFragment }
  }
}` + champFragment

// GraphQLError carries the errors array of a GraphQL response.
type GraphQLError struct {
	Operation string
	Messages  []string
}

func (e *GraphQLError) Error() string {
	return "graphql " + e.Operation + ": " + strings.Join(e.Messages, "; ")
}
