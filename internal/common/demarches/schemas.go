// internal/common/demarches/schemas.go
package demarches

import "dms-workers/internal/common/validation"

var listSchema = validation.MustCompile("dossier-list", `{
  "type": "object",
  "required": ["dossiers", "pagination"],
  "properties": {
    "dossiers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "updated_at", "state"],
        "properties": {
          "id": {"type": "integer"},
          "updated_at": {"type": "string"},
          "state": {"type": "string"}
        }
      }
    },
    "pagination": {
      "type": "object",
      "required": ["nombre_de_page"],
      "properties": {
        "page": {"type": "integer"},
        "resultats_par_page": {"type": "integer"},
        "nombre_de_page": {"type": "integer", "minimum": 0}
      }
    }
  }
}`)

var detailSchema = validation.MustCompile("dossier-detail", `{
  "type": "object",
  "required": ["dossier"],
  "properties": {
    "dossier": {
      "type": "object",
      "required": ["id", "state", "updated_at", "champs"],
      "properties": {
        "id": {"type": "integer"},
        "state": {"type": "string"},
        "updated_at": {"type": "string"},
        "entreprise": {"type": ["object", "null"]},
        "champs": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["type_de_champ"],
            "properties": {
              "type_de_champ": {
                "type": "object",
                "required": ["libelle"],
                "properties": {"libelle": {"type": "string"}}
              }
            }
          }
        }
      }
    }
  }
}`)

var graphQLEnvelopeSchema = validation.MustCompile("graphql-envelope", `{
  "type": "object",
  "anyOf": [
    {"required": ["data"]},
    {"required": ["errors"]}
  ],
  "properties": {
    "errors": {
      "type": "array",
      "items": {"type": "object", "required": ["message"]}
    }
  }
}`)

var graphQLDossierSchema = validation.MustCompile("graphql-dossier", `{
  "type": "object",
  "required": ["dossier"],
  "properties": {
    "dossier": {
      "type": "object",
      "required": ["number", "state", "champs"],
      "properties": {
        "number": {"type": "integer"},
        "state": {"type": "string"},
        "champs": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "label"]
          }
        }
      }
    }
  }
}`)
