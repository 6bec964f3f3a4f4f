// internal/workers/dms/notify-parsing-error/models.go
package notifyparsingerror

import "dms-workers/internal/dms"

type Input struct {
	ProcedureID   int               `json:"procedureId"`
	ApplicationID int               `json:"applicationId"`
	Email         string            `json:"email"`
	Errors        map[string]string `json:"errors"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "disabled"
	MessageID      string `json:"messageId,omitempty"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

// fieldLabels names each field key the way the form asks for it.
var fieldLabels = map[dms.FieldKey]string{
	dms.KeyBirthDate:     "Date de naissance",
	dms.KeyDepartment:    "Département",
	dms.KeyPhone:         "Numéro de téléphone",
	dms.KeyPostalCode:    "Code postal",
	dms.KeyActivity:      "Statut",
	dms.KeyAddress:       "Adresse",
	dms.KeyCity:          "Ville",
	dms.KeyIDPieceNumber: "Numéro de la pièce d'identité",
	dms.KeyFirstName:     "Prénom",
	dms.KeyLastName:      "Nom",
}
