// internal/dms/activity.go
package dms

// Activity is the beneficiary occupation stored with an import.
type Activity string

const (
	ActivityHighSchoolStudent Activity = "HIGH_SCHOOL_STUDENT"
	ActivityStudent           Activity = "STUDENT"
	ActivityEmployee          Activity = "EMPLOYEE"
	ActivityUnemployed        Activity = "UNEMPLOYED"
	ActivityInactive          Activity = "INACTIVE"
	ActivityApprentice        Activity = "APPRENTICE"
	ActivityApprenticeStudent Activity = "APPRENTICE_STUDENT"
	ActivityVolunteer         Activity = "VOLUNTEER"
)

var activityLabels = map[string]Activity{
	"Lycéen":                           ActivityHighSchoolStudent,
	"Etudiant":                         ActivityStudent,
	"Étudiant":                         ActivityStudent,
	"Employé":                          ActivityEmployee,
	"En recherche d'emploi ou chômeur": ActivityUnemployed,
	"Inactif (ni en emploi ni au chômage), En incapacité de travailler": ActivityInactive,
	"Apprenti":                               ActivityApprentice,
	"Alternant":                              ActivityApprenticeStudent,
	"Volontaire en service civique rémunéré": ActivityVolunteer,
}

// ActivityFromLabel maps a form answer to an Activity.
func ActivityFromLabel(label string) (Activity, bool) {
	activity, ok := activityLabels[NormalizeLabel(label)]
	return activity, ok
}
