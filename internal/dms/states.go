// internal/dms/states.go
package dms

// ApplicationState is a state token of the legacy listing API.
type ApplicationState string

const (
	StateInitiated           ApplicationState = "initiated"
	StateReceived            ApplicationState = "received"
	StateClosed              ApplicationState = "closed"
	StateRefused             ApplicationState = "refused"
	StateWithoutContinuation ApplicationState = "without_continuation"
)

// BankInformationStatus is the internal status derived from an application state.
type BankInformationStatus string

const (
	StatusAccepted BankInformationStatus = "ACCEPTED"
	StatusRejected BankInformationStatus = "REJECTED"
	StatusDraft    BankInformationStatus = "DRAFT"
)

var (
	// AllStates is the default filter of a crawl.
	AllStates = []ApplicationState{
		StateInitiated,
		StateReceived,
		StateClosed,
		StateRefused,
		StateWithoutContinuation,
	}

	AcceptedStates = []ApplicationState{StateClosed}
	DraftStates    = []ApplicationState{StateReceived, StateInitiated}
	RejectedStates = []ApplicationState{StateRefused, StateWithoutContinuation}
)

var stateStatuses = map[ApplicationState]BankInformationStatus{
	StateClosed:              StatusAccepted,
	StateInitiated:           StatusDraft,
	StateReceived:            StatusDraft,
	StateRefused:             StatusRejected,
	StateWithoutContinuation: StatusRejected,
}

// The GraphQL API names the same states in French.
var graphQLStates = map[string]ApplicationState{
	"en_construction": StateInitiated,
	"en_instruction":  StateReceived,
	"accepte":         StateClosed,
	"refuse":          StateRefused,
	"sans_suite":      StateWithoutContinuation,
}

// ClassifyState maps a legacy state token to a BankInformationStatus.
// Unknown tokens return a *CannotRegisterBankInformationError.
func ClassifyState(state string) (BankInformationStatus, error) {
	status, ok := stateStatuses[ApplicationState(state)]
	if !ok {
		return "", &CannotRegisterBankInformationError{State: state}
	}
	return status, nil
}

// ClassifyGraphQLState does the same for a GraphQL state token.
func ClassifyGraphQLState(state string) (BankInformationStatus, error) {
	legacy, ok := StateFromGraphQL(state)
	if !ok {
		return "", &CannotRegisterBankInformationError{State: state}
	}
	return ClassifyState(string(legacy))
}

// StateFromGraphQL translates a GraphQL state token to its legacy equivalent.
func StateFromGraphQL(state string) (ApplicationState, bool) {
	s, ok := graphQLStates[state]
	return s, ok
}

func stateSet(states []ApplicationState) map[ApplicationState]struct{} {
	set := make(map[ApplicationState]struct{}, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}
