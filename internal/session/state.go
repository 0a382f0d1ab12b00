package session

// State is the lifecycle phase of an interview session.
type State int

const (
	StateCreated State = iota
	StateAwaitingResume
	StateQuestionsPending
	StateActive
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateAwaitingResume:
		return "awaiting_resume"
	case StateQuestionsPending:
		return "questions_pending"
	case StateActive:
		return "active"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, bool) {
	for st := StateCreated; st <= StateComplete; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return StateCreated, false
}
