package execution

// State is a step of a run.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateWaiting
	StateFetching
	StateReconciling
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateWaiting:
		return "waiting"
	case StateFetching:
		return "fetching"
	case StateReconciling:
		return "reconciling"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON responses.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
