package service

// State is the grade-fetch workflow state.
type State int

// Grade-fetch states.
const (
	StateIdle State = iota
	StateLoadingGrades
	StateLoadingRoster
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateLoadingGrades:
		return "LOADING_GRADES"
	case StateLoadingRoster:
		return "LOADING_ROSTER"
	case StateReady:
		return "READY"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// MLState is the state of one ML overlay.
type MLState int

// ML overlay states.
const (
	MLIdle MLState = iota
	MLLoading
	MLReady
	MLError
)

func (s MLState) String() string {
	switch s {
	case MLIdle:
		return "IDLE_ML"
	case MLLoading:
		return "LOADING_ML"
	case MLReady:
		return "ML_READY"
	case MLError:
		return "ML_ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the state name in JSON.
func (s MLState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// MLKind selects one of the two independent overlays.
type MLKind string

// Overlay kinds.
const (
	KindProjection MLKind = "projection"
	KindRisk       MLKind = "risk"
)
