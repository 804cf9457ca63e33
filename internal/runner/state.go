package runner

// State is a run controller phase.
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StateOrganizing State = "organizing"
	StateReporting  State = "reporting"
	StateCleaningUp State = "cleaning_up"
	StatePreserving State = "preserving"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StateIdle:       {StateExtracting, StateOrganizing, StateFailed},
	StateExtracting: {StateOrganizing, StateFailed},
	StateOrganizing: {StateReporting, StateFailed},
	StateReporting:  {StateCleaningUp, StatePreserving, StateDone},
	StateCleaningUp: {StateDone, StateFailed},
	StatePreserving: {StateDone},
}

// CanTransition reports whether to may follow from.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
