package pipeline

// State is a step of one action invocation
type State int

const (
	StateIdle State = iota
	StateConfirming
	StateBuilding
	StateInFlight
	StateSucceeded
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateConfirming: "confirming",
	StateBuilding:   "building",
	StateInFlight:   "in-flight",
	StateSucceeded:  "settled:success",
	StateFailed:     "settled:failure",
}

func (s State) String() string {
	return stateNames[s]
}

// Settled reports whether s is a terminal settle state
func (s State) Settled() bool {
	return s == StateSucceeded || s == StateFailed
}
