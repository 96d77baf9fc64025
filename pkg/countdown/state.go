package countdown

// State is the refresh state of one credential.
type State uint8

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	}
	return "unknown"
}

// Event triggers a state transition.
type Event string

const (
	EventStart Event = "start"
	EventStop  Event = "stop"
)

// transitions is the full table: [from][event] -> to. There is no terminal state.
var transitions = map[State]map[Event]State{
	Stopped: {EventStart: Running},
	Running: {EventStop: Stopped},
}

// fire returns the state reached from 'from' on ev, or a *TransitionError.
func fire(id string, from State, ev Event) (State, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, &TransitionError{ID: id, State: from, Event: ev}
}

// canFire reports whether ev is allowed in state from.
func canFire(from State, ev Event) bool {
	_, ok := transitions[from][ev]
	return ok
}
