package review

import "errors"

// State is the engine's position in a review pass.
type State int

const (
	Idle State = iota
	Loading
	Empty
	Failed
	Presenting
	Revealing
	Submitting
	Completed
)

var stateNames = [...]string{
	Idle:       "idle",
	Loading:    "loading",
	Empty:      "empty",
	Failed:     "failed",
	Presenting: "presenting",
	Revealing:  "revealing",
	Submitting: "submitting",
	Completed:  "completed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the pass is over and Start may begin a new one.
func (s State) Terminal() bool {
	switch s {
	case Idle, Empty, Failed, Completed:
		return true
	}
	return false
}

var (
	// ErrInvalidTransition is returned when an action is not legal in the
	// current state.
	ErrInvalidTransition = errors.New("invalid review transition")

	// ErrBusy is returned when an action is attempted while a request is in
	// flight.
	ErrBusy = errors.New("review request in flight")
)
