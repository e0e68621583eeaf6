package scaffold

import (
	"errors"
	"fmt"
)

// State is a point in the scaffold workflow.
type State int

const (
	StateStart State = iota
	StateValidating
	StateFetching
	StateExtracting
	StatePromoting
	StatePatching
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateStart:      "start",
	StateValidating: "validating",
	StateFetching:   "fetching",
	StateExtracting: "extracting",
	StatePromoting:  "promoting",
	StatePatching:   "patching",
	StateDone:       "done",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Failure kinds.
var (
	ErrUsage             = errors.New("invalid usage")
	ErrDestinationExists = errors.New("destination already exists")
	ErrFetch             = errors.New("fetching release failed")
	ErrPromote           = errors.New("promoting staged project failed")
	ErrManifestPatch     = errors.New("patching package.json failed")
)

// StepError reports the state a run failed in, the failure kind and the
// underlying cause. Both Kind and Err match with errors.Is.
type StepError struct {
	State State
	Kind  error
	Err   error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.State, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.State, e.Kind, e.Err)
}

func (e *StepError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func stepErr(state State, kind, err error) *StepError {
	return &StepError{State: state, Kind: kind, Err: err}
}
