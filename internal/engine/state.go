package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a trigger is not permitted in the current state.
var ErrInvalidTransition = errors.New("invalid state transition")

// State is a stage of the draft lifecycle.
type State string

const (
	StateDraft       State = "DRAFT"
	StateValidating  State = "VALIDATING"
	StateValid       State = "VALID"
	StateNeedsRepair State = "NEEDS_REPAIR"
	StateFrozen      State = "FROZEN"
)

// IsTerminal reports whether no further transitions are allowed.
func (s State) IsTerminal() bool {
	return s == StateFrozen
}

func (s State) String() string {
	return string(s)
}

// Trigger moves the lifecycle from one state to the next.
type Trigger string

const (
	TriggerValidate Trigger = "validate"
	TriggerPass     Trigger = "pass"
	TriggerFail     Trigger = "fail"
	TriggerRepair   Trigger = "repair"
	TriggerFreeze   Trigger = "freeze"
)

var transitions = map[State]map[Trigger]State{
	StateDraft:       {TriggerValidate: StateValidating},
	StateValidating:  {TriggerPass: StateValid, TriggerFail: StateNeedsRepair},
	StateNeedsRepair: {TriggerRepair: StateDraft},
	StateValid:       {TriggerFreeze: StateFrozen},
}

// machine tracks the lifecycle of one draft.
type machine struct {
	state   State
	history []State
}

func newMachine() *machine {
	return &machine{state: StateDraft, history: []State{StateDraft}}
}

// Fire applies trigger and returns the new state.
func (m *machine) Fire(trigger Trigger) (State, error) {
	next, ok := transitions[m.state][trigger]
	if !ok {
		return m.state, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, trigger, m.state)
	}

	m.state = next
	m.history = append(m.history, next)

	return next, nil
}

// Permitted reports whether trigger is allowed from state.
func Permitted(state State, trigger Trigger) bool {
	_, ok := transitions[state][trigger]
	return ok
}
