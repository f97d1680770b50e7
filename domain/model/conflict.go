package model

import (
	"fmt"
	"strings"
)

// ConflictPolicy tells the writer what to do when the target table exists.
type ConflictPolicy int

const (
	// PolicyFail refuses to write into an existing table.
	PolicyFail ConflictPolicy = iota
	// PolicyReplace drops and recreates the table.
	PolicyReplace
	// PolicyAppend adds rows to the existing table.
	PolicyAppend
)

// String returns the policy name.
func (p ConflictPolicy) String() string {
	switch p {
	case PolicyReplace:
		return "replace"
	case PolicyAppend:
		return "append"
	default:
		return "fail"
	}
}

// Scope is what an existing-destination conflict is about.
type Scope int

const (
	// ScopeDatabase is the destination database file.
	ScopeDatabase Scope = iota
	// ScopeWorkbook is the destination workbook file of an export.
	ScopeWorkbook
	// ScopeTable is one table inside the destination database.
	ScopeTable
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeWorkbook:
		return "workbook"
	case ScopeTable:
		return "table"
	default:
		return "database"
	}
}

// Action is a transition chosen by a front end.
type Action int

const (
	// ActionUseExisting keeps the destination. For a table this appends.
	ActionUseExisting Action = iota
	// ActionOverwrite deletes the database or workbook file, or drops the table.
	ActionOverwrite
	// ActionRename writes to a different name.
	ActionRename
	// ActionSkip leaves the table alone and moves on.
	ActionSkip
	// ActionCancel aborts the run.
	ActionCancel
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionOverwrite:
		return "overwrite"
	case ActionRename:
		return "rename"
	case ActionSkip:
		return "skip"
	case ActionCancel:
		return "cancel"
	default:
		return "use"
	}
}

// ParseAction parses an action name as given on the command line.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "use", "use-existing", "append":
		return ActionUseExisting, nil
	case "overwrite", "replace":
		return ActionOverwrite, nil
	case "rename":
		return ActionRename, nil
	case "skip":
		return ActionSkip, nil
	case "cancel":
		return ActionCancel, nil
	default:
		return ActionCancel, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, s)
	}
}

// Decision is the transition a front end picked for one conflict.
type Decision struct {
	Action Action
	// NewName is the rename target. Ignored for other actions.
	NewName string
}

// State is a position in the resolution state machine.
type State int

const (
	// StatePrompt waits for a decision.
	StatePrompt State = iota
	// StateUseExisting keeps the existing destination.
	StateUseExisting
	// StateOverwrite replaces the existing destination.
	StateOverwrite
	// StateRename redirects to a new name.
	StateRename
	// StateSkip leaves the table untouched.
	StateSkip
	// StateCancel aborts the run.
	StateCancel
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUseExisting:
		return "use-existing"
	case StateOverwrite:
		return "overwrite"
	case StateRename:
		return "rename"
	case StateSkip:
		return "skip"
	case StateCancel:
		return "cancel"
	default:
		return "prompt"
	}
}

// Resolution resolves one existing destination. It starts in StatePrompt and
// accepts exactly one successful Apply; every state other than StatePrompt is
// terminal.
type Resolution struct {
	scope  Scope
	target string
	state  State
}

// NewResolution starts a resolution for target in the given scope.
func NewResolution(scope Scope, target string) *Resolution {
	return &Resolution{scope: scope, target: target, state: StatePrompt}
}

// Scope returns the resolution scope.
func (r *Resolution) Scope() Scope { return r.scope }

// State returns the current state.
func (r *Resolution) State() State { return r.state }

// Target returns the destination name. After a rename it is the new name.
func (r *Resolution) Target() string { return r.target }

// Terminal reports whether a decision has been applied.
func (r *Resolution) Terminal() bool { return r.state != StatePrompt }

// Apply moves the resolution out of StatePrompt.
func (r *Resolution) Apply(d Decision) (State, error) {
	if r.Terminal() {
		return r.state, fmt.Errorf("%w: %s %q is in state %s", ErrResolutionClosed, r.scope, r.target, r.state)
	}

	switch d.Action {
	case ActionUseExisting:
		if r.scope == ScopeWorkbook {
			return r.state, r.invalid(d.Action)
		}
		r.state = StateUseExisting
	case ActionOverwrite:
		r.state = StateOverwrite
	case ActionRename:
		name := strings.TrimSpace(d.NewName)
		if name == "" || name == r.target {
			return r.state, fmt.Errorf("%w: rename of %s %q needs a new name", ErrInvalidTransition, r.scope, r.target)
		}
		r.target = name
		r.state = StateRename
	case ActionSkip:
		if r.scope != ScopeTable {
			return r.state, r.invalid(d.Action)
		}
		r.state = StateSkip
	case ActionCancel:
		r.state = StateCancel
	default:
		return r.state, r.invalid(d.Action)
	}
	return r.state, nil
}

func (r *Resolution) invalid(a Action) error {
	return fmt.Errorf("%w: %s is not allowed for a %s", ErrInvalidTransition, a, r.scope)
}

// Policy returns the writer policy for the resolved state. The boolean is
// false when nothing should be written (prompt, skip, cancel).
func (r *Resolution) Policy() (ConflictPolicy, bool) {
	switch r.state {
	case StateUseExisting:
		return PolicyAppend, true
	case StateOverwrite:
		return PolicyReplace, true
	case StateRename:
		return PolicyFail, true
	default:
		return PolicyFail, false
	}
}
