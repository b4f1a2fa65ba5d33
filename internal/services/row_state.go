package services

import (
	"fmt"

	"github.com/SAP-F-2025/refdata-service/internal/stats"
)

// RowState is the position of an import row in its lifecycle
type RowState string

const (
	RowPending   RowState = "pending"
	RowValidated RowState = "validated"
	RowResolved  RowState = "fk-resolved"
	RowCreate    RowState = "create"
	RowUpdate    RowState = "update"
	RowDelete    RowState = "delete"
	RowRestore   RowState = "restore"
	RowSkip      RowState = "skip"
	RowError     RowState = "error"
)

var rowTransitions = map[RowState][]RowState{
	RowPending:   {RowValidated, RowError},
	RowValidated: {RowResolved, RowError},
	RowResolved:  {RowCreate, RowUpdate, RowDelete, RowRestore, RowSkip, RowError},
}

// IsTerminal reports whether no further transition is allowed
func (s RowState) IsTerminal() bool {
	_, ok := rowTransitions[s]
	return !ok
}

// CanTransition reports whether a row may move from s to next
func (s RowState) CanTransition(next RowState) bool {
	for _, allowed := range rowTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Counter returns the stats counter a terminal state increments
func (s RowState) Counter() (stats.Counter, bool) {
	switch s {
	case RowCreate:
		return stats.Created, true
	case RowUpdate:
		return stats.Updated, true
	case RowDelete:
		return stats.Deleted, true
	case RowRestore:
		return stats.Restored, true
	case RowSkip:
		return stats.Skipped, true
	case RowError:
		return stats.Errored, true
	}
	return "", false
}

// Advance moves the row to next, failing on a transition the lifecycle does not allow
func (r *ImportRow) Advance(next RowState) error {
	if !r.State.CanTransition(next) {
		return fmt.Errorf("row %s of %s cannot move from %s to %s", r.Location, r.SheetName, r.State, next)
	}
	r.State = next
	return nil
}

// Fail moves the row to the error state from any non-terminal state
func (r *ImportRow) Fail() {
	if !r.State.IsTerminal() {
		r.State = RowError
	}
}

// Excluded reports whether the row must not be persisted
func (r *ImportRow) Excluded() bool {
	return r.State == RowError
}
