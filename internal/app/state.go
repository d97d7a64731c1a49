// Package app holds the application state and the controller that applies
// user actions to it.
package app

import (
	"slices"

	"gastos/internal/core"
	"gastos/internal/storage"
)

// State is everything the UI shell observes.
type State struct {
	Categories []string
	Expenses   []core.Expense
	Goals      core.Goals
	Period     core.Period
	// Selected is the category chosen in the category picker.
	Selected string
}

// NewState builds a state from a loaded snapshot.
func NewState(snap storage.Snapshot, p core.Period) State {
	s := State{
		Categories: snap.Categories,
		Expenses:   snap.Expenses,
		Goals:      snap.Goals,
		Period:     p,
	}
	if len(s.Categories) > 0 {
		s.Selected = s.Categories[0]
	}
	if s.Goals == nil {
		s.Goals = core.Goals{}
	}
	return s.Clone()
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Categories = slices.Clone(s.Categories)
	out.Expenses = slices.Clone(s.Expenses)
	if s.Goals != nil {
		out.Goals = s.Goals.Clone()
	}
	return out
}

// Snapshot returns the persisted part of the state.
func (s State) Snapshot() storage.Snapshot {
	c := s.Clone()
	return storage.Snapshot{Categories: c.Categories, Expenses: c.Expenses, Goals: c.Goals}
}

// Expense looks an expense up by id.
func (s State) Expense(id string) (core.Expense, bool) {
	i := s.expenseIndex(id)
	if i < 0 {
		return core.Expense{}, false
	}
	return s.Expenses[i], true
}

func (s State) expenseIndex(id string) int {
	return slices.IndexFunc(s.Expenses, func(e core.Expense) bool { return e.ID == id })
}
