package app

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"gastos/internal/core"
	"gastos/internal/goals"
)

// Action is a user intent applied by Reduce.
type Action interface {
	actionName() string
}

type (
	// AddCategory adds a category, or selects it when it already exists
	// under any letter case.
	AddCategory struct{ Name string }

	// SelectCategory changes the category picker selection.
	SelectCategory struct{ Name string }

	// SaveExpense adds a new expense when ID is empty, otherwise edits the
	// expense with that id in place. Amount is raw form input.
	SaveExpense struct {
		ID          string
		Date        string
		Category    string
		Description string
		Amount      string
	}

	// DeleteExpense removes an expense by id.
	DeleteExpense struct{ ID string }

	// SetGoal edits one category goal.
	SetGoal struct {
		Category string
		Value    string
	}

	// SetGoals applies a bulk goal edit.
	SetGoals struct{ Values map[string]string }

	PrevMonth    struct{}
	NextMonth    struct{}
	SelectPeriod struct{ Period core.Period }
)

func (AddCategory) actionName() string    { return "add_category" }
func (SelectCategory) actionName() string { return "select_category" }
func (SaveExpense) actionName() string    { return "save_expense" }
func (DeleteExpense) actionName() string  { return "delete_expense" }
func (SetGoal) actionName() string        { return "set_goal" }
func (SetGoals) actionName() string       { return "set_goals" }
func (PrevMonth) actionName() string      { return "prev_month" }
func (NextMonth) actionName() string      { return "next_month" }
func (SelectPeriod) actionName() string   { return "select_period" }

// Changes reports which persisted collections an action modified and which
// months' figures moved.
type Changes struct {
	Categories bool
	Expenses   bool
	Goals      bool
	Periods    []core.Period
}

// Persisted reports whether anything must be written to the store.
func (c Changes) Persisted() bool {
	return c.Categories || c.Expenses || c.Goals
}

func (c *Changes) touch(p core.Period) {
	if !slices.Contains(c.Periods, p) {
		c.Periods = append(c.Periods, p)
	}
}

// newID generates expense ids; replaced in tests.
var newID = uuid.NewString

// Reduce applies a to s and returns the next state. s is never modified.
// On error the returned state is s unchanged.
func Reduce(s State, a Action) (State, Changes, error) {
	next := s.Clone()
	var ch Changes

	switch a := a.(type) {
	case AddCategory:
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return s, Changes{}, core.ErrEmptyCategory
		}
		if existing, ok := core.FindCategory(next.Categories, name); ok {
			next.Selected = existing
			return next, ch, nil
		}
		next.Categories = append([]string{name}, next.Categories...)
		next.Selected = name
		ch.Categories = true

	case SelectCategory:
		name := strings.TrimSpace(a.Name)
		if existing, ok := core.FindCategory(next.Categories, name); ok {
			name = existing
		}
		next.Selected = name

	case SaveExpense:
		e, err := expenseFromForm(a)
		if err != nil {
			return s, Changes{}, err
		}
		if a.ID == "" {
			e.ID = newID()
			next.Expenses = append(next.Expenses, e)
		} else {
			i := next.expenseIndex(a.ID)
			if i < 0 {
				return s, Changes{}, fmt.Errorf("%w: %s", core.ErrExpenseNotFound, a.ID)
			}
			if p, ok := periodOf(next.Expenses[i]); ok {
				ch.touch(p)
			}
			next.Expenses[i] = e
		}
		if p, ok := periodOf(e); ok {
			ch.touch(p)
		}
		ch.Expenses = true

	case DeleteExpense:
		i := next.expenseIndex(a.ID)
		if i < 0 {
			return s, Changes{}, fmt.Errorf("%w: %s", core.ErrExpenseNotFound, a.ID)
		}
		if p, ok := periodOf(next.Expenses[i]); ok {
			ch.touch(p)
		}
		next.Expenses = slices.Delete(next.Expenses, i, i+1)
		ch.Expenses = true

	case SetGoal:
		category := strings.TrimSpace(a.Category)
		if category == "" {
			return s, Changes{}, core.ErrEmptyCategory
		}
		next.Goals = goals.Set(next.Goals, category, a.Value)
		ch.Goals = true
		ch.touch(next.Period)

	case SetGoals:
		next.Goals = goals.Apply(next.Goals, a.Values)
		ch.Goals = true
		ch.touch(next.Period)

	case PrevMonth:
		next.Period = next.Period.Prev()

	case NextMonth:
		next.Period = next.Period.Next()

	case SelectPeriod:
		if !a.Period.Valid() {
			return s, Changes{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, a.Period.Month)
		}
		next.Period = a.Period

	default:
		return s, Changes{}, fmt.Errorf("unknown action %T", a)
	}

	return next, ch, nil
}

// expenseFromForm validates the form fields and builds the canonical record.
func expenseFromForm(a SaveExpense) (core.Expense, error) {
	if strings.TrimSpace(a.Date) == "" {
		return core.Expense{}, core.ErrMissingDate
	}
	if strings.TrimSpace(a.Category) == "" {
		return core.Expense{}, core.ErrMissingCategory
	}
	d, err := core.ParseDate(a.Date)
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := core.ParseAmount(a.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: %q", err, a.Amount)
	}
	e := core.Expense{
		ID:          a.ID,
		Date:        d.ISO(),
		Category:    strings.TrimSpace(a.Category),
		Description: strings.TrimSpace(a.Description),
		Amount:      amount,
	}
	return e, e.Validate()
}

func periodOf(e core.Expense) (core.Period, bool) {
	d, err := core.ParseDate(e.Date)
	if err != nil {
		return core.Period{}, false
	}
	return core.PeriodOf(d.Time), true
}
