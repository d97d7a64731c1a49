package app

import (
	"errors"

	"gastos/internal/core"
	"gastos/internal/report"
)

var ErrInvalidPeriod = errors.New("invalid period")

// IsValidation reports whether err comes from bad user input. Such errors
// abort the action without touching state.
func IsValidation(err error) bool {
	for _, target := range []error{
		core.ErrMissingDate,
		core.ErrMissingCategory,
		core.ErrInvalidAmount,
		core.ErrInvalidDate,
		core.ErrEmptyCategory,
		ErrInvalidPeriod,
		report.ErrUnknownFormat,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err references a record that no longer exists.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrExpenseNotFound)
}
