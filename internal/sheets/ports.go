// Package sheets mirrors month summaries into a spreadsheet.
package sheets

import (
	"context"

	"gastos/internal/core"
)

// Ports for outbound adapters.
type (
	// SummaryWriter stores the overview of one month, replacing any
	// previous version of the same month.
	SummaryWriter interface {
		WriteMonthSummary(ctx context.Context, ov core.MonthOverview) error
	}

	// SummaryReader returns what was last written for a month.
	SummaryReader interface {
		ReadMonthSummary(ctx context.Context, p core.Period) (core.MonthOverview, error)
	}
)

// Header is the first row of every month tab.
var Header = []string{"Category", "Spent", "Goal", "Remaining", "Status"}

// TotalLabel marks the last row of a month tab.
const TotalLabel = "Total"
