package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gastos/internal/core"
	"gastos/internal/goals"
	applog "gastos/internal/log"
	ports "gastos/internal/sheets"
)

// ErrTabNotFound is returned when a month was never written.
var ErrTabNotFound = errors.New("month tab not found")

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *applog.Logger
}

// Ensure interface conformance
var (
	_ ports.SummaryWriter = (*Client)(nil)
	_ ports.SummaryReader = (*Client)(nil)
)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = applog.NewLogger(nil)
	}
	logger = logger.WithComponent(applog.ComponentSheets)

	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(creds),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

// credentials prefers inline JSON over a credentials file.
func credentials(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// tabName is the sheet title of a month, e.g. "2024-03".
func tabName(p core.Period) string {
	return p.Key()
}

func tabRange(p core.Period, cells string) string {
	return fmt.Sprintf("'%s'!%s", tabName(p), cells)
}

// WriteMonthSummary replaces the tab of ov.Period with the overview rows.
func (c *Client) WriteMonthSummary(ctx context.Context, ov core.MonthOverview) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	exists, err := c.tabExists(ctx, ov.Period)
	if err != nil {
		return err
	}
	if !exists {
		req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tabName(ov.Period)}},
		}}}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("add sheet %s: %w", tabName(ov.Period), err)
		}
	}

	all := tabRange(ov.Period, "A:E")
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, all, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", all, err)
	}

	vr := &gsheet.ValueRange{Values: summaryRows(ov)}
	rng := tabRange(ov.Period, "A1")
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	c.logger.InfoContext(ctx, "Month summary written",
		applog.FieldPeriod, ov.Period.Key(),
		"rows", len(vr.Values))
	return nil
}

// ReadMonthSummary parses a month tab back into an overview.
func (c *Client) ReadMonthSummary(ctx context.Context, p core.Period) (core.MonthOverview, error) {
	if c.svc == nil {
		return core.MonthOverview{}, errors.New("sheets service not initialized")
	}
	exists, err := c.tabExists(ctx, p)
	if err != nil {
		return core.MonthOverview{}, err
	}
	if !exists {
		return core.MonthOverview{}, fmt.Errorf("%w: %s", ErrTabNotFound, tabName(p))
	}
	rng := tabRange(p, "A1:E")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseSummary(resp.Values, p)
}

func (c *Client) tabExists(ctx context.Context, p core.Period) (bool, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("get spreadsheet: %w", err)
	}
	title := tabName(p)
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// summaryRows lays an overview out as header, one row per category and a
// closing total row.
func summaryRows(ov core.MonthOverview) [][]any {
	rows := make([][]any, 0, len(ov.ByCategory)+2)
	header := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		header[i] = h
	}
	rows = append(rows, header)
	for _, ca := range ov.ByCategory {
		rows = append(rows, row(ca.Name, goals.Compare(ca.Goal, ca.Spent)))
	}
	rows = append(rows, row(ports.TotalLabel, goals.Compare(ov.GoalTotal, ov.Total)))
	return rows
}

func row(name string, c goals.Comparison) []any {
	return []any{
		name,
		c.Spent.InexactFloat64(),
		c.Goal.InexactFloat64(),
		c.Remaining.InexactFloat64(),
		c.Status.String(),
	}
}

// parseSummary converts a values matrix (as returned by the Sheets API)
// into an overview. Rows with an unreadable name are skipped; unreadable
// amounts count as zero.
func parseSummary(values [][]any, p core.Period) (core.MonthOverview, error) {
	ov := core.MonthOverview{Period: p, Total: decimal.Zero, GoalTotal: decimal.Zero}
	if len(values) == 0 {
		return ov, nil
	}
	headers := toStrings(values[0])
	if len(headers) < 3 || !strings.EqualFold(headers[0], ports.Header[0]) {
		return core.MonthOverview{}, fmt.Errorf("unexpected summary header: got headers=%v", headers)
	}

	sawTotal := false
	for _, raw := range values[1:] {
		cols := toStrings(raw)
		name := safeGet(cols, 0)
		if name == "" {
			continue
		}
		spent, goal := parseAmount(safeGet(cols, 1)), parseAmount(safeGet(cols, 2))
		if strings.EqualFold(name, ports.TotalLabel) {
			ov.Total, ov.GoalTotal = spent, goal
			sawTotal = true
			continue
		}
		ov.ByCategory = append(ov.ByCategory, core.CategoryAmount{Name: name, Spent: spent, Goal: goal})
	}
	if !sawTotal {
		for _, ca := range ov.ByCategory {
			ov.Total = ov.Total.Add(ca.Spent)
			ov.GoalTotal = ov.GoalTotal.Add(ca.Goal)
		}
	}
	return ov, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func parseAmount(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
