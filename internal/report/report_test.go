package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/goals"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	march    = core.Period{Year: 2024, Month: 2}
	fixedNow = time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)
)

func marchInput() Input {
	return Input{
		Period:     march,
		Categories: []string{"Food", "Leisure", "Transport"},
		Expenses: []core.Expense{
			{ID: "1", Date: "2024-03-05", Category: "Food", Description: "market", Amount: dec("50")},
			{ID: "2", Date: "2024-03-20", Category: "Food", Description: "bakery", Amount: dec("30")},
			{ID: "3", Date: "2024-04-01", Category: "Food", Amount: dec("10")},
			{ID: "4", Date: "2024-03-11", Category: "Leisure", Description: "cinema", Amount: dec("45")},
		},
		Goals: core.Goals{"Food": dec("100"), "Leisure": dec("20")},
		Notes: "  remember the rent  ",
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		prefix string
		period core.Period
		ext    string
		want   string
	}{
		{"", march, "pdf", "relatorio_gastos_2024_03.pdf"},
		{"report", core.Period{Year: 2025, Month: 11}, "xlsx", "report_2025_12.xlsx"},
		{"x", core.Period{Year: 2023, Month: 0}, "pdf", "x_2023_01.pdf"},
	}
	for _, tt := range tests {
		if got := Filename(tt.prefix, tt.period, tt.ext); got != tt.want {
			t.Errorf("Filename(%q, %+v, %q) = %q, want %q", tt.prefix, tt.period, tt.ext, got, tt.want)
		}
	}
}

func TestLabelsPhrasing(t *testing.T) {
	surplus := goals.Compare(dec("100"), dec("80"))
	want := fmt.Sprintf("Subtotal: %s | Goal: %s | Surplus: %s remaining",
		core.FormatMoney(dec("80")), core.FormatMoney(dec("100")), core.FormatMoney(dec("20")))
	if got := English.SubtotalLine(surplus); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	deficit := goals.Compare(dec("20"), dec("45"))
	if got := English.Status(deficit); got != "Deficit: exceeded by "+core.FormatMoney(dec("25")) {
		t.Fatalf("unexpected deficit phrase %q", got)
	}
	if got := Portuguese.Status(deficit); !strings.HasPrefix(got, "Déficit: estourou") {
		t.Fatalf("unexpected portuguese phrase %q", got)
	}

	if got := English.PeriodLabel(march); got != "March 2024" {
		t.Fatalf("period label = %q", got)
	}
	if got := Portuguese.PeriodLabel(march); got != "Março 2024" {
		t.Fatalf("period label = %q", got)
	}
	if LabelsFor("en").Title != English.Title || LabelsFor("pt-BR").Title != Portuguese.Title {
		t.Fatalf("LabelsFor picked the wrong language")
	}
	if LabelsFor("fr").Title != Portuguese.Title {
		t.Fatalf("unknown language should fall back to portuguese")
	}
}

func TestBuild(t *testing.T) {
	in := marchInput()
	rep := Build(in, English, fixedNow)

	if len(rep.Sections) != 2 {
		t.Fatalf("expected Food and Leisure sections, got %d", len(rep.Sections))
	}
	if rep.Sections[0].Category != "Food" || rep.Sections[1].Category != "Leisure" {
		t.Fatalf("sections not sorted: %s, %s", rep.Sections[0].Category, rep.Sections[1].Category)
	}
	food := rep.Sections[0]
	if len(food.Rows) != 2 || food.Rows[0].Description != "market" || food.Rows[0].Date != "05/03/2024" {
		t.Fatalf("unexpected food rows: %+v", food.Rows)
	}
	if !food.Comparison.Remaining.Equal(dec("20")) || food.Comparison.Status != goals.Surplus {
		t.Fatalf("unexpected food comparison: %+v", food.Comparison)
	}
	if rep.Sections[1].Comparison.Status != goals.Deficit {
		t.Fatalf("leisure should be in deficit")
	}
	if !rep.Overall.Spent.Equal(dec("125")) || !rep.Overall.Goal.Equal(dec("120")) {
		t.Fatalf("unexpected overall: %+v", rep.Overall)
	}
	if rep.TotalLine != "Total for the month: "+core.FormatMoney(dec("125")) {
		t.Fatalf("unexpected total line %q", rep.TotalLine)
	}
	if rep.Notes != "remember the rent" {
		t.Fatalf("notes not trimmed: %q", rep.Notes)
	}
	if rep.Footer != "Generated on 02/04/2024 09:30" {
		t.Fatalf("unexpected footer %q", rep.Footer)
	}
	if in.Expenses[0].Amount.String() != "50" || len(in.Goals) != 2 {
		t.Fatalf("input mutated")
	}
}

func TestBuildIncludeEmpty(t *testing.T) {
	in := marchInput()
	in.IncludeEmpty = true
	rep := Build(in, English, fixedNow)
	if len(rep.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(rep.Sections))
	}
	transport := rep.Sections[2]
	if transport.Category != "Transport" || len(transport.Rows) != 0 {
		t.Fatalf("unexpected empty section %+v", transport)
	}

	doc := Layout(rep, A4)
	found := false
	for _, op := range doc.Pages[0].Ops {
		if op.Kind == OpText && op.Text == "no expenses this month" {
			found = true
		}
	}
	if !found {
		t.Fatalf("empty category line missing from layout")
	}
}

func TestLayoutSinglePage(t *testing.T) {
	doc := Layout(Build(marchInput(), English, fixedNow), A4)
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}
	ops := doc.Pages[0].Ops
	if ops[0].Text != English.Title || ops[0].Y != A4.Top || !ops[0].Bold {
		t.Fatalf("title op unexpected: %+v", ops[0])
	}
	footer := ops[len(ops)-1]
	if footer.Text != "Generated on 02/04/2024 09:30" {
		t.Fatalf("last op should be the footer, got %+v", footer)
	}
	if math.Abs(footer.Y+footer.Size-(A4.Height-A4.FooterOffset)) > 1e-9 {
		t.Fatalf("footer baseline at %v, want %v", footer.Y+footer.Size, A4.Height-A4.FooterOffset)
	}

	var headers int
	for _, op := range ops {
		if op.Kind == OpTableRow && op.Header {
			headers++
			if op.Cells[0].Lines[0] != "Date" || op.Cells[2].Lines[0] != "Amount" {
				t.Fatalf("unexpected header cells %+v", op.Cells)
			}
		}
	}
	if headers != 2 {
		t.Fatalf("expected one header per table, got %d", headers)
	}
}

func bigInput(n int) Input {
	in := Input{Period: march, Categories: []string{"Food"}}
	for i := 0; i < n; i++ {
		in.Expenses = append(in.Expenses, core.Expense{
			ID:          fmt.Sprint(i),
			Date:        fmt.Sprintf("2024-03-%02d", i%28+1),
			Category:    "Food",
			Description: fmt.Sprintf("item %d", i),
			Amount:      dec("1"),
		})
	}
	return in
}

func TestLayoutSplitsTablesAcrossPages(t *testing.T) {
	doc := Layout(Build(bigInput(120), English, fixedNow), A4)
	if len(doc.Pages) < 3 {
		t.Fatalf("expected at least 3 pages, got %d", len(doc.Pages))
	}

	var bodyRows int
	for i, pg := range doc.Pages {
		for _, op := range pg.Ops {
			if op.Kind == OpTableRow {
				if op.Bottom() > A4.Height-A4.TableBottom {
					t.Fatalf("page %d: row crosses the bottom margin at %v", i, op.Bottom())
				}
				if !op.Header {
					bodyRows++
				}
			}
		}
		if i > 0 {
			first := pg.Ops[0]
			if first.Kind != OpTableRow || !first.Header || first.Y != A4.Top {
				t.Fatalf("page %d should start with a repeated header, got %+v", i, first)
			}
		}
	}
	if bodyRows != 120 {
		t.Fatalf("expected 120 body rows, got %d", bodyRows)
	}
}

func TestLayoutStartsBlocksOnFreshPage(t *testing.T) {
	in := bigInput(0)
	in.Categories = nil
	for c := 0; c < 40; c++ {
		cat := fmt.Sprintf("Cat%02d", c)
		in.Categories = append(in.Categories, cat)
		in.Expenses = append(in.Expenses, core.Expense{Date: "2024-03-01", Category: cat, Amount: dec("2")})
	}
	doc := Layout(Build(in, English, fixedNow), A4)
	for i, pg := range doc.Pages {
		for _, op := range pg.Ops {
			if op.Kind == OpText && strings.HasPrefix(op.Text, "Cat") && op.Y > A4.Height-A4.BlockBottom {
				t.Fatalf("page %d: heading %q starts below the block margin", i, op.Text)
			}
		}
	}
}

func TestLayoutWrapsNotes(t *testing.T) {
	in := marchInput()
	in.Notes = strings.Repeat("lorem ipsum dolor sit amet ", 600)
	doc := Layout(Build(in, English, fixedNow), A4)
	if len(doc.Pages) < 2 {
		t.Fatalf("long notes should continue on a new page")
	}
	for _, pg := range doc.Pages {
		for _, op := range pg.Ops {
			if op.Kind == OpText && strings.HasPrefix(op.Text, "lorem") {
				if TextWidth(op.Text, notesSize) > A4.ContentWidth() {
					t.Fatalf("note line too wide: %q", op.Text)
				}
				if op.Y+notesLeading > A4.Height-A4.NotesBottom {
					t.Fatalf("note line crosses the bottom margin at %v", op.Y)
				}
			}
		}
	}
}

func TestLayoutIsDeterministic(t *testing.T) {
	rep := Build(marchInput(), English, fixedNow)
	a := Layout(rep, A4)
	b := Layout(rep, A4)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("layout is not deterministic")
	}

	later := Build(marchInput(), English, fixedNow.Add(time.Hour))
	c := Layout(later, A4)
	if len(a.Pages) != len(c.Pages) {
		t.Fatalf("page count changed with the timestamp")
	}
	last := len(a.Pages) - 1
	opsA, opsC := a.Pages[last].Ops, c.Pages[last].Ops
	if !reflect.DeepEqual(opsA[:len(opsA)-1], opsC[:len(opsC)-1]) {
		t.Fatalf("only the footer may differ between runs")
	}
}

func TestWrap(t *testing.T) {
	lines := Wrap("short", 100, 10)
	if len(lines) != 1 || lines[0] != "short" {
		t.Fatalf("unexpected wrap %q", lines)
	}
	long := strings.Repeat("m", 200)
	for _, l := range Wrap(long, 50, 10) {
		if TextWidth(l, 10) > 50 {
			t.Fatalf("line %q exceeds width", l)
		}
	}
	if got := Wrap("a\nb", 100, 10); len(got) != 2 {
		t.Fatalf("paragraphs not kept: %q", got)
	}
}

type stubRenderer struct {
	body  []byte
	err   error
	panic bool
	got   Report
}

func (s *stubRenderer) Render(_ context.Context, r Report) ([]byte, error) {
	s.got = r
	if s.panic {
		panic("boom")
	}
	return s.body, s.err
}
func (s *stubRenderer) Extension() string   { return "txt" }
func (s *stubRenderer) ContentType() string { return "text/plain" }

func marchData() Data {
	in := marchInput()
	return Data{Categories: in.Categories, Expenses: in.Expenses, Goals: in.Goals}
}

func TestServiceGenerate(t *testing.T) {
	stub := &stubRenderer{body: []byte("ok")}
	svc := NewService(English, "").WithRenderer(FormatPDF, stub).WithClock(func() time.Time { return fixedNow })

	art, err := svc.Generate(context.Background(), Request{Period: march, Format: FormatPDF}, marchData())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if art.Filename != "relatorio_gastos_2024_03.txt" || art.ContentType != "text/plain" || string(art.Body) != "ok" {
		t.Fatalf("unexpected artifact %+v", art)
	}
	if stub.got.PeriodLabel != "March 2024" {
		t.Fatalf("renderer got %q", stub.got.PeriodLabel)
	}
}

func TestServiceRenderFailures(t *testing.T) {
	tests := []struct {
		name string
		stub *stubRenderer
	}{
		{"error", &stubRenderer{err: errors.New("disk full")}},
		{"panic", &stubRenderer{panic: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := marchData()
			svc := NewService(English, "").WithRenderer(FormatPDF, tt.stub)
			art, err := svc.Generate(context.Background(), Request{Period: march}, data)
			if !errors.Is(err, ErrRender) {
				t.Fatalf("expected ErrRender, got %v", err)
			}
			if art.Body != nil {
				t.Fatalf("failed generation must not return a body")
			}
			if len(data.Expenses) != 4 || !data.Goals["Food"].Equal(dec("100")) {
				t.Fatalf("state mutated by failing render")
			}
		})
	}
}

func TestServiceUnknownFormat(t *testing.T) {
	svc := NewService(English, "")
	if _, err := svc.Generate(context.Background(), Request{Period: march, Format: "docx"}, marchData()); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := ParseFormat("DOCX"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat from ParseFormat")
	}
	if f, err := ParseFormat(" XLSX "); err != nil || f != FormatXLSX {
		t.Fatalf("ParseFormat(XLSX) = %q, %v", f, err)
	}
}

func TestRenderers(t *testing.T) {
	svc := NewService(Portuguese, "relatorio").WithClock(func() time.Time { return fixedNow })
	tests := []struct {
		format Format
		magic  []byte
		name   string
	}{
		{FormatPDF, []byte("%PDF"), "relatorio_2024_03.pdf"},
		{FormatXLSX, []byte("PK"), "relatorio_2024_03.xlsx"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			art, err := svc.Generate(context.Background(), Request{Period: march, Format: tt.format, Notes: "ok"}, marchData())
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if !bytes.HasPrefix(art.Body, tt.magic) {
				t.Fatalf("unexpected %s header: %q", tt.format, art.Body[:min(8, len(art.Body))])
			}
			if art.Filename != tt.name {
				t.Fatalf("filename = %q, want %q", art.Filename, tt.name)
			}
		})
	}
}
