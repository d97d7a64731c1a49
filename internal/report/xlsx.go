package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Report"

// XLSXRenderer writes the report as a single spreadsheet: one block per
// category followed by the totals and the notes.
type XLSXRenderer struct{}

func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

func (x *XLSXRenderer) Extension() string { return "xlsx" }
func (x *XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

type xlsxStyles struct {
	title, heading, header, amount, bold int
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	var s xlsxStyles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	}); err != nil {
		return s, err
	}
	if s.heading, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
	}); err != nil {
		return s, err
	}
	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#F0F0F0"}, Pattern: 1},
		Border: thin,
	}); err != nil {
		return s, err
	}
	numFmt := `"R$" #,##0.00`
	if s.amount, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &numFmt,
		Border:       thin,
	}); err != nil {
		return s, err
	}
	s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	return s, err
}

func (x *XLSXRenderer) Render(ctx context.Context, r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	st, err := newXLSXStyles(f)
	if err != nil {
		return nil, fmt.Errorf("create styles: %w", err)
	}

	w := &sheetWriter{f: f, row: 1}
	w.put(1, r.Title, st.title)
	w.next()
	w.put(1, r.PeriodLabel, 0)
	w.next()
	w.next()

	for _, sec := range r.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w.put(1, sec.Category, st.heading)
		w.next()
		if len(sec.Rows) == 0 {
			w.put(1, r.NoExpenses, 0)
			w.next()
		} else {
			for i, h := range r.Headers {
				w.put(i+1, h, st.header)
			}
			w.next()
			for _, row := range sec.Rows {
				w.put(1, row.Date, 0)
				w.put(2, row.Description, 0)
				w.put(3, row.Value.InexactFloat64(), st.amount)
				w.next()
			}
		}
		w.put(1, sec.SubtotalLine, 0)
		w.next()
		w.next()
	}

	w.put(1, r.TotalLine, st.bold)
	w.next()
	w.put(1, r.OverallLine, 0)
	w.next()

	if r.HasNotes() {
		w.next()
		w.put(1, r.NotesTitle, st.bold)
		w.next()
		w.put(1, r.Notes, 0)
		w.next()
	}
	w.next()
	w.put(1, r.Footer, 0)

	if w.err != nil {
		return nil, w.err
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 14); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(xlsxSheet, "B", "B", 48); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(xlsxSheet, "C", "C", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the current row and the first error.
type sheetWriter struct {
	f   *excelize.File
	row int
	err error
}

func (w *sheetWriter) next() { w.row++ }

func (w *sheetWriter) put(col int, v any, style int) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(xlsxSheet, cell, v); err != nil {
		w.err = err
		return
	}
	if style != 0 {
		w.err = w.f.SetCellStyle(xlsxSheet, cell, cell, style)
	}
}
