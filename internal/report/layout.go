package report

// All layout measurements are in PDF points.

// PageSpec describes the page geometry the layout engine paginates into.
type PageSpec struct {
	Width  float64
	Height float64
	Margin float64
	// Top is where the cursor starts on every page.
	Top float64
	// BlockBottom is the distance from the page bottom past which a new
	// heading, section or notes block starts on a fresh page.
	BlockBottom float64
	// TableBottom is the distance from the page bottom a table row may not cross.
	TableBottom float64
	// NotesBottom is the distance from the page bottom a notes line may not cross.
	NotesBottom float64
	// FooterOffset is the distance of the footer baseline from the page bottom.
	FooterOffset float64
}

// A4 is the default page.
var A4 = PageSpec{
	Width:        595.28,
	Height:       841.89,
	Margin:       40,
	Top:          50,
	BlockBottom:  90,
	TableBottom:  40,
	NotesBottom:  50,
	FooterOffset: 30,
}

// ContentWidth is the width between the side margins.
func (s PageSpec) ContentWidth() float64 {
	return s.Width - 2*s.Margin
}

const (
	titleSize    = 18
	periodSize   = 11
	headingSize  = 12
	bodySize     = 10
	totalSize    = 12
	overallSize  = 11
	notesSize    = 10
	footerSize   = 9
	notesLeading = 12
	cellPadding  = 6
	cellLeading  = 11.5
	ruleHeight   = 2
)

// TableGrid is the 12-column split of Date, Description and Amount.
var TableGrid = [3]int{3, 6, 3}

// OpKind identifies a layout instruction.
type OpKind int

const (
	OpText OpKind = iota
	OpRule
	OpTableRow
)

func (k OpKind) String() string {
	switch k {
	case OpText:
		return "text"
	case OpRule:
		return "rule"
	case OpTableRow:
		return "row"
	default:
		return "unknown"
	}
}

// Cell is one table cell, already wrapped to its column width.
type Cell struct {
	Lines []string
	Span  int
}

// Op is a single positioned layout instruction. X and Y are the top-left
// corner of the box.
type Op struct {
	Kind   OpKind
	X      float64
	Y      float64
	Width  float64
	Height float64
	Text   string
	Size   float64
	Bold   bool
	Header bool
	Cells  []Cell
}

// Bottom is the y coordinate right below the op.
func (o Op) Bottom() float64 {
	return o.Y + o.Height
}

// Page is the ordered list of instructions of one page.
type Page struct {
	Ops []Op
}

// Document is the paginated layout of a report.
type Document struct {
	Spec  PageSpec
	Pages []Page
}

type layouter struct {
	spec   PageSpec
	pages  []Page
	cursor float64
}

// Layout paginates a report. It is deterministic: the same report and page
// spec always yield the same document.
func Layout(r Report, spec PageSpec) Document {
	l := &layouter{spec: spec}
	l.newPage()

	l.text(spec.Margin, r.Title, titleSize, true)
	l.cursor += 24
	l.text(spec.Margin, r.PeriodLabel, periodSize, false)
	l.cursor += 18
	l.rule()
	l.cursor += 14

	for _, sec := range r.Sections {
		l.ensureBlock()
		l.text(spec.Margin, sec.Category, headingSize, true)
		l.cursor += 18
		if len(sec.Rows) == 0 {
			l.text(spec.Margin+10, r.NoExpenses, bodySize, false)
			l.cursor += 16
		} else {
			l.table(r.Headers, sec.Rows)
			l.cursor += 6
		}
		l.text(spec.Margin+6, sec.SubtotalLine, bodySize, false)
		l.cursor += 18
	}

	l.ensureBlock()
	l.rule()
	l.cursor += 12
	l.text(spec.Margin, r.TotalLine, totalSize, true)
	l.cursor += 16
	l.text(spec.Margin, r.OverallLine, overallSize, false)
	l.cursor += 20

	if r.HasNotes() {
		l.ensureBlock()
		l.text(spec.Margin, r.NotesTitle, periodSize, true)
		l.cursor += 14
		for _, line := range Wrap(r.Notes, spec.ContentWidth(), notesSize) {
			if l.cursor+notesLeading > spec.Height-spec.NotesBottom {
				l.newPage()
			}
			l.text(spec.Margin, line, notesSize, false)
			l.cursor += notesLeading
		}
	}

	footerY := spec.Height - spec.FooterOffset - footerSize
	if l.cursor > footerY {
		l.newPage()
	}
	l.add(Op{
		Kind:   OpText,
		X:      spec.Margin,
		Y:      footerY,
		Width:  spec.ContentWidth(),
		Height: footerSize + 2,
		Text:   r.Footer,
		Size:   footerSize,
	})

	return Document{Spec: spec, Pages: l.pages}
}

func (l *layouter) newPage() {
	l.pages = append(l.pages, Page{})
	l.cursor = l.spec.Top
}

func (l *layouter) add(op Op) {
	p := &l.pages[len(l.pages)-1]
	p.Ops = append(p.Ops, op)
}

func (l *layouter) ensureBlock() {
	if l.cursor > l.spec.Height-l.spec.BlockBottom {
		l.newPage()
	}
}

func (l *layouter) text(x float64, s string, size float64, bold bool) {
	l.add(Op{
		Kind:   OpText,
		X:      x,
		Y:      l.cursor,
		Width:  l.spec.Width - l.spec.Margin - x,
		Height: size + 2,
		Text:   s,
		Size:   size,
		Bold:   bold,
	})
}

func (l *layouter) rule() {
	l.add(Op{
		Kind:   OpRule,
		X:      l.spec.Margin,
		Y:      l.cursor,
		Width:  l.spec.ContentWidth(),
		Height: ruleHeight,
	})
}

func (l *layouter) table(headers [3]string, rows []Row) {
	header := l.row(headers, true)
	l.place(header)
	for _, r := range rows {
		op := l.row([3]string{r.Date, r.Description, r.Amount}, false)
		if l.cursor+op.Height > l.spec.Height-l.spec.TableBottom {
			l.newPage()
			l.place(header)
		}
		l.place(op)
	}
}

func (l *layouter) place(op Op) {
	op.Y = l.cursor
	l.add(op)
	l.cursor += op.Height
}

func (l *layouter) row(values [3]string, header bool) Op {
	width := l.spec.ContentWidth()
	cells := make([]Cell, len(values))
	lines := 1
	for i, v := range values {
		colWidth := width*float64(TableGrid[i])/12 - 2*cellPadding
		wrapped := Wrap(v, colWidth, bodySize)
		if len(wrapped) == 0 {
			wrapped = []string{""}
		}
		cells[i] = Cell{Lines: wrapped, Span: TableGrid[i]}
		if len(wrapped) > lines {
			lines = len(wrapped)
		}
	}
	return Op{
		Kind:   OpTableRow,
		X:      l.spec.Margin,
		Width:  width,
		Height: float64(lines)*cellLeading + 2*cellPadding,
		Size:   bodySize,
		Bold:   header,
		Header: header,
		Cells:  cells,
	}
}
