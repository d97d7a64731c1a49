package report

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	mcore "github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const (
	pdfTopMarginMM    = 10
	pdfBottomMarginMM = 5
)

var headerGray = &props.Color{Red: 240, Green: 240, Blue: 240}

// PDFRenderer renders a paginated document with maroto. Every layout page
// becomes one PDF page; vertical gaps between ops become spacer rows.
type PDFRenderer struct {
	Spec PageSpec
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Spec: A4}
}

func (p *PDFRenderer) Extension() string   { return "pdf" }
func (p *PDFRenderer) ContentType() string { return "application/pdf" }

func (p *PDFRenderer) Render(ctx context.Context, r Report) ([]byte, error) {
	doc := Layout(r, p.Spec)

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Vertical).
		WithLeftMargin(toMM(p.Spec.Margin)).
		WithRightMargin(toMM(p.Spec.Margin)).
		WithTopMargin(pdfTopMarginMM).
		WithBottomMargin(pdfBottomMarginMM).
		Build()
	m := maroto.New(cfg)

	for _, pg := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.AddPages(page.New().Add(pageRows(pg, p.Spec)...))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return out.GetBytes(), nil
}

func toMM(pt float64) float64 {
	return pt * 25.4 / 72
}

// pageRows converts the positioned ops of a page into stacked maroto rows.
func pageRows(pg Page, spec PageSpec) []mcore.Row {
	var rows []mcore.Row
	y := toPoints(pdfTopMarginMM)
	for _, op := range pg.Ops {
		if gap := op.Y - y; gap > 0.01 {
			rows = append(rows, row.New(toMM(gap)))
		}
		rows = append(rows, opRow(op, spec))
		y = op.Bottom()
	}
	return rows
}

func toPoints(mm float64) float64 {
	return mm * 72 / 25.4
}

func opRow(op Op, spec PageSpec) mcore.Row {
	switch op.Kind {
	case OpRule:
		return row.New(toMM(op.Height)).Add(line.NewCol(12, props.Line{Thickness: 0.2}))
	case OpTableRow:
		return tableRow(op)
	default:
		style := fontstyle.Normal
		if op.Bold {
			style = fontstyle.Bold
		}
		return row.New(toMM(op.Height)).Add(
			text.NewCol(12, op.Text, props.Text{
				Size:  op.Size,
				Style: style,
				Left:  toMM(op.X - spec.Margin),
				Align: align.Left,
			}),
		)
	}
}

func tableRow(op Op) mcore.Row {
	style := fontstyle.Normal
	if op.Header {
		style = fontstyle.Bold
	}
	cellStyle := &props.Cell{BorderType: border.Full, BorderThickness: 0.1}
	if op.Header {
		cellStyle = &props.Cell{BorderType: border.Full, BorderThickness: 0.1, BackgroundColor: headerGray}
	}

	cols := make([]mcore.Col, 0, len(op.Cells))
	for i, cell := range op.Cells {
		a := align.Left
		if i == len(op.Cells)-1 && !op.Header {
			a = align.Right
		}
		c := col.New(cell.Span)
		for n, ln := range cell.Lines {
			c.Add(text.New(ln, props.Text{
				Size:  op.Size,
				Style: style,
				Align: a,
				Top:   toMM(cellPadding + float64(n)*cellLeading - 2),
				Left:  toMM(cellPadding / 2),
			}))
		}
		cols = append(cols, c.WithStyle(cellStyle))
	}
	return row.New(toMM(op.Height)).Add(cols...)
}
