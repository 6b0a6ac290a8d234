package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"acessorios/internal/core"
)

const (
	pdfMargin   = 14.0
	pdfRowH     = 7.0
	pdfTableTop = 45.0
)

type pdfColumn struct {
	title string
	width float64
	align string
}

var pdfColumns = []pdfColumn{
	{"ID", 16, "C"},
	{"Produto", 64, "L"},
	{"Setor", 34, "L"},
	{"Qtd", 16, "C"},
	{"Unitário", 26, "R"},
	{"Total", 26, "R"},
}

func writePDF(w io.Writer, records []core.Record, issued time.Time) error {
	pdf, err := renderPDF(records, issued)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

// renderPDF lays out the report: title block, summary line and a grid
// table whose header row is repeated on every page.
func renderPDF(records []core.Record, issued time.Time) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetCreationDate(issued)
	pdf.SetTitle("Relatório de Acessórios", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(pdfMargin, 22, tr("Relatório de Acessórios"))

	totals := core.ComputeTotals(records)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(100, 100, 100)
	pdf.Text(pdfMargin, 30, tr("Data de Emissão: "+core.FormatDate(issued)))
	pdf.Text(pdfMargin, 36, tr(fmt.Sprintf("Total de Itens: %d | Valor Total: %s",
		totals.Items, core.FormatCurrency(totals.Value))))

	pdf.SetY(pdfTableTop)
	drawHeader(pdf, tr)

	_, pageH := pdf.GetPageSize()
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, r := range records {
		if pdf.GetY()+pdfRowH > pageH-pdfMargin {
			pdf.AddPage()
			drawHeader(pdf, tr)
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(0, 0, 0)
		}
		cells := []string{
			strconv.Itoa(r.ProductID),
			fit(pdf, tr(r.Name), pdfColumns[1].width-2),
			fit(pdf, tr(r.Sector), pdfColumns[2].width-2),
			strconv.Itoa(r.Quantity),
			tr(core.FormatCurrency(r.UnitPrice)),
			tr(core.FormatCurrency(r.Total)),
		}
		for i, c := range pdfColumns {
			pdf.CellFormat(c.width, pdfRowH, cells[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}

func drawHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(200, 200, 200)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, pdfRowH+1, tr(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

// fit shortens s with an ellipsis until it fits in width. s is already in
// the single-byte font encoding, so it is cut bytewise.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
