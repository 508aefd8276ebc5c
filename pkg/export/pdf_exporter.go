package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders sheets into a tabular PDF. Gradesheets tend to be wide,
// so landscape orientation is used.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(sheet Sheet, title string) ([]byte, error) {
	if len(sheet.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	// First column (student name) gets double width, score columns share the rest.
	pageWidth := 277.0
	firstWidth := pageWidth * 2 / float64(len(sheet.Headers)+1)
	colWidth := pageWidth / float64(len(sheet.Headers)+1)

	pdf.SetFont("Arial", "B", 9)
	for i, header := range sheet.Headers {
		width := colWidth
		if i == 0 {
			width = firstWidth
		}
		pdf.CellFormat(width, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range sheet.Rows {
		for i, header := range sheet.Headers {
			width := colWidth
			align := "C"
			if i == 0 {
				width = firstWidth
				align = "L"
			}
			pdf.CellFormat(width, 7, row[header], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
