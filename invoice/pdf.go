package invoice

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

type column struct {
	title string
	width float64
	align string
}

var itemColumns = []column{
	{"Item", 70, "L"},
	{"Category", 35, "L"},
	{"Qty", 20, "C"},
	{"Unit Price", 30, "R"},
	{"Subtotal", 35, "R"},
}

// RenderPDF writes the document as a single-page A4 invoice
func RenderPDF(doc Document, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(doc.IssuedAt)
	pdf.SetTitle(fmt.Sprintf("Invoice %s", doc.OrderNumber), true)
	pdf.SetAuthor(doc.Restaurant, true)
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)

	// core fonts are cp1252; this maps £ and € correctly
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 10, tr(doc.Restaurant), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 8, "INVOICE", "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	meta := [][2]string{
		{"Order Number", doc.OrderNumber},
		{"Order Date", doc.OrderDate},
		{"Paid On", doc.PaidDate},
		{"Customer", doc.CustomerName},
		{"Email", doc.CustomerEmail},
		{"Order Status", doc.OrderStatus},
	}
	for _, row := range meta {
		if row[1] == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 6, row[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for _, col := range itemColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range doc.Lines {
		values := []string{line.Name, line.Category, fmt.Sprintf("%d", line.Quantity), line.UnitPrice, line.Subtotal}
		for i, col := range itemColumns {
			pdf.CellFormat(col.width, 7, tr(values[i]), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	labelWidth := itemColumns[0].width + itemColumns[1].width + itemColumns[2].width + itemColumns[3].width
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelWidth, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(itemColumns[4].width, 8, tr(doc.Total), "1", 1, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Payment", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Status: %s", doc.PaymentStatus)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Method: %s", doc.PaymentMethod)), "", 1, "L", false, 0, "")

	if doc.SpecialInstructions != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Special Instructions", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(doc.SpecialInstructions), "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Thank you for dining with %s.", doc.Restaurant)), "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render invoice %s: %w", doc.OrderNumber, err)
	}
	return pdf.Output(w)
}
