package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/contractor-payments/internal/model"
)

const fontName = "Helvetica"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders a one-page receipt for a paid job.
func (g *Generator) Generate(payment model.Payment) ([]byte, error) {
	if !payment.Job.IsPaid() {
		return nil, fmt.Errorf("job %d is not paid", payment.Job.ID)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle(fmt.Sprintf("Payment receipt for job %d", payment.Job.ID), false)
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(0, 10, "Payment receipt", "", 1, "C", false, 0, "")
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Job #%d under contract #%d", payment.Job.ID, payment.Contract.ID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Paid on %s", formatDateTime(payment.Job.PaymentDate)), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	addPartyBlock(pdf, "Client", payment.Client)
	pdf.Ln(2)
	addPartyBlock(pdf, "Contractor", payment.Contractor)
	pdf.Ln(4)

	headers := []string{"Description", "Contract status", "Amount"}
	colWidths := []float64{100, 40, 30}
	drawTableRow(pdf, headers, colWidths, true)
	drawTableRow(pdf, []string{
		safeValue(payment.Job.Description),
		string(payment.Contract.Status),
		payment.Job.Price.StringFixed(2),
	}, colWidths, false)

	pdf.Ln(4)
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total paid: %s", payment.Job.Price.StringFixed(2)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addPartyBlock(pdf *gofpdf.Fpdf, title string, profile model.Profile) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	lines := []string{
		fmt.Sprintf("%s (profile #%d)", safeValue(profile.FullName()), profile.ID),
		fmt.Sprintf("Profession: %s", safeValue(profile.Profession)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format("02.01.2006 15:04 MST")
}
