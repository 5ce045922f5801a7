package attendance

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// TimesheetPDF renders a timesheet as a PDF document.
func TimesheetPDF(sheet Timesheet, userName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Timesheet")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("User: %s", userName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", sheet.From.Format("2006-01-02"), sheet.To.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(50, 8, "Date", "1", 0, "", false, 0, "")
	pdf.CellFormat(30, 8, "Entries", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, "Hours", "1", 1, "", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	totalMinutes := 0
	for _, row := range sheet.Rows {
		pdf.CellFormat(50, 8, row.Date.Format("2006-01-02"), "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", row.Entries), "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", float64(row.TotalMinutes)/60), "1", 1, "", false, 0, "")
		totalMinutes += row.TotalMinutes
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(80, 8, "Total", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", float64(totalMinutes)/60), "1", 1, "", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
