package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/contractor-payments/internal/model"
)

const (
	summarySheet     = "Summary"
	professionsSheet = "Professions"
	clientsSheet     = "Clients"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.AdminReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet(professionsSheet); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet(clientsSheet); err != nil {
		return nil, err
	}

	g.writeSummary(file, report)
	g.writeProfessions(file, report.Professions)
	g.writeClients(file, report.Clients)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, report model.AdminReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	set("A1", "Period start")
	set("B1", formatDate(report.PeriodStart))
	set("A2", "Period end")
	set("B2", formatDate(report.PeriodEnd))
	set("A3", "Generated at")
	set("B3", report.GeneratedAt.UTC().Format(time.RFC3339))
	set("A4", "Total earned")
	set("B4", report.TotalEarned().InexactFloat64())
	set("A5", "Best profession")
	if len(report.Professions) > 0 {
		set("B5", report.Professions[0].Profession)
	} else {
		set("B5", "-")
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 20)
	_ = file.SetColWidth(summarySheet, "B", "B", 28)
}

func (g *Generator) writeProfessions(file *excelize.File, rows []model.ProfessionEarnings) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(professionsSheet, cell, value)
	}

	set("A1", "Profession")
	set("B1", "Total earned")
	for i, row := range rows {
		r := i + 2
		set(fmt.Sprintf("A%d", r), row.Profession)
		set(fmt.Sprintf("B%d", r), row.TotalEarned.InexactFloat64())
	}

	_ = file.SetColWidth(professionsSheet, "A", "A", 30)
	_ = file.SetColWidth(professionsSheet, "B", "B", 16)
}

func (g *Generator) writeClients(file *excelize.File, rows []model.ClientPayment) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(clientsSheet, cell, value)
	}

	set("A1", "Client id")
	set("B1", "Full name")
	set("C1", "Paid")
	for i, row := range rows {
		r := i + 2
		set(fmt.Sprintf("A%d", r), row.ID)
		set(fmt.Sprintf("B%d", r), row.FullName)
		set(fmt.Sprintf("C%d", r), row.Paid.InexactFloat64())
	}

	_ = file.SetColWidth(clientsSheet, "A", "A", 12)
	_ = file.SetColWidth(clientsSheet, "B", "B", 40)
	_ = file.SetColWidth(clientsSheet, "C", "C", 16)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
