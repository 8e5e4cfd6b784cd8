package booking

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"coursedesk/internal/domain"
)

const exportSheet = "Buchungen"

var exportHeaders = []string{
	"Buchungsnummer", "Buchungsdatum", "Teilnehmer", "E-Mail", "Kurs", "Kursbeginn",
	"Partner", "Betrag", "MwSt %", "Netto", "Bezahlt", "Saldo", "Status",
}

func renderXLSX(rows []domain.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, header)
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(exportSheet, "A1", last, headerStyle)

	for i, b := range rows {
		row := i + 2
		f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), b.Code)
		f.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), b.BookingDate.Format("02.01.2006"))
		f.SetCellValue(exportSheet, fmt.Sprintf("C%d", row), b.StudentName)
		f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), b.StudentEmail)
		f.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), b.CourseTitle)
		if b.CourseStart != nil {
			f.SetCellValue(exportSheet, fmt.Sprintf("F%d", row), b.CourseStart.Format("02.01.2006"))
		}
		f.SetCellValue(exportSheet, fmt.Sprintf("G%d", row), b.PartnerName)
		if b.Amount != nil {
			f.SetCellValue(exportSheet, fmt.Sprintf("H%d", row), *b.Amount)
		}
		f.SetCellValue(exportSheet, fmt.Sprintf("I%d", row), b.VATRate)
		if b.NetPrice != nil {
			f.SetCellValue(exportSheet, fmt.Sprintf("J%d", row), *b.NetPrice)
		}
		f.SetCellValue(exportSheet, fmt.Sprintf("K%d", row), b.PaidTotal)
		f.SetCellValue(exportSheet, fmt.Sprintf("L%d", row), b.Saldo)
		f.SetCellValue(exportSheet, fmt.Sprintf("M%d", row), string(b.Status))
	}

	f.SetColWidth(exportSheet, "A", "A", 20)
	f.SetColWidth(exportSheet, "C", "E", 28)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
