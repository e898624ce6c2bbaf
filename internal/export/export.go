// Package export renders growth records as downloadable tables.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

const (
	CSVFileName  = "happy_dashboard_data.csv"
	XLSXFileName = "happy_dashboard_data.xlsx"

	CSVContentType  = "text/csv; charset=utf-8"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "growth"
)

// Columns is the header row shared by every export format.
var Columns = []string{
	"id", "date", "height_cm", "weight_kg", "sleep_hours",
	"formula_ml", "diaper_changes", "hospital_visit", "note",
}

func float(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func date(r domain.GrowthRecord) string {
	if !r.HasDate() {
		return ""
	}
	return r.Date.Format(domain.DateLayout)
}

func row(r domain.GrowthRecord) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		date(r),
		float(r.HeightCM),
		float(r.WeightKG),
		float(r.SleepHours),
		strconv.Itoa(r.FormulaML),
		strconv.Itoa(r.DiaperChanges),
		r.HospitalVisit,
		r.Note,
	}
}

// WriteCSV writes records as UTF-8 CSV prefixed with a byte-order mark so
// spreadsheet tools detect the encoding of non-ASCII notes.
func WriteCSV(w io.Writer, records []domain.GrowthRecord) error {
	bom := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bom)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("write csv row id=%d: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return bom.Close()
}

func CSV(records []domain.GrowthRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX renders records into a single-sheet workbook with typed numeric cells.
func XLSX(records []domain.GrowthRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write xlsx header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			r.ID, date(r), r.HeightCM, r.WeightKG, r.SleepHours,
			r.FormulaML, r.DiaperChanges, r.HospitalVisit, r.Note,
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write xlsx row id=%d: %w", r.ID, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
