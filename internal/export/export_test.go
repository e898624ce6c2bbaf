package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

func records() []domain.GrowthRecord {
	day := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	return []domain.GrowthRecord{
		{ID: 1, Date: day, RecordFields: domain.RecordFields{HeightCM: 49.9, WeightKG: 3.3, SleepHours: 14, FormulaML: 600, DiaperChanges: 8, Note: "첫날, \"잘\" 잤어요"}},
		{ID: 2, Date: day.AddDate(0, 0, 1), RecordFields: domain.RecordFields{HeightCM: 50.2, WeightKG: 3.35, SleepHours: 13.5, FormulaML: 620, DiaperChanges: 7, HospitalVisit: "check-up"}},
	}
}

func TestCSV_BOMAndRows(t *testing.T) {
	out, err := CSV(records())
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(out, bom), "export starts with a UTF-8 byte-order mark")
	assert.Equal(t, 1, bytes.Count(out, bom))

	rows, err := csv.NewReader(bytes.NewReader(out[len(bom):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{"1", "2025-07-10", "49.9", "3.3", "14", "600", "8", "", "첫날, \"잘\" 잤어요"}, rows[1])
	assert.Equal(t, "check-up", rows[2][7])
}

func TestCSV_EmptyHasHeaderOnly(t *testing.T) {
	out, err := CSV(nil)
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, bom...), []byte("id,date,height_cm,weight_kg,sleep_hours,formula_ml,diaper_changes,hospital_visit,note\n")...), out)
}

func TestCSV_ZeroDateIsBlank(t *testing.T) {
	out, err := CSV([]domain.GrowthRecord{{ID: 9}})
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(out[len(bom):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "", rows[1][1])
}

func TestXLSX(t *testing.T) {
	out, err := XLSX(records())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "2025-07-10", rows[1][1])
	assert.Equal(t, "49.9", rows[1][2])
	assert.Equal(t, "check-up", rows[2][7])
}
