package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// EntryInput is the new-entry form.
type EntryInput struct {
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	HeightCM      float64 `json:"height_cm" validate:"gte=30,lte=100"`
	WeightKG      float64 `json:"weight_kg" validate:"gte=2,lte=20"`
	SleepHours    float64 `json:"sleep_hours" validate:"gte=0,lte=24"`
	FormulaML     int     `json:"formula_ml" validate:"gte=0,lte=2000"`
	DiaperChanges int     `json:"diaper_changes" validate:"gte=0,lte=20"`
	HospitalVisit string  `json:"hospital_visit"`
	Note          string  `json:"note"`
	// GenerateNote asks for a generated diary note even when Note is filled in.
	GenerateNote bool `json:"generate_note"`
}

// editedFields checks rows coming back from the table editor. Height and
// weight may be zero there since older rows can lack them.
type editedFields struct {
	HeightCM      float64 `json:"height_cm" validate:"omitempty,gte=30,lte=100"`
	WeightKG      float64 `json:"weight_kg" validate:"omitempty,gte=2,lte=20"`
	SleepHours    float64 `json:"sleep_hours" validate:"gte=0,lte=24"`
	FormulaML     int     `json:"formula_ml" validate:"gte=0,lte=2000"`
	DiaperChanges int     `json:"diaper_changes" validate:"gte=0,lte=20"`
}

var ranges = map[string][2]any{
	"height_cm":      {30.0, 100.0},
	"weight_kg":      {2.0, 20.0},
	"sleep_hours":    {0.0, 24.0},
	"formula_ml":     {0, 2000},
	"diaper_changes": {0, 20},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates s and reports the first failing field as a
// *domain.ValidationError.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	ve := &domain.ValidationError{Field: fe.Field(), Value: fe.Value()}
	if r, ok := ranges[fe.Field()]; ok {
		ve.Min, ve.Max = r[0], r[1]
	}
	return ve
}

// Validate checks the form and returns its date and record fields.
func (in EntryInput) Validate() (domain.GrowthRecord, error) {
	if err := check(in); err != nil {
		return domain.GrowthRecord{}, err
	}
	date, err := domain.ParseDay(in.Date)
	if err != nil {
		return domain.GrowthRecord{}, &domain.ValidationError{Field: "date", Value: in.Date}
	}
	return domain.GrowthRecord{
		Date: date,
		RecordFields: domain.RecordFields{
			HeightCM:      in.HeightCM,
			WeightKG:      in.WeightKG,
			SleepHours:    in.SleepHours,
			FormulaML:     in.FormulaML,
			DiaperChanges: in.DiaperChanges,
			HospitalVisit: strings.TrimSpace(in.HospitalVisit),
			Note:          strings.TrimSpace(in.Note),
		},
	}, nil
}

func validateEdits(edited []domain.GrowthRecord) error {
	for _, r := range edited {
		err := check(editedFields{
			HeightCM:      r.HeightCM,
			WeightKG:      r.WeightKG,
			SleepHours:    r.SleepHours,
			FormulaML:     r.FormulaML,
			DiaperChanges: r.DiaperChanges,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// EditedRow is one row sent back by the table editor. The date is carried
// as text because the store never updates it; YYYY-MM-DD and RFC 3339 are
// both read and anything else is ignored.
type EditedRow struct {
	ID   int64  `json:"id"`
	Date string `json:"date"`
	domain.RecordFields
}

// Record converts the row for reconciliation.
func (r EditedRow) Record() domain.GrowthRecord {
	rec := domain.GrowthRecord{ID: r.ID, RecordFields: r.RecordFields}
	if d, err := domain.ParseDay(r.Date); err == nil {
		rec.Date = d
	} else if t, err := time.Parse(time.RFC3339, r.Date); err == nil {
		rec.Date = domain.Day(t)
	}
	return rec
}

// EditedRecords converts editor rows for SaveEdits.
func EditedRecords(rows []EditedRow) []domain.GrowthRecord {
	out := make([]domain.GrowthRecord, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out
}
