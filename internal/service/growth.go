package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/export"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/growth"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/metrics"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/repository"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/textgen"
)

// ErrNotConfigured is returned by optional features whose backend is not wired.
var ErrNotConfigured = errors.New("feature not configured")

// GrowthService runs the dashboard pipelines. Every operation takes the
// caller's session and fails with domain.ErrUnauthenticated when it is
// missing or expired.
type GrowthService struct {
	store    repository.RecordStore
	gen      textgen.Generator
	refs     growth.References
	birth    time.Time
	policy   growth.UpdatePolicy
	uploader Uploader
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func (s *GrowthService) authorize(sess *domain.Session) error {
	if !sess.Valid(s.now()) {
		return domain.ErrUnauthenticated
	}
	return nil
}

func (s *GrowthService) selectAll(ctx context.Context) ([]domain.GrowthRecord, error) {
	records, err := s.store.SelectAll(ctx)
	s.metrics.ObserveStore("select", err)
	return records, err
}

// Records returns every record ordered by date.
func (s *GrowthService) Records(ctx context.Context, sess *domain.Session) ([]domain.GrowthRecord, error) {
	if err := s.authorize(sess); err != nil {
		return nil, err
	}
	return s.selectAll(ctx)
}

// EntryResult is the outcome of a submitted entry.
type EntryResult struct {
	Record domain.GrowthRecord `json:"record"`
	// Generated is set when Record.Note came from the text generator.
	Generated bool `json:"generated"`
	// GenerationError explains why a requested note could not be generated.
	GenerationError string                `json:"generation_error,omitempty"`
	Records         []domain.GrowthRecord `json:"records"`
}

// SubmitEntry stores a new record. A diary note is generated when the user
// asks for one or leaves the note empty; if generation fails the entry is
// saved with the user's note.
func (s *GrowthService) SubmitEntry(ctx context.Context, sess *domain.Session, in EntryInput) (EntryResult, error) {
	if err := s.authorize(sess); err != nil {
		return EntryResult{}, err
	}
	rec, err := in.Validate()
	if err != nil {
		return EntryResult{}, err
	}

	var res EntryResult
	if in.GenerateNote || rec.Note == "" {
		history, err := s.selectAll(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("history unavailable, generating without averages")
		}
		note, err := s.generateEntryNote(ctx, rec, history)
		if err != nil {
			res.GenerationError = err.Error()
			log.Warn().Err(err).Str("date", in.Date).Msg("note generation failed, keeping user note")
		} else {
			rec.Note = note
			res.Generated = true
		}
	}

	saved, err := s.store.Insert(ctx, rec.Date, rec.RecordFields)
	s.metrics.ObserveStore("insert", err)
	if err != nil {
		log.Error().Err(err).Str("date", in.Date).Msg("insert failed")
		return EntryResult{}, err
	}
	res.Record = saved
	log.Info().Int64("id", saved.ID).Str("date", in.Date).Bool("generated", res.Generated).Msg("entry saved")

	res.Records, err = s.selectAll(ctx)
	return res, err
}

func (s *GrowthService) generateEntryNote(ctx context.Context, rec domain.GrowthRecord, history []domain.GrowthRecord) (string, error) {
	window := growth.TrailingWindow(append(history[:len(history):len(history)], rec), rec.Date)
	prompt := growth.BuildEntryPrompt(rec, window, s.referenceFor(rec.Date))
	note, err := s.gen.Generate(ctx, prompt)
	s.metrics.ObserveGeneration("entry_note", err)
	return note, err
}

// referenceFor picks the nearest WHO row for the baby's age on day.
func (s *GrowthService) referenceFor(day time.Time) *growth.ReferenceStats {
	if s.birth.IsZero() {
		return nil
	}
	age := growth.AgeDays(s.birth, day)
	if age < 0 {
		return nil
	}
	table, ok := s.refs.Table(growth.StandardWHO)
	if !ok {
		return nil
	}
	entry, ok := growth.NearestEntry(table, age)
	if !ok {
		return nil
	}
	return &growth.ReferenceStats{Standard: table.Name, AgeDays: age, Entry: *entry}
}

// Failure is one store call that failed inside a batch.
type Failure struct {
	ID    int64  `json:"id"`
	Op    string `json:"op"`
	Error string `json:"error"`
}

// BatchReport summarises a save-edits batch. The batch is best-effort: a
// failed call is recorded here and the remaining calls still run.
type BatchReport struct {
	Updated  []int64   `json:"updated"`
	Deleted  []int64   `json:"deleted"`
	Rejected []int64   `json:"rejected"`
	Failures []Failure `json:"failures"`
}

// OK reports whether every planned call succeeded and nothing was rejected.
func (r BatchReport) OK() bool { return len(r.Failures) == 0 && len(r.Rejected) == 0 }

// SaveEdits reconciles the edited table against the stored records and
// applies the result. All updates are attempted before any deletion.
func (s *GrowthService) SaveEdits(ctx context.Context, sess *domain.Session, edited []domain.GrowthRecord) (BatchReport, []domain.GrowthRecord, error) {
	report := BatchReport{Updated: []int64{}, Deleted: []int64{}, Rejected: []int64{}, Failures: []Failure{}}
	if err := s.authorize(sess); err != nil {
		return report, nil, err
	}
	if err := validateEdits(edited); err != nil {
		return report, nil, err
	}

	original, err := s.selectAll(ctx)
	if err != nil {
		return report, nil, err
	}
	plan := growth.Reconcile(original, edited, s.policy)

	for _, r := range plan.Rejected {
		report.Rejected = append(report.Rejected, r.ID)
		log.Warn().Int64("id", r.ID).Msg("edited row has an unknown or repeated id, not applied")
	}

	for _, u := range plan.Updates {
		err := s.store.Update(ctx, u.ID, u.Fields)
		s.metrics.ObserveStore("update", err)
		if err != nil {
			report.Failures = append(report.Failures, Failure{ID: u.ID, Op: "update", Error: err.Error()})
			log.Error().Err(err).Int64("id", u.ID).Str("op", "update").Msg("batch operation failed")
			continue
		}
		report.Updated = append(report.Updated, u.ID)
	}

	for _, id := range plan.Deletions {
		err := s.store.Delete(ctx, id)
		s.metrics.ObserveStore("delete", err)
		if err != nil {
			report.Failures = append(report.Failures, Failure{ID: id, Op: "delete", Error: err.Error()})
			log.Error().Err(err).Int64("id", id).Str("op", "delete").Msg("batch operation failed")
			continue
		}
		report.Deleted = append(report.Deleted, id)
	}

	log.Info().
		Int("updated", len(report.Updated)).
		Int("deleted", len(report.Deleted)).
		Int("rejected", len(report.Rejected)).
		Int("failed", len(report.Failures)).
		Msg("edits saved")

	records, err := s.selectAll(ctx)
	return report, records, err
}

// DeleteRecord removes one record and returns the refreshed set.
func (s *GrowthService) DeleteRecord(ctx context.Context, sess *domain.Session, id int64) ([]domain.GrowthRecord, error) {
	if err := s.authorize(sess); err != nil {
		return nil, err
	}
	err := s.store.Delete(ctx, id)
	s.metrics.ObserveStore("delete", err)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("id", id).Msg("record deleted")
	return s.selectAll(ctx)
}

// DashboardView is everything the dashboard page renders.
type DashboardView struct {
	growth.Dashboard
	Today      time.Time            `json:"today"`
	AgeDays    int                  `json:"age_days"`
	AgeWeeks   float64              `json:"age_weeks"`
	AgeMonths  int                  `json:"age_months"`
	LastWeek   growth.WindowStats   `json:"last_week"`
	Latest     *domain.GrowthRecord `json:"latest,omitempty"`
	TotalCount int                  `json:"total_count"`
}

func (s *GrowthService) Dashboard(ctx context.Context, sess *domain.Session) (DashboardView, error) {
	if err := s.authorize(sess); err != nil {
		return DashboardView{}, err
	}
	records, err := s.selectAll(ctx)
	if err != nil {
		return DashboardView{}, err
	}

	today := domain.Day(s.now())
	age := growth.AgeDays(s.birth, today)
	view := DashboardView{
		Dashboard:  growth.BuildDashboard(records),
		Today:      today,
		AgeDays:    age,
		AgeWeeks:   growth.AgeWeeks(age),
		AgeMonths:  growth.AgeMonthsBucket(age),
		LastWeek:   growth.TrailingWindow(records, today),
		TotalCount: len(records),
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].HasDate() {
			latest := records[i]
			view.Latest = &latest
			break
		}
	}
	return view, nil
}

// Compare buckets the records by age and joins them with a growth standard.
// Buckets are months unless granularity asks for days.
func (s *GrowthService) Compare(ctx context.Context, sess *domain.Session, standard, granularity string) ([]domain.ComparisonRow, error) {
	if err := s.authorize(sess); err != nil {
		return nil, err
	}
	if standard == "" {
		standard = growth.StandardWHO
	}
	table, ok := s.refs.Table(standard)
	if !ok {
		return nil, &domain.ValidationError{Field: "standard", Value: standard}
	}

	var b growth.Bucketer
	switch domain.AgeUnit(granularity) {
	case domain.UnitMonth, "":
		b = growth.MonthBucketer{Birth: s.birth}
	case domain.UnitDay:
		b = growth.DayBucketer{Birth: s.birth}
	default:
		return nil, &domain.ValidationError{Field: "granularity", Value: granularity}
	}

	records, err := s.selectAll(ctx)
	if err != nil {
		return nil, err
	}
	return growth.Compare(records, table, b), nil
}

// WeeklyReport is a generated summary of the seven days ending on To.
type WeeklyReport struct {
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Count     int       `json:"count"`
	Summary   string    `json:"summary"`
	Published bool      `json:"published"`
}

// WeeklyReport summarises the week ending on end and, when a notifier is
// wired, publishes it. A publish failure is logged and does not fail the call.
func (s *GrowthService) WeeklyReport(ctx context.Context, sess *domain.Session, end time.Time) (WeeklyReport, error) {
	if err := s.authorize(sess); err != nil {
		return WeeklyReport{}, err
	}
	if end.IsZero() {
		end = s.now()
	}
	end = domain.Day(end)

	records, err := s.selectAll(ctx)
	if err != nil {
		return WeeklyReport{}, err
	}
	week := growth.InWindow(records, end)
	report := WeeklyReport{From: end.AddDate(0, 0, -(growth.WindowDays - 1)), To: end, Count: len(week)}

	summary, err := s.gen.Generate(ctx, growth.BuildWeeklyPrompt(week))
	s.metrics.ObserveGeneration("weekly_report", err)
	if err != nil {
		return report, err
	}
	report.Summary = summary

	if s.notifier != nil {
		if err := s.notifier.PublishWeeklyReport(ctx, report.From, report.To, summary); err != nil {
			log.Error().Err(err).Time("to", end).Msg("weekly report publish failed")
		} else {
			report.Published = true
		}
	}
	return report, nil
}

func (s *GrowthService) ExportCSV(ctx context.Context, sess *domain.Session) ([]byte, error) {
	records, err := s.Records(ctx, sess)
	if err != nil {
		return nil, err
	}
	return export.CSV(records)
}

func (s *GrowthService) ExportXLSX(ctx context.Context, sess *domain.Session) ([]byte, error) {
	records, err := s.Records(ctx, sess)
	if err != nil {
		return nil, err
	}
	return export.XLSX(records)
}

// UploadExport stores a CSV export under a timestamped key and returns its
// download link.
func (s *GrowthService) UploadExport(ctx context.Context, sess *domain.Session) (string, error) {
	if err := s.authorize(sess); err != nil {
		return "", err
	}
	if s.uploader == nil {
		return "", fmt.Errorf("export upload: %w", ErrNotConfigured)
	}
	data, err := s.ExportCSV(ctx, sess)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("exports/%s/%s", s.now().UTC().Format("20060102T150405Z"), export.CSVFileName)
	url, err := s.uploader.UploadExport(ctx, key, data, export.CSVContentType)
	if err != nil {
		return "", err
	}
	log.Info().Str("key", key).Int("bytes", len(data)).Msg("export uploaded")
	return url, nil
}
