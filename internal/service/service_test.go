package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/auth"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/growth"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/repository"
)

var (
	birth = time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	now   = time.Date(2025, 8, 20, 9, 30, 0, 0, time.UTC)
)

type mockGen struct{ mock.Mock }

func (m *mockGen) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// flakyStore fails chosen calls and records the order of mutating calls.
type flakyStore struct {
	*repository.MemoryStore
	failUpdate map[int64]bool
	failDelete map[int64]bool
	failSelect bool
	calls      []string
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: repository.NewMemoryStore(), failUpdate: map[int64]bool{}, failDelete: map[int64]bool{}}
}

func (f *flakyStore) SelectAll(ctx context.Context) ([]domain.GrowthRecord, error) {
	if f.failSelect {
		return nil, &domain.StoreError{Op: "select", Err: errors.New("connection reset")}
	}
	return f.MemoryStore.SelectAll(ctx)
}

func (f *flakyStore) Update(ctx context.Context, id int64, fields domain.RecordFields) error {
	f.calls = append(f.calls, fmt.Sprintf("update:%d", id))
	if f.failUpdate[id] {
		return &domain.StoreError{Op: "update", ID: id, Err: errors.New("timeout")}
	}
	return f.MemoryStore.Update(ctx, id, fields)
}

func (f *flakyStore) Delete(ctx context.Context, id int64) error {
	f.calls = append(f.calls, fmt.Sprintf("delete:%d", id))
	if f.failDelete[id] {
		return &domain.StoreError{Op: "delete", ID: id, Err: errors.New("timeout")}
	}
	return f.MemoryStore.Delete(ctx, id)
}

type fakeUploader struct {
	key  string
	data []byte
	err  error
}

func (f *fakeUploader) UploadExport(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.key, f.data = key, data
	return "https://exports.example/" + key, f.err
}

type fakeNotifier struct {
	summary string
	err     error
}

func (f *fakeNotifier) PublishWeeklyReport(_ context.Context, _, _ time.Time, summary string) error {
	f.summary = summary
	return f.err
}

type fixture struct {
	svc   *GrowthService
	store *flakyStore
	gen   *mockGen
	sess  *domain.Session
}

func newFixture(t *testing.T, mutate ...func(*Deps)) *fixture {
	t.Helper()
	refs, err := growth.LoadReferences("")
	require.NoError(t, err)

	f := &fixture{
		store: newFlakyStore(),
		gen:   &mockGen{},
		sess:  &domain.Session{Token: "t-1", UserID: "u-1", ExpiresAt: now.Add(time.Hour)},
	}
	d := Deps{
		Store:        f.store,
		Generator:    f.gen,
		SessionStore: auth.NewSessionStore(time.Minute),
		References:   refs,
		Birth:        birth,
		Policy:       growth.UpdateAlways,
	}
	for _, m := range mutate {
		m(&d)
	}
	f.svc = New(d).Growth
	f.svc.now = func() time.Time { return now }
	return f
}

func (f *fixture) seed(t *testing.T, n int) []domain.GrowthRecord {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.store.MemoryStore.Insert(context.Background(), birth.AddDate(0, 0, 30+i), domain.RecordFields{
			HeightCM: 54 + float64(i)*0.1, WeightKG: 4.4, SleepHours: 14, FormulaML: 700, DiaperChanges: 8, Note: fmt.Sprintf("day %d", i),
		})
		require.NoError(t, err)
	}
	all, err := f.store.MemoryStore.SelectAll(context.Background())
	require.NoError(t, err)
	return all
}

func entry() EntryInput {
	return EntryInput{Date: "2025-08-20", HeightCM: 55.5, WeightKG: 4.6, SleepHours: 14.5, FormulaML: 720, DiaperChanges: 7}
}

func TestGrowthService_RequiresSession(t *testing.T) {
	f := newFixture(t)
	expired := &domain.Session{Token: "old", ExpiresAt: now.Add(-time.Minute)}
	ctx := context.Background()

	for _, sess := range []*domain.Session{nil, expired} {
		_, err := f.svc.Records(ctx, sess)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		_, err = f.svc.SubmitEntry(ctx, sess, entry())
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		_, _, err = f.svc.SaveEdits(ctx, sess, nil)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		_, err = f.svc.DeleteRecord(ctx, sess, 1)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		_, err = f.svc.Compare(ctx, sess, "", "")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		_, err = f.svc.ExportCSV(ctx, sess)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		_, err = f.svc.UploadExport(ctx, sess)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	}
	f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestSubmitEntry_GeneratesNoteWhenEmpty(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 3)

	var prompt string
	f.gen.On("Generate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		prompt = args.String(1)
	}).Return("A cosy day with lots of naps.", nil)

	res, err := f.svc.SubmitEntry(context.Background(), f.sess, entry())

	require.NoError(t, err)
	assert.True(t, res.Generated)
	assert.Equal(t, "A cosy day with lots of naps.", res.Record.Note)
	assert.Len(t, res.Records, 4)
	assert.Contains(t, prompt, "Today is 2025-08-20.")
	assert.Contains(t, prompt, "Averages over the last 7 days")
	assert.Contains(t, prompt, "Reference values (who) for a baby aged 41 days")
}

func TestSubmitEntry_KeepsUserNoteWithoutRequest(t *testing.T) {
	f := newFixture(t)
	in := entry()
	in.Note = "  first smile  "

	res, err := f.svc.SubmitEntry(context.Background(), f.sess, in)

	require.NoError(t, err)
	assert.False(t, res.Generated)
	assert.Equal(t, "first smile", res.Record.Note)
	f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestSubmitEntry_GenerationFailureFallsBack(t *testing.T) {
	f := newFixture(t)
	f.gen.On("Generate", mock.Anything, mock.Anything).Return("", fmt.Errorf("%w: quota exceeded", domain.ErrGeneration))
	in := entry()
	in.Note = "rolled over"
	in.GenerateNote = true

	res, err := f.svc.SubmitEntry(context.Background(), f.sess, in)

	require.NoError(t, err, "a generation failure never blocks the save")
	assert.False(t, res.Generated)
	assert.Contains(t, res.GenerationError, "quota exceeded")
	assert.Equal(t, "rolled over", res.Record.Note)
	require.Len(t, res.Records, 1)
	assert.NotZero(t, res.Records[0].ID)
}

func TestSubmitEntry_RejectsOutOfRange(t *testing.T) {
	f := newFixture(t)
	in := entry()
	in.HeightCM = 12

	_, err := f.svc.SubmitEntry(context.Background(), f.sess, in)

	assert.ErrorIs(t, err, domain.ErrValidation)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "height_cm", ve.Field)
	assert.Equal(t, 30.0, ve.Min)
	all, _ := f.store.SelectAll(context.Background())
	assert.Empty(t, all)
}

func TestSubmitEntry_RejectsBadDate(t *testing.T) {
	f := newFixture(t)
	in := entry()
	in.Date = "20/08/2025"

	_, err := f.svc.SubmitEntry(context.Background(), f.sess, in)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "date", ve.Field)
}

func TestSaveEdits_UpdatesDeletesAndRejects(t *testing.T) {
	f := newFixture(t)
	orig := f.seed(t, 3)

	edited := []domain.GrowthRecord{orig[0], orig[2], {ID: 99, Date: birth, RecordFields: domain.RecordFields{Note: "forged"}}}
	edited[1].Note = "edited"

	report, records, err := f.svc.SaveEdits(context.Background(), f.sess, edited)

	require.NoError(t, err)
	assert.Equal(t, []int64{orig[0].ID, orig[2].ID}, report.Updated, "unchanged rows are still written under the default policy")
	assert.Equal(t, []int64{orig[1].ID}, report.Deleted)
	assert.Equal(t, []int64{99}, report.Rejected)
	assert.Empty(t, report.Failures)
	assert.False(t, report.OK())

	require.Len(t, records, 2)
	assert.Equal(t, "edited", records[1].Note)
	assert.Equal(t, orig[2].Date, records[1].Date, "dates are never edited")
}

func TestSaveEdits_ChangedPolicy(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Policy = growth.UpdateChanged })
	orig := f.seed(t, 3)

	edited := append([]domain.GrowthRecord{}, orig...)
	edited[1].SleepHours = 11

	report, _, err := f.svc.SaveEdits(context.Background(), f.sess, edited)

	require.NoError(t, err)
	assert.Equal(t, []int64{orig[1].ID}, report.Updated)
	assert.True(t, report.OK())
}

func TestSaveEdits_BestEffortAndUpdatesFirst(t *testing.T) {
	f := newFixture(t)
	orig := f.seed(t, 4)
	f.store.failUpdate[orig[0].ID] = true
	f.store.failDelete[orig[2].ID] = true

	report, records, err := f.svc.SaveEdits(context.Background(), f.sess, []domain.GrowthRecord{orig[0], orig[1]})

	require.NoError(t, err)
	assert.Equal(t, []int64{orig[1].ID}, report.Updated)
	assert.Equal(t, []int64{orig[3].ID}, report.Deleted)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, Failure{ID: orig[0].ID, Op: "update", Error: report.Failures[0].Error}, report.Failures[0])
	assert.Equal(t, "delete", report.Failures[1].Op)
	assert.Len(t, records, 3)

	assert.Equal(t, []string{
		fmt.Sprintf("update:%d", orig[0].ID),
		fmt.Sprintf("update:%d", orig[1].ID),
		fmt.Sprintf("delete:%d", orig[2].ID),
		fmt.Sprintf("delete:%d", orig[3].ID),
	}, f.store.calls)
}

func TestSaveEdits_ValidationStopsBatch(t *testing.T) {
	f := newFixture(t)
	orig := f.seed(t, 2)
	edited := append([]domain.GrowthRecord{}, orig...)
	edited[0].DiaperChanges = 50

	_, _, err := f.svc.SaveEdits(context.Background(), f.sess, edited)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.store.calls)
}

func TestSaveEdits_AllowsMissingMeasurements(t *testing.T) {
	f := newFixture(t)
	orig := f.seed(t, 1)
	edited := append([]domain.GrowthRecord{}, orig...)
	edited[0].HeightCM = 0

	report, _, err := f.svc.SaveEdits(context.Background(), f.sess, edited)
	require.NoError(t, err)
	assert.Len(t, report.Updated, 1)
}

func TestSaveEdits_SelectFailure(t *testing.T) {
	f := newFixture(t)
	f.store.failSelect = true

	_, _, err := f.svc.SaveEdits(context.Background(), f.sess, nil)

	assert.ErrorIs(t, err, domain.ErrStoreOperation)
	assert.Empty(t, f.store.calls)
}

func TestDeleteRecord(t *testing.T) {
	f := newFixture(t)
	orig := f.seed(t, 2)

	records, err := f.svc.DeleteRecord(context.Background(), f.sess, orig[0].ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = f.svc.DeleteRecord(context.Background(), f.sess, orig[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 3)

	view, err := f.svc.Dashboard(context.Background(), f.sess)

	require.NoError(t, err)
	assert.Equal(t, 41, view.AgeDays)
	assert.Equal(t, 5.9, view.AgeWeeks)
	assert.Equal(t, 1, view.AgeMonths)
	assert.Len(t, view.Height, 3)
	assert.Equal(t, 3, view.TotalCount)
	require.NotNil(t, view.Latest)
	assert.Equal(t, "day 2", view.Latest.Note)
	assert.True(t, view.LastWeek.Empty(), "seeded days fall outside the last week")
}

func TestCompare(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 3)
	ctx := context.Background()

	rows, err := f.svc.Compare(ctx, f.sess, "", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Bucket)
	assert.InDelta(t, 54.1, rows[0].PersonalHeightMean, 1e-9)

	rows, err = f.svc.Compare(ctx, f.sess, growth.StandardNational, "day")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, 54.7, r.ReferenceHeight, "day %d maps to the nearest day key 30", r.Bucket)
	}

	rows, err = f.svc.Compare(ctx, f.sess, growth.StandardNational, "month")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 4.47, rows[0].ReferenceWeight, "month 1 maps to the nearest day key 30")

	rows, err = f.svc.Compare(ctx, f.sess, growth.StandardNational, "")
	require.NoError(t, err)
	require.Len(t, rows, 1, "buckets default to months")
	assert.Equal(t, 1, rows[0].Bucket)

	_, err = f.svc.Compare(ctx, f.sess, "cdc", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.Compare(ctx, f.sess, "", "year")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCompare_NationalOffKeyAges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, age := range []int{10, 20, 40, 95} {
		_, err := f.store.MemoryStore.Insert(ctx, birth.AddDate(0, 0, age), domain.RecordFields{HeightCM: 55, WeightKG: 5})
		require.NoError(t, err)
	}

	byDay, err := f.svc.Compare(ctx, f.sess, growth.StandardNational, "day")
	require.NoError(t, err)
	require.Len(t, byDay, 4)
	assert.Equal(t, 52.3, byDay[0].ReferenceHeight, "day 10 is nearest to key 15")
	assert.Equal(t, 61.4, byDay[3].ReferenceHeight, "day 95 is nearest to key 90")

	byDefault, err := f.svc.Compare(ctx, f.sess, growth.StandardNational, "")
	require.NoError(t, err)
	assert.Len(t, byDefault, 3)
}

func TestWeeklyReport_Publishes(t *testing.T) {
	notifier := &fakeNotifier{}
	f := newFixture(t, func(d *Deps) { d.Notifier = notifier })
	f.seed(t, 3)
	f.gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "(3 entries)")
	})).Return("Steady growth all week.", nil)

	report, err := f.svc.WeeklyReport(context.Background(), f.sess, birth.AddDate(0, 0, 34))

	require.NoError(t, err)
	assert.Equal(t, 3, report.Count)
	assert.Equal(t, birth.AddDate(0, 0, 28), report.From)
	assert.True(t, report.Published)
	assert.Equal(t, "Steady growth all week.", notifier.summary)
}

func TestWeeklyReport_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Notifier = &fakeNotifier{err: errors.New("sns down")} })
	f.gen.On("Generate", mock.Anything, mock.Anything).Return("Quiet week.", nil)

	report, err := f.svc.WeeklyReport(context.Background(), f.sess, time.Time{})

	require.NoError(t, err)
	assert.False(t, report.Published)
	assert.Equal(t, domain.Day(now), report.To)
	assert.Zero(t, report.Count)
}

func TestWeeklyReport_GenerationFailure(t *testing.T) {
	f := newFixture(t)
	f.gen.On("Generate", mock.Anything, mock.Anything).Return("", domain.ErrGeneration)

	_, err := f.svc.WeeklyReport(context.Background(), f.sess, now)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestUploadExport(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UploadExport(context.Background(), f.sess)
	assert.ErrorIs(t, err, ErrNotConfigured)

	up := &fakeUploader{}
	f = newFixture(t, func(d *Deps) { d.Uploader = up })
	f.seed(t, 1)

	url, err := f.svc.UploadExport(context.Background(), f.sess)

	require.NoError(t, err)
	assert.Equal(t, "exports/20250820T093000Z/happy_dashboard_data.csv", up.key)
	assert.Equal(t, "https://exports.example/"+up.key, url)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, up.data[:3])
}

func TestFromMQTT(t *testing.T) {
	f := newFixture(t)
	payload := []byte(`{"date":"2025-08-20","height_cm":55.5,"weight_kg":4.6,"sleep_hours":14,"formula_ml":700,"diaper_changes":8,"note":"from the scale"}`)

	rec, err := f.svc.FromMQTT(context.Background(), f.sess, "growth/entries", payload)

	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.Equal(t, "from the scale", rec.Note)

	_, err = f.svc.FromMQTT(context.Background(), f.sess, "growth/entries", []byte("{"))
	assert.ErrorContains(t, err, "growth/entries")
}

func TestEditedRow_Record(t *testing.T) {
	fields := domain.RecordFields{HeightCM: 55, Note: "kept"}
	tests := []struct {
		date string
		want time.Time
	}{
		{"2025-08-20", time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)},
		{"2025-08-20T00:00:00Z", time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)},
		{"20/08/2025", time.Time{}},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		rec := EditedRow{ID: 3, Date: tt.date, RecordFields: fields}.Record()
		assert.Equal(t, int64(3), rec.ID)
		assert.Equal(t, tt.want, rec.Date, tt.date)
		assert.Equal(t, fields, rec.RecordFields)
	}
	assert.Len(t, EditedRecords([]EditedRow{{ID: 1}, {ID: 2}}), 2)
}
