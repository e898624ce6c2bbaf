package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/database"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// RecordStore is key-addressed CRUD over one growth-record table.
type RecordStore interface {
	// SelectAll returns every record ordered by date ascending.
	SelectAll(ctx context.Context) ([]domain.GrowthRecord, error)
	// Insert stores a new record and returns it with its assigned id.
	Insert(ctx context.Context, date time.Time, f domain.RecordFields) (domain.GrowthRecord, error)
	Update(ctx context.Context, id int64, f domain.RecordFields) error
	Delete(ctx context.Context, id int64) error
}

// Repos is the Postgres-backed RecordStore.
type Repos struct {
	db    *sqlx.DB
	table string
}

func New(db *sqlx.DB, table string) (*Repos, error) {
	if !database.ValidTable(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Repos{db: db, table: table}, nil
}

func (r *Repos) SelectAll(ctx context.Context) ([]domain.GrowthRecord, error) {
	out := []domain.GrowthRecord{}
	err := r.db.SelectContext(ctx, &out, `SELECT id, date,
		COALESCE(height_cm, 0) AS height_cm, COALESCE(weight_kg, 0) AS weight_kg,
		COALESCE(sleep_hours, 0) AS sleep_hours, COALESCE(formula_ml, 0) AS formula_ml,
		COALESCE(diaper_changes, 0) AS diaper_changes, hospital_visit, note
		FROM `+r.table+` ORDER BY date, id`)
	if err != nil {
		return nil, &domain.StoreError{Op: "select", Err: err}
	}
	return out, nil
}

func (r *Repos) Insert(ctx context.Context, date time.Time, f domain.RecordFields) (domain.GrowthRecord, error) {
	rec := domain.GrowthRecord{Date: domain.Day(date), RecordFields: f}
	err := r.db.QueryRowxContext(ctx, `INSERT INTO `+r.table+`(date, height_cm, weight_kg, sleep_hours, formula_ml, diaper_changes, hospital_visit, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		rec.Date, f.HeightCM, f.WeightKG, f.SleepHours, f.FormulaML, f.DiaperChanges, f.HospitalVisit, f.Note).Scan(&rec.ID)
	if err != nil {
		return domain.GrowthRecord{}, &domain.StoreError{Op: "insert", Err: err}
	}
	return rec, nil
}

func (r *Repos) Update(ctx context.Context, id int64, f domain.RecordFields) error {
	res, err := r.db.NamedExecContext(ctx, `UPDATE `+r.table+` SET height_cm=:height_cm, weight_kg=:weight_kg,
		sleep_hours=:sleep_hours, formula_ml=:formula_ml, diaper_changes=:diaper_changes,
		hospital_visit=:hospital_visit, note=:note WHERE id=:id`, struct {
		ID int64 `db:"id"`
		domain.RecordFields
	}{id, f})
	return affected("update", id, res, err)
}

func (r *Repos) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE id=$1`, id)
	return affected("delete", id, res, err)
}

func affected(op string, id int64, res sql.Result, err error) error {
	if err != nil {
		return &domain.StoreError{Op: op, ID: id, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &domain.StoreError{Op: op, ID: id, Err: err}
	}
	if n == 0 {
		return &domain.StoreError{Op: op, ID: id, Err: domain.ErrNotFound}
	}
	return nil
}

// IsNotFound reports whether err is a store miss.
func IsNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
