package database

import (
	"context"
	"fmt"
	"regexp"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

func Connect() (*sqlx.DB, error) {
	dsn := viper.GetString("DB_DSN")
	return sqlx.Connect("pgx", dsn)
}

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidTable reports whether name is safe to interpolate as a table identifier.
func ValidTable(name string) bool { return tableName.MatchString(name) }

// EnsureSchema creates the growth table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB, table string) error {
	if !ValidTable(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id             BIGSERIAL PRIMARY KEY,
	date           DATE NOT NULL,
	height_cm      DOUBLE PRECISION,
	weight_kg      DOUBLE PRECISION,
	sleep_hours    DOUBLE PRECISION,
	formula_ml     INTEGER,
	diaper_changes INTEGER,
	hospital_visit TEXT NOT NULL DEFAULT '',
	note           TEXT NOT NULL DEFAULT ''
)`, table))
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}
