package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

func setup(t *testing.T) {
	t.Helper()
	viper.Reset()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("TEXTGEN_PROVIDER", "none")
	t.Setenv("DEV_EMAIL", "parent@example.com")
	t.Setenv("DEV_PASSWORD_HASH", string(hash))
	t.Setenv("INGEST_EMAIL", "parent@example.com")
	t.Setenv("INGEST_PASSWORD", "pw")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExport_CSVToStdout(t *testing.T) {
	setup(t)

	out, err := run(t, "export", "--out", "-")

	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFid,date,height_cm,weight_kg,sleep_hours,formula_ml,diaper_changes,hospital_visit,note\n", out)
}

func TestExport_XLSXFile(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "growth.xlsx")

	out, err := run(t, "export", "--format", "xlsx", "-o", path)

	require.NoError(t, err)
	assert.Contains(t, out, path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestExport_UnknownFormat(t *testing.T) {
	setup(t)
	_, err := run(t, "export", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown format")
}

func TestCompare_EmptyTable(t *testing.T) {
	setup(t)

	out, err := run(t, "compare", "--standard", "national")

	require.NoError(t, err)
	assert.Contains(t, out, "BUCKET")
}

func TestCompare_UnknownStandard(t *testing.T) {
	setup(t)
	_, err := run(t, "compare", "--standard", "cdc")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWrongPassword(t *testing.T) {
	setup(t)
	_, err := run(t, "--password", "nope", "compare")
	assert.ErrorIs(t, err, domain.ErrAuthentication)
}

func TestWeekly_BadDate(t *testing.T) {
	setup(t)
	_, err := run(t, "weekly", "--end", "tomorrow")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
