package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/10664kls/monthlyp-annotator-api/internal/annotate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "TEMP_DIR", "UPLOAD_LIMIT", "RATE_LIMIT",
		"ANNOTATE_ROUTE", "LAYOUT_FILE", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8890", cfg.Port)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.Equal(t, os.TempDir(), cfg.TempDir)
	assert.Equal(t, "32M", cfg.UploadLimit)
	assert.Equal(t, rate.Limit(30), cfg.RateLimit)
	assert.Equal(t, "/merge-sc-monthlyp", cfg.AnnotateRoute)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)

	layout, err := cfg.Layout()
	require.NoError(t, err)
	assert.Equal(t, annotate.DefaultLayout(), layout)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("UPLOAD_LIMIT", "4M")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("ANNOTATE_ROUTE", "v1/annotate/")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, zapcore.WarnLevel, cfg.LogLevel)
	assert.Equal(t, "4M", cfg.UploadLimit)
	assert.Equal(t, rate.Limit(2.5), cfg.RateLimit)
	assert.Equal(t, "/v1/annotate", cfg.AnnotateRoute)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "http"},
		{"LOG_LEVEL", "loud"},
		{"UPLOAD_LIMIT", "lots"},
		{"RATE_LIMIT", "-1"},
		{"ANNOTATE_ROUTE", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func writeLayout(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadLayout(t *testing.T) {
	path := writeLayout(t, `
mode: scan
header_row: 1
reference_sheet: Codes
winner_column: S
reference_columns:
  code:
    name: code
    patterns: [사번]
    required: true
`)

	layout, err := LoadLayout(path)
	require.NoError(t, err)

	assert.Equal(t, annotate.ModeScan, layout.Mode)
	assert.Equal(t, 1, layout.HeaderRow)
	assert.Equal(t, "Codes", layout.ReferenceSheet)
	assert.Equal(t, "Rival", layout.ComparisonSheet)
	assert.Equal(t, "S", layout.WinnerColumn)
	assert.Equal(t, "R", layout.NoteColumn)
	assert.Equal(t, []string{"사번"}, layout.Schema.Code.Patterns)
	assert.Equal(t, annotate.DefaultSchema().Base, layout.Schema.Base)
	assert.Equal(t, int64(200), layout.BonusDivisor)
}

func TestLoadLayoutErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLayout(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := LoadLayout(writeLayout(t, "colour: red\n"))
		assert.ErrorContains(t, err, "failed to parse layout file")
	})

	t.Run("invalid layout", func(t *testing.T) {
		_, err := LoadLayout(writeLayout(t, "mode: diagonal\n"))
		assert.ErrorContains(t, err, `unknown layout mode "diagonal"`)
	})
}

func TestConfigLayoutFromFile(t *testing.T) {
	cfg := Config{LayoutFile: writeLayout(t, "header_row: 5\n")}

	layout, err := cfg.Layout()
	require.NoError(t, err)
	assert.Equal(t, 5, layout.HeaderRow)
	assert.Equal(t, "Q", layout.WinnerColumn, "a partial file keeps the winner column")
	assert.Equal(t, "R", layout.NoteColumn)
	assert.Empty(t, layout.Disabled())
}

func TestLoadLayoutDisabledColumns(t *testing.T) {
	layout, err := LoadLayout(writeLayout(t, "winner_column: \"-\"\nnote_column: \"-\"\n"))
	require.NoError(t, err)

	assert.Equal(t, annotate.ColumnDisabled, layout.WinnerColumn)
	assert.Equal(t, annotate.ColumnDisabled, layout.NoteColumn)
}
