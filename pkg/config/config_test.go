package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "PDFs to analyze", cfg.Input.Dir)
		assert.Equal(t, "export_analyse_pdf.csv", cfg.Input.OutputCSV)
		assert.Equal(t, 1, cfg.Input.Jobs)
		assert.True(t, cfg.OCR.Enabled)
		assert.Equal(t, 450.0, cfg.OCR.DPI)
		assert.Equal(t, []string{"fra", "eng"}, cfg.OCR.Languages)
		assert.Equal(t, 32, cfg.Parser.MinTextChars)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("ANALYSE_INPUT_DIR", "/data/in")
		t.Setenv("ANALYSE_JOBS", "4")
		t.Setenv("OCR_ENABLED", "false")
		t.Setenv("OCR_LANGUAGES", "fra")
		t.Setenv("OCR_DPI", "300")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "/data/in", cfg.Input.Dir)
		assert.Equal(t, 4, cfg.Input.Jobs)
		assert.False(t, cfg.OCR.Enabled)
		assert.Equal(t, []string{"fra"}, cfg.OCR.Languages)
		assert.Equal(t, 300.0, cfg.OCR.DPI)
	})

	t.Run("invalid numerics fall back to defaults", func(t *testing.T) {
		t.Setenv("ANALYSE_JOBS", "-2")
		t.Setenv("OCR_DPI", "zero")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Input.Jobs)
		assert.Equal(t, 450.0, cfg.OCR.DPI)
	})
}
