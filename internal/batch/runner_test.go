package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"analysepdf/internal/export"
	"analysepdf/internal/models"
	"analysepdf/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cleanStatement = `TOUCH N PAY SAS TERMINAL 4521 12/05/2024
Numéro de relevé : 000127
12/05/2024 COLLECTE ESPECES 1 250,00 €
13/05/2024 VENTE CASHLESS 84,50 €
`

const scannedStatement = `TOUCH N PAY SAS TERMINAL 9913 02/06/2024
Numéro de relevé : 000128
02/06/2024 COLLECTE ESPECES 310,00 €
`

// scriptedExtractor serves canned extraction outcomes per file name.
type scriptedExtractor struct {
	results map[string]models.ExtractionResult
	errs    map[string]error
}

func (s *scriptedExtractor) Extract(_ context.Context, path, _ string) (models.ExtractionResult, error) {
	name := filepath.Base(path)
	if err, ok := s.errs[name]; ok {
		return models.ExtractionResult{}, err
	}
	if res, ok := s.results[name]; ok {
		return res, nil
	}
	return models.ExtractionResult{}, models.NewPipelineError(models.ReasonUnreadable, fmt.Errorf("unscripted file %s", name))
}

func writeInputFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4 stub"), 0o644))
	}
}

func newTestRunner(extractor Extractor, jobs int) *Runner {
	log := zap.NewNop()
	return NewRunner(extractor, parser.NewStatementParser(log), export.NewWriter(log), jobs, "", log)
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("mixed batch isolates the corrupt file", func(t *testing.T) {
		inputDir := t.TempDir()
		writeInputFiles(t, inputDir, "clean.pdf", "corrupt.pdf", "scan.pdf")
		outputPath := filepath.Join(t.TempDir(), "export.csv")

		ext := &scriptedExtractor{
			results: map[string]models.ExtractionResult{
				"clean.pdf": {Text: cleanStatement, Method: models.MethodTextLayer, Pages: 1},
				"scan.pdf":  {Text: scannedStatement, Method: models.MethodOCR, Pages: 1},
			},
			errs: map[string]error{
				"corrupt.pdf": models.NewPipelineError(models.ReasonUnreadable, fmt.Errorf("bad xref")),
			},
		}

		summary, err := newTestRunner(ext, 1).Run(ctx, inputDir, outputPath)
		require.NoError(t, err)

		assert.Equal(t, 3, summary.TotalFiles())
		assert.Equal(t, 2, summary.Succeeded())
		assert.Equal(t, 1, summary.Failed())
		assert.Equal(t, 3, summary.TotalRecords())

		failed := summary.FailedOutcomes()
		require.Len(t, failed, 1)
		assert.Equal(t, "corrupt.pdf", failed[0].Source.Name())
		assert.Equal(t, models.ReasonUnreadable, failed[0].Reason)
		assert.Equal(t, models.StateExtractionFailed, failed[0].State)

		records, err := export.Read(outputPath)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("per-file states reflect the extraction method", func(t *testing.T) {
		inputDir := t.TempDir()
		writeInputFiles(t, inputDir, "clean.pdf", "scan.pdf")
		outputPath := filepath.Join(t.TempDir(), "export.csv")

		ext := &scriptedExtractor{
			results: map[string]models.ExtractionResult{
				"clean.pdf": {Text: cleanStatement, Method: models.MethodTextLayer},
				"scan.pdf":  {Text: scannedStatement, Method: models.MethodOCR},
			},
		}

		summary, err := newTestRunner(ext, 1).Run(ctx, inputDir, outputPath)
		require.NoError(t, err)
		require.Len(t, summary.Outcomes, 2)

		// Enumeration order is name order.
		assert.Equal(t, models.StateParsed, summary.Outcomes[0].State)
		assert.Equal(t, models.MethodTextLayer, summary.Outcomes[0].Method)
		assert.Equal(t, models.MethodOCR, summary.Outcomes[1].Method)
	})

	t.Run("parse failure is recorded and the run continues", func(t *testing.T) {
		inputDir := t.TempDir()
		writeInputFiles(t, inputDir, "clean.pdf", "noise.pdf")
		outputPath := filepath.Join(t.TempDir(), "export.csv")

		ext := &scriptedExtractor{
			results: map[string]models.ExtractionResult{
				"clean.pdf": {Text: cleanStatement, Method: models.MethodTextLayer},
				"noise.pdf": {Text: "du texte sans aucune opération\n", Method: models.MethodTextLayer},
			},
		}

		summary, err := newTestRunner(ext, 1).Run(ctx, inputDir, outputPath)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Succeeded())

		failed := summary.FailedOutcomes()
		require.Len(t, failed, 1)
		assert.Equal(t, models.StateParseFailed, failed[0].State)
		assert.Equal(t, models.ReasonNoRecordsFound, failed[0].Reason)
	})

	t.Run("empty input directory writes a header-only export", func(t *testing.T) {
		inputDir := t.TempDir()
		outputPath := filepath.Join(t.TempDir(), "export.csv")

		summary, err := newTestRunner(&scriptedExtractor{}, 1).Run(ctx, inputDir, outputPath)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TotalFiles())

		data, err := os.ReadFile(outputPath)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(data), "\n"))
	})

	t.Run("non-pdf entries are ignored", func(t *testing.T) {
		inputDir := t.TempDir()
		writeInputFiles(t, inputDir, "clean.pdf")
		require.NoError(t, os.WriteFile(filepath.Join(inputDir, "notes.txt"), []byte("n"), 0o644))
		require.NoError(t, os.Mkdir(filepath.Join(inputDir, "nested.pdf.d"), 0o755))
		outputPath := filepath.Join(t.TempDir(), "export.csv")

		ext := &scriptedExtractor{
			results: map[string]models.ExtractionResult{
				"clean.pdf": {Text: cleanStatement, Method: models.MethodTextLayer},
			},
		}

		summary, err := newTestRunner(ext, 1).Run(ctx, inputDir, outputPath)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.TotalFiles())
	})

	t.Run("reruns produce byte-identical output", func(t *testing.T) {
		inputDir := t.TempDir()
		writeInputFiles(t, inputDir, "a.pdf", "b.pdf", "c.pdf")
		outputPath := filepath.Join(t.TempDir(), "export.csv")

		ext := &scriptedExtractor{
			results: map[string]models.ExtractionResult{
				"a.pdf": {Text: cleanStatement, Method: models.MethodTextLayer},
				"b.pdf": {Text: scannedStatement, Method: models.MethodOCR},
				"c.pdf": {Text: cleanStatement, Method: models.MethodTextLayer},
			},
		}

		// Run sequentially, then again with workers; the export must not change.
		_, err := newTestRunner(ext, 1).Run(ctx, inputDir, outputPath)
		require.NoError(t, err)
		first, err := os.ReadFile(outputPath)
		require.NoError(t, err)

		_, err = newTestRunner(ext, 4).Run(ctx, inputDir, outputPath)
		require.NoError(t, err)
		second, err := os.ReadFile(outputPath)
		require.NoError(t, err)

		assert.Equal(t, string(first), string(second))
	})

	t.Run("missing input directory is an IO error", func(t *testing.T) {
		outputPath := filepath.Join(t.TempDir(), "export.csv")
		_, err := newTestRunner(&scriptedExtractor{}, 1).Run(ctx, filepath.Join(t.TempDir(), "nope"), outputPath)
		require.Error(t, err)

		reason, ok := models.ReasonOf(err)
		require.True(t, ok)
		assert.Equal(t, models.ReasonIOError, reason)
	})
}
