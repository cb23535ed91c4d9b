// Package export serializes transaction records to the run's CSV output.
package export

import (
	"fmt"
	"os"

	"analysepdf/internal/models"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

// dateLayout is the canonical date rendering in the CSV output.
const dateLayout = "2006-01-02"

// csvRow is the stable column schema of the export file.
type csvRow struct {
	Date            string `csv:"date"`
	Amount          string `csv:"amount"`
	Description     string `csv:"description"`
	StatementNumber string `csv:"statement_number"`
	StatementID     string `csv:"statement_id"`
	SourceFile      string `csv:"source_file"`
}

type Writer struct {
	logger *zap.Logger
}

func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger}
}

// Write serializes records to outputPath, one header row plus one row per
// record. An existing file is overwritten. A run with zero records still
// produces a header-only file. Any I/O failure is fatal to the run.
func (w *Writer) Write(records []models.TransactionRecord, outputPath string) error {
	rows := make([]csvRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, csvRow{
			Date:            r.Date.Format(dateLayout),
			Amount:          r.Amount.StringFixed(2),
			Description:     r.Description,
			StatementNumber: r.StatementNumber,
			StatementID:     r.StatementID,
			SourceFile:      r.Source.Name(),
		})
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return models.NewPipelineError(models.ReasonIOError,
			fmt.Errorf("failed to create output file: %w", err))
	}

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return models.NewPipelineError(models.ReasonIOError,
			fmt.Errorf("failed to write CSV: %w", err))
	}
	if err := f.Close(); err != nil {
		return models.NewPipelineError(models.ReasonIOError,
			fmt.Errorf("failed to flush output file: %w", err))
	}

	w.logger.Info("CSV export written",
		zap.String("path", outputPath),
		zap.Int("records", len(records)),
	)
	return nil
}
