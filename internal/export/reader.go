package export

import (
	"fmt"
	"os"
	"time"

	"analysepdf/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Read loads an export file back into records. Used by verification tooling
// and tests; the pipeline itself only writes.
func Read(path string) ([]models.TransactionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.NewPipelineError(models.ReasonIOError,
			fmt.Errorf("failed to open export file: %w", err))
	}
	defer f.Close()

	var rows []csvRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, models.NewPipelineError(models.ReasonIOError,
			fmt.Errorf("failed to read CSV: %w", err))
	}

	records := make([]models.TransactionRecord, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse(dateLayout, row.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q: %w", i+1, row.Date, err)
		}
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid amount %q: %w", i+1, row.Amount, err)
		}
		records = append(records, models.TransactionRecord{
			Date:            date,
			Amount:          amount,
			Description:     row.Description,
			StatementNumber: row.StatementNumber,
			StatementID:     row.StatementID,
			Source:          models.SourceDocument{Path: row.SourceFile},
		})
	}
	return records, nil
}
