// Package batch drives the per-file extraction and parsing pipeline over an
// input directory and accumulates one RunSummary plus one CSV export per run.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"analysepdf/internal/models"
	"analysepdf/internal/parser"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Extractor obtains text for one PDF, typically an extractor.Chain.
type Extractor interface {
	Extract(ctx context.Context, path, tempDir string) (models.ExtractionResult, error)
}

// Parser turns extracted text into transaction records.
type Parser interface {
	Parse(text string, src models.SourceDocument) (*parser.Result, error)
}

// Exporter writes the accumulated records once, at run end.
type Exporter interface {
	Write(records []models.TransactionRecord, outputPath string) error
}

type Runner struct {
	extractor Extractor
	parser    Parser
	exporter  Exporter
	jobs      int
	tempBase  string
	logger    *zap.Logger
}

func NewRunner(extractor Extractor, p Parser, exporter Exporter, jobs int, tempBase string, logger *zap.Logger) *Runner {
	if jobs < 1 {
		jobs = 1
	}
	return &Runner{
		extractor: extractor,
		parser:    p,
		exporter:  exporter,
		jobs:      jobs,
		tempBase:  tempBase,
		logger:    logger,
	}
}

// Run processes every PDF in inputDir (non-recursive) and writes the export
// to outputPath. Per-file failures are recorded in the summary and never
// abort the run; only a failed export write is returned as an error, with
// the summary accumulated so far.
func (r *Runner) Run(ctx context.Context, inputDir, outputPath string) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		RunID:      uuid.New().String(),
		InputDir:   inputDir,
		OutputPath: outputPath,
		StartedAt:  time.Now(),
	}

	docs, err := enumeratePDFs(inputDir)
	if err != nil {
		return summary, models.NewPipelineError(models.ReasonIOError,
			fmt.Errorf("failed to enumerate input directory: %w", err))
	}

	tempRoot, err := os.MkdirTemp(r.tempBase, "analysepdf-"+summary.RunID[:8]+"-*")
	if err != nil {
		return summary, models.NewPipelineError(models.ReasonIOError,
			fmt.Errorf("failed to create run temp directory: %w", err))
	}
	defer os.RemoveAll(tempRoot)

	r.logger.Info("Run started",
		zap.String("run_id", summary.RunID),
		zap.String("input_dir", inputDir),
		zap.Int("files", len(docs)),
		zap.Int("jobs", r.jobs),
	)

	outcomes := make([]models.FileOutcome, len(docs))
	fileRecords := make([][]models.TransactionRecord, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			outcomes[i], fileRecords[i] = r.processFile(gctx, doc, tempRoot)
			return nil
		})
	}
	_ = g.Wait()

	// Flatten in enumeration order so output is stable across runs and
	// independent of the worker count.
	var records []models.TransactionRecord
	for _, rs := range fileRecords {
		records = append(records, rs...)
	}
	summary.Outcomes = outcomes
	summary.FinishedAt = time.Now()

	if err := r.exporter.Write(records, outputPath); err != nil {
		return summary, err
	}

	r.logger.Info("Run finished",
		zap.String("run_id", summary.RunID),
		zap.Int("succeeded", summary.Succeeded()),
		zap.Int("failed", summary.Failed()),
		zap.Int("records", summary.TotalRecords()),
	)
	return summary, nil
}

// processFile walks one file through the pipeline state machine:
// Pending -> TextExtracted | OCRExtracted | ExtractionFailed -> Parsed | ParseFailed.
func (r *Runner) processFile(ctx context.Context, doc models.SourceDocument, tempRoot string) (models.FileOutcome, []models.TransactionRecord) {
	outcome := models.FileOutcome{
		Source: doc,
		State:  models.StatePending,
	}

	result, err := r.extractor.Extract(ctx, doc.Path, tempRoot)
	if err != nil {
		outcome.State = models.StateExtractionFailed
		outcome.Reason, outcome.Detail = failureOf(err)
		r.logger.Warn("Extraction failed",
			zap.String("file", doc.Name()),
			zap.String("reason", string(outcome.Reason)),
			zap.Error(err),
		)
		return outcome, nil
	}

	outcome.Method = result.Method
	if result.Method == models.MethodOCR {
		outcome.State = models.StateOCRExtracted
	} else {
		outcome.State = models.StateTextExtracted
	}

	parsed, err := r.parser.Parse(result.Text, doc)
	if err != nil {
		outcome.State = models.StateParseFailed
		outcome.Reason, outcome.Detail = failureOf(err)
		r.logger.Warn("Parse failed",
			zap.String("file", doc.Name()),
			zap.String("reason", string(outcome.Reason)),
			zap.Error(err),
		)
		return outcome, nil
	}

	outcome.State = models.StateParsed
	outcome.Records = len(parsed.Records)
	outcome.Warnings = parsed.Warnings

	r.logger.Info("File processed",
		zap.String("file", doc.Name()),
		zap.String("method", string(result.Method)),
		zap.Int("records", len(parsed.Records)),
		zap.Int("skipped_lines", len(parsed.Warnings)),
	)
	return outcome, parsed.Records
}

// enumeratePDFs lists the .pdf files directly inside dir, in name order.
func enumeratePDFs(dir string) ([]models.SourceDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var docs []models.SourceDocument
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		doc := models.SourceDocument{Path: filepath.Join(dir, entry.Name())}
		if info, err := entry.Info(); err == nil {
			doc.FileSize = info.Size()
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func failureOf(err error) (models.FailureReason, string) {
	if reason, ok := models.ReasonOf(err); ok {
		return reason, err.Error()
	}
	return models.ReasonUnreadable, err.Error()
}
