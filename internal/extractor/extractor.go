package extractor

import (
	"context"
	"fmt"
	"unicode"

	"analysepdf/internal/models"

	"go.uber.org/zap"
)

// Strategy extracts text from a PDF file. Failures are returned as
// *models.PipelineError carrying the reason; the file is never mutated.
// tempDir is the run-scoped scratch directory; any per-file artifacts a
// strategy creates under it must be released before it returns.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, path, tempDir string) (models.ExtractionResult, error)
}

// Chain tries strategies in order. A strategy whose output has fewer than
// minTextChars non-whitespace characters is treated as insufficient and the
// next strategy runs; once a fallback strategy has run, its result is
// authoritative for the file, success or failure.
type Chain struct {
	strategies   []Strategy
	minTextChars int
	logger       *zap.Logger
}

func NewChain(minTextChars int, logger *zap.Logger, strategies ...Strategy) *Chain {
	return &Chain{
		strategies:   strategies,
		minTextChars: minTextChars,
		logger:       logger,
	}
}

func (c *Chain) Extract(ctx context.Context, path, tempDir string) (models.ExtractionResult, error) {
	if len(c.strategies) == 0 {
		return models.ExtractionResult{}, models.NewPipelineError(models.ReasonUnreadable, fmt.Errorf("no extraction strategies configured"))
	}

	var lastErr error
	for i, strategy := range c.strategies {
		result, err := strategy.Extract(ctx, path, tempDir)
		if err != nil {
			c.logger.Warn("Extraction strategy failed",
				zap.String("file", path),
				zap.String("strategy", strategy.Name()),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		if countNonWhitespace(result.Text) < c.minTextChars && i < len(c.strategies)-1 {
			c.logger.Info("Extracted text below threshold, falling back",
				zap.String("file", path),
				zap.String("strategy", strategy.Name()),
				zap.Int("threshold", c.minTextChars),
			)
			lastErr = models.NewPipelineError(models.ReasonNoTextLayer,
				fmt.Errorf("%s yielded insufficient text", strategy.Name()))
			continue
		}

		result.Text = sanitizeUTF8(result.Text)
		c.logger.Info("Extraction completed",
			zap.String("file", path),
			zap.String("strategy", strategy.Name()),
			zap.Int("pages", result.Pages),
			zap.Int("text_length", len(result.Text)),
		)
		return result, nil
	}

	return models.ExtractionResult{}, lastErr
}

func countNonWhitespace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
