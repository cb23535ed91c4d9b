package extractor

import (
	"context"
	"fmt"
	"strings"

	"analysepdf/internal/models"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// TextLayerExtractor reads the embedded text layer of a PDF using go-fitz.
// It is the fast path; image-only documents fail with ReasonNoTextLayer.
type TextLayerExtractor struct {
	logger *zap.Logger
}

func NewTextLayerExtractor(logger *zap.Logger) *TextLayerExtractor {
	return &TextLayerExtractor{logger: logger}
}

func (e *TextLayerExtractor) Name() string {
	return string(models.MethodTextLayer)
}

func (e *TextLayerExtractor) Extract(ctx context.Context, path, _ string) (models.ExtractionResult, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return models.ExtractionResult{}, models.NewPipelineError(models.ReasonUnreadable,
			fmt.Errorf("failed to open PDF: %w", err))
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return models.ExtractionResult{}, models.NewPipelineError(models.ReasonUnreadable, err)
		}

		pageText, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", path),
				zap.Error(err),
			)
			continue
		}
		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return models.ExtractionResult{}, models.NewPipelineError(models.ReasonNoTextLayer,
			fmt.Errorf("no text layer in PDF"))
	}

	return models.ExtractionResult{
		Text:   text,
		Method: models.MethodTextLayer,
		Pages:  doc.NumPage(),
	}, nil
}
