package extractor

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"analysepdf/internal/models"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// OCRExtractor rasterizes each page at a fixed resolution and runs tesseract
// on the page images. This is the slow path, invoked only when the text layer
// is missing or insufficient. Page images live in a per-file directory under
// the run-scoped temp dir and are removed on every exit path.
type OCRExtractor struct {
	dpi       float64
	languages []string
	logger    *zap.Logger
}

func NewOCRExtractor(dpi float64, languages []string, logger *zap.Logger) *OCRExtractor {
	if dpi <= 0 {
		dpi = 450
	}
	if len(languages) == 0 {
		languages = []string{"fra", "eng"}
	}
	return &OCRExtractor{
		dpi:       dpi,
		languages: languages,
		logger:    logger,
	}
}

func (e *OCRExtractor) Name() string {
	return string(models.MethodOCR)
}

func (e *OCRExtractor) Extract(ctx context.Context, path, tempDir string) (models.ExtractionResult, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return models.ExtractionResult{}, models.NewPipelineError(models.ReasonUnreadable,
			fmt.Errorf("failed to open PDF: %w", err))
	}
	defer doc.Close()

	pageDir, err := os.MkdirTemp(tempDir, "ocr-pages-*")
	if err != nil {
		return models.ExtractionResult{}, models.NewPipelineError(models.ReasonOCRUnavailable,
			fmt.Errorf("failed to create page image directory: %w", err))
	}
	defer os.RemoveAll(pageDir)

	images, err := e.rasterizePages(ctx, doc, path, pageDir)
	if err != nil {
		return models.ExtractionResult{}, err
	}
	if len(images) == 0 {
		return models.ExtractionResult{}, models.NewPipelineError(models.ReasonOCRNoText,
			fmt.Errorf("no pages could be rasterized"))
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return models.ExtractionResult{}, models.NewPipelineError(models.ReasonOCRUnavailable,
			fmt.Errorf("failed to set OCR languages: %w", err))
	}
	// Statements are a single uniform block of text per page.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return models.ExtractionResult{}, models.NewPipelineError(models.ReasonOCRUnavailable,
			fmt.Errorf("failed to set page segmentation mode: %w", err))
	}

	var textBuilder strings.Builder
	for i, imgPath := range images {
		if err := ctx.Err(); err != nil {
			return models.ExtractionResult{}, models.NewPipelineError(models.ReasonOCRUnavailable, err)
		}

		if err := client.SetImage(imgPath); err != nil {
			return models.ExtractionResult{}, models.NewPipelineError(models.ReasonOCRUnavailable,
				fmt.Errorf("failed to load page image %d: %w", i+1, err))
		}
		pageText, err := client.Text()
		if err != nil {
			return models.ExtractionResult{}, models.NewPipelineError(models.ReasonOCRUnavailable,
				fmt.Errorf("OCR failed on page %d: %w", i+1, err))
		}
		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return models.ExtractionResult{}, models.NewPipelineError(models.ReasonOCRNoText,
			fmt.Errorf("OCR recognized no text"))
	}

	e.logger.Info("OCR extraction completed",
		zap.String("file", path),
		zap.Int("pages", len(images)),
		zap.Float64("dpi", e.dpi),
		zap.Int("text_length", len(text)),
	)

	return models.ExtractionResult{
		Text:   text,
		Method: models.MethodOCR,
		Pages:  len(images),
	}, nil
}

// rasterizePages renders each page to a PNG in pageDir and returns the image
// paths in page order. Pages that fail to render are skipped with a warning.
func (e *OCRExtractor) rasterizePages(ctx context.Context, doc *fitz.Document, path, pageDir string) ([]string, error) {
	var images []string
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, models.NewPipelineError(models.ReasonOCRUnavailable, err)
		}

		img, err := doc.ImageDPI(i, e.dpi)
		if err != nil {
			e.logger.Warn("Failed to rasterize page",
				zap.Int("page", i+1),
				zap.String("file", path),
				zap.Error(err),
			)
			continue
		}

		imgPath := filepath.Join(pageDir, fmt.Sprintf("page-%04d.png", i+1))
		f, err := os.Create(imgPath)
		if err != nil {
			return nil, models.NewPipelineError(models.ReasonOCRUnavailable,
				fmt.Errorf("failed to create page image: %w", err))
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return nil, models.NewPipelineError(models.ReasonOCRUnavailable,
				fmt.Errorf("failed to encode page image: %w", err))
		}
		if err := f.Close(); err != nil {
			return nil, models.NewPipelineError(models.ReasonOCRUnavailable,
				fmt.Errorf("failed to write page image: %w", err))
		}
		images = append(images, imgPath)
	}
	return images, nil
}
