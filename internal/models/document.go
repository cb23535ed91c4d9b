package models

import "path/filepath"

// ExtractionMethod identifies which strategy produced the text for a file.
type ExtractionMethod string

const (
	MethodTextLayer ExtractionMethod = "text_layer"
	MethodOCR       ExtractionMethod = "ocr"
)

// SourceDocument is one input PDF, discovered at run start and never mutated.
type SourceDocument struct {
	Path     string
	FileSize int64
}

// Name returns the base file name, used in logs and CSV back-references.
func (d SourceDocument) Name() string {
	return filepath.Base(d.Path)
}

// ExtractionResult is the successful outcome of obtaining text from a
// SourceDocument. Failures travel as *PipelineError instead.
type ExtractionResult struct {
	Text   string
	Method ExtractionMethod
	Pages  int
}
