package models

import "time"

// FileState is the per-file pipeline state. Terminal states are Parsed and
// the two failed states.
type FileState string

const (
	StatePending          FileState = "pending"
	StateTextExtracted    FileState = "text_extracted"
	StateOCRExtracted     FileState = "ocr_extracted"
	StateExtractionFailed FileState = "extraction_failed"
	StateParsed           FileState = "parsed"
	StateParseFailed      FileState = "parse_failed"
)

// FileOutcome is the terminal result of one file's pipeline.
type FileOutcome struct {
	Source   SourceDocument
	State    FileState
	Method   ExtractionMethod
	Reason   FailureReason
	Detail   string
	Records  int
	Warnings []ParseWarning
}

// Failed reports whether the file ended in a failed terminal state.
func (o FileOutcome) Failed() bool {
	return o.State == StateExtractionFailed || o.State == StateParseFailed
}

// RunSummary aggregates per-file outcomes for one full pass over the input
// directory. It is reported to the caller and not persisted anywhere.
type RunSummary struct {
	RunID      string
	InputDir   string
	OutputPath string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []FileOutcome
}

func (s *RunSummary) TotalFiles() int {
	return len(s.Outcomes)
}

func (s *RunSummary) Succeeded() int {
	n := 0
	for _, o := range s.Outcomes {
		if !o.Failed() {
			n++
		}
	}
	return n
}

func (s *RunSummary) Failed() int {
	return s.TotalFiles() - s.Succeeded()
}

func (s *RunSummary) TotalRecords() int {
	n := 0
	for _, o := range s.Outcomes {
		n += o.Records
	}
	return n
}

// FailedOutcomes returns the outcomes that ended in a failed state, in
// enumeration order, for the operator-facing report.
func (s *RunSummary) FailedOutcomes() []FileOutcome {
	var failed []FileOutcome
	for _, o := range s.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}
