package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementHeader carries the relevé metadata parsed from the top of a
// statement: the terminal identification line, the statement date and the
// statement number ("Numéro de relevé").
type StatementHeader struct {
	StatementID     string
	StatementDate   time.Time
	StatementNumber string
}

// TransactionRecord is one structured row parsed from statement text.
// Immutable once created; the source reference is for traceability only.
type TransactionRecord struct {
	Date            time.Time
	Amount          decimal.Decimal
	Description     string
	StatementNumber string
	StatementID     string
	Source          SourceDocument
}

// ParseWarning records one skipped line inside an otherwise parsed file.
type ParseWarning struct {
	Line    int
	Reason  FailureReason
	Message string
}
