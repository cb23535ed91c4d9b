// Package parser turns raw statement text into transaction records using
// ordered pattern rules for the Touch N Pay relevé format.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"analysepdf/internal/models"

	"go.uber.org/zap"
)

// headerScanLines bounds how deep into the text the statement id is searched.
const headerScanLines = 150

var (
	dateStartRe = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4}|\d{2}\.\d{2}\.\d{4}|\d{4}-\d{2}-\d{2})\b`)
	anyDateRe   = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`)
	numReleveRe = regexp.MustCompile(`(?i)num[ée]ro\s+de\s+relev[ée]\s*:\s*([0-9]+)`)
	trailDateRe = regexp.MustCompile(`\s*\d{2}/\d{2}/\d{4}.*$`)

	// amountEndRe matches a candidate amount token at the end of a line.
	// Whether the token is actually an amount is decided by isAmountToken,
	// which requires a decimal marker or an explicit euro sign so that
	// trailing reference numbers are not mistaken for amounts.
	amountEndRe  = regexp.MustCompile(`(?:^|\s)([-+]?\(?\d{1,3}(?:[ \x{00A0}.]\d{3})*(?:,\d{1,2})?\)?|[-+]?\(?\d+(?:[.,]\d{1,2})?\)?)\s*(€)?\s*$`)
	dotDecimalRe = regexp.MustCompile(`\.\d{1,2}$`)

	spaceRunRe = regexp.MustCompile(`[ \x{00A0}]+`)
)

var dateFormats = []string{"02/01/2006", "02.01.2006", "2006-01-02"}

// Result is the outcome of parsing one statement. Records is a finite,
// restartable sequence in document order.
type Result struct {
	Header   models.StatementHeader
	Records  []models.TransactionRecord
	Warnings []models.ParseWarning
}

type StatementParser struct {
	logger *zap.Logger
}

func NewStatementParser(logger *zap.Logger) *StatementParser {
	return &StatementParser{logger: logger}
}

// Parse applies the statement pattern rules to the extracted text.
// Malformed record groups are skipped with a per-line warning; zero records
// in non-empty text is a file-level failure with ReasonNoRecordsFound.
func (p *StatementParser) Parse(text string, src models.SourceDocument) (*Result, error) {
	lines := normalizeLines(text)

	result := &Result{
		Header: p.parseHeader(lines),
	}

	var open *recordGroup
	for i, line := range lines {
		lineNum := i + 1
		if line == "" {
			continue
		}

		if m := dateStartRe.FindString(line); m != "" {
			if open != nil {
				p.warn(result, src, open.line, "record group ended without an amount")
			}
			open = &recordGroup{line: lineNum, dateStr: m}
			rest := strings.TrimSpace(line[len(m):])
			p.consume(result, src, &open, rest)
			continue
		}

		if open != nil {
			p.consume(result, src, &open, line)
		}
	}
	if open != nil {
		p.warn(result, src, open.line, "record group ended without an amount")
	}

	if len(result.Records) == 0 {
		return nil, models.NewPipelineError(models.ReasonNoRecordsFound,
			fmt.Errorf("no transaction records recognized in %d lines", len(lines)))
	}
	return result, nil
}

type recordGroup struct {
	line      int
	dateStr   string
	descParts []string
}

// consume feeds one line fragment into the open record group, closing the
// group when an amount token terminates it.
func (p *StatementParser) consume(result *Result, src models.SourceDocument, open **recordGroup, fragment string) {
	g := *open
	if fragment == "" {
		return
	}

	amount, desc, ok := splitAmount(fragment)
	if !ok {
		g.descParts = append(g.descParts, fragment)
		return
	}
	if desc != "" {
		g.descParts = append(g.descParts, desc)
	}
	p.closeGroup(result, src, g, amount)
	*open = nil
}

func (p *StatementParser) closeGroup(result *Result, src models.SourceDocument, g *recordGroup, amountStr string) {
	date, err := parseDate(g.dateStr)
	if err != nil {
		p.warn(result, src, g.line, fmt.Sprintf("invalid date %q", g.dateStr))
		return
	}
	amount, err := parseAmount(amountStr)
	if err != nil {
		p.warn(result, src, g.line, fmt.Sprintf("invalid amount %q", amountStr))
		return
	}

	result.Records = append(result.Records, models.TransactionRecord{
		Date:            date,
		Amount:          amount,
		Description:     strings.Join(g.descParts, " "),
		StatementNumber: result.Header.StatementNumber,
		StatementID:     result.Header.StatementID,
		Source:          src,
	})
}

func (p *StatementParser) warn(result *Result, src models.SourceDocument, line int, msg string) {
	p.logger.Warn("Skipping malformed record",
		zap.String("file", src.Name()),
		zap.Int("line", line),
		zap.String("detail", msg),
	)
	result.Warnings = append(result.Warnings, models.ParseWarning{
		Line:    line,
		Reason:  models.ReasonMalformedRecord,
		Message: msg,
	})
}

// parseHeader extracts the relevé metadata from the top of the statement.
// Missing header fields are left empty; they never fail the file.
func (p *StatementParser) parseHeader(lines []string) models.StatementHeader {
	var header models.StatementHeader

	limit := len(lines)
	if limit > headerScanLines {
		limit = headerScanLines
	}
	for _, ln := range lines[:limit] {
		if strings.Contains(strings.ToUpper(ln), "TOUCH") {
			header.StatementID = strings.TrimSpace(trailDateRe.ReplaceAllString(squash(ln), ""))
			break
		}
	}

	joined := strings.Join(lines, "\n")
	if m := anyDateRe.FindStringSubmatch(joined); m != nil {
		if d, err := time.Parse("02/01/2006", m[1]); err == nil {
			header.StatementDate = d
		}
	}
	if m := numReleveRe.FindStringSubmatch(joined); m != nil {
		header.StatementNumber = m[1]
	}
	return header
}

// splitAmount returns the amount token terminating the fragment and the
// remaining description prefix. Tokens without a decimal marker or euro sign
// are not amounts.
func splitAmount(fragment string) (amount, desc string, ok bool) {
	loc := amountEndRe.FindStringSubmatchIndex(fragment)
	if loc == nil {
		return "", "", false
	}
	token := fragment[loc[2]:loc[3]]
	euro := loc[4] != -1
	if !isAmountToken(token, euro) {
		return "", "", false
	}
	return token, strings.TrimSpace(fragment[:loc[2]]), true
}

func isAmountToken(token string, euro bool) bool {
	if euro {
		return true
	}
	return strings.Contains(token, ",") || dotDecimalRe.MatchString(token)
}

func parseDate(s string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// normalizeLines collapses space runs per line while keeping line structure,
// the same normalization the statement layout extraction relies on.
func normalizeLines(text string) []string {
	text = strings.ReplaceAll(text, "\r", "")
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(spaceRunRe.ReplaceAllString(ln, " "), " ")
	}
	return lines
}

func squash(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}
