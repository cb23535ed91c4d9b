package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses a statement-locale amount into a signed decimal.
// The statement locale uses comma as the decimal marker and space, NBSP or
// dot as thousands separators; a trailing euro sign is tolerated. Plain
// dot-decimal input is accepted for tolerance. Ambiguous input fails.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	} else if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	} else {
		s = strings.TrimPrefix(s, "+")
	}

	// Thousands separators: space and NBSP always, dot only when a comma
	// marks the decimals.
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")
	switch {
	case commas > 1:
		return decimal.Decimal{}, fmt.Errorf("ambiguous amount %q", s)
	case commas == 1:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dots == 1:
		// A lone dot followed by exactly three digits is a thousands
		// separator; one or two digits make it a decimal point.
		frac := len(s) - strings.Index(s, ".") - 1
		if frac == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
