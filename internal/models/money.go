package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw amount cell from a bank export into a decimal.
// It tolerates the notations US bank and card exports actually produce:
// currency symbols, thousands commas, stray whitespace, and accounting
// parentheses for negative values ("(45.00)" -> -45.00).
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	// Strip currency markers and digit grouping.
	s = strings.NewReplacer("$", "", ",", "", " ", "", " ", "").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount %q has no digits", raw)
	}

	// Some exports write a trailing sign ("45.00-").
	if strings.HasSuffix(s, "-") && !strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimSuffix(s, "-")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// FormatAmount renders a decimal with the fixed two-digit precision used
// everywhere a transaction amount is displayed or hashed.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
