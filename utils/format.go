package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatDuration renders the time a table has been open, e.g. "1h 5m" or
// "12m". Whole days are dropped, matching the board display.
func FormatDuration(start, now time.Time) string {
	diff := now.Sub(start)
	if diff < 0 {
		diff = 0
	}
	withinDay := diff % (24 * time.Hour)
	hours := int(withinDay / time.Hour)
	minutes := int((withinDay % time.Hour).Round(time.Minute) / time.Minute)

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatCurrencyBRL formats an amount as Brazilian Real.
// Example: 1234.5 -> "R$ 1.234,50"
func FormatCurrencyBRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	formatted := amount.StringFixed(2)
	integerPart, decimalPart, _ := strings.Cut(formatted, ".")

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return fmt.Sprintf("%sR$ %s,%s", sign, strings.Join(groups, "."), decimalPart)
}
