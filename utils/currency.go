package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatCurrencyKES formats an amount as Kenyan Shillings in en-KE style:
// comma thousands separators, 0-2 fraction digits.
// Example: 1620 -> "Ksh 1,620", 810.5 -> "Ksh 810.50"
func FormatCurrencyKES(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "Ksh 0"
	}

	negative := amount < 0
	amount = math.Abs(amount)

	cents := math.Round(amount*100) / 100
	integerPart := int64(cents)
	fraction := int64(math.Round((cents - float64(integerPart)) * 100))

	integerStr := fmt.Sprintf("%d", integerPart)
	var groups []string
	for i := len(integerStr); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerStr[start:i]}, groups...)
	}
	formatted := strings.Join(groups, ",")

	if fraction > 0 {
		formatted = fmt.Sprintf("%s.%02d", formatted, fraction)
	}
	if negative {
		return "Ksh -" + formatted
	}
	return "Ksh " + formatted
}

// FormatDate renders a timestamp the way receipts and statements show it.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 15:04")
}
