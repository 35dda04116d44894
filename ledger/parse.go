package ledger

import (
	"strconv"
	"strings"
)

// ParseQuantity parses a cylinder count from user input. Malformed or
// negative input collapses to 0 so a half-typed form never blows up a
// calculation; decimals are truncated.
func ParseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
		return int(f)
	}
	return 0
}

// ParseAmount parses a monetary amount the same way: malformed or negative
// input collapses to 0.
func ParseAmount(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// ClampQuantity forces a count non-negative.
func ClampQuantity(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// ClampAmount forces an amount non-negative.
func ClampAmount(a float64) float64 {
	if a < 0 {
		return 0
	}
	return a
}
