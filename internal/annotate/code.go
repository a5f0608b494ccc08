package annotate

import (
	"math"
	"strconv"
	"strings"
)

// maxExactFloat is the largest integer a float64 represents exactly (2^53).
const maxExactFloat = 1 << 53

// NormalizeCode returns the lookup key of a code cell.
// Integral numbers collapse to their base-10 form so "101", "101.0" and "1.01E2" share a key;
// anything else is kept as trimmed text.
func NormalizeCode(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
		return s
	}

	return strconv.FormatInt(int64(f), 10)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
