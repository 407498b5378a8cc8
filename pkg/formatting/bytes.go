// Package formatting converts byte sizes between human-readable strings
// ("10MB", "1.5 KiB") and counts. Units are base 1024.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// exponents maps every accepted unit spelling to its power of 1024.
var exponents = map[string]int{"": 0}

func init() {
	for i, u := range units {
		exponents[u] = i
		if i > 0 {
			exponents[u[:1]+"IB"] = i
		}
	}
}

// FormatBytes renders n with the largest unit that keeps the value at or
// above 1, using precision decimal places (negative means 0). Counts below
// 1 KB are whole bytes and never carry decimals.
func FormatBytes(n int64, precision int) string {
	if n > -1024 && n < 1024 {
		return strconv.FormatInt(n, 10) + " B"
	}

	size := float64(n)
	i := 0
	for math.Abs(size) >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}

	return strconv.FormatFloat(size, 'f', max(precision, 0), 64) + " " + units[i]
}

// ParseBytes parses sizes such as "512", "10MB", "10mib" or "1.5 KB".
// A bare number is bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	num, unit := s, ""
	if i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) && r != '.' }); i >= 0 {
		num, unit = s[:i], strings.TrimSpace(s[i:])
	}
	if num == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	exp, ok := exponents[strings.ToUpper(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}

	return int64(value * math.Pow(1024, float64(exp))), nil
}
