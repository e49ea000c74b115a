// Package formatting parses and shapes text values: byte sizes from config,
// JSON embedded in model output, and length-capped strings.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var units = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with base-1024 units, e.g. 10485760 as "10 MB".
func FormatBytes(n int64) string {
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}

// ParseBytes reads sizes such as "10MB", "1.5 GB" or "512". Units are
// base-1024 and case-insensitive. A bare number is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	num, unit := s, ""
	if split >= 0 {
		num, unit = s[:split], strings.ToUpper(strings.TrimSpace(s[split:]))
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	if unit == "" {
		return int64(value), nil
	}

	mult := int64(1)
	for _, u := range units {
		if u == unit {
			return int64(value * float64(mult)), nil
		}
		mult *= 1024
	}
	return 0, fmt.Errorf("unknown byte size unit %q", unit)
}

// Truncate returns s cut to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
