package core

// convert.go provides conversion helpers for raw CSV cells.
//
// Provider files are usually exported from spreadsheets, so header and
// coordinate cells may carry Excel formula prefixes (="value") or stray
// quotes. Text cells are only trimmed.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// MakeHeaderIndex builds a lowercase column-name to position lookup.
// When a header repeats, the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, seen := idx[key]; seen {
			continue
		}
		idx[key] = i
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// ParseCoordinate parses a decimal-degree value and checks it against the
// inclusive [min, max] range.
func ParseCoordinate(s string, min, max float64) (float64, error) {
	s = CleanCell(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if !numericRegex.MatchString(s) {
		return 0, fmt.Errorf("invalid number %q", s)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if f < min || f > max {
		return 0, fmt.Errorf("value %v out of range [%v, %v]", f, min, max)
	}
	return f, nil
}

// cell returns the value of a named column with surrounding whitespace
// trimmed, or false when the row is too short to contain it. Text is
// otherwise kept as written; only headers and coordinates go through
// CleanCell.
func cell(row []string, idx HeaderIndex, name string) (string, bool) {
	pos, ok := idx[strings.ToLower(name)]
	if !ok || pos >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[pos]), true
}
