package core

// validation.go checks provider files before any record is built.
//
// Validation happens at two levels:
//  1. Header validation: every required column must be present
//  2. Row validation: each cell is checked against its FieldSpec
//
// Loading is strict: the first invalid row aborts the whole load, since the
// provider file is curated and a partial map would be misleading.

import (
	"fmt"
	"strings"
)

// ValidationError describes a single invalid cell.
type ValidationError struct {
	Field   string // Column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidateHeaders checks that all required columns exist in the CSV header.
// Returns the header index, or an error listing every missing column.
func ValidateHeaders(headers []string, specs []FieldSpec) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)
	var missing []string

	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx[strings.ToLower(spec.Name)]; !ok {
			missing = append(missing, spec.Name)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return idx, nil
}

// ValidateRow checks one data row and returns the first problem found.
func ValidateRow(row []string, idx HeaderIndex, specs []FieldSpec) error {
	for _, spec := range specs {
		raw, ok := cell(row, idx, spec.Name)
		if !ok {
			if spec.Required {
				return ValidationError{Field: spec.Name, Message: "missing value (row is shorter than header)"}
			}
			continue
		}

		if spec.Type == FieldCoordinate {
			if _, err := ParseCoordinate(raw, spec.Min, spec.Max); err != nil {
				return ValidationError{Field: spec.Name, Value: raw, Message: err.Error()}
			}
		}
	}
	return nil
}
