package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrDataLoad matches every *DataLoadError via errors.Is.
var ErrDataLoad = errors.New("data load failed")

// DataLoadError reports why the provider file could not be turned into a table.
// It is fatal at startup: there is no meaningful page without data.
type DataLoadError struct {
	Path   string // Source file path or name
	Line   int    // 1-based line in the file; 0 when not row specific
	Column string // Offending column, if any
	Err    error
}

func (e *DataLoadError) Error() string {
	var b strings.Builder
	b.WriteString("load ")
	b.WriteString(e.Path)
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Is reports ErrDataLoad as a match so callers need not know the concrete type.
func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }

// Load reads a provider CSV file into a ProviderTable.
func Load(path string) (*ProviderTable, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	return parseTable(data, path)
}

// LoadReader reads provider CSV data from r. name is used in error messages.
func LoadReader(r io.Reader, name string) (*ProviderTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DataLoadError{Path: name, Err: fmt.Errorf("read: %w", err)}
	}
	return parseTable(data, name)
}

// readSource reads the raw bytes of a provider file.
func readSource(path string) ([]byte, error) {
	if path == "" {
		return nil, &DataLoadError{Path: "<unset>", Err: errors.New("no data file configured")}
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	return data, nil
}

// parseTable converts raw CSV bytes into a table, failing on the first
// invalid row.
func parseTable(data []byte, name string) (*ProviderTable, error) {
	data = prepareSource(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, &DataLoadError{Path: name, Err: errors.New("empty file: no header row")}
	}
	if err != nil {
		return nil, &DataLoadError{Path: name, Err: fmt.Errorf("malformed csv: %w", err)}
	}

	idx, err := ValidateHeaders(header, ProviderFieldSpecs)
	if err != nil {
		return nil, &DataLoadError{Path: name, Line: 1, Err: err}
	}

	var records []ProviderRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DataLoadError{Path: name, Err: fmt.Errorf("malformed csv: %w", err)}
		}
		line, _ := r.FieldPos(0)

		if isEmptyRow(row) {
			continue
		}

		rec, err := buildRecord(row, idx)
		if err != nil {
			dle := &DataLoadError{Path: name, Line: line, Err: err}
			var ve ValidationError
			if errors.As(err, &ve) {
				dle.Column = ve.Field
			}
			return nil, dle
		}
		records = append(records, rec)
	}

	return &ProviderTable{Source: name, records: records}, nil
}

// buildRecord validates a row and populates a ProviderRecord by explicit
// column lookups.
func buildRecord(row []string, idx HeaderIndex) (ProviderRecord, error) {
	if err := ValidateRow(row, idx, ProviderFieldSpecs); err != nil {
		return ProviderRecord{}, err
	}

	get := func(name string) string {
		v, _ := cell(row, idx, name)
		return v
	}

	// Bounds were checked by ValidateRow.
	lat, _ := ParseCoordinate(get(ColLatitude), -90, 90)
	lng, _ := ParseCoordinate(get(ColLongitude), -180, 180)

	return ProviderRecord{
		Organization: get(ColOrganization),
		Address:      get(ColAddress),
		City:         get(ColCity),
		State:        get(ColState),
		Position:     LatLng{Lat: lat, Lng: lng},
	}, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
