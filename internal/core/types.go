package core

// FieldType represents the expected data type for a CSV field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldCoordinate
)

// FieldSpec defines validation rules for a single CSV column.
type FieldSpec struct {
	Name     string    // Column header name (matched case-insensitively)
	Type     FieldType // Expected data type
	Required bool      // Column must exist in CSV header
	Min, Max float64   // Inclusive bounds for FieldCoordinate
}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// Column names of the provider data file.
const (
	ColOrganization = "Organization Name"
	ColAddress      = "Street Address"
	ColCity         = "City"
	ColState        = "State"
	ColLatitude     = "Latitude"
	ColLongitude    = "Longitude"
)

// ProviderFieldSpecs lists the columns every provider file must carry.
var ProviderFieldSpecs = []FieldSpec{
	{Name: ColOrganization, Type: FieldText, Required: true},
	{Name: ColAddress, Type: FieldText, Required: true},
	{Name: ColCity, Type: FieldText, Required: true},
	{Name: ColState, Type: FieldText, Required: true},
	{Name: ColLatitude, Type: FieldCoordinate, Required: true, Min: -90, Max: 90},
	{Name: ColLongitude, Type: FieldCoordinate, Required: true, Min: -180, Max: 180},
}

// LatLng is a geographic position in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ProviderRecord is one row of the provider file. Records are never mutated
// after load; identity is the row position.
type ProviderRecord struct {
	Organization string
	Address      string
	City         string
	State        string
	Position     LatLng
}

// ProviderTable is the ordered, read-only set of records loaded from one file.
type ProviderTable struct {
	Source  string
	records []ProviderRecord
}

// NewProviderTable builds a table from records. The slice is copied.
func NewProviderTable(source string, records []ProviderRecord) *ProviderTable {
	cp := make([]ProviderRecord, len(records))
	copy(cp, records)
	return &ProviderTable{Source: source, records: cp}
}

// Len returns the number of records.
func (t *ProviderTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns the record at row position i.
func (t *ProviderTable) At(i int) ProviderRecord {
	return t.records[i]
}

// Records returns a copy of all records in source order.
func (t *ProviderTable) Records() []ProviderRecord {
	if t == nil {
		return nil
	}
	cp := make([]ProviderRecord, len(t.records))
	copy(cp, t.records)
	return cp
}

// RegionCount pairs a region code with the number of records in it.
type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// StatsSummary is derived once from a ProviderTable.
type StatsSummary struct {
	TotalProviders  int           `json:"total_providers"`
	DistinctRegions int           `json:"distinct_regions"`
	TopRegions      []RegionCount `json:"top_regions"`
}

// Tooltip is the descriptive content shown when hovering a marker.
type Tooltip struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Region  string `json:"region"`
}

// MarkerDescriptor is one renderable map point per ProviderRecord.
type MarkerDescriptor struct {
	Index    int     `json:"index"`
	Position LatLng  `json:"position"`
	Tooltip  Tooltip `json:"tooltip"`
}

// Summary returns the single-line location shown under the tooltip heading.
func (m MarkerDescriptor) Summary() string {
	return m.Tooltip.Address + ", " + m.Tooltip.City + ", " + m.Tooltip.Region
}
