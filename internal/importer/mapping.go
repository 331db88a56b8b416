package importer

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Field is a transaction attribute a CSV column can be mapped to.
type Field int

const (
	FieldDate Field = iota
	FieldAmount
	FieldCategory
	FieldType
	FieldDescription
	FieldNotes
	FieldTags

	numFields = iota
)

var fieldNames = [numFields]string{"date", "amount", "category", "type", "description", "notes", "tags"}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// Required reports whether an import cannot run without f mapped.
func (f Field) Required() bool { return f <= FieldDescription }

// Fields returns every field in display order.
func Fields() []Field {
	fs := make([]Field, numFields)
	for i := range fs {
		fs[i] = Field(i)
	}
	return fs
}

// ParseField looks up a field by name, ignoring case.
func ParseField(s string) (Field, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range fieldNames {
		if n == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown field %q (want one of %s)", s, strings.Join(fieldNames[:], ", "))
}

// Mapping names the CSV column feeding each field. "" means the field is skipped.
type Mapping struct {
	Date        string `yaml:"date"`
	Amount      string `yaml:"amount"`
	Category    string `yaml:"category"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Notes       string `yaml:"notes,omitempty"`
	Tags        string `yaml:"tags,omitempty"`
}

// Column returns the column mapped to f.
func (m Mapping) Column(f Field) string {
	switch f {
	case FieldDate:
		return m.Date
	case FieldAmount:
		return m.Amount
	case FieldCategory:
		return m.Category
	case FieldType:
		return m.Type
	case FieldDescription:
		return m.Description
	case FieldNotes:
		return m.Notes
	case FieldTags:
		return m.Tags
	}
	return ""
}

// Set maps f to column. An empty column skips the field.
func (m *Mapping) Set(f Field, column string) {
	switch f {
	case FieldDate:
		m.Date = column
	case FieldAmount:
		m.Amount = column
	case FieldCategory:
		m.Category = column
	case FieldType:
		m.Type = column
	case FieldDescription:
		m.Description = column
	case FieldNotes:
		m.Notes = column
	case FieldTags:
		m.Tags = column
	}
}

// MissingFieldsError reports required fields that have no column.
type MissingFieldsError struct {
	Fields []Field
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.String()
	}
	return "missing required columns: " + strings.Join(names, ", ")
}

// UnknownColumnError reports a mapping that names a column the file does not have.
type UnknownColumnError struct {
	Field  Field
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("field %s is mapped to column %q, which is not in the file", e.Field, e.Column)
}

// Validate checks that every required field is mapped and that every mapped
// column exists in headers. Pass nil headers to skip the column check.
func (m Mapping) Validate(headers []string) error {
	var missing []Field
	for _, f := range Fields() {
		if f.Required() && m.Column(f) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}

	if headers == nil {
		return nil
	}
	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}
	for _, f := range Fields() {
		col := m.Column(f)
		if col != "" && !known[col] {
			return &UnknownColumnError{Field: f, Column: col}
		}
	}
	return nil
}

// AutoMap guesses a mapping from header names. A field takes the first unclaimed
// header containing its name (ignoring case); failing that, the unclaimed header
// closest to its name by edit distance, if within maxDistance. maxDistance <= 0
// disables the fuzzy pass.
func AutoMap(headers []string, maxDistance int) Mapping {
	var m Mapping
	claimed := make([]bool, len(headers))
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, f := range Fields() {
		if i := matchContains(f.String(), lower, claimed); i >= 0 {
			m.Set(f, headers[i])
			claimed[i] = true
		}
	}

	if maxDistance <= 0 {
		return m
	}
	for _, f := range Fields() {
		if m.Column(f) != "" {
			continue
		}
		if i := matchClosest(f.String(), lower, claimed, maxDistance); i >= 0 {
			m.Set(f, headers[i])
			claimed[i] = true
		}
	}
	return m
}

func matchContains(name string, headers []string, claimed []bool) int {
	for i, h := range headers {
		if !claimed[i] && strings.Contains(h, name) {
			return i
		}
	}
	return -1
}

func matchClosest(name string, headers []string, claimed []bool, maxDistance int) int {
	best, bestDist := -1, maxDistance+1
	for i, h := range headers {
		if claimed[i] || h == "" {
			continue
		}
		if d := levenshtein.ComputeDistance(h, name); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Presets holds named mappings for known CSV layouts.
type Presets struct {
	mappings map[string]Mapping
}

// NewPresets creates an empty preset registry.
func NewPresets() *Presets {
	return &Presets{mappings: make(map[string]Mapping)}
}

// Register adds a named mapping. Panics on a duplicate name.
func (p *Presets) Register(name string, m Mapping) {
	key := strings.ToLower(name)
	if _, ok := p.mappings[key]; ok {
		panic("duplicate mapping preset: " + key)
	}
	p.mappings[key] = m
}

// Get returns the named mapping, ignoring case.
func (p *Presets) Get(name string) (Mapping, bool) {
	m, ok := p.mappings[strings.ToLower(name)]
	return m, ok
}

// ExportMapping reads files written by the transaction exporter.
var ExportMapping = Mapping{
	Date:        "Date",
	Amount:      "Amount",
	Category:    "Category",
	Type:        "Type",
	Description: "Description",
	Notes:       "Notes",
	Tags:        "Tags",
}

// DefaultPresets returns a registry holding the built-in presets.
func DefaultPresets() *Presets {
	p := NewPresets()
	p.Register("fintrack", ExportMapping)
	return p
}
