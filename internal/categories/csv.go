package categories

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fintrack-dev/fintrack/internal/model"
)

// Header is the CSV header for categories.csv.
const Header = "id,name,type,color,icon,created_at"

const (
	numFields    = 6
	colID        = 0
	colName      = 1
	colType      = 2
	colColor     = 3
	colIcon      = 4
	colCreatedAt = 5
)

// ReadCategories reads categories.csv.
func ReadCategories(r io.Reader) ([]model.Category, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var cats []model.Category
	for i, rec := range records[1:] {
		c, err := UnmarshalCategory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// WriteCategories writes categories.csv, header included.
func WriteCategories(w io.Writer, cats []model.Category) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, c := range cats {
		if err := cw.Write(MarshalCategory(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalCategory converts a Category to a CSV row.
func MarshalCategory(c model.Category) []string {
	row := make([]string, numFields)
	row[colID] = c.ID
	row[colName] = c.Name
	row[colType] = string(c.Type)
	row[colColor] = c.Color
	row[colIcon] = c.Icon
	if !c.CreatedAt.IsZero() {
		row[colCreatedAt] = c.CreatedAt.UTC().Format(time.RFC3339)
	}
	return row
}

// UnmarshalCategory converts a CSV row to a Category.
func UnmarshalCategory(record []string) (model.Category, error) {
	if len(record) != numFields {
		return model.Category{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	typ := model.TransactionType(record[colType])
	if !typ.Valid() {
		return model.Category{}, fmt.Errorf("invalid type %q", record[colType])
	}

	var created time.Time
	if record[colCreatedAt] != "" {
		var err error
		created, err = time.Parse(time.RFC3339, record[colCreatedAt])
		if err != nil {
			return model.Category{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
		}
	}

	return model.Category{
		ID:        record[colID],
		Name:      record[colName],
		Type:      typ,
		Color:     record[colColor],
		Icon:      record[colIcon],
		CreatedAt: created,
	}, nil
}
