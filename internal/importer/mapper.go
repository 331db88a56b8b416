package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/model"
)

const (
	// DefaultDescription replaces a blank description cell.
	DefaultDescription = "Imported transaction"
	// DefaultUncategorized replaces a blank category cell.
	DefaultUncategorized = "Uncategorized"
)

// ErrNoValidRows means an import produced no transactions at all.
var ErrNoValidRows = errors.New("no valid transactions found to import")

// RowError is a row that could not become a transaction. Row is the 1-based
// line number in the file, so the first data row is 2.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
}

// Result is the outcome of mapping a table. Every data row lands in exactly
// one of Transactions or Errors.
type Result struct {
	Transactions []model.Transaction
	Errors       []RowError
	// MissingCategories lists category names with no existing match, in
	// first-seen order. Names that differ only in case share one missing:<name>
	// key and appear once, under the first spelling seen. Their transactions
	// carry that missing:<name> category ID.
	MissingCategories []string
}

// Messages renders Errors as display strings.
func (r Result) Messages() []string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return msgs
}

// Err returns ErrNoValidRows when nothing was imported.
func (r Result) Err() error {
	if len(r.Transactions) == 0 {
		return ErrNoValidRows
	}
	return nil
}

// Mapper turns tokenized rows into transactions.
type Mapper struct {
	IDs id.Generator
	Now func() time.Time
	// Uncategorized is the category name used for rows with a blank category cell.
	Uncategorized string
}

// NewMapper creates a Mapper with the default blank-category name.
func NewMapper(ids id.Generator, now func() time.Time) *Mapper {
	return &Mapper{IDs: ids, Now: now, Uncategorized: DefaultUncategorized}
}

// Map converts every row of t using mapping, resolving category names against
// categories without regard to case. A blank category cell is read as
// m.Uncategorized and then resolved or reported missing like any other name,
// so no row ends up with an empty category. It does not fail as a whole: bad
// rows are reported in Result.Errors and the rest still import.
func (m *Mapper) Map(t *Table, mapping Mapping, categories []model.Category) Result {
	var cols [numFields]int
	for _, f := range Fields() {
		cols[f] = t.Column(mapping.Column(f))
	}

	index := make(map[string]string, len(categories))
	for _, c := range categories {
		index[strings.ToLower(strings.TrimSpace(c.Name))] = c.ID
	}

	var res Result
	seenMissing := make(map[string]bool)
	for i, rec := range t.Rows {
		rowNum := i + 2

		txn, missing, err := m.mapRow(rec, cols, index, rowNum)
		if err != nil {
			var rowErr RowError
			if !errors.As(err, &rowErr) {
				rowErr = RowError{Row: rowNum, Reason: err.Error()}
			}
			res.Errors = append(res.Errors, rowErr)
			continue
		}

		if missing != "" {
			key := id.MissingCategoryID(missing)
			if !seenMissing[key] {
				seenMissing[key] = true
				res.MissingCategories = append(res.MissingCategories, missing)
			}
		}
		res.Transactions = append(res.Transactions, txn)
	}
	return res
}

// mapRow builds one transaction. missing is the category name when it matched
// nothing. A panic anywhere in the row becomes a RowError.
func (m *Mapper) mapRow(rec Record, cols [numFields]int, index map[string]string, rowNum int) (txn model.Transaction, missing string, err error) {
	defer func() {
		if r := recover(); r != nil {
			txn, missing = model.Transaction{}, ""
			err = RowError{Row: rowNum, Reason: panicReason(r)}
		}
	}()

	cell := func(f Field) string {
		if cols[f] < 0 {
			return ""
		}
		return rec[cols[f]]
	}

	rawDate := cell(FieldDate)
	date, err := ParseDate(rawDate)
	if err != nil {
		return model.Transaction{}, "", RowError{Row: rowNum, Reason: fmt.Sprintf("Invalid date %q", rawDate)}
	}

	rawAmount := cell(FieldAmount)
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return model.Transaction{}, "", RowError{Row: rowNum, Reason: fmt.Sprintf("Invalid amount %q", rawAmount)}
	}

	catName := strings.TrimSpace(cell(FieldCategory))
	if catName == "" {
		catName = m.Uncategorized
	}
	categoryID, ok := index[strings.ToLower(catName)]
	if !ok {
		missing = catName
		categoryID = id.MissingCategoryID(catName)
	}

	desc := strings.TrimSpace(cell(FieldDescription))
	if desc == "" {
		desc = DefaultDescription
	}

	return model.Transaction{
		ID:          m.IDs.NewID(),
		Date:        date,
		Amount:      amount,
		CategoryID:  categoryID,
		Type:        model.ParseTransactionType(cell(FieldType)),
		Description: desc,
		Notes:       strings.TrimSpace(cell(FieldNotes)),
		Tags:        SplitTags(cell(FieldTags)),
		CreatedAt:   m.Now().UTC(),
	}, missing, nil
}

// ParseAmount reads a number that may carry thousands separators ("1,234.50").
// The sign is dropped: direction is carried by the transaction type.
func ParseAmount(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d.Abs(), nil
}

// SplitTags splits a tag cell on commas, semicolons or pipes. Blank and repeated
// tags are dropped; order and case are kept. Returns nil when no tags remain.
func SplitTags(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	var tags []string
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		tags = append(tags, p)
	}
	return tags
}

func panicReason(r any) string {
	switch v := r.(type) {
	case error:
		return v.Error()
	case string:
		if v != "" {
			return v
		}
	}
	return "Unexpected import error"
}
