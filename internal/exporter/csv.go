package exporter

import (
	"strings"

	"github.com/fintrack-dev/fintrack/internal/model"
)

const (
	// TransactionsHeader is the first line of a transactions export.
	TransactionsHeader = "Date,Type,Category,Amount,Description,Notes,Tags"
	// CategoriesHeader is the first line of a categories export.
	CategoriesHeader = "Name,Type,Color,Icon"
	// UnknownCategory is written for transactions whose category ID matches nothing.
	UnknownCategory = "Unknown"

	dateFormat = "2006-01-02"
)

// TransactionsToCSV renders transactions one per line under TransactionsHeader.
// Description and notes are always quoted; the category name is quoted only
// when it needs to be. Lines are joined with "\n" and there is no trailing newline.
func TransactionsToCSV(txns []model.Transaction, categories []model.Category) string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	lines := make([]string, 0, len(txns)+1)
	lines = append(lines, TransactionsHeader)
	for _, t := range txns {
		category, ok := names[t.CategoryID]
		if !ok || category == "" {
			category = UnknownCategory
		}

		notes := ""
		if t.Notes != "" {
			notes = quote(t.Notes)
		}

		lines = append(lines, strings.Join([]string{
			t.Date.UTC().Format(dateFormat),
			string(t.Type),
			quoteIfNeeded(category, ",\"\n\r"),
			t.Amount.String(),
			quote(t.Description),
			notes,
			strings.Join(t.Tags, ";"),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// CategoriesToCSV renders categories one per line under CategoriesHeader. A
// field is quoted only when it contains a comma.
func CategoriesToCSV(categories []model.Category) string {
	lines := make([]string, 0, len(categories)+1)
	lines = append(lines, CategoriesHeader)
	for _, c := range categories {
		fields := []string{c.Name, string(c.Type), c.Color, c.Icon}
		for i, f := range fields {
			fields[i] = quoteIfNeeded(f, ",")
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s, special string) string {
	if strings.ContainsAny(s, special) {
		return quote(s)
	}
	return s
}
