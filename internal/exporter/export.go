package exporter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fintrack-dev/fintrack/internal/model"
)

// ErrNothingToExport means the date filter left no transactions.
var ErrNothingToExport = errors.New("no transactions found for export")

// Section selects what an export contains.
type Section string

const (
	SectionTransactions Section = "transactions"
	SectionCategories   Section = "categories"
	SectionBoth         Section = "both"
)

// CategoriesDivider separates the two parts of a combined export.
const CategoriesDivider = "\n\n---CATEGORIES---\n"

// ParseSection validates an export selector.
func ParseSection(s string) (Section, error) {
	switch sec := Section(strings.ToLower(strings.TrimSpace(s))); sec {
	case SectionTransactions, SectionCategories, SectionBoth:
		return sec, nil
	}
	return "", fmt.Errorf("unknown export section %q (want transactions, categories or both)", s)
}

func (s Section) withTransactions() bool { return s == SectionTransactions || s == SectionBoth }
func (s Section) withCategories() bool   { return s == SectionCategories || s == SectionBoth }

// Options controls Build. Zero From or To leaves that end of the range open.
type Options struct {
	Section Section
	From    time.Time
	To      time.Time
}

// File is a rendered export ready to be written.
type File struct {
	Name    string
	Content string
	// Records is the number of transactions, or of categories for a categories-only export.
	Records int
}

// Build renders an export. Transactions are filtered to [From, To] by calendar
// day. It fails with ErrNothingToExport when transactions are requested and none remain.
func Build(opts Options, txns []model.Transaction, categories []model.Category, now time.Time) (File, error) {
	var (
		b    strings.Builder
		file File
	)

	if opts.Section.withTransactions() {
		selected := FilterByDate(txns, opts.From, opts.To)
		if len(selected) == 0 {
			return File{}, ErrNothingToExport
		}
		b.WriteString(TransactionsToCSV(selected, categories))
		file.Records = len(selected)
	}

	if opts.Section.withCategories() {
		if b.Len() > 0 {
			b.WriteString(CategoriesDivider)
		} else {
			file.Records = len(categories)
		}
		b.WriteString(CategoriesToCSV(categories))
	}

	file.Name = FileName(opts.Section, now)
	file.Content = b.String()
	return file, nil
}

// FileName returns transactions_<date>.csv, categories_<date>.csv or
// fintrack_export_<date>.csv for a combined export.
func FileName(section Section, now time.Time) string {
	stamp := now.UTC().Format(dateFormat)
	switch section {
	case SectionTransactions:
		return "transactions_" + stamp + ".csv"
	case SectionCategories:
		return "categories_" + stamp + ".csv"
	}
	return "fintrack_export_" + stamp + ".csv"
}

// FilterByDate keeps transactions whose UTC calendar day is within [from, to].
func FilterByDate(txns []model.Transaction, from, to time.Time) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		d := t.Date.UTC().Truncate(24 * time.Hour)
		if !from.IsZero() && d.Before(from.UTC().Truncate(24*time.Hour)) {
			continue
		}
		if !to.IsZero() && d.After(to.UTC().Truncate(24*time.Hour)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Write saves f under dir, creating dir if needed, and returns the file path.
func Write(dir string, f File) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(dir, f.Name)
	if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}
