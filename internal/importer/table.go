package importer

import (
	"fmt"
	"io"
	"strings"
)

// Table is a tokenized CSV file: the first row as headers, the rest as records.
type Table struct {
	Headers []string
	Rows    []Record
}

// Record holds one data row's cells, aligned with Table.Headers. Missing
// trailing cells are "" and cells beyond the header count are dropped.
type Record []string

// ReadCSV reads all of r and tokenizes it. A leading UTF-8 byte order mark is ignored.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return ParseCSV(strings.TrimPrefix(string(data), "\ufeff")), nil
}

// ParseCSV tokenizes CSV text. Fields may be wrapped in double quotes to
// embed commas and line breaks; "" inside quotes is a literal quote. Cells are
// trimmed of surrounding whitespace and blank lines are skipped. It never fails:
// malformed quoting just runs to the end of the input.
func ParseCSV(text string) *Table {
	var (
		rows         [][]string
		row          []string
		current      strings.Builder
		insideQuotes bool
	)

	endField := func() {
		row = append(row, strings.TrimSpace(current.String()))
		current.Reset()
	}
	endRow := func() {
		if current.Len() > 0 || len(row) > 0 {
			endField()
			rows = append(rows, row)
		}
		row = nil
		current.Reset()
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"' && insideQuotes && i+1 < len(text) && text[i+1] == '"':
			current.WriteByte('"')
			i++
		case c == '"':
			insideQuotes = !insideQuotes
		case c == ',' && !insideQuotes:
			endField()
		case (c == '\n' || c == '\r') && !insideQuotes:
			endRow()
		default:
			current.WriteByte(c)
		}
	}
	endRow()

	t := &Table{}
	if len(rows) == 0 {
		return t
	}
	t.Headers = rows[0]
	for _, cols := range rows[1:] {
		rec := make(Record, len(t.Headers))
		copy(rec, cols)
		t.Rows = append(t.Rows, rec)
	}
	return t
}

// Column returns the index of the named column, or -1. When several columns
// share a name the last one wins.
func (t *Table) Column(name string) int {
	if name == "" {
		return -1
	}
	for i := len(t.Headers) - 1; i >= 0; i-- {
		if t.Headers[i] == name {
			return i
		}
	}
	return -1
}

// Get returns the cell of row i under the named column, or "" if there is no such column.
func (t *Table) Get(i int, name string) string {
	col := t.Column(name)
	if col < 0 {
		return ""
	}
	return t.Rows[i][col]
}

// Fields returns row i as a header -> value map.
func (t *Table) Fields(i int) map[string]string {
	m := make(map[string]string, len(t.Headers))
	for col, h := range t.Headers {
		m[h] = t.Rows[i][col]
	}
	return m
}

// DuplicateHeaders lists header names that appear more than once, in first-seen order.
// Only the last column of each such name is reachable by name.
func (t *Table) DuplicateHeaders() []string {
	counts := make(map[string]int, len(t.Headers))
	var dups []string
	for _, h := range t.Headers {
		counts[h]++
		if counts[h] == 2 {
			dups = append(dups, h)
		}
	}
	return dups
}
