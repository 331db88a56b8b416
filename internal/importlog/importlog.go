package importlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// File is the log's path relative to the ledger root.
var File = filepath.Join("logs", "import-log.csv")

// Header is the CSV header for import-log.csv.
const Header = "timestamp,file,imported,skipped,categories_created,commit_hash"

const (
	numFields    = 6
	colTimestamp = 0
	colFile      = 1
	colImported  = 2
	colSkipped   = 3
	colCreated   = 4
	colCommit    = 5
)

// Entry records one committed import run.
type Entry struct {
	Timestamp         time.Time
	File              string // source file name, without directory
	Imported          int
	Skipped           int
	CategoriesCreated int
	CommitHash        string // empty when git auto-commit is off
}

// Append adds e to <root>/logs/import-log.csv, creating the file with a header
// on first use.
func Append(root string, e Entry) error {
	path := filepath.Join(root, File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	_, statErr := os.Stat(path)
	fresh := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if fresh {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := cw.Write(marshal(e)); err != nil {
		return fmt.Errorf("writing log entry: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every logged import, oldest first. A missing log is empty.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, File))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return decode(f)
}

func decode(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func marshal(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colFile] = e.File
	row[colImported] = strconv.Itoa(e.Imported)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	row[colCreated] = strconv.Itoa(e.CategoriesCreated)
	row[colCommit] = e.CommitHash
	return row
}

func unmarshal(rec []string) (Entry, error) {
	ts, err := time.Parse(time.RFC3339, rec[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", rec[colTimestamp], err)
	}

	var counts [3]int
	for i, col := range []int{colImported, colSkipped, colCreated} {
		counts[i], err = strconv.Atoi(rec[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", rec[col], err)
		}
	}

	return Entry{
		Timestamp:         ts,
		File:              rec[colFile],
		Imported:          counts[0],
		Skipped:           counts[1],
		CategoriesCreated: counts[2],
		CommitHash:        rec[colCommit],
	}, nil
}
