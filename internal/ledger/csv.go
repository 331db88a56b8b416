package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack-dev/fintrack/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "id,date,amount,category_id,type,description,notes,tags,created_at"

const (
	numFields    = 9
	timeFormat   = time.RFC3339Nano
	tagSep       = ";"
	colID        = 0
	colDate      = 1
	colAmount    = 2
	colCategory  = 3
	colType      = 4
	colDesc      = 5
	colNotes     = 6
	colTags      = 7
	colCreatedAt = 8
)

// ReadTransactions reads all transactions from a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes transactions, header included.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return writeRows(cw, txns, 2)
}

// AppendTransactions writes transactions without a header.
func AppendTransactions(w io.Writer, txns []model.Transaction) error {
	return writeRows(csv.NewWriter(w), txns, 1)
}

func writeRows(cw *csv.Writer, txns []model.Transaction, firstRow int) error {
	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+firstRow, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = txn.ID
	row[colDate] = txn.Date.UTC().Format(timeFormat)
	row[colAmount] = txn.Amount.String()
	row[colCategory] = txn.CategoryID
	row[colType] = string(txn.Type)
	row[colDesc] = txn.Description
	row[colNotes] = txn.Notes
	row[colTags] = strings.Join(txn.Tags, tagSep)
	if !txn.CreatedAt.IsZero() {
		row[colCreatedAt] = txn.CreatedAt.UTC().Format(timeFormat)
	}
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(timeFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var created time.Time
	if record[colCreatedAt] != "" {
		created, err = time.Parse(timeFormat, record[colCreatedAt])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
		}
	}

	var tags []string
	if record[colTags] != "" {
		tags = strings.Split(record[colTags], tagSep)
	}

	return model.Transaction{
		ID:          record[colID],
		Date:        date,
		Amount:      amount,
		CategoryID:  record[colCategory],
		Type:        model.TransactionType(record[colType]),
		Description: record[colDesc],
		Notes:       record[colNotes],
		Tags:        tags,
		CreatedAt:   created,
	}, nil
}
