package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType says which way money moved.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// ParseTransactionType resolves free text to a TransactionType. Only "income"
// (any case) is income; everything else, including blank, is an expense.
func ParseTransactionType(s string) TransactionType {
	if strings.EqualFold(strings.TrimSpace(s), string(TypeIncome)) {
		return TypeIncome
	}
	return TypeExpense
}

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single income or expense record.
type Transaction struct {
	ID          string
	Date        time.Time
	Amount      decimal.Decimal // never negative; direction comes from Type
	CategoryID  string          // may be a missing:<name> sentinel until committed
	Type        TransactionType
	Description string
	Notes       string   // empty when absent
	Tags        []string // nil when absent
	CreatedAt   time.Time
}
