package ledger

import (
	"fmt"

	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/model"
)

// ValidationError describes a single rule violation.
type ValidationError struct {
	Rule          string
	TransactionID string
	Description   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Rule, e.TransactionID, e.Description)
}

// CategoryChecker tests whether a category ID exists.
type CategoryChecker interface {
	Exists(id string) bool
}

// Rule names reported in ValidationError.
const (
	RuleUniqueID = "unique-id"
	RuleCategory = "category"
	RuleAmount   = "amount"
	RuleType     = "type"
	RuleDate     = "date"
)

// ValidateTransactions checks a full set of transactions before it is persisted.
func ValidateTransactions(txns []model.Transaction, categories CategoryChecker) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(txns))

	for _, t := range txns {
		if t.ID == "" {
			errs = append(errs, ValidationError{Rule: RuleUniqueID, Description: "transaction has no ID"})
		} else if seen[t.ID] {
			errs = append(errs, ValidationError{Rule: RuleUniqueID, TransactionID: t.ID, Description: "duplicate transaction ID"})
		}
		seen[t.ID] = true

		switch {
		case id.IsMissingCategoryID(t.CategoryID):
			errs = append(errs, ValidationError{
				Rule:          RuleCategory,
				TransactionID: t.ID,
				Description:   fmt.Sprintf("category %q was never created", t.CategoryID),
			})
		case !categories.Exists(t.CategoryID):
			errs = append(errs, ValidationError{
				Rule:          RuleCategory,
				TransactionID: t.ID,
				Description:   fmt.Sprintf("unknown category %q", t.CategoryID),
			})
		}

		if t.Amount.IsNegative() {
			errs = append(errs, ValidationError{
				Rule:          RuleAmount,
				TransactionID: t.ID,
				Description:   fmt.Sprintf("amount %s is negative", t.Amount),
			})
		}

		if !t.Type.Valid() {
			errs = append(errs, ValidationError{
				Rule:          RuleType,
				TransactionID: t.ID,
				Description:   fmt.Sprintf("invalid type %q", t.Type),
			})
		}

		if t.Date.IsZero() {
			errs = append(errs, ValidationError{Rule: RuleDate, TransactionID: t.ID, Description: "date is missing"})
		}
	}
	return errs
}
