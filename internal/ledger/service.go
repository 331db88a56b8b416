package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/model"
)

// File is the transaction store's path relative to the ledger root.
var File = filepath.Join("data", "transactions.csv")

// ErrNotFound is returned for an unknown transaction ID.
var ErrNotFound = errors.New("transaction not found")

// Categories is the category store the ledger reads and extends during import.
type Categories interface {
	CategoryChecker
	FindByName(name string) (model.Category, bool)
	Create(c model.Category) (model.Category, error)
	Delete(id string) error
	Save(root string) error
}

// Service provides business logic over the transactions in one ledger root.
type Service struct {
	root       string
	txns       []model.Transaction
	categories Categories
	ids        id.Generator
	now        func() time.Time
}

// Load reads <root>/data/transactions.csv. A missing file is an empty ledger.
func Load(root string, categories Categories, ids id.Generator, now func() time.Time) (*Service, error) {
	s := &Service{root: root, categories: categories, ids: ids, now: now}

	path := filepath.Join(root, File)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening transactions %s: %w", path, err)
	}
	defer f.Close()

	s.txns, err = ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading transactions %s: %w", path, err)
	}
	return s, nil
}

// List returns a copy of all transactions in insertion order.
func (s *Service) List() []model.Transaction {
	out := make([]model.Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}

// Get returns a transaction by ID.
func (s *Service) Get(txnID string) (model.Transaction, bool) {
	if i := s.indexOf(txnID); i >= 0 {
		return s.txns[i], true
	}
	return model.Transaction{}, false
}

// ReferencesCategory reports whether any transaction uses the category.
func (s *Service) ReferencesCategory(categoryID string) bool {
	for _, t := range s.txns {
		if t.CategoryID == categoryID {
			return true
		}
	}
	return false
}

// Create assigns txn an ID and creation time, validates it and appends it to
// the store. Returns the stored transaction.
func (s *Service) Create(txn model.Transaction) (model.Transaction, error) {
	txn.ID = s.ids.NewID()
	txn.CreatedAt = s.now().UTC()
	if err := s.appendValidated([]model.Transaction{txn}); err != nil {
		return model.Transaction{}, err
	}
	return txn, nil
}

// Update replaces the stored transaction with the same ID and rewrites the store.
func (s *Service) Update(txn model.Transaction) error {
	i := s.indexOf(txn.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, txn.ID)
	}

	next := s.List()
	txn.CreatedAt = next[i].CreatedAt
	next[i] = txn
	if err := validationError(ValidateTransactions(next, s.categories)); err != nil {
		return err
	}
	if err := s.rewrite(next); err != nil {
		return err
	}
	s.txns = next
	return nil
}

// Delete removes a transaction and rewrites the store.
func (s *Service) Delete(txnID string) error {
	i := s.indexOf(txnID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, txnID)
	}

	next := append(s.List()[:i], s.txns[i+1:]...)
	if err := s.rewrite(next); err != nil {
		return err
	}
	s.txns = next
	return nil
}

// Save rewrites transactions.csv from memory, header included.
func (s *Service) Save() error {
	return s.rewrite(s.txns)
}

// ImportOptions controls how Import creates missing categories.
type ImportOptions struct {
	CategoryColor string
	CategoryIcon  string
	// Skipped is the number of rows rejected before commit, echoed in the summary.
	Skipped int
}

// Summary reports what an import committed.
type Summary struct {
	Imported          int
	Skipped           int
	CategoriesCreated int
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d transaction(s)", s.Imported)
	if s.Skipped > 0 {
		fmt.Fprintf(&b, " (%d skipped due to errors)", s.Skipped)
	}
	if s.CategoriesCreated > 0 {
		fmt.Fprintf(&b, " (%d categories created)", s.CategoriesCreated)
	}
	return b.String()
}

// Import commits mapped transactions. Each name in missing becomes a new
// category (unless one now exists under that name), typed after the first
// transaction that used it, and the missing:<name> category IDs are rewritten
// to the real IDs. The batch is validated before anything is written, and
// categories.csv is saved before transactions are appended. On any error the
// categories created here are removed again.
func (s *Service) Import(txns []model.Transaction, missing []string, opts ImportOptions) (sum Summary, err error) {
	if len(txns) == 0 {
		return Summary{}, errors.New("nothing to import")
	}

	firstType := make(map[string]model.TransactionType)
	for _, t := range txns {
		if _, ok := firstType[t.CategoryID]; !ok {
			firstType[t.CategoryID] = t.Type
		}
	}

	var created []string
	defer func() {
		if err == nil || len(created) == 0 {
			return
		}
		for _, categoryID := range created {
			_ = s.categories.Delete(categoryID)
		}
		if saveErr := s.categories.Save(s.root); saveErr != nil {
			err = errors.Join(err, fmt.Errorf("restoring categories: %w", saveErr))
		}
	}()

	resolved := make(map[string]string, len(missing))
	for _, name := range missing {
		sentinel := id.MissingCategoryID(name)
		if _, done := resolved[sentinel]; done {
			continue
		}
		if c, ok := s.categories.FindByName(name); ok {
			resolved[sentinel] = c.ID
			continue
		}

		typ, ok := firstType[sentinel]
		if !ok {
			typ = model.TypeExpense
		}
		c, err := s.categories.Create(model.Category{
			Name:  name,
			Type:  typ,
			Color: opts.CategoryColor,
			Icon:  opts.CategoryIcon,
		})
		if err != nil {
			return Summary{}, fmt.Errorf("failed to save category %q: %w", name, err)
		}
		resolved[sentinel] = c.ID
		created = append(created, c.ID)
	}

	batch := make([]model.Transaction, len(txns))
	for i, t := range txns {
		if real, ok := resolved[t.CategoryID]; ok {
			t.CategoryID = real
		}
		batch[i] = t
	}

	all := append(s.List(), batch...)
	if err := validationError(ValidateTransactions(all, s.categories)); err != nil {
		return Summary{}, err
	}
	if len(created) > 0 {
		if err := s.categories.Save(s.root); err != nil {
			return Summary{}, fmt.Errorf("saving categories: %w", err)
		}
	}
	if err := s.appendRows(batch); err != nil {
		return Summary{}, err
	}
	s.txns = all

	return Summary{Imported: len(batch), Skipped: opts.Skipped, CategoriesCreated: len(created)}, nil
}

func (s *Service) appendValidated(batch []model.Transaction) error {
	all := append(s.List(), batch...)
	if err := validationError(ValidateTransactions(all, s.categories)); err != nil {
		return err
	}
	if err := s.appendRows(batch); err != nil {
		return err
	}
	s.txns = all
	return nil
}

// appendRows writes batch to the end of transactions.csv, creating the file with
// a header if needed.
func (s *Service) appendRows(batch []model.Transaction) error {
	path := filepath.Join(s.root, File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening transactions: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendTransactions(f, batch); err != nil {
		return fmt.Errorf("appending transactions: %w", err)
	}
	return nil
}

func (s *Service) rewrite(txns []model.Transaction) error {
	path := filepath.Join(s.root, File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating transactions file: %w", err)
	}
	defer f.Close()

	if err := WriteTransactions(f, txns); err != nil {
		return fmt.Errorf("writing transactions: %w", err)
	}
	return nil
}

func (s *Service) indexOf(txnID string) int {
	for i, t := range s.txns {
		if t.ID == txnID {
			return i
		}
	}
	return -1
}

func validationError(verrs []ValidationError) error {
	if len(verrs) == 0 {
		return nil
	}
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}
