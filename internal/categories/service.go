package categories

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/model"
)

// File is the category store's path relative to the ledger root.
var File = filepath.Join("data", "categories.csv")

var (
	// ErrNotFound is returned for an unknown category ID.
	ErrNotFound = errors.New("category not found")
	// ErrDuplicateName is returned when a name is already taken, ignoring case.
	ErrDuplicateName = errors.New("category name already exists")
)

// Service is an in-memory category store backed by categories.csv.
type Service struct {
	cats []model.Category
	ids  id.Generator
	now  func() time.Time
}

// NewService creates a Service over cats. New categories get IDs from ids and
// timestamps from now.
func NewService(cats []model.Category, ids id.Generator, now func() time.Time) *Service {
	return &Service{cats: cats, ids: ids, now: now}
}

// Load reads <root>/data/categories.csv and returns a Service.
func Load(root string, ids id.Generator, now func() time.Time) (*Service, error) {
	path := filepath.Join(root, File)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	return NewService(cats, ids, now), nil
}

// Save writes all categories to <root>/data/categories.csv.
func (s *Service) Save(root string) error {
	path := filepath.Join(root, File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating categories file: %w", err)
	}
	defer f.Close()

	if err := WriteCategories(f, s.cats); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}
	return nil
}

// List returns a copy of all categories in insertion order.
func (s *Service) List() []model.Category {
	out := make([]model.Category, len(s.cats))
	copy(out, s.cats)
	return out
}

// Get returns a category by ID.
func (s *Service) Get(id string) (model.Category, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.cats[i], true
	}
	return model.Category{}, false
}

// FindByName looks a category up by trimmed name, ignoring case.
func (s *Service) FindByName(name string) (model.Category, bool) {
	key := strings.TrimSpace(name)
	for _, c := range s.cats {
		if strings.EqualFold(strings.TrimSpace(c.Name), key) {
			return c, true
		}
	}
	return model.Category{}, false
}

// Create validates c, assigns it an ID and creation time, and adds it.
func (s *Service) Create(c model.Category) (model.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := s.check(c, ""); err != nil {
		return model.Category{}, err
	}
	c.ID = s.ids.NewID()
	c.CreatedAt = s.now().UTC()
	s.cats = append(s.cats, c)
	return c, nil
}

// Patch lists the fields Update changes. Nil fields are left alone.
type Patch struct {
	Name  *string
	Type  *model.TransactionType
	Color *string
	Icon  *string
}

// Update applies p to the category with the given ID.
func (s *Service) Update(id string, p Patch) (model.Category, error) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Category{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	c := s.cats[i]
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if err := s.check(c, id); err != nil {
		return model.Category{}, err
	}
	s.cats[i] = c
	return c, nil
}

// Delete removes the category with the given ID.
func (s *Service) Delete(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.cats = append(s.cats[:i], s.cats[i+1:]...)
	return nil
}

// Exists reports whether a category ID exists.
func (s *Service) Exists(id string) bool {
	return s.indexOf(id) >= 0
}

func (s *Service) check(c model.Category, selfID string) error {
	if c.Name == "" {
		return errors.New("category name is required")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("invalid category type %q", c.Type)
	}
	if other, ok := s.FindByName(c.Name); ok && other.ID != selfID {
		return fmt.Errorf("%w: %s", ErrDuplicateName, c.Name)
	}
	return nil
}

func (s *Service) indexOf(id string) int {
	for i, c := range s.cats {
		if c.ID == id {
			return i
		}
	}
	return -1
}
