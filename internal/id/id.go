package id

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Generator hands out unique record IDs.
type Generator interface {
	NewID() string
}

// UUID generates random v4 UUIDs.
type UUID struct{}

// NewID returns a new random UUID string.
func (UUID) NewID() string { return uuid.NewString() }

// Sequence generates predictable IDs like "txn_1", "txn_2". Safe for concurrent use.
type Sequence struct {
	Prefix string

	mu   sync.Mutex
	next int
}

// NewSequence returns a Sequence whose first ID is prefix_1.
func NewSequence(prefix string) *Sequence {
	return &Sequence{Prefix: prefix}
}

// NewID returns the next ID in the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s_%d", s.Prefix, s.next)
}

// missingPrefix marks a category ID that has not been resolved to a real category.
const missingPrefix = "missing:"

// MissingCategoryID returns the sentinel ID for an unresolved category name.
// "Pets" -> "missing:pets"
func MissingCategoryID(name string) string {
	return missingPrefix + strings.ToLower(name)
}

// IsMissingCategoryID reports whether categoryID is a sentinel.
func IsMissingCategoryID(categoryID string) bool {
	return strings.HasPrefix(categoryID, missingPrefix)
}

// MissingCategoryKey returns the lowercased name carried by a sentinel ID.
// "missing:pets" -> "pets", true
func MissingCategoryKey(categoryID string) (string, bool) {
	return strings.CutPrefix(categoryID, missingPrefix)
}
