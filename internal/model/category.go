package model

import "time"

// Category groups transactions. Names are unique ignoring case.
type Category struct {
	ID        string
	Name      string
	Type      TransactionType
	Color     string // hex, e.g. "#6b7280"
	Icon      string
	CreatedAt time.Time
}
