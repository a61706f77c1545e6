package backend

import (
	"context"

	"github.com/lushlawncarepros/petersen-budget/internal/tabular"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function.
type Result struct {
	Store   tabular.SnapshotStore
	Cleanup CleanupFunc
}

// Factory creates snapshot stores based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for store creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets credentials and worksheet names come from the GOOGLE_*
	// environment variables, read by the sheets client itself.
}

// Type represents the kind of backing store.
type Type string

const (
	SQLiteStore Type = "sqlite"
	SheetsStore Type = "sheets"
	MemoryStore Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLiteStore, SheetsStore, MemoryStore:
		return true
	default:
		return false
	}
}
