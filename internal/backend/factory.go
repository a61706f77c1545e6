package backend

import (
	"context"
	"fmt"
	"log/slog"

	gsheet "github.com/lushlawncarepros/petersen-budget/internal/tabular/google"
	"github.com/lushlawncarepros/petersen-budget/internal/tabular/memory"
	"github.com/lushlawncarepros/petersen-budget/internal/tabular/sqlite"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteStore:
		return f.createSQLiteStore(config)
	case SheetsStore:
		return f.createSheetsStore(ctx)
	case MemoryStore:
		return f.createMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteStore(config Config) (*Result, error) {
	store, err := sqlite.Open(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{Store: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createSheetsStore(ctx context.Context) (*Result, error) {
	cli, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend")

	return &Result{Store: cli, Cleanup: nil}, nil
}

func (f *DefaultFactory) createMemoryStore() (*Result, error) {
	store := memory.New()

	f.logger.Info("Initialized memory backend")

	return &Result{Store: store, Cleanup: nil}, nil
}
