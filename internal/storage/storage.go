package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/starlitjournals/sitemap/internal/models"
)

type Store interface {
	Initialize() error
	Close() error

	// Run operations
	CreateRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*models.Run, error)
	LatestRun(ctx context.Context) (*models.Run, error)
}

// RunFilter narrows ListRuns. An empty DegradedCategory matches every run.
type RunFilter struct {
	DegradedCategory string
	Limit            int
	Offset           int
}

// NewStore opens the ledger for driver and creates its tables.
func NewStore(driver, url string) (Store, error) {
	var (
		store Store
		err   error
	)
	switch driver {
	case "sqlite":
		store, err = NewSQLiteStore(url)
	case "postgres":
		store, err = NewPostgresStore(url)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize %s store: %w", driver, err)
	}
	return store, nil
}

func (f RunFilter) limit() int {
	if f.Limit < 1 {
		return 10
	}
	return f.Limit
}
