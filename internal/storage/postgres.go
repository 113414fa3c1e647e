package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/starlitjournals/sitemap/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sitemap_runs (
            id UUID PRIMARY KEY,
            generated_at TIMESTAMP WITH TIME ZONE NOT NULL,
            output_path TEXT NOT NULL,
            total_entries INTEGER NOT NULL,
            status TEXT NOT NULL,
            categories JSONB NOT NULL,
            degraded_categories TEXT[] NOT NULL DEFAULT '{}',
            error TEXT,
            created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_sitemap_runs_created_at ON sitemap_runs(created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *models.Run) error {
	categories, err := json.Marshal(run.Categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	degraded := run.DegradedCategories()
	if degraded == nil {
		degraded = []string{}
	}

	query := `
        INSERT INTO sitemap_runs (id, generated_at, output_path, total_entries, status, categories, degraded_categories, error, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.GeneratedAt.UTC(),
		run.OutputPath,
		run.TotalEntries,
		run.Status,
		categories,
		pq.Array(degraded),
		run.Error,
		run.CreatedAt.UTC(),
	)

	return err
}

const postgresRunColumns = `id, generated_at, output_path, total_entries, status, categories, error, created_at`

func scanPostgresRun(row rowScanner) (*models.Run, error) {
	run := &models.Run{}
	var (
		categories []byte
		runErr     sql.NullString
	)

	err := row.Scan(
		&run.ID,
		&run.GeneratedAt,
		&run.OutputPath,
		&run.TotalEntries,
		&run.Status,
		&categories,
		&runErr,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(categories, &run.Categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}
	run.Error = runErr.String

	return run, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	query := `SELECT ` + postgresRunColumns + ` FROM sitemap_runs WHERE id = $1`

	run, err := scanPostgresRun(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (s *PostgresStore) LatestRun(ctx context.Context) (*models.Run, error) {
	query := `SELECT ` + postgresRunColumns + ` FROM sitemap_runs ORDER BY created_at DESC LIMIT 1`

	run, err := scanPostgresRun(s.db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]*models.Run, error) {
	categories := []string{}
	if filter.DegradedCategory != "" {
		categories = []string{filter.DegradedCategory}
	}

	query := `
        SELECT ` + postgresRunColumns + `
        FROM sitemap_runs
        WHERE cardinality($1::text[]) = 0 OR degraded_categories && $1::text[]
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `

	rows, err := s.db.QueryContext(ctx, query, pq.Array(categories), filter.limit(), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanPostgresRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
