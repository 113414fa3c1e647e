package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/starlitjournals/sitemap/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "sitemap_runs.db"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sitemap_runs (
            id TEXT PRIMARY KEY,
            generated_at DATETIME NOT NULL,
            output_path TEXT NOT NULL,
            total_entries INTEGER NOT NULL,
            status TEXT NOT NULL,
            categories TEXT NOT NULL,
            degraded_categories TEXT NOT NULL DEFAULT '',
            error TEXT,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
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

// degraded names are stored as ",a,b," so a LIKE on ",name," matches whole names.
func joinDegraded(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "," + strings.Join(names, ",") + ","
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *models.Run) error {
	categories, err := json.Marshal(run.Categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	query := `
        INSERT INTO sitemap_runs (id, generated_at, output_path, total_entries, status, categories, degraded_categories, error, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err = s.db.ExecContext(ctx, query,
		run.ID.String(),
		run.GeneratedAt.UTC(),
		run.OutputPath,
		run.TotalEntries,
		run.Status,
		string(categories),
		joinDegraded(run.DegradedCategories()),
		run.Error,
		run.CreatedAt.UTC(),
	)

	return err
}

const sqliteRunColumns = `id, generated_at, output_path, total_entries, status, categories, error, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteRun(row rowScanner) (*models.Run, error) {
	run := &models.Run{}
	var (
		id         string
		categories string
		runErr     sql.NullString
	)

	err := row.Scan(
		&id,
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

	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(categories), &run.Categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}
	run.Error = runErr.String

	return run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	query := `SELECT ` + sqliteRunColumns + ` FROM sitemap_runs WHERE id = ?`

	run, err := scanSQLiteRun(s.db.QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*models.Run, error) {
	query := `SELECT ` + sqliteRunColumns + ` FROM sitemap_runs ORDER BY created_at DESC LIMIT 1`

	run, err := scanSQLiteRun(s.db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]*models.Run, error) {
	query := `
        SELECT ` + sqliteRunColumns + `
        FROM sitemap_runs
        WHERE ? = '' OR degraded_categories LIKE '%,' || ? || ',%'
        ORDER BY created_at DESC
        LIMIT ? OFFSET ?
    `

	rows, err := s.db.QueryContext(ctx, query,
		filter.DegradedCategory,
		filter.DegradedCategory,
		filter.limit(),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
