package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusComplete = "Completed"
	RunStatusDegraded = "Degraded"
	RunStatusFailed   = "Error"
)

// Run records one generation of the sitemap file.
type Run struct {
	ID           uuid.UUID     `json:"id"`
	GeneratedAt  time.Time     `json:"generatedAt"`
	OutputPath   string        `json:"outputPath"`
	TotalEntries int           `json:"totalEntries"`
	Status       string        `json:"status"`
	Categories   []CategoryRun `json:"categories"`
	Error        string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// CategoryRun is the per-category outcome inside a Run.
type CategoryRun struct {
	Category string `json:"category"`
	Items    int    `json:"items"`
	Authors  int    `json:"authors"`
	Error    string `json:"error,omitempty"`
}

// NewRun creates a new run with generated UUID and timestamps
func NewRun(generatedAt time.Time) *Run {
	return &Run{
		ID:          uuid.New(),
		GeneratedAt: generatedAt,
		Status:      RunStatusComplete,
		CreatedAt:   time.Now(),
	}
}

// DegradedCategories returns the names of categories that failed to fetch.
func (r *Run) DegradedCategories() []string {
	var names []string
	for _, c := range r.Categories {
		if c.Error != "" {
			names = append(names, c.Category)
		}
	}
	return names
}
