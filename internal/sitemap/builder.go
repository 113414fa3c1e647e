// Package sitemap turns the static route table and the backend's journal and
// story listings into sitemap entries.
package sitemap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/starlitjournals/sitemap/internal/models"
)

const (
	itemPriority   = 0.8
	authorPriority = 0.6
)

type Fetcher interface {
	FetchCategory(ctx context.Context, category string) ([]models.ContentItem, error)
}

type Logger interface {
	LogInfo(format string, v ...interface{})
	LogError(format string, v ...interface{})
}

type staticPage struct {
	path       string
	changeFreq models.ChangeFrequency
	priority   float64
}

var staticPages = []staticPage{
	{"/", models.ChangeDaily, 1.0},
	{"/about", models.ChangeMonthly, 0.5},
	{"/terms", models.ChangeYearly, 0.3},
	{"/privacy", models.ChangeYearly, 0.3},
	{"/journals", models.ChangeDaily, 0.9},
	{"/stories", models.ChangeDaily, 0.9},
}

// StaticEntries returns the fixed site pages stamped with date.
func StaticEntries(date time.Time) []models.Entry {
	return lo.Map(staticPages, func(p staticPage, _ int) models.Entry {
		return models.Entry{
			Path:            p.path,
			ChangeFrequency: p.changeFreq,
			Priority:        p.priority,
			LastModified:    date,
		}
	})
}

// CategoryResult is the outcome of fetching one category. A non-nil Err marks
// the category as degraded and Items is ignored.
type CategoryResult struct {
	Category string
	Items    []models.ContentItem
	Err      error
}

func (r CategoryResult) Degraded() bool {
	return r.Err != nil
}

// Authors returns the distinct authors in order of first appearance.
func (r CategoryResult) Authors() []string {
	if r.Degraded() {
		return nil
	}
	return lo.Uniq(lo.Map(r.Items, func(item models.ContentItem, _ int) string {
		return item.Author
	}))
}

// Entries derives the item pages followed by the author pages of a category.
func (r CategoryResult) Entries(date time.Time) []models.Entry {
	if r.Degraded() {
		return nil
	}

	entries := make([]models.Entry, 0, len(r.Items))
	for _, item := range r.Items {
		entries = append(entries, models.Entry{
			Path:            fmt.Sprintf("/%s/%s/%s", r.Category, item.Author, item.Slug),
			ChangeFrequency: models.ChangeWeekly,
			Priority:        itemPriority,
			LastModified:    date,
		})
	}
	for _, author := range r.Authors() {
		entries = append(entries, models.Entry{
			Path:            fmt.Sprintf("/%s/%s", r.Category, author),
			ChangeFrequency: models.ChangeWeekly,
			Priority:        authorPriority,
			LastModified:    date,
		})
	}
	return entries
}

// Assemble concatenates the static entries and each category's entries in
// the order the results are given. Paths are not deduplicated.
func Assemble(date time.Time, results []CategoryResult) []models.Entry {
	entries := StaticEntries(date)
	for _, r := range results {
		entries = append(entries, r.Entries(date)...)
	}
	return entries
}

// Result is everything one Build produced.
type Result struct {
	GeneratedAt time.Time
	Entries     []models.Entry
	Categories  []CategoryResult
}

type Builder struct {
	fetcher    Fetcher
	logger     Logger
	categories []string
	now        func() time.Time
}

func NewBuilder(fetcher Fetcher, logger Logger) *Builder {
	return &Builder{
		fetcher:    fetcher,
		logger:     logger,
		categories: models.Categories,
		now:        time.Now,
	}
}

// Build fetches every category concurrently and assembles the entry list.
// Fetch failures degrade their own category and never fail the build.
func (b *Builder) Build(ctx context.Context) *Result {
	date := RunDate(b.now())

	results := make([]CategoryResult, len(b.categories))
	var wg sync.WaitGroup
	for i, category := range b.categories {
		wg.Add(1)
		go func(i int, category string) {
			defer wg.Done()
			results[i] = b.fetchCategory(ctx, category)
		}(i, category)
	}
	wg.Wait()

	for _, r := range results {
		if r.Degraded() {
			b.logger.LogError("Failed to fetch %s: %v", r.Category, r.Err)
		}
	}

	return &Result{
		GeneratedAt: date,
		Entries:     Assemble(date, results),
		Categories:  results,
	}
}

func (b *Builder) fetchCategory(ctx context.Context, category string) CategoryResult {
	items, err := b.fetcher.FetchCategory(ctx, category)
	if err != nil {
		return CategoryResult{Category: category, Err: err}
	}
	return CategoryResult{Category: category, Items: items}
}

// RunDate truncates t to its UTC calendar day.
func RunDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
