package sitemap

import (
	"context"
	"time"

	"github.com/starlitjournals/sitemap/internal/models"
)

// RunRecorder persists finished runs.
type RunRecorder interface {
	CreateRun(ctx context.Context, run *models.Run) error
}

// MetricsRecorder receives per-run measurements.
type MetricsRecorder interface {
	RecordCategory(category string, items, authors int)
	RecordCategoryFailure(category string)
	RecordEntriesWritten(count int)
	RecordRunDuration(d time.Duration)
}

type RunnerConfig struct {
	Domain     string
	OutputPath string
}

type Runner struct {
	builder  *Builder
	config   RunnerConfig
	logger   Logger
	recorder RunRecorder
	metrics  MetricsRecorder
}

// NewRunner wires a builder to its output. recorder and metrics may be nil.
func NewRunner(builder *Builder, config RunnerConfig, logger Logger, recorder RunRecorder, metrics MetricsRecorder) *Runner {
	return &Runner{
		builder:  builder,
		config:   config,
		logger:   logger,
		recorder: recorder,
		metrics:  metrics,
	}
}

// Run regenerates the sitemap file. The returned error is non-nil only when
// the file could not be written; the run is returned either way.
func (r *Runner) Run(ctx context.Context) (*models.Run, error) {
	start := time.Now()

	result := r.builder.Build(ctx)
	run := models.NewRun(result.GeneratedAt)
	run.OutputPath = r.config.OutputPath
	run.TotalEntries = len(result.Entries)

	for _, c := range result.Categories {
		cr := models.CategoryRun{Category: c.Category}
		if c.Degraded() {
			cr.Error = c.Err.Error()
			run.Status = models.RunStatusDegraded
			if r.metrics != nil {
				r.metrics.RecordCategoryFailure(c.Category)
			}
		} else {
			cr.Items = len(c.Items)
			cr.Authors = len(c.Authors())
			if r.metrics != nil {
				r.metrics.RecordCategory(c.Category, cr.Items, cr.Authors)
			}
		}
		run.Categories = append(run.Categories, cr)
	}

	writeErr := WriteFile(r.config.OutputPath, ToSitemap(r.config.Domain, result.Entries))
	if writeErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = writeErr.Error()
		run.TotalEntries = 0
		r.logger.LogError("Failed to write sitemap: %v", writeErr)
	} else {
		r.logger.LogInfo("Sitemap generated with %d entries at %s", run.TotalEntries, r.config.OutputPath)
	}

	if r.metrics != nil {
		r.metrics.RecordEntriesWritten(run.TotalEntries)
		r.metrics.RecordRunDuration(time.Since(start))
	}

	if r.recorder != nil {
		if err := r.recorder.CreateRun(ctx, run); err != nil {
			r.logger.LogError("Failed to record run %s: %v", run.ID, err)
		}
	}

	return run, writeErr
}
