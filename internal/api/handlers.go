package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/starlitjournals/sitemap/internal/metrics"
	"github.com/starlitjournals/sitemap/internal/models"
	"github.com/starlitjournals/sitemap/internal/storage"
)

// Generator regenerates the sitemap file on demand.
type Generator interface {
	Run(ctx context.Context) (*models.Run, error)
}

type Handler struct {
	store      storage.Store
	generator  Generator
	metrics    *metrics.Collector
	outputPath string

	// one regeneration at a time
	mu sync.Mutex
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PaginationResponse struct {
	Data  interface{} `json:"data"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// NewHandler builds the handler set. store may be nil when the run ledger is
// disabled; the run history routes then answer 503.
func NewHandler(store storage.Store, generator Generator, collector *metrics.Collector, outputPath string) *Handler {
	return &Handler{
		store:      store,
		generator:  generator,
		metrics:    collector,
		outputPath: outputPath,
	}
}

func (h *Handler) ServeSitemap(c *gin.Context) {
	if _, err := os.Stat(h.outputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Sitemap has not been generated yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read sitemap"})
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSitemapServed()
	}
	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.File(h.outputPath)
}

func (h *Handler) Metrics(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Metrics are disabled"})
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

func (h *Handler) requireStore(c *gin.Context) bool {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Run ledger is disabled"})
		return false
	}
	return true
}

func (h *Handler) ListRuns(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	page, limit := getPaginationParams(c)
	runs, err := h.store.ListRuns(c.Request.Context(), storage.RunFilter{
		DegradedCategory: c.Query("degraded"),
		Limit:            limit,
		Offset:           (page - 1) * limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch runs"})
		return
	}

	if runs == nil {
		runs = []*models.Run{}
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  runs,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) GetRun(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid run ID"})
		return
	}

	run, err := h.store.GetRun(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch run"})
		return
	}

	if run == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *Handler) LatestRun(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	run, err := h.store.LatestRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch run"})
		return
	}

	if run == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No runs recorded"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// CreateRun regenerates the sitemap synchronously and returns the run.
func (h *Handler) CreateRun(c *gin.Context) {
	if !h.mu.TryLock() {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "A run is already in progress"})
		return
	}
	defer h.mu.Unlock()

	run, err := h.generator.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write sitemap", "run": run})
		return
	}

	c.JSON(http.StatusCreated, run)
}

// Utility functions
func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return page, limit
}
