package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/database"
)

// HealthResponse is served by GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime"`
	Books   *int64            `json:"books,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// bookCounter is the part of the store the health check reads.
type bookCounter interface {
	Count(ctx context.Context) (int64, error)
}

type HealthController struct {
	db      *database.Database
	books   bookCounter
	version string
	started time.Time
}

func NewHealthController(db *database.Database, books bookCounter, version string) *HealthController {
	return &HealthController{
		db:      db,
		books:   books,
		version: version,
		started: time.Now(),
	}
}

// Status reports whether the journal can be read. Either check failing makes
// the whole response unhealthy.
func (h *HealthController) Status(c *gin.Context) {
	health := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Checks:  make(map[string]string),
	}

	if h.db == nil {
		health.Checks["database"] = "not configured"
	} else if err := h.db.Ping(); err != nil {
		health.Checks["database"] = "error: " + err.Error()
		health.Status = "unhealthy"
	} else {
		health.Checks["database"] = "ok"
	}

	if h.books == nil {
		health.Checks["journal"] = "not configured"
	} else if count, err := h.books.Count(c.Request.Context()); err != nil {
		health.Checks["journal"] = "error: " + err.Error()
		health.Status = "unhealthy"
	} else {
		health.Checks["journal"] = "ok"
		health.Books = &count
	}

	statusCode := http.StatusOK
	if health.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.IndentedJSON(statusCode, health)
}

func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
