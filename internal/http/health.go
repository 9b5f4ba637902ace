package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/locallibrary/internal/catalog"
	"github.com/mrlokans/locallibrary/internal/database"
)

const healthCheckTimeout = 2 * time.Second

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
	Catalog *catalog.Counts   `json:"catalog,omitempty"`
}

// HealthController reports database reachability, the catalog size and
// whether background tasks are running.
type HealthController struct {
	db           *database.Database
	queries      CatalogReader
	tasksEnabled bool
	version      string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// WithCatalog adds catalog counts to the report.
func (h *HealthController) WithCatalog(queries CatalogReader) *HealthController {
	h.queries = queries
	return h
}

// WithTasks marks the background queue as configured.
func (h *HealthController) WithTasks(enabled bool) *HealthController {
	h.tasksEnabled = enabled
	return h
}

func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	health := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  map[string]string{},
	}

	switch {
	case h.db == nil:
		health.Checks["database"] = "not configured"
	default:
		if err := h.db.Ping(ctx); err != nil {
			health.Checks["database"] = "error: " + err.Error()
			health.Status = "unhealthy"
		} else {
			health.Checks["database"] = "ok (" + h.db.Driver + ")"
		}
	}

	if h.queries != nil && health.Status == "healthy" {
		counts, err := h.queries.Counts(ctx)
		if err != nil {
			health.Checks["catalog"] = "error: " + err.Error()
			health.Status = "unhealthy"
		} else {
			health.Checks["catalog"] = "ok"
			health.Catalog = &counts
		}
	}

	if h.tasksEnabled {
		health.Checks["tasks"] = "enabled"
	} else {
		health.Checks["tasks"] = "disabled"
	}

	statusCode := http.StatusOK
	if health.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
