package compactor

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	compactorsvc "storage-engine/internal/services/compactor"
)

// Handler exposes read-only HTTP diagnostics for a running compactor
// worker: a liveness probe and the partition outcome counters the
// engine's MetricsDoneSink has accumulated.
type Handler struct {
	service *compactorsvc.Service
}

// NewHandler creates a new compactor diagnostics handler.
func NewHandler(service *compactorsvc.Service) *Handler {
	return &Handler{service: service}
}

// Routes registers the handler's endpoints on r.
func (h *Handler) Routes(r *gin.Engine) {
	r.GET("/healthz", h.healthz)
	r.GET("/metrics", h.metrics)
}

// healthz reports liveness. The compactor worker has no external
// dependency to probe beyond the catalog/object store it was built
// with at startup, so this is a constant "healthy" once the process is up.
func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "compactor-worker",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// metrics reports the partition outcome counters ("ok" and one
// "error.<kind>" entry per ErrorKind seen) recorded by the driver's done
// sink since the process started.
func (h *Handler) metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"partition_outcomes": h.service.Metrics(),
	})
}
