package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// DatabaseProbe reports store reachability and pool usage
type DatabaseProbe interface {
	Ping() error
	Stats() (persistence.ConnectionStats, error)
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	db        DatabaseProbe
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db DatabaseProbe, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version, startTime: time.Now()}
}

// LivenessResponse is returned by the liveness probe
// @name HandlerLivenessResponse
type LivenessResponse struct {
	Status    string `json:"status" example:"ok"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// ReadinessResponse is returned by the readiness probe
// @name HandlerReadinessResponse
type ReadinessResponse struct {
	Status   string       `json:"status" example:"ready"`
	Database DatabaseInfo `json:"database"`
}

// DatabaseInfo summarises the connection pool
type DatabaseInfo struct {
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	WaitCount       int64  `json:"wait_count"`
	WaitDuration    string `json:"wait_duration"`
}

// Live godoc
// @ID           getHealth
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200 {object} APIResponse[LivenessResponse]
// @Router       /health [get]
func (h *HealthHandler) Live(c *gin.Context) {
	h.Success(c, LivenessResponse{
		Status:    "ok",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready godoc
// @ID           getReadiness
// @Summary      Readiness probe
// @Description  Pings the inventory store. Answers 503 while it is unreachable.
// @Tags         health
// @Produce      json
// @Success      200 {object} APIResponse[ReadinessResponse]
// @Failure      503 {object} ErrorResponse
// @Router       /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeSystem, "Inventory store unavailable", getRequestID(c)))
		return
	}

	stats, err := h.db.Stats()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ReadinessResponse{
		Status: "ready",
		Database: DatabaseInfo{
			OpenConnections: stats.OpenConnections,
			InUse:           stats.InUse,
			Idle:            stats.Idle,
			WaitCount:       stats.WaitCount,
			WaitDuration:    stats.WaitDuration.String(),
		},
	})
}
