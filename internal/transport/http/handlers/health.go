package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	infraredis "github.com/msubchak/online-cinema/internal/infra/redis"
)

// HealthHandler reports service liveness and dependency readiness.
type HealthHandler struct {
	pool  *pgxpool.Pool
	redis *infraredis.Client
}

func NewHealthHandler(pool *pgxpool.Pool, redis *infraredis.Client) *HealthHandler {
	return &HealthHandler{pool: pool, redis: redis}
}

// Healthz handles GET /healthz checking postgres and redis connectivity.
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"postgres": "ok", "redis": "ok"}

	if err := h.pool.Ping(ctx); err != nil {
		checks["postgres"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	if err := h.redis.HealthCheck(ctx); err != nil {
		checks["redis"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	c.JSON(status, gin.H{"status": overall, "checks": checks})
}
