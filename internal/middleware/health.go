package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthStatus is the body served on /health.
type HealthStatus struct {
	Status      string    `json:"status"`
	Database    string    `json:"database"`
	LastChecked time.Time `json:"last_checked"`
	Uptime      string    `json:"uptime"`
	Version     string    `json:"version"`
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthCheck struct {
	db            Pinger
	version       string
	logger        *zap.Logger
	startTime     time.Time
	cacheDuration time.Duration

	mu       sync.Mutex
	last     HealthStatus
	lastCode int
}

func NewHealthCheck(db Pinger, version string, logger *zap.Logger) *HealthCheck {
	return &HealthCheck{
		db:            db,
		version:       version,
		logger:        logger,
		startTime:     time.Now(),
		cacheDuration: 5 * time.Second,
	}
}

// Handler answers 200 while the database responds and 503 otherwise. Results
// are cached briefly so frequent checks do not hammer the database.
func (h *HealthCheck) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.mu.Lock()
		defer h.mu.Unlock()

		if h.lastCode != 0 && time.Since(h.last.LastChecked) < h.cacheDuration {
			c.JSON(h.lastCode, h.last)
			return
		}

		status := HealthStatus{
			Status:      "ok",
			Database:    "ok",
			LastChecked: time.Now(),
			Uptime:      time.Since(h.startTime).Round(time.Second).String(),
			Version:     h.version,
		}
		code := http.StatusOK

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("Database health check failed", zap.Error(err))
			status.Status = "degraded"
			status.Database = "unavailable"
			code = http.StatusServiceUnavailable
		}

		h.last = status
		h.lastCode = code
		c.JSON(code, status)
	}
}
