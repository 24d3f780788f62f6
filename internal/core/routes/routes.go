package routes

import (
	"time"

	"shelf/internal/core/container"
	"shelf/internal/middleware"
	"shelf/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with the shared middleware chain and every
// route group registered.
func NewRouter(c *container.Container, logger *zap.Logger, gatherer prometheus.Gatherer, timeout time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.RequestLogger(logger),
		c.HTTPMetrics.Handler(),
		middleware.TimeoutMiddleware(timeout),
	)

	RegisterUtilityRoutes(router, c, gatherer)
	RegisterPublicRoutes(router, c)
	RegisterProtectedRoutes(router, c)

	return router
}

func RegisterPublicRoutes(router *gin.Engine, c *container.Container) {
	c.LoginHandler.RegisterRoutes(router)
}

func RegisterProtectedRoutes(router *gin.Engine, c *container.Container) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware())

	c.LocationHandler.RegisterRoutes(protectedRoutes)
	c.CategoryHandler.RegisterRoutes(protectedRoutes)
	c.AssetHandler.RegisterRoutes(protectedRoutes)
	c.KitHandler.RegisterRoutes(protectedRoutes)
	c.CustodyHandler.RegisterRoutes(protectedRoutes)
	c.UserHandler.RegisterRoutes(protectedRoutes)
	c.QRCodeHandler.RegisterRoutes(protectedRoutes)
	c.ExportHandler.RegisterRoutes(protectedRoutes)
	c.AuditLogHandler.RegisterRoutes(protectedRoutes)
}

func RegisterUtilityRoutes(router *gin.Engine, c *container.Container, gatherer prometheus.Gatherer) {
	router.GET("/health", c.HealthCheck.Handler())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
