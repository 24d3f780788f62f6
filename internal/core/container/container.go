package container

import (
	"context"
	"database/sql"

	"shelf/internal/archive"
	auditLogRepo "shelf/internal/auditlog"
	"shelf/internal/core/config"
	"shelf/internal/custody"
	"shelf/internal/database"
	"shelf/internal/exports"
	"shelf/internal/inventory/assets"
	"shelf/internal/inventory/category"
	inventorylog "shelf/internal/inventory/inventory_log"
	"shelf/internal/inventory/kits"
	"shelf/internal/locations"
	"shelf/internal/middleware"
	"shelf/internal/qrcodes"
	"shelf/internal/rate_limiter"
	"shelf/internal/repository"
	"shelf/internal/users"
	"shelf/pkg/auditlog"
	"shelf/pkg/security"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type Container struct {
	Repository      *repository.Repository
	AuditLog        *auditlog.Auditlog
	RateLimiter     *rate_limiter.RateLimiter
	LoginHandler    *security.LoginHandler
	LocationHandler *locations.LocationHandler
	CategoryHandler *category.CategoryHandler
	AssetHandler    *assets.AssetHandler
	KitHandler      *kits.KitHandler
	CustodyHandler  *custody.CustodyHandler
	UserHandler     *users.UsersHandler
	QRCodeHandler   *qrcodes.Handler
	ExportHandler   *exports.Handler
	AuditLogHandler *auditLogRepo.AuditLogHandler
	HealthCheck     *middleware.HealthCheck
	HTTPMetrics     *middleware.HTTPMetrics
}

func NewAppContainer(ctx context.Context, db *sql.DB, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer, version string) (*Container, error) {
	repo := repository.NewRepository(db, database.Dialect(cfg.DatabaseDriver))

	auditLogRepository := auditLogRepo.NewRepository(repo)
	auditLog := auditlog.NewAuditLog(auditLogRepository, logger)
	inventoryLog := inventorylog.NewInventoryLog(auditLog)

	locationRepository := locations.NewLocationRepository(repo)
	categoryRepository := category.NewRepository(repo)
	assetRepository := assets.NewRepository(repo)
	kitRepository := kits.NewRepository(repo)
	custodyRepository := custody.NewRepository(repo)
	userRepository := users.NewRepository(repo)

	custodyService := custody.NewCustodyService(custodyRepository, inventoryLog, custody.NewMetrics(reg))
	qrService := qrcodes.NewService(assetRepository, kitRepository, cfg.QRBaseURL)

	qrHandler := qrcodes.NewHandler(qrService)
	exportHandler := exports.NewHandler(assetRepository, locationRepository)
	if cfg.Archive.Enabled() {
		store, err := archive.New(ctx, cfg.Archive)
		if err != nil {
			return nil, err
		}
		qrHandler.WithArchive(store)
		exportHandler.WithArchive(store)
		logger.Info("Archive bucket configured", zap.String("bucket", cfg.Archive.Bucket))
	}

	limiter := rate_limiter.NewRateLimiter(security.LoginAttempts, security.LoginWindow)

	return &Container{
		Repository:      repo,
		AuditLog:        auditLog,
		RateLimiter:     limiter,
		LoginHandler:    security.NewLoginHandler(repo, limiter, logger),
		LocationHandler: locations.NewLocationHandler(locationRepository, auditLog),
		CategoryHandler: category.NewCategoryHandler(categoryRepository),
		AssetHandler:    assets.NewAssetHandler(assetRepository, locationRepository, inventoryLog),
		KitHandler:      kits.NewKitHandler(kitRepository, locationRepository, inventoryLog),
		CustodyHandler:  custody.NewCustodyHandler(custodyService),
		UserHandler:     users.NewHandler(userRepository),
		QRCodeHandler:   qrHandler,
		ExportHandler:   exportHandler,
		AuditLogHandler: auditLogRepo.NewHandler(auditLogRepository),
		HealthCheck:     middleware.NewHealthCheck(db, version, logger),
		HTTPMetrics:     middleware.NewHTTPMetrics(reg),
	}, nil
}

// Close releases background resources owned by the container.
func (c *Container) Close() {
	c.RateLimiter.Close()
}
