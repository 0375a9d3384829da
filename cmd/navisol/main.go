package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/navisol/navisol-erp/internal/bom"
	"github.com/navisol/navisol-erp/internal/catalog/entity"
	"github.com/navisol/navisol-erp/internal/catalog/handler"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
	"github.com/navisol/navisol-erp/internal/catalog/service"
	"github.com/navisol/navisol-erp/internal/config"
	"github.com/navisol/navisol-erp/internal/middleware"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting navisol-erp catalog service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := autoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	var attachments service.AttachmentStore
	if cfg.MinIO.Endpoint != "" {
		store, err := initMinio(cfg.MinIO)
		if err != nil {
			zapLogger.Fatal("Failed to connect to object storage", zap.Error(err))
		}
		attachments = store
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, attachments, zapLogger)
	engine := bom.NewEngine(repos.Article, repos.Kit, repos.Legacy, zapLogger)
	handlers := handler.NewHandlers(services, repos, engine)

	if err := seedLegacyMappings(context.Background(), repos.Legacy, zapLogger); err != nil {
		zapLogger.Warn("Legacy mapping seed failed", zap.Error(err))
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Category{},
		&entity.Subcategory{},
		&entity.Article{},
		&entity.ArticleVersion{},
		&entity.Kit{},
		&entity.KitVersion{},
		&entity.KitComponent{},
		&entity.Configuration{},
		&entity.ConfigurationItem{},
		&entity.LegacyPartMapping{},
		&entity.OperationLog{},
	)
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initMinio(cfg config.MinIOConfig) (*service.MinioAttachmentStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	store := service.NewMinioAttachmentStore(client, cfg.Bucket)
	if err := store.EnsureBucket(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// seedLegacyMappings loads a starter set of legacy part mappings on an empty
// table so old quotation imports expand to something sensible out of the box.
func seedLegacyMappings(ctx context.Context, repo *repository.LegacyMappingRepository, logger *zap.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed := []entity.LegacyPartMapping{
		{LegacyName: "Anchor package", PartName: "Galvanized anchor 10kg", ArticleNumber: "ANC-10-GAL", Unit: "pcs", UnitCost: decimal.NewFromInt(85), QtyPer: decimal.NewFromInt(1)},
		{LegacyName: "Anchor package", PartName: "Anchor chain 8mm", ArticleNumber: "CHN-08-GAL", Unit: "m", UnitCost: decimal.NewFromInt(6), QtyPer: decimal.NewFromInt(30)},
		{LegacyName: "Nav light set", PartName: "LED navigation light set", ArticleNumber: "NAV-LED-SET", Unit: "set", UnitCost: decimal.NewFromInt(120), QtyPer: decimal.NewFromInt(1)},
	}
	for i := range seed {
		seed[i].ID = fmt.Sprintf("seed-legacy-%02d", i+1)
		if err := repo.Create(ctx, &seed[i]); err != nil {
			return err
		}
	}
	logger.Info("Seeded legacy part mappings", zap.Int("count", len(seed)))
	return nil
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		categories := v1.Group("/categories")
		{
			categories.GET("", h.Category.List)
			categories.GET("/:id", h.Category.Get)
			categories.POST("", h.Category.Create)
			categories.POST("/:id/subcategories", h.Category.CreateSubcategory)
		}

		articles := v1.Group("/articles")
		{
			articles.GET("", h.Article.Search)
			articles.POST("", h.Article.Create)
			articles.GET("/:id", h.Article.Get)
			articles.PUT("/:id", h.Article.Update)
			articles.GET("/:id/versions", h.Article.ListVersions)
			articles.POST("/:id/versions", h.Article.CreateVersion)
			articles.GET("/:id/versions/current", h.Article.CurrentVersion)
			articles.PUT("/:id/versions/:versionId", h.Article.UpdateVersion)
			articles.POST("/:id/versions/:versionId/approve", middleware.RequireRole("catalog_approver"), h.Article.ApproveVersion)
			articles.POST("/:id/versions/:versionId/attachments", h.Article.AddAttachment)
		}

		kits := v1.Group("/kits")
		{
			kits.GET("", h.Kit.Search)
			kits.POST("", h.Kit.Create)
			kits.GET("/:id", h.Kit.Get)
			kits.PUT("/:id", h.Kit.Update)
			kits.GET("/:id/versions", h.Kit.ListVersions)
			kits.POST("/:id/versions", h.Kit.CreateVersion)
			kits.GET("/:id/versions/current", h.Kit.CurrentVersion)
			kits.GET("/:id/versions/:versionId", h.Kit.GetVersion)
			kits.PUT("/:id/versions/:versionId", h.Kit.UpdateVersion)
			kits.POST("/:id/versions/:versionId/approve", middleware.RequireRole("catalog_approver"), h.Kit.ApproveVersion)
			kits.GET("/:id/versions/:versionId/cost", h.Kit.Cost)
		}

		configurations := v1.Group("/configurations")
		{
			configurations.GET("", h.Configuration.ListByProject)
			configurations.POST("", h.Configuration.Create)
			configurations.GET("/:id", h.Configuration.Get)
			configurations.POST("/:id/items", h.Configuration.AddItem)
			configurations.PUT("/:id/items/:itemId", h.Configuration.UpdateItem)
			configurations.DELETE("/:id/items/:itemId", h.Configuration.DeleteItem)
			configurations.POST("/:id/bom", h.Configuration.ExpandBOM)
		}

		legacy := v1.Group("/legacy-mappings")
		legacy.Use(middleware.RequireRole("catalog_admin"))
		{
			legacy.GET("", h.Legacy.List)
			legacy.POST("", h.Legacy.Create)
			legacy.DELETE("/:id", h.Legacy.Delete)
		}

		v1.GET("/operation-logs", h.Legacy.OperationLogs)
	}
}
