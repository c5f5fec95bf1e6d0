package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminctrl "examarchive/internal/admin/controller"
	adminsvc "examarchive/internal/admin/service"
	"examarchive/internal/common/cache"
	"examarchive/internal/common/db"
	commonmw "examarchive/internal/common/http/middleware"
	"examarchive/internal/common/imagecdn"
	"examarchive/internal/common/storage"
	eventctrl "examarchive/internal/event/controller"
	eventrepo "examarchive/internal/event/repository"
	eventsvc "examarchive/internal/event/service"
	pqctrl "examarchive/internal/pastquestion/controller"
	pqrepo "examarchive/internal/pastquestion/repository"
	pqsvc "examarchive/internal/pastquestion/service"
	"examarchive/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/server.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	var mysqlDB db.Database
	if appCfg.Database.DSN != "" {
		mysqlDB, err = db.NewMySQL(&appCfg.Database)
		if err != nil {
			if !appCfg.Database.AllowFallback {
				logger.Error(context.Background(), "init database failed", zap.Error(err))
				return
			}
			logger.Warn(context.Background(), "database unreachable, serving from in-memory fallback", zap.Error(err))
			mysqlDB = nil
		}
	} else {
		logger.Warn(context.Background(), "no database configured, serving from in-memory fallback")
	}
	if mysqlDB != nil {
		defer func() {
			_ = mysqlDB.Close()
		}()
	}
	health := db.NewHealth(mysqlDB)

	var redisCache cache.Cache
	if appCfg.Redis.Addr != "" {
		redisCache, err = cache.NewRedisCacheWithConfig(&appCfg.Redis)
		if err != nil {
			logger.Warn(context.Background(), "init redis failed, continuing without cache", zap.Error(err))
			redisCache = nil
		} else {
			defer func() {
				_ = redisCache.Close()
			}()
		}
	}

	blobStorage, err := buildBlobStorage(appCfg.Storage)
	if err != nil {
		logger.Error(context.Background(), "init blob storage failed", zap.Error(err))
		return
	}

	allowFallback := appCfg.Database.AllowFallback
	pastQuestionService := pqsvc.NewPastQuestionService(
		buildPastQuestionRepository(mysqlDB, redisCache, health, allowFallback),
		blobStorage,
		pqsvc.Options{MaxFileSizeBytes: appCfg.Upload.MaxFileSizeMB << 20},
	)

	imageHost := imagecdn.New(appCfg.ImageCDN)
	eventService := eventsvc.NewEventService(buildEventRepository(mysqlDB, health, allowFallback), imageHost)

	sessions := adminsvc.NewSessionRegistry(adminsvc.RegistryOptions{
		Password: appCfg.Admin.AdminSecret(),
		TTL:      appCfg.Admin.SessionTTL,
	})

	httpServer := buildHTTPServer(appCfg, pastQuestionService, eventService, sessions)

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "server started",
			zap.String("addr", appCfg.Server.Addr),
			zap.String("storage_backend", appCfg.Storage.Backend),
			zap.Bool("durable_store", mysqlDB != nil),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}

func buildBlobStorage(cfg StorageConfig) (storage.BlobStorage, error) {
	switch cfg.Backend {
	case backendS3:
		return storage.NewMinIOStorage(cfg.S3)
	default:
		return storage.NewLocalStorage(cfg.Local)
	}
}

func buildPastQuestionRepository(mysqlDB db.Database, redisCache cache.Cache, health *db.Health, allowFallback bool) pqrepo.PastQuestionRepository {
	if mysqlDB == nil {
		return pqrepo.NewMemoryPastQuestionRepository()
	}
	var fallback pqrepo.PastQuestionRepository = pqrepo.NewUnavailablePastQuestionRepository()
	if allowFallback {
		fallback = pqrepo.NewMemoryPastQuestionRepository()
	}
	durable := pqrepo.NewMySQLPastQuestionRepository(mysqlDB, redisCache)
	return pqrepo.NewDualPastQuestionRepository(durable, fallback, health.Available)
}

func buildEventRepository(mysqlDB db.Database, health *db.Health, allowFallback bool) eventrepo.EventRepository {
	if mysqlDB == nil {
		return eventrepo.NewMemoryEventRepository()
	}
	var fallback eventrepo.EventRepository = eventrepo.NewUnavailableEventRepository()
	if allowFallback {
		fallback = eventrepo.NewMemoryEventRepository()
	}
	durable := eventrepo.NewMySQLEventRepository(mysqlDB)
	return eventrepo.NewDualEventRepository(durable, fallback, health.Available)
}

func buildHTTPServer(cfg *AppConfig, pastQuestions *pqsvc.PastQuestionService, events *eventsvc.EventService, sessions *adminsvc.SessionRegistry) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(commonmw.TraceContextMiddleware())
	router.Use(requestLogger())

	api := router.Group("/api")

	adminController := adminctrl.NewAdminController(sessions)
	api.POST("/admin/login", adminController.Login)
	api.POST("/admin/logout", adminController.Logout)
	api.GET("/admin/verify", adminController.Verify)

	pastQuestionController := pqctrl.NewPastQuestionController(pastQuestions)
	api.GET("/past-questions", pastQuestionController.List)
	api.GET("/past-questions/:id", pastQuestionController.Get)
	api.GET("/past-questions/:id/download", pastQuestionController.Download)
	api.POST("/admin/past-questions", commonmw.RequireSession(sessions), pastQuestionController.Create)

	eventController := eventctrl.NewEventController(events)
	api.GET("/events", eventController.List)
	api.GET("/events/:id", eventController.Get)

	eventAdmin := api.Group("/events", commonmw.RequireAdmin(sessions, cfg.Admin.APIKey))
	eventAdmin.POST("", eventController.Create)
	eventAdmin.PUT("/:id", eventController.Update)
	eventAdmin.DELETE("/:id", eventController.Delete)

	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
