package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-calendar/internal/auth"
	"todo-calendar/internal/config"
	apphttp "todo-calendar/internal/http"
	"todo-calendar/internal/ratelimit"
	"todo-calendar/internal/repository/sqlstore"
	"todo-calendar/internal/service"
	"todo-calendar/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialect := sqlstore.SQLite
	if cfg.Database.Driver == config.DriverPostgres {
		dialect = sqlstore.Postgres
	}
	db, err := sqlstore.Open(ctx, sqlstore.Options{
		Dialect: dialect,
		DSN:     cfg.Database.DSN,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userService, err := service.NewUserService(sqlstore.NewUserRepository(db, dialect), cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatalf("init user service: %v", err)
	}
	todoService := service.NewTodoService(sqlstore.NewTodoRepository(db, dialect))

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}
	exportService := service.NewExportService(todoService, storageSvc, service.ExportConfig{
		Bucket:     cfg.Storage.Bucket,
		KeyPrefix:  cfg.Storage.KeyPrefix,
		PresignTTL: cfg.Storage.PresignTTL,
	})

	limiter, closeLimiter := buildLimiter(ctx, cfg, logger)
	defer closeLimiter()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(apphttp.Options{
		Users:   userService,
		Todos:   todoService,
		Exports: exportService,
		Issuer:  auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Limiter: limiter,
		Logger:  logger,
		Cookie: apphttp.CookieOptions{
			Name:       cfg.Auth.CookieName,
			Secure:     cfg.Auth.CookieSecure,
			Persistent: cfg.Auth.PersistentCookie,
		},
		CORSOrigin: cfg.Server.CORSOrigin,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// buildStorage returns nil when no bucket is configured; exports are then disabled.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("storage bucket not set, calendar exports disabled")
		return nil, nil
	}

	client, err := storage.NewS3Client(ctx, storage.S3Options{
		Region:   cfg.Storage.Region,
		Profile:  cfg.AWS.Profile,
		Endpoint: cfg.Storage.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}

func buildLimiter(ctx context.Context, cfg config.Config, logger *logrus.Logger) (ratelimit.Limiter, func()) {
	if cfg.Redis.Addr == "" {
		logger.Info("redis not configured, login throttling disabled")
		return ratelimit.Noop{}, func() {}
	}

	rdb, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatalf("connect redis: %v", err)
	}
	logger.Infof("login throttling via redis %s (%d attempts per %s)", cfg.Redis.Addr, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	limiter := ratelimit.NewRedisLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	return limiter, func() { _ = rdb.Close() }
}
