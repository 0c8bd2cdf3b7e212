package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcart "github.com/storefront/backend/internal/application/cart"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	appidentity "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/application/notification"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/application/report"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/mail"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blacklist := newBlacklist(ctx, cfg, log)

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:            cfg.JWT.Secret,
		RefreshSecret:     cfg.JWT.RefreshSecret,
		AccessExpiration:  cfg.JWT.AccessExpiration,
		RefreshExpiration: cfg.JWT.RefreshExpiration,
		Issuer:            cfg.JWT.Issuer,
		MaxRefreshCount:   cfg.JWT.MaxRefreshCount,
	})
	if err != nil {
		return fmt.Errorf("failed to create jwt service: %w", err)
	}

	var mailer mail.Mailer
	if cfg.Mail.Enabled {
		mailer, err = mail.NewSMTPMailer(mail.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create mailer: %w", err)
		}
	} else {
		mailer = mail.NewNoopMailer(log)
	}

	// repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// event bus and notification handlers
	bus := event.NewInMemoryEventBus(log)
	for _, h := range notification.Handlers(userRepo, mailer, log) {
		if err := bus.Subscribe(h); err != nil {
			return fmt.Errorf("failed to subscribe handler: %w", err)
		}
	}
	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}

	// application services
	userService := appidentity.NewUserService(userRepo, jwtService, blacklist, log)
	userService.SetEventPublisher(bus)

	productService := appcatalog.NewProductService(productRepo, categoryRepo, log)
	categoryService := appcatalog.NewCategoryService(categoryRepo, productRepo, log)
	cartService := appcart.NewCartService(cartRepo, productRepo, log)

	orderService := apporder.NewOrderService(orderRepo, cartRepo, productRepo, log)
	orderService.SetEventPublisher(bus)

	reportService := report.NewReportService(userRepo, productRepo, orderRepo, log)

	if cfg.Storage.Bucket != "" {
		objectStorage, err := storage.New(ctx, cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Warn("Object storage unavailable, image uploads disabled", zap.Error(err))
		} else {
			if err := objectStorage.EnsureBucket(ctx); err != nil {
				log.Warn("Failed to ensure storage bucket", zap.Error(err))
			}
			productService.SetObjectStorage(objectStorage)
		}
	}

	engine := buildEngine(cfg, log, jwtService, blacklist)

	handler.NewSystemHandler(db, version, log).RegisterRoutes(engine)

	router.New(engine, log).Register(
		handler.NewAuthHandler(userService, log),
		handler.NewUserHandler(userService, log),
		handler.NewProductHandler(productService, log),
		handler.NewCategoryHandler(categoryService, log),
		handler.NewCartHandler(cartService, log),
		handler.NewOrderHandler(orderService, log),
		handler.NewDashboardHandler(reportService, log),
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus shutdown failed", zap.Error(err))
	}

	log.Info("Shutdown complete")
	return nil
}

// newBlacklist connects to Redis, falling back to the in-memory
// blacklist outside production
func newBlacklist(ctx context.Context, cfg *config.Config, log *zap.Logger) auth.TokenBlacklist {
	blacklist, err := auth.NewRedisTokenBlacklist(ctx, auth.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err == nil {
		return blacklist
	}
	if cfg.IsProduction() {
		log.Fatal("Redis is required in production", zap.Error(err))
	}
	log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
	return auth.NewInMemoryTokenBlacklist()
}

func buildEngine(cfg *config.Config, log *zap.Logger, jwtService *auth.JWTService, blacklist auth.TokenBlacklist) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: float64(cfg.HTTP.RateLimit) / cfg.HTTP.RateWindow.Seconds(),
			Burst:             cfg.HTTP.RateLimit,
		}),
	)

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.HTTP.CORSOrigins
	}
	engine.Use(middleware.CORS(corsCfg))

	engine.Use(middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Blacklist:  blacklist,
		Logger:     log,
		SkipPaths: []string{
			"/health",
			"/ready",
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/auth/forgot-password",
			"/api/v1/auth/reset-password",
		},
	}))

	return engine
}
