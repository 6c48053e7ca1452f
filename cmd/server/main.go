package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/grocer/backend/internal/application/cart"
	catalogapp "github.com/grocer/backend/internal/application/catalog"
	couponapp "github.com/grocer/backend/internal/application/coupon"
	distributorapp "github.com/grocer/backend/internal/application/distributor"
	financeapp "github.com/grocer/backend/internal/application/finance"
	identityapp "github.com/grocer/backend/internal/application/identity"
	orderapp "github.com/grocer/backend/internal/application/order"
	reviewapp "github.com/grocer/backend/internal/application/review"
	storeapp "github.com/grocer/backend/internal/application/store"
	supportapp "github.com/grocer/backend/internal/application/support"
	"github.com/grocer/backend/internal/infrastructure/auth"
	"github.com/grocer/backend/internal/infrastructure/cache"
	"github.com/grocer/backend/internal/infrastructure/config"
	"github.com/grocer/backend/internal/infrastructure/event"
	"github.com/grocer/backend/internal/infrastructure/logger"
	"github.com/grocer/backend/internal/infrastructure/persistence"
	"github.com/grocer/backend/internal/infrastructure/scheduler"
	"github.com/grocer/backend/internal/infrastructure/storage"
	"github.com/grocer/backend/internal/infrastructure/telemetry"
	"github.com/grocer/backend/internal/interfaces/http/handler"
	"github.com/grocer/backend/internal/interfaces/http/middleware"
	"github.com/grocer/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	shutdownTimeout = 30 * time.Second
	// processed event IDs are remembered this long for redelivery checks
	eventDedupTTL = 24 * time.Hour
	// how often the cron trigger compares schedules against the clock
	cronCheckInterval = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting grocer backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	loc, err := cfg.Checkout.Location()
	if err != nil {
		log.Fatal("Invalid checkout timezone", zap.String("timezone", cfg.Checkout.Timezone), zap.Error(err))
	}

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	// Telemetry first so the database plugins pick up the global providers
	tp, err := telemetry.NewTracerProvider(rootCtx, telemetry.NewConfig(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(rootCtx, telemetry.NewMetricsConfig(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.DBName))

	if err := telemetry.NewDBTracingPlugin(telemetry.NewDBTracingConfig(cfg.Telemetry, cfg.Database.DBName), log).Register(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, mp, telemetry.NewDBMetricsConfig(cfg.Telemetry), log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(rootCtx)
	}

	var businessMetrics *telemetry.BusinessMetrics
	if mp.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:         mp.Meter("grocer/business"),
			Logger:        log,
			StoreProvider: telemetry.NewGormStoreMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(rootCtx, cfg.Telemetry.MetricsInterval)
		}
	}

	caches := cache.NewProvider(cfg.Redis, cfg.Checkout, log)

	var blacklist auth.TokenBlacklist
	if caches.Client != nil {
		blacklist = auth.NewRedisTokenBlacklist(caches.Client)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	objects := newObjectStorage(rootCtx, cfg, log)

	bus := event.NewInMemoryEventBus(log)

	// Repositories
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	areaRepo := persistence.NewGormServiceAreaRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	couponRepo := persistence.NewGormCouponRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	conversationRepo := persistence.NewGormConversationRepository(db.DB)
	distributorRepo := persistence.NewGormDistributorRepository(db.DB)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(db.DB)
	ledgerRepo := persistence.NewGormGSTLedgerRepository(db.DB)
	summaryRepo := persistence.NewGormGSTSummaryRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	transactor := persistence.NewGormTransactor(db.DB)

	// Application services
	storeService := storeapp.NewStoreService(storeRepo, areaRepo, caches.Serviceability, bus, log)
	areaService := storeapp.NewServiceAreaService(storeRepo, areaRepo, caches.Serviceability, bus, log)
	serviceabilityService := storeapp.NewServiceabilityService(storeRepo, areaRepo, caches.Serviceability, loc, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, bus, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, storeRepo, distributorRepo, bus, log)
	evaluator := couponapp.NewEvaluator(couponRepo, orderRepo)
	couponService := couponapp.NewCouponService(couponRepo, evaluator, bus, log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, evaluator, log)
	orderService := orderapp.NewOrderService(orderapp.Dependencies{
		Orders:        orderRepo,
		Carts:         cartRepo,
		Products:      productRepo,
		Coupons:       couponRepo,
		Router:        serviceabilityService,
		Evaluator:     evaluator,
		Transactor:    transactor,
		Locker:        caches.Locker,
		CouponLockTTL: cfg.Checkout.CouponLockTTL,
		Events:        bus,
		Metrics:       businessMetrics,
		Logger:        log,
	})
	reviewService := reviewapp.NewReviewService(reviewRepo, productRepo, orderRepo, bus, log)
	distributorService := distributorapp.NewDistributorService(distributorRepo, objects, bus, log)
	conversationService := supportapp.NewConversationService(conversationRepo, orderRepo, userRepo, bus, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, bus, log)
	userService := identityapp.NewUserService(userRepo, storeRepo, blacklist, jwtService, bus, log)
	ledgerService := financeapp.NewGSTLedgerService(ledgerRepo, storeRepo, orderRepo, loc, log)
	summaryService := financeapp.NewGSTSummaryService(summaryRepo, ledgerRepo, ledgerService, storeRepo, bus, loc, log)
	creditNoteService := financeapp.NewCreditNoteService(creditNoteRepo, orderRepo, ledgerService, transactor, bus, businessMetrics, log)

	// Event handlers
	delivered := event.NewIdempotentHandler(
		financeapp.NewOrderDeliveredHandler(orderRepo, ledgerService, log),
		caches.Idempotency,
		eventDedupTTL,
		log,
	)
	bus.Subscribe(delivered, delivered.EventTypes()...)
	if err := bus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Background jobs
	var (
		jobs *scheduler.Scheduler
		cron *scheduler.CronTrigger
	)
	if cfg.Scheduler.Enabled {
		jobs = scheduler.NewScheduler(scheduler.NewConfig(cfg.Scheduler), log)
		jobs.Register(scheduler.JobCouponExpiry, couponExpiryJob(couponService, cfg.Scheduler.CouponExpiryBatchSize, time.Now, log))
		jobs.Register(scheduler.JobGSTSummary, gstSummaryJob(summaryService, time.Now, log))

		gstSchedule, err := scheduler.ParseCronSchedule(cfg.Scheduler.GSTSummarySchedule)
		if err != nil {
			log.Fatal("Invalid GST summary schedule", zap.String("schedule", cfg.Scheduler.GSTSummarySchedule), zap.Error(err))
		}
		cron = scheduler.NewCronTrigger(jobs, loc, cronCheckInterval, log)
		cron.Add(scheduler.JobCouponExpiry, scheduler.Every(cfg.Scheduler.CouponExpiryInterval))
		cron.Add(scheduler.JobGSTSummary, gstSchedule)

		if err := jobs.Start(rootCtx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		if err := cron.Start(rootCtx); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		log.Info("Scheduler started",
			zap.Int("workers", cfg.Scheduler.Workers),
			zap.Duration("coupon_expiry_interval", cfg.Scheduler.CouponExpiryInterval),
			zap.String("gst_summary_schedule", cfg.Scheduler.GSTSummarySchedule),
		)
	}

	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if caches.Client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return caches.Client.Ping(ctx).Err()
		}
	}
	var submitter handler.JobSubmitter
	if jobs != nil {
		submitter = jobs
	}

	h := handlers{
		auth:         handler.NewAuthHandler(authService),
		users:        handler.NewUserHandler(userService),
		stores:       handler.NewStoreHandler(storeService),
		areas:        handler.NewServiceAreaHandler(areaService, serviceabilityService),
		categories:   handler.NewCategoryHandler(categoryService),
		products:     handler.NewProductHandler(productService),
		carts:        handler.NewCartHandler(cartService),
		orders:       handler.NewOrderHandler(orderService),
		coupons:      handler.NewCouponHandler(couponService),
		reviews:      handler.NewReviewHandler(reviewService),
		distributors: handler.NewDistributorHandler(distributorService),
		support:      handler.NewSupportHandler(conversationService),
		finance:      handler.NewFinanceHandler(creditNoteService, ledgerService, summaryService),
		system:       handler.NewSystemHandler(cfg.App.Name, version, checks, submitter),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: request ID before logging, recovery before everything
	// that can panic, tracing before metrics so metrics carry the span
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tp.IsEnabled(),
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{MeterProvider: mp, Logger: log}))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", h.system.Health)
	engine.GET("/ready", h.system.Ready)

	var apiMiddleware []gin.HandlerFunc
	credentials := func(c *gin.Context) { c.Next() }
	if cfg.HTTP.RateLimitEnabled {
		general, credLimiter := newLimiters(rootCtx, cfg.HTTP, caches)
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(general, middleware.KeyByUserOrIP, log))
		credentials = middleware.RateLimit(credLimiter, middleware.KeyByIP, log)
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
			zap.Int("auth_requests", cfg.HTTP.AuthRateLimitRequests),
		)
	}

	g := guards{
		authenticated: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		optional:    middleware.OptionalJWTAuthMiddleware(jwtService),
		credentials: credentials,
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"), router.WithMiddleware(apiMiddleware...))
	r.Register(apiRoutes(h, g)...)
	r.Setup()
	log.Debug("Routes mounted", zap.Int("count", len(r.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if cron != nil {
		if err := cron.Stop(ctx); err != nil {
			log.Warn("Cron trigger did not stop cleanly", zap.Error(err))
		}
	}
	if jobs != nil {
		if err := jobs.Stop(ctx); err != nil {
			log.Warn("Scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := bus.Stop(ctx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if businessMetrics != nil {
		businessMetrics.Stop()
	}
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	stopRoot()

	if err := mp.Shutdown(ctx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := caches.Close(); err != nil {
		log.Warn("Error closing redis", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newObjectStorage returns S3 storage when enabled and the in-memory stand-in
// otherwise. A missing bucket is created on startup.
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) storage.ObjectStorage {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, using in-memory document store")
		return storage.NewMemoryStorage("http://localhost:" + cfg.App.Port + "/_objects")
	}
	s3, err := storage.NewS3Storage(cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s3.EnsureBucket(ensureCtx); err != nil {
		log.Fatal("Failed to prepare storage bucket", zap.String("bucket", s3.Bucket()), zap.Error(err))
	}
	return s3
}

// newLimiters shares counters across instances through redis when it is
// available
func newLimiters(ctx context.Context, cfg config.HTTPConfig, caches *cache.Provider) (general, credentials middleware.Limiter) {
	if caches.Client != nil {
		return middleware.NewRedisRateLimiter(caches.Client, "ratelimit:api", cfg.RateLimitRequests, cfg.RateLimitWindow),
			middleware.NewRedisRateLimiter(caches.Client, "ratelimit:auth", cfg.AuthRateLimitRequests, cfg.AuthRateLimitWindow)
	}
	return middleware.NewRateLimiter(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow),
		middleware.NewRateLimiter(ctx, cfg.AuthRateLimitRequests, cfg.AuthRateLimitWindow)
}
