package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/config"
	"storefront/controllers"
	"storefront/libs"
	"storefront/middleware"
	"storefront/repositories"
	"storefront/routes"
	"storefront/services"
	"storefront/utils"
)

const productImageFolder = "storefront/products"

// App holds the router and every resource that must be released on
// shutdown.
type App struct {
	Router *gin.Engine

	logger   *zap.Logger
	db       *pgxpool.Pool
	redis    *redis.Client
	sessions *services.CartSessions
	events   *libs.EventPublisher

	stopSweep chan struct{}
	swept     chan struct{}
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg.AutoMigrate {
		if err := config.RunMigrations(cfg, logger); err != nil {
			return nil, err
		}
	}

	db, err := config.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	rdb := config.ConnectRedis(ctx, cfg, logger)

	var cartStore services.CartStore
	if rdb != nil {
		cartStore = repositories.NewRedisCartRepository(rdb, cfg.CartTTL)
	} else {
		logger.Warn("cart snapshots kept in process memory")
		cartStore = repositories.NewMemoryCartRepository()
	}

	txRunner := repositories.NewTxRunner(db, utils.RetryPolicy{
		MaxAttempts: cfg.ReviewTxMaxAttempts,
		BaseDelay:   cfg.ReviewTxBaseDelay,
		MaxDelay:    cfg.ReviewTxMaxDelay,
	}, logger)

	productRepo := repositories.NewProductRepository(db)
	reviewRepo := repositories.NewReviewRepository(db, txRunner)
	orderRepo := repositories.NewOrderRepository(db, txRunner)
	userRepo := repositories.NewUserRepository(db)
	promoRepo := repositories.NewPromoRepository(db)
	productCache := repositories.NewProductCache(rdb, cfg.ProductsTTL, logger)

	var images services.ImageStore
	if uploader, err := libs.NewImageUploader(cfg, productImageFolder); err == nil {
		images = uploader
	} else {
		logger.Warn("product image upload disabled", zap.Error(err))
	}

	var mailer services.OrderMailer
	if m, err := libs.NewMailer(cfg); err == nil {
		mailer = m
	} else {
		logger.Warn("order confirmation mail disabled", zap.Error(err))
	}

	events := libs.NewEventPublisher(cfg.KafkaBrokers, logger)
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)

	sessions := services.NewCartSessions(cartStore, logger)
	productSvc := services.NewProductService(productRepo, productCache, images, logger)
	reviewSvc := services.NewReviewService(reviewRepo, events, logger)
	orderSvc := services.NewOrderService(orderRepo, mailer, events, logger)
	authSvc := services.NewAuthService(userRepo, tokens, logger)
	promoSvc := services.NewPromoService(promoRepo)

	checks := map[string]controllers.HealthCheck{"database": db.Ping}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger),
		middleware.MetricsMiddleware(),
		middleware.CORSMiddleware(cfg),
	)
	routes.SetupRoutes(router, routes.Dependencies{
		Tokens:     tokens,
		Auth:       controllers.NewAuthController(authSvc),
		Products:   controllers.NewProductController(productSvc, cfg.MaxUploadSize),
		Categories: controllers.NewCategoryController(productSvc),
		Promos:     controllers.NewPromoController(promoSvc),
		Reviews:    controllers.NewReviewController(reviewSvc),
		Cart:       controllers.NewCartController(sessions, productSvc),
		Checkout:   controllers.NewTransactionController(orderSvc, sessions),
		History:    controllers.NewHistoryController(orderSvc),
		Orders:     controllers.NewOrderController(orderSvc),
		Health:     controllers.NewHealthController(checks),
	})

	a := &App{
		Router:    router,
		logger:    logger,
		db:        db,
		redis:     rdb,
		sessions:  sessions,
		events:    events,
		stopSweep: make(chan struct{}),
		swept:     make(chan struct{}),
	}
	go a.sweepIdleCarts(cfg.CartIdleTTL)
	return a, nil
}

// sweepIdleCarts releases carts nobody touched for idle; their snapshots
// stay in the store and are reloaded on the next request.
func (a *App) sweepIdleCarts(idle time.Duration) {
	defer close(a.swept)
	if idle <= 0 {
		<-a.stopSweep
		return
	}

	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n := a.sessions.Sweep(ctx, idle); n > 0 {
				a.logger.Info("idle carts released", zap.Int("count", n))
			}
			cancel()
		case <-a.stopSweep:
			return
		}
	}
}

// Close flushes every open cart before the stores go away.
func (a *App) Close(ctx context.Context) error {
	close(a.stopSweep)
	<-a.swept

	var errs []error
	if err := a.sessions.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush carts: %w", err))
	}
	if err := a.events.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close event writer: %w", err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	a.db.Close()
	return errors.Join(errs...)
}
