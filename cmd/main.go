package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	echojwt "github.com/labstack/echo-jwt/v4"

	"shopmart/internal/caching"
	appconfig "shopmart/internal/config"
	"shopmart/internal/handlers"
	"shopmart/internal/jobs"
	"shopmart/internal/jobs/background"
	"shopmart/internal/middleware"
	"shopmart/internal/repositories"
	"shopmart/internal/services"
	"shopmart/pkg/config"
	"shopmart/pkg/database"
	"shopmart/pkg/logger"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		log.Warn("JWT_SECRET not set, using a generated secret")
	}

	alertsCfg, err := appconfig.LoadAlertsConfig(os.Getenv("ALERTS_CONFIG"))
	if err != nil {
		log.Fatal("failed to load alerts configuration", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	notifier := services.NewRedisNotifier(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)

	storageSvc, err := services.NewStorageService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatal("failed to create storage client", zap.Error(err))
	}
	if err := storageSvc.EnsureBucketExists(ctx, cfg.Minio.ImageBucket); err != nil {
		log.Fatal("failed to ensure image bucket", zap.Error(err))
	}

	// Repositories
	txManager := repositories.NewTxManager(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	movementRepo := repositories.NewStockMovementRepo(pool)

	// Services
	categorySvc := services.NewCategoryService(categoryRepo, cacheSvc)
	productSvc := services.NewProductService(txManager, productRepo, categoryRepo, movementRepo, cacheSvc, storageSvc, cfg.Minio.ImageBucket, log)
	orderSvc := services.NewOrderService(txManager, orderRepo, productRepo, movementRepo, notifier, log)
	authSvc := services.NewAuthService(customerRepo, jwtSecret, cfg.JWT.ExpirationTime)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	categoryHandlers := handlers.NewCategoryHandlers(categorySvc)
	productHandlers := handlers.NewProductHandlers(productSvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	alertSvc := jobs.NewStockAlertService(productRepo, notifier, alertsCfg.StockAlerts, log)
	scheduler, err := background.NewJobScheduler(alertSvc, orderRepo, alertsCfg, log)
	if err != nil {
		log.Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.MetricsMiddleware)

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)

	// Public catalog routes
	v1.GET("/categories", categoryHandlers.ListCategories)
	v1.GET("/categories/tree", categoryHandlers.GetTree)
	v1.GET("/categories/:id", categoryHandlers.GetCategory)
	v1.GET("/categories/:id/ancestors", categoryHandlers.GetAncestors)
	v1.GET("/categories/:id/descendants", categoryHandlers.GetDescendants)
	v1.GET("/products", productHandlers.ListProducts)
	v1.GET("/products/search", productHandlers.SearchProducts)
	v1.GET("/products/:id", productHandlers.GetProduct)
	v1.GET("/products/:id/image", productHandlers.GetProductImageURL)

	// Protected routes
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))

	protected.GET("/me", authHandlers.Me)
	protected.PUT("/me", authHandlers.UpdateMe)

	protected.POST("/categories", categoryHandlers.CreateCategory)
	protected.PUT("/categories/:id", categoryHandlers.UpdateCategory)
	protected.PUT("/categories/:id/parent", categoryHandlers.ReparentCategory)
	protected.DELETE("/categories/:id", categoryHandlers.DeleteCategory)

	protected.POST("/products", productHandlers.CreateProduct)
	protected.PUT("/products/:id", productHandlers.UpdateProduct)
	protected.DELETE("/products/:id", productHandlers.DeleteProduct)
	protected.POST("/products/:id/stock", productHandlers.AdjustStock)
	protected.GET("/products/:id/movements", productHandlers.GetProductMovements)
	protected.POST("/products/:id/image", productHandlers.UploadProductImage)

	protected.GET("/orders", orderHandlers.ListMyOrders)
	protected.GET("/orders/all", orderHandlers.ListAllOrders)
	protected.POST("/orders", orderHandlers.CreateOrder)
	protected.GET("/orders/:id", orderHandlers.GetOrder)
	protected.GET("/orders/:id/history", orderHandlers.GetOrderHistory)
	protected.GET("/orders/:id/movements", orderHandlers.GetOrderMovements)
	protected.POST("/orders/:id/cancel", orderHandlers.CancelOrder)
	protected.POST("/orders/:id/transition", orderHandlers.TransitionOrder)

	protected.GET("/customers", authHandlers.ListCustomers)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
