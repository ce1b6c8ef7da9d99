package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"supplyStore/app/echo-server/router"
	"supplyStore/business/ledger"
	"supplyStore/business/orders"
	"supplyStore/business/product"
	"supplyStore/business/stock"
	"supplyStore/business/supplier"
	userService "supplyStore/business/user"
	"supplyStore/internal/middleware"
	psqlRepo "supplyStore/internal/repository/postgres"
	redisRepo "supplyStore/internal/repository/redis"
	"supplyStore/internal/rest"
	"supplyStore/pkg/config"
	"supplyStore/pkg/database"
	redisdb "supplyStore/pkg/database/redis"
	"supplyStore/pkg/logger"
	"supplyStore/pkg/metrics"
	"supplyStore/pkg/utils"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting "+cfg.App.Name, "version", cfg.App.Version, "restock_policy", cfg.Orders.RestockPolicy)

	metrics.Init()
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	logger.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			logger.Fatal("Failed to migrate database", "error", err)
		}
	}

	// Sessions are optional; without redis a token lives until its JWT expiry
	var sessions userService.SessionRepository
	var tokenValidator middleware.TokenValidator
	if cfg.Redis.Enabled {
		client, err := redisdb.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer func() {
			if err := redisdb.CloseRedisClient(client); err != nil {
				logger.Error("Failed to close redis", "error", err)
			}
		}()
		sessions = redisRepo.NewSessionRepository(client)
		logger.Info("Redis connected successfully")
	}

	// Init validate
	validate := validator.New()
	tokens := utils.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.TTL)

	// Init repo
	txManager := psqlRepo.NewTxManager(db, cfg.Database.LockTimeout)
	userRepo := psqlRepo.NewUserRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	productsRepo := psqlRepo.NewProductRepository(db)
	supplierRepo := psqlRepo.NewSupplierRepository(db)
	stockRepo := psqlRepo.NewStockRepository(db)
	ledgerRepo := psqlRepo.NewLedgerRepository(db)

	// Init service
	userSvc := userService.NewUserService(userRepo, sessions, tokens, validate, cfg.App.AdminEmails)
	productSvc := product.NewProductService(productsRepo)
	ordersSvc := orders.NewOrdersService(ordersRepo, productsRepo, txManager, cfg.Orders.RestockPolicy)
	supplierSvc := supplier.NewSupplierService(supplierRepo, validate)
	stockSvc := stock.NewStockService(stockRepo, supplierRepo, productsRepo, txManager)
	ledgerSvc := ledger.NewLedgerService(userRepo, ledgerRepo, txManager)

	if sessions != nil {
		tokenValidator = userSvc
	}

	// Init handler
	timeout := cfg.Server.RequestTimeout
	userHandler := rest.NewUserHandler(userSvc, timeout)
	productHandler := rest.NewProductHandler(productSvc, timeout)
	ordersHandler := rest.NewOrdersHandler(ordersSvc, timeout)
	supplierHandler := rest.NewSupplierHandler(supplierSvc, stockSvc, timeout)
	ledgerHandler := rest.NewLedgerHandler(ledgerSvc, timeout)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	authRequired := middleware.AuthMiddleware(tokens, tokenValidator)
	adminOnly := middleware.AdminOnly()

	// Setup routes
	router.SetupOpsRoutes(e)
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly)
	router.SetupProductRoutes(api, productHandler, supplierHandler, authRequired, adminOnly)
	router.SetOrdersRoutes(api, ordersHandler, authRequired, adminOnly)
	router.SetupSupplierRoutes(api, supplierHandler, authRequired, adminOnly)
	router.SetTransactionRoutes(api, ledgerHandler, authRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
