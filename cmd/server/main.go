package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"expenseflow/docs"
	"expenseflow/internal/auth"
	"expenseflow/internal/cache"
	"expenseflow/internal/config"
	"expenseflow/internal/db"
	"expenseflow/internal/handler"
	"expenseflow/internal/logger"
	"expenseflow/internal/model"
	"expenseflow/internal/repository"
	"expenseflow/internal/router"
	"expenseflow/internal/service"
	"expenseflow/internal/storage"
)

// @title ExpenseFlow API
// @version 1.0
// @description Multi-tenant expense reimbursement API with approval workflow and JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zlog.Sync()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		zlog.Fatal("database init", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.Company{},
		&model.User{},
		&model.Expense{},
	); err != nil {
		zlog.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Repositories
	companyRepo := repository.NewCompanyRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	expenseRepo := repository.NewExpenseRepository(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Receipt storage
	receipts, err := storage.NewLocalReceiptStore(cfg.UploadDir, zlog)
	if err != nil {
		zlog.Fatal("receipt store init", zap.Error(err))
	}

	// Services
	authService := service.NewAuthService(userRepo, companyRepo, jwtService, tokenStore, zlog)
	expenseService := service.NewExpenseService(expenseRepo, cacheClient, zlog)
	userService := service.NewUserService(userRepo, zlog)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	expenseHandler := handler.NewExpenseHandler(expenseService, receipts)
	userHandler := handler.NewUserHandler(userService)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, cfg, zlog, userRepo, authHandler, expenseHandler, userHandler)

	addr := ":" + cfg.ServerPort
	zlog.Info("server starting", zap.String("addr", addr))
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("server start", zap.Error(err))
	}
}
