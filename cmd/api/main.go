package main

import (
	"os"

	_ "github.com/paytrack/paytrack-api/api/swagger" // swagger docs

	"github.com/paytrack/paytrack-api/internal/config"
	"github.com/paytrack/paytrack-api/internal/database"
	"github.com/paytrack/paytrack-api/internal/handler"
	"github.com/paytrack/paytrack-api/internal/logger"
	"github.com/paytrack/paytrack-api/internal/notify"
	"github.com/paytrack/paytrack-api/internal/repository"
	"github.com/paytrack/paytrack-api/internal/service"
	"github.com/paytrack/paytrack-api/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           PayTrack API
// @version         1.0
// @description     Back-office REST API for loan portfolios, payments, expenses and daily cash cutoffs.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info("No configs/.env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		logger.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to PostgreSQL")

	// WebSocket hub broadcasting domain events
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	routeRepo := repository.NewCollectionRouteRepository(db)
	cutoffRepo := repository.NewDailyCutoffRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	// Services
	mailer := notify.NewEmailSender(cfg)
	userService := service.NewUserService(userRepo, mailer, service.JWTConfig{
		Secret:       cfg.JWT.Secret,
		AccessHours:  cfg.JWT.AccessHours,
		RefreshHours: cfg.JWT.RefreshHours,
	})
	clientService := service.NewClientService(clientRepo)
	supplierService := service.NewSupplierService(supplierRepo)
	loanService := service.NewLoanService(loanRepo, clientRepo, userRepo, auditRepo, txManager, wsHub)
	paymentService := service.NewPaymentService(paymentRepo, clientRepo, userRepo, auditRepo, txManager, wsHub)
	expenseService := service.NewExpenseService(expenseRepo, supplierRepo, userRepo, auditRepo, txManager)
	routeService := service.NewCollectionRouteService(routeRepo, userRepo, loanRepo)
	cutoffService := service.NewDailyCutoffService(cutoffRepo, userRepo, auditRepo, txManager, wsHub)
	auditService := service.NewAuditService(auditRepo)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	clientHandler := handler.NewClientHandler(clientService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	loanHandler := handler.NewLoanHandler(loanService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	routeHandler := handler.NewCollectionRouteHandler(routeService)
	cutoffHandler := handler.NewDailyCutoffHandler(cutoffService)
	auditHandler := handler.NewAuditHandler(auditService)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.Origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, []byte(cfg.JWT.Secret))
	})

	// API routes
	userHandler.RegisterRoutes(router.Group(""))
	clientHandler.RegisterRoutes(router.Group(""))
	supplierHandler.RegisterRoutes(router.Group(""))
	loanHandler.RegisterRoutes(router.Group(""))
	paymentHandler.RegisterRoutes(router.Group(""))
	expenseHandler.RegisterRoutes(router.Group(""))
	routeHandler.RegisterRoutes(router.Group(""))
	cutoffHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	logger.Info("Server listening", "port", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
