package main

import (
	"context"
	"os"

	_ "glassops/api/swagger" // swagger docs
	"glassops/internal/database"
	"glassops/internal/document"
	"glassops/internal/handler"
	"glassops/internal/logger"
	"glassops/internal/middleware"
	"glassops/internal/repository"
	"glassops/internal/service"
	"glassops/internal/storage"
	"glassops/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           GlassOps API
// @version         1.0
// @description     Operations backend for a glass installation business: clients, jobs, expenses, payments, invoices and reporting.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Setup()
	log := logger.WithComponent("main")

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info().Msg("No configs/.env file found or error loading it")
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "glassops")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	log.Info().Msg("Connected to PostgreSQL successfully")

	// Document store: GCS bucket when configured, local disk otherwise.
	var store storage.ObjectStore
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcsStore, err := storage.NewGCSStore(context.Background(), bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("GCS store initialization failed")
		}
		store = gcsStore
		log.Info().Str("bucket", bucket).Msg("Using GCS document store")
	} else {
		localStore, err := storage.NewLocalStore(envOr("DOCUMENT_DIR", "data/documents"), envOr("DOCUMENT_BASE_URL", "http://localhost:8080/documents"))
		if err != nil {
			log.Fatal().Err(err).Msg("Local store initialization failed")
		}
		store = localStore
		log.Info().Msg("Using local document store")
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	jobRepo := repository.NewJobRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	reportRepo := repository.NewReportRepository(db)

	renderer := document.NewRenderer(document.DefaultCompany())

	userService := service.NewUserService(userRepo)
	clientService := service.NewClientService(clientRepo)
	jobService := service.NewJobService(jobRepo, clientRepo, wsHub)
	expenseService := service.NewExpenseService(expenseRepo, jobRepo, wsHub)
	paymentService := service.NewPaymentService(paymentRepo, jobRepo, invoiceRepo, wsHub)
	invoiceService := service.NewInvoiceService(invoiceRepo, jobRepo, clientRepo, sequenceRepo, txManager, renderer, store, wsHub)
	dashboardService := service.NewDashboardService(jobRepo, paymentRepo, expenseRepo, reminderRepo)
	reminderService := service.NewReminderService(reminderRepo, jobRepo)
	reportService := service.NewReportService(reportRepo, paymentRepo, expenseRepo, jobRepo)
	receiptService := service.NewReceiptService(openai.NewClient(os.Getenv("OPENAI_API_KEY")))

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(userService)
	clientHandler := handler.NewClientHandler(clientService)
	jobHandler := handler.NewJobHandler(jobService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	reminderHandler := handler.NewReminderHandler(reminderService)
	reportHandler := handler.NewReportHandler(reportService)
	receiptHandler := handler.NewReceiptHandler(receiptService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"} // Frontend URL
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
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Locally stored documents (PDF invoices, receipt images)
	if _, ok := store.(*storage.LocalStore); ok {
		router.Static("/documents", envOr("DOCUMENT_DIR", "data/documents"))
	}

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	clientHandler.RegisterRoutes(router.Group(""))
	jobHandler.RegisterRoutes(router.Group(""))
	expenseHandler.RegisterRoutes(router.Group(""))
	paymentHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	dashboardHandler.RegisterRoutes(router.Group(""))
	reminderHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))
	receiptHandler.RegisterRoutes(router.Group(""))

	port := envOr("PORT", "8080")
	log.Info().Str("port", port).Msg("Starting server")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
