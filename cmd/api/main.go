package main

import (
	"net/http"
	"os"
	"time"

	_ "hrcore/api/swagger" // swagger docs
	"hrcore/internal/database"
	"hrcore/internal/gateway"
	"hrcore/internal/handler"
	"hrcore/internal/middleware"
	"hrcore/internal/repository"
	"hrcore/internal/service"
	"hrcore/internal/websocket"
	"hrcore/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Approval Request Orchestrator API
// @version         1.0
// @description     Coordinates vacation, certificate and absence approvals across the HR domain services.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logger.New(getenv("LOG_LEVEL", "info"), getenv("LOG_ENCODING", "json"))
	defer func() { _ = log.Sync() }()

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("no configs/.env file found, relying on process environment")
	}

	dsn := "postgres://" + getenv("DB_USER", "postgres") +
		":" + getenv("DB_PASSWORD", "postgres") +
		"@" + getenv("DB_HOST", "localhost") +
		":" + getenv("DB_PORT", "5432") +
		"/" + getenv("DB_NAME", "postgres") +
		"?sslmode=" + getenv("DB_SSLMODE", "disable")

	db, err := database.NewConnection(dsn, log)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	log.Info("connected to PostgreSQL")

	// Collaborator gateways. Calls are synchronous; the shared client
	// timeout is the only cancellation the orchestrator adds.
	timeout, err := time.ParseDuration(getenv("COLLABORATOR_TIMEOUT", "10s"))
	if err != nil {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	directoryGW := gateway.NewDirectoryHTTP(getenv("DIRECTORY_URL", "http://localhost:8081"), httpClient)
	vacationGW := gateway.NewVacationHTTP(getenv("VACATION_URL", "http://localhost:8082"), httpClient)
	certificateGW := gateway.NewCertificateHTTP(getenv("CERTIFICATE_URL", "http://localhost:8083"), httpClient)
	absenceGW := gateway.NewAbsenceHTTP(getenv("ABSENCE_URL", "http://localhost:8084"), httpClient)

	// Set up WebSocket Hub for decision events
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	approvalRepo := repository.NewApprovalRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	validator := service.NewConflictValidator(approvalRepo, certificateGW)
	dispatcher := service.NewDispatcher(vacationGW, certificateGW, absenceGW, directoryGW, log)
	names := service.NewNameResolver(directoryGW, log)

	approvalService := service.NewApprovalService(
		approvalRepo, auditRepo, txManager, validator, dispatcher, directoryGW, names, wsHub, log)
	auditService := service.NewAuditService(auditRepo)

	approvalHandler := handler.NewApprovalHandler(approvalService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
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

	// WebSocket endpoint for HR dashboards
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	approvalHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := getenv("PORT", "8080")
	log.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
