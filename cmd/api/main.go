package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/edworkspace8869-ctrl/personal-rules-base/api/swagger" // swagger docs
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/database"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/handler"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/repository"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/service"
	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cast"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Personal Rules Base API
// @version         1.0
// @description     Rule lifecycle engine: proposal/approval workflow, amendment chaining, sunset-driven expiration, backup interchange.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbDriver := getEnv("DB_DRIVER", "sqlite")
	dsn := os.Getenv("DB_DSN")
	if dbDriver == "postgres" && dsn == "" {
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_NAME", "rulesbase"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	db, err := database.NewConnection(dbDriver, dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Printf("Connected to %s database.", dbDriver)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	ruleRepo := repository.NewRuleRepository(db)
	systemRepo := repository.NewSystemRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	txManager := repository.NewTransactionManager(db)

	ruleService := service.NewRuleService(ruleRepo, systemRepo, sequenceRepo, wsHub)
	systemService := service.NewSystemService(systemRepo, wsHub)
	sweepService := service.NewSweepService(ruleRepo, wsHub)
	backupService := service.NewBackupService(ruleRepo, systemRepo, sequenceRepo, txManager, wsHub)
	statsService := service.NewStatsService(ruleRepo)

	// Session-start maintenance: backfill system ids that predate the field,
	// then advance rule statuses before serving the first request.
	startupCtx := context.Background()
	if assigned, err := systemService.AssignMissingSystemIDs(startupCtx); err != nil {
		log.Printf("System id repair failed: %v", err)
	} else if assigned > 0 {
		log.Printf("Backfilled %d missing system id(s)", assigned)
	}
	if changed, err := sweepService.Sweep(startupCtx); err != nil {
		log.Printf("Startup sweep failed: %v", err)
	} else if changed {
		log.Println("Startup sweep advanced rule statuses")
	}

	// Recurring sweep so rules activate/expire even during long sessions.
	sweepEvery := cast.ToInt(getEnv("SWEEP_INTERVAL_HOURS", "24"))
	if sweepEvery <= 0 {
		sweepEvery = 24
	}
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %dh", sweepEvery), func() {
		if _, err := sweepService.Sweep(context.Background()); err != nil {
			log.Printf("Scheduled sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize Handlers
	accessTTL := time.Duration(cast.ToInt(getEnv("ACCESS_TOKEN_TTL_HOURS", "24"))) * time.Hour
	refreshTTL := time.Duration(cast.ToInt(getEnv("REFRESH_TOKEN_TTL_HOURS", "168"))) * time.Hour

	authHandler := handler.NewAuthHandler(accessTTL, refreshTTL)
	ruleHandler := handler.NewRuleHandler(ruleService)
	systemHandler := handler.NewSystemHandler(systemService)
	sweepHandler := handler.NewSweepHandler(sweepService, statsService)
	backupHandler := handler.NewBackupHandler(backupService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
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

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	ruleHandler.RegisterRoutes(router.Group(""))
	systemHandler.RegisterRoutes(router.Group(""))
	sweepHandler.RegisterRoutes(router.Group(""))
	backupHandler.RegisterRoutes(router.Group(""))

	port := getEnv("PORT", "8080")

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
