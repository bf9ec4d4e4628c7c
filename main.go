package main

import (
	"context"
	"log"
	"os"
	"time"

	"powerpay-gateway/internal/config"
	"powerpay-gateway/internal/database"
	"powerpay-gateway/internal/handlers"
	"powerpay-gateway/internal/middleware"
	"powerpay-gateway/internal/models"
	"powerpay-gateway/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	// Initialize Database
	database.Connect()
	database.Migrate()
	db := database.DB

	// Redis (rate limiting). Optional: limiting is disabled when unset.
	var redisClient *redis.Client
	if addr := os.Getenv("REDIS_URL"); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASS"),
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis unreachable, rate limiting disabled: %v", err)
			redisClient = nil
		}
	}

	// Providers
	stanbicService := services.NewStanbicService(config.LoadStanbic())
	selcomService := services.NewSelcomService(config.LoadSelcom())

	// Business Logic Services
	transactionService := services.NewTransactionService(db)
	paymentService := services.NewPaymentService(transactionService, stanbicService, selcomService)
	userService := services.NewUserService(db)

	paymentHandler := handlers.NewPaymentHandler(paymentService)
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)

	paymentLimiter := middleware.NewRateLimiter(redisClient, "payment", 50, 15*time.Minute)
	queryLimiter := middleware.NewRateLimiter(redisClient, "query", 200, 15*time.Minute)

	// Initialize Gin
	r := gin.Default()

	// Ping endpoint
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome To PowerPay Gateway",
		})
	})

	authRoutes := r.Group("/api/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.GET("/me", middleware.RequireAuth(), authHandler.Me)
		authRoutes.POST("/change-password", middleware.RequireAuth(), authHandler.ChangePassword)
	}

	payments := r.Group("/api/payments", middleware.RequireAuth())
	{
		payments.POST("/verify", paymentLimiter.Middleware(), paymentHandler.Verify)
		payments.POST("/process", paymentLimiter.Middleware(), paymentHandler.Pay)
		payments.POST("/cashin", paymentLimiter.Middleware(), paymentHandler.Cashin)
		payments.GET("/status/:transaction_id", queryLimiter.Middleware(), paymentHandler.Query)
		payments.GET("/history/:client_system", queryLimiter.Middleware(), paymentHandler.History)
		payments.GET("/selcom/balance", queryLimiter.Middleware(), paymentHandler.Balance)
		payments.GET("/stats", queryLimiter.Middleware(), paymentHandler.Stats)
	}

	users := r.Group("/api/users", middleware.RequireAuth(), middleware.RequireRole(models.RoleAdmin))
	{
		users.POST("", userHandler.Create)
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id/status", userHandler.SetStatus)
	}

	// Start Cron Schedulers
	paymentService.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("HTTP Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
