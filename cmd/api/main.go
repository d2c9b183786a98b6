package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"lab-request-api/config"
	"lab-request-api/controllers"
	"lab-request-api/middleware"
	"lab-request-api/routes"
	"lab-request-api/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitLogging()

	// Initialize database and schema
	config.InitDB()
	if err := config.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Start the notification dispatcher. Business transactions publish
	// lifecycle events onto the bus; the worker fans them out.
	bus := services.NewEventBus(256)
	bus.Start(services.NewNotificationService(config.DB))
	defer bus.Close()
	controllers.Init(bus)

	// Stopped (and waited for) before the bus closes, so a running sweep can
	// never publish onto a closed channel.
	sweeper := services.NewDeadlineSweeper(config.DB, bus)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweeper.Start(sweepCtx)
	defer func() {
		stopSweep()
		sweeper.Wait()
	}()

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	router.Use(middleware.CORSMiddleware())

	routes.SetupRoutes(router)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
