package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"Showdown/config"
	pgconfig "Showdown/config/postgres"
	_ "Showdown/config/swagger"
	lobby_constants "Showdown/constants/lobby"
	"Showdown/middleware"
	"Showdown/routes"
	"Showdown/services/lobby"
	"Showdown/services/redis"
	"Showdown/services/socket_io"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// @title Showdown API
// @version 1.0
// @description Gin-Gonic server for the 3-5-7 Poker lobby backend
// @BasePath /
func main() {
	godotenv.Load()

	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
		if os.Getenv("JWT_SECRET") == "" || os.Getenv("SESSION_KEY") == "" {
			log.Fatal("JWT_SECRET and SESSION_KEY must be set in production")
		}
	}

	gormDB, err := pgconfig.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := pgconfig.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
			// Continue execution even if migration fails
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.Connect_redis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	log.Println("Connection to Redis successful")
	defer redis.CloseRedis(redisClient)

	store := lobby.NewStore(gormDB)

	// Out-of-band expiry sweep, independent of any live socket
	stopSweep := make(chan struct{})
	go store.StartCleanupSweep(lobby_constants.CleanupInterval, stopSweep)

	r := gin.Default()

	middleware.SetUpMiddleware(r)

	routes.SetupRoutes(r, gormDB, redisClient, store)

	sio := &socket_io.MySocketServer{}
	sio.Start(r, gormDB, redisClient, store)

	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-signalC
		close(stopSweep)
		sio.Close()
		os.Exit(0)
	}()

	// Configure port
	port := os.Getenv("PORT")
	if port == "" {
		if os.Getenv("USE_HTTPS") == "true" {
			port = "443"
		} else {
			port = "8080"
		}
	}

	if os.Getenv("USE_HTTPS") == "true" {
		// SSL certificate configuration for HTTPS
		certFile := os.Getenv("TLS_CERT_FILE")
		keyFile := os.Getenv("TLS_KEY_FILE")

		if err := r.RunTLS(":"+port, certFile, keyFile); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	} else {
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}
}
