package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"resto-ops/cache"
	"resto-ops/config"
	"resto-ops/kds"
	"resto-ops/models"
	"resto-ops/utils"

	approuter "resto-ops/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	autoMigrate(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Cache: redis kalau dikonfigurasi dan hidup, fallback in-memory.
	var store cache.Store = cache.NewMemoryStore()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		if client := cache.NewRedisClient(addr, os.Getenv("REDIS_PASSWORD"), 0); client != nil {
			store = cache.NewRedisStore(client, "restoops")
			utils.InfoLogger.Printf("Using redis cache at %s", addr)
		} else {
			utils.ErrorLogger.Printf("Redis at %s unreachable, falling back to in-memory cache", addr)
		}
	}

	// Fanout: websocket hub selalu aktif, mirror ke broker kalau diset.
	hub := kds.NewHub()
	var events kds.Publisher = hub
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		events = kds.Fanout{hub, kds.NewAmqpPublisher(url)}
		utils.InfoLogger.Println("Mirroring events to RabbitMQ")
	}

	r := approuter.SetupRouter(db, store, hub, events)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.TableStatusLog{},
		&models.TableReservation{},
		&models.Order{},
		&models.KitchenDisplay{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
