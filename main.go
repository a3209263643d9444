package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"task-tree-system/handlers"
	"task-tree-system/models"
	"task-tree-system/services"
	"task-tree-system/stores"
	"task-tree-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, plenty for icon uploads
	})
	app.Use(logger.New())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	var backend stores.Backend
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		store, err := stores.Open(dsn)
		if err != nil {
			log.Fatal("failed to connect to database: ", err)
		}
		backend = store
	} else {
		log.Println("DATABASE_URL not set, using in-memory store (data is lost on restart)")
		backend = stores.NewMemory()
	}

	seedUsername := os.Getenv("SEED_USERNAME")
	if seedUsername == "" {
		seedUsername = "user"
	}
	seedPassword := os.Getenv("SEED_PASSWORD")
	if seedPassword == "" {
		seedPassword = "123456"
	}
	seedHash, err := services.HashPassword(seedPassword)
	if err != nil {
		log.Fatal("failed to hash seed password: ", err)
	}
	if err := stores.Seed(backend, stores.SeedUser{
		Username:     seedUsername,
		PasswordHash: seedHash,
	}, models.DefaultRewardCatalog); err != nil {
		log.Fatal("failed to seed database: ", err)
	}

	icons, err := utils.NewObjectStoreFromEnv()
	if err != nil {
		log.Fatal("failed to initialize icon storage: ", err)
	}

	locks := services.NewAccountLocks()
	authService := services.NewAuthService(backend)
	taskService := services.NewTaskService(backend, locks)
	completionService := services.NewCompletionService(backend, locks)
	unlockService := services.NewUnlockService(backend, locks)

	taskService.StartOverdueScheduler()

	// A nil *ObjectStore must stay a nil interface so the handler's
	// "storage configured" check works.
	var iconUploader handlers.IconUploader
	if icons != nil {
		iconUploader = icons
	}

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupTaskRoutes(app, taskService)
	handlers.SetupPointRoutes(app, completionService)
	handlers.SetupRewardRoutes(app, unlockService, iconUploader)

	app.Get("/api/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success":   true,
			"message":   "service is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	if _, err := os.Stat("./public"); err == nil {
		app.Static("/", "./public")
		log.Println("serving static assets from ./public")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "31314"
	}
	addr := ":" + strings.TrimPrefix(port, ":")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Printf("server error: %v", err)
			stop()
		}
	}()

	log.Printf("server running on http://localhost%s", addr)
	log.Printf("default account: %s", seedUsername)

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if err := backend.Close(); err != nil {
		log.Printf("store close error: %v", err)
	}
}
