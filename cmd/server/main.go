package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/lukimgather/gather-api/internal/config"
	"github.com/lukimgather/gather-api/internal/database"
	"github.com/lukimgather/gather-api/internal/handlers"
	"github.com/lukimgather/gather-api/internal/middleware"
	"github.com/lukimgather/gather-api/internal/services"
	"github.com/lukimgather/gather-api/internal/types"

	_ "github.com/lukimgather/gather-api/docs/api" // Swagger docs
)

// @title Lukim Gather API
// @version 1.0.0
// @description Community environmental survey collection and moderation service

// @contact.name API Support
// @contact.url https://github.com/lukimgather/gather-api

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load .env when present; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Outbox, mailer and the email worker that drains it
	wmLogger := watermill.NewStdLogger(false, false)
	pubSub := services.NewPubSub(wmLogger)
	outbox := services.NewOutbox(pubSub)
	mailer := services.NewMailerFromConfig(cfg)

	router, err := services.NewEmailWorker(pubSub, mailer, cfg.EmailMaxRetries, wmLogger)
	if err != nil {
		log.Fatalf("Failed to create email worker: %v", err)
	}
	workerCtx, stopWorker := context.WithCancel(context.Background())
	go func() {
		if err := services.RunEmailWorker(workerCtx, router); err != nil {
			log.Printf("Email worker stopped: %v", err)
		}
	}()

	dispatcher := &services.Dispatcher{
		DB:      db,
		Outbox:  outbox,
		BaseURL: cfg.SiteBaseURL(),
	}
	surveyService := &services.SurveyService{
		DB:         db,
		Media:      &services.LocalMediaStore{Root: cfg.MediaRoot},
		Dispatcher: dispatcher,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("gatherapi")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Handlers
	surveyHandler := &handlers.SurveyHandler{Service: surveyService}
	historyHandler := &handlers.HistoryHandler{DB: db}
	tileHandler := &handlers.TileHandler{DB: db}
	healthHandler := &handlers.HealthHandler{Config: cfg, DB: db}

	app.Get("/health", healthHandler.Health)

	// Map layers (public)
	app.Get("/tiles/happening-surveys", tileHandler.HappeningSurveyTiles)
	app.Get("/tiles/protected-areas", tileHandler.ProtectedAreaTiles)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	api.Get("/health", healthHandler.Health)

	surveys := api.Group("/happening-surveys")

	// Reads and creation allow anonymous callers
	surveys.Get("/", middleware.AuthOptional(cfg, db), surveyHandler.ListHappeningSurveys)
	surveys.Get("/:id", middleware.AuthOptional(cfg, db), surveyHandler.GetHappeningSurvey)
	surveys.Get("/:id/history", middleware.AuthOptional(cfg, db), historyHandler.SurveyHistory)
	surveys.Post("/", middleware.AuthOptional(cfg, db), surveyHandler.CreateHappeningSurvey)

	// Mutations on existing records require a session
	surveys.Put("/:id", middleware.AuthRequired(cfg, db), surveyHandler.UpdateHappeningSurvey)
	surveys.Patch("/:id", middleware.AuthRequired(cfg, db), surveyHandler.EditHappeningSurvey)
	surveys.Delete("/:id", middleware.AuthRequired(cfg, db), surveyHandler.DeleteHappeningSurvey)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	log.Printf("Authorizer will be initialized on first authenticated request")

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		stopWorker()
		_ = router.Close()
		_ = app.Shutdown()
	}()

	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
