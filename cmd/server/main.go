package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tipnplay/internal/config"
	"tipnplay/internal/database"
	"tipnplay/internal/handlers"
	"tipnplay/internal/middleware"
	"tipnplay/internal/realtime"
	"tipnplay/internal/repositories"
	"tipnplay/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	// Initialize database connection
	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	log.Println("Database connection established successfully")

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db.DB)
	eventRepo := repositories.NewEventRepository(db.DB)
	tipRepo := repositories.NewTipRepository(db.DB)

	// Initialize payment service with Stripe
	stripeService := services.NewStripeService(services.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		APIBaseURL:    cfg.Stripe.APIBaseURL,
	})

	// Initialize realtime broadcaster and core services
	broadcaster := realtime.NewBroadcaster()
	tipService := services.NewTipService(tipRepo, eventRepo, userRepo, stripeService, broadcaster, cfg.Platform.FeePercent)
	eventService := services.NewEventService(eventRepo, tipRepo)
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize handlers
	tipHandler := handlers.NewTipHandler(tipService)
	webhookHandler := handlers.NewWebhookHandler(stripeService, tipService)
	eventHandler := handlers.NewEventHandler(eventService)
	hostHandler := handlers.NewHostHandler(authService)
	streamHandler := handlers.NewStreamHandler(broadcaster, eventService)
	healthHandler := handlers.NewHealthHandler(db)

	// Rate limit store for the payment intent endpoint
	rateLimitStore := middleware.NewMemoryRateLimitStore()
	defer rateLimitStore.Close()

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.ErrorHandlingMiddleware)
	r.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig()))

	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		// Guest endpoints
		r.With(
			middleware.RequireAPIKey(cfg.Auth.APIKey),
			middleware.RateLimit(rateLimitStore, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window),
		).Post("/tips/intent", tipHandler.CreateIntent)

		r.Get("/events/{eventID}", eventHandler.Get)
		r.Get("/events/{eventID}/tips", eventHandler.Tips)
		r.Get("/events/{eventID}/stream", streamHandler.Stream)

		// Processor callbacks, authenticated by signature rather than token
		r.Post("/webhooks/stripe", webhookHandler.HandleStripe)

		// Host endpoints
		r.Post("/hosts/register", hostHandler.Register)
		r.Post("/hosts/login", hostHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireHost(authService))

			r.Get("/hosts/me", hostHandler.Me)
			r.Put("/hosts/me", hostHandler.Update)
			r.Get("/hosts/me/events", eventHandler.List)
			r.Post("/events", eventHandler.Create)
			r.Get("/events/{eventID}/stats", eventHandler.Stats)
		})
	})

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE connections stay open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed:", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
