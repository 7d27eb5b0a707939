package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"whispr/internal/auth"
	"whispr/internal/config"
	"whispr/internal/database"
	"whispr/internal/engine"
	"whispr/internal/handlers"
	"whispr/internal/middleware"
	"whispr/internal/search"
	"whispr/internal/utils"
	"whispr/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/gorilla/mux"
)

const (
	rateLimitRequests = 100
	rateLimitWindow   = 15 * time.Minute
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.SetJWTSecret(cfg.Auth.JWTSecret)
	metrics := utils.NewMetricsCollector()

	// MongoDB
	mongodb, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongodb.Close(context.Background()); err != nil {
			log.Printf("Failed to close MongoDB connection: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongodb.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	cancel()

	// Redis backs OTP storage, resend cooldowns and the profile cache
	kv, err := auth.NewRedisKV(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer kv.Close()

	mailer := auth.NewSMTPMailer(cfg.SMTP)
	otpService := auth.NewOTPService(kv, mailer)
	profileCache := auth.NewProfileCache(kv)

	// Websocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Actor system and engine
	system := actor.NewActorSystem()
	whisprEngine := engine.NewEngine(system, mongodb, hub, profileCache, metrics)

	searchService := search.NewService(mongodb)

	server := handlers.NewServer(
		system,
		system.Root,
		whisprEngine,
		mongodb,
		otpService,
		profileCache,
		searchService,
		hub,
		metrics,
	)

	// Inbound socket follow/unfollow frames go through the same server
	hub.Handler = server

	router := mux.NewRouter()
	server.RegisterRoutes(router)

	limiter := middleware.NewRateLimiter(rateLimitRequests, rateLimitWindow)
	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)

	handler := middleware.CORSMiddleware(corsConfig)(limiter.Middleware(countRequests(metrics, router)))

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func countRequests(metrics *utils.MetricsCollector, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.IncrementRequests()
		next.ServeHTTP(w, r)
	})
}
