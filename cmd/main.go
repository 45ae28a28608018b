package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ridehail/internal/access"
	"ridehail/internal/config"
	"ridehail/internal/drivers"
	"ridehail/internal/fare"
	"ridehail/internal/matching"
	"ridehail/internal/realtime"
	"ridehail/internal/routing"
	"ridehail/internal/trips"
	"ridehail/internal/users"
	"ridehail/internal/vehicles"
	"ridehail/migrations"
	"ridehail/pkg/db"
	"ridehail/pkg/jwt"
	"ridehail/pkg/kafka"
	rredis "ridehail/pkg/redis"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── 1. Configuration ──
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := jwt.Init(cfg.JWTSecret); err != nil {
		log.Fatal(err)
	}

	// ── 2. PostgreSQL ──
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := database.RunMigrations(ctx, migrations.FS); err != nil {
		log.Fatal("migrations failed:", err)
	}

	// ── 3. Redis ──
	redisClient, err := rredis.NewClient(cfg.RedisAddr)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	// ── 4. Kafka ──
	kafkaClient := kafka.NewClient(cfg.KafkaBrokers)

	if err := kafkaClient.EnsureTopics(ctx,
		kafka.TopicTripRequested,
		kafka.TopicTripAccepted,
		kafka.TopicTripCancelled,
		kafka.TopicTripCompleted,
	); err != nil {
		log.Fatal(err)
	}

	// ── 5. Routing ──
	router, err := routing.NewGoogleRouter(cfg.RoutingAPIKey)
	if err != nil {
		log.Fatal(err)
	}

	// ── 6. Services ──
	caps := access.NewChecker(database.Pool, redisClient)
	userSvc := users.NewService(database.Pool)
	vehicleSvc := vehicles.NewService(database.Pool, caps)
	driverSvc := drivers.NewService(database.Pool, redisClient)
	bandStore := fare.NewStore(database.Pool)
	tripStore := trips.NewPGStore(database.Pool)
	tripSvc := trips.NewService(tripStore, driverSvc, bandStore, router, kafkaClient, cfg.CommissionPct)

	// ── 7. Realtime fabric ──
	hub := realtime.NewHub()
	ingest := realtime.NewIngestor(
		tripStore, userSvc, vehicleSvc,
		realtime.NewPGLocationStore(database.Pool), router, hub)
	gateway := realtime.NewGateway(hub, userSvc, ingest)

	// ── 8. Background workers ──
	matcher := matching.NewMatcher(kafkaClient, driverSvc, redisClient, hub)
	matcher.Start(ctx)

	sweeper := drivers.NewSweeper(driverSvc, cfg.SweepInterval, cfg.PresenceStaleAfter)
	sweeper.Start(ctx)

	// ── 9. HTTP router ──
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(jwt.OptionalAuth)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"ridehail"}`))
	})

	r.Mount("/users", users.NewHandler(userSvc).Routes())
	r.Mount("/vehicles", vehicles.NewHandler(vehicleSvc).Routes())
	r.Mount("/drivers", drivers.NewHandler(driverSvc).Routes())
	r.Mount("/trips", trips.NewHandler(tripSvc).Routes())
	r.Mount("/ws", gateway.Routes())

	// ── 10. Start server ──
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		log.Printf("ridehail listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// ── 11. Graceful shutdown ──
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	srv.Shutdown(shutCtx)
	cancel() // stop consumers and the sweeper
}
