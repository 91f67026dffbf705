package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vntrieu/mafia/internal/config"
	"github.com/vntrieu/mafia/internal/database"
	"github.com/vntrieu/mafia/internal/httpapi"
	"github.com/vntrieu/mafia/internal/ratelimit"
	"github.com/vntrieu/mafia/internal/session"
	"github.com/vntrieu/mafia/internal/store"
	"github.com/vntrieu/mafia/internal/websocket"
)

const purgeInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Connect to PostgreSQL.
	ctx := context.Background()
	dbPool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer dbPool.Close()
	log.Println("connected to database")

	// Run pending migrations.
	if err := database.Migrate(ctx, dbPool, cfg.MigrationsDir); err != nil {
		log.Fatalf("database migrate: %v", err)
	}
	log.Println("migrations up to date")

	kv := store.NewPostgresKV(dbPool)
	sessions := store.NewSessionStore(kv)
	if cfg.GameTTL > 0 {
		sessions.GameTTL = cfg.GameTTL
	}
	if cfg.RoomTTL > 0 {
		sessions.RoomTTL = cfg.RoomTTL
	}
	wallet := store.NewPostgresWallet(dbPool)

	manager := session.NewManager(sessions, wallet)
	defer manager.Shutdown()

	var limiter ratelimit.Limiter
	if cfg.RateLimitEnabled {
		limiter = httpapi.DefaultRateLimiter()
	}

	hub := websocket.NewHub()
	hub.SetHandler(websocket.NewMessageHandler(hub, manager, limiter))
	manager.SetEmitter(hub)
	go hub.Run()

	// Sweep expired session rows in the background.
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := kv.PurgeExpired(context.Background()); err != nil {
				log.Printf("session purge: %v", err)
			} else if n > 0 {
				log.Printf("session purge: removed=%d", n)
			}
		}
	}()

	router := httpapi.NewRouter(manager, hub, []byte(cfg.TokenSecret), limiter)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("mafia backend listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
