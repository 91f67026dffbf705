package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vntrieu/mafia/internal/httpapi/handler"
	"github.com/vntrieu/mafia/internal/ratelimit"
	"github.com/vntrieu/mafia/internal/session"
	"github.com/vntrieu/mafia/internal/websocket"
)

// NewRouter builds the root HTTP router with basic middleware and health check.
// tokenSecret signs WebSocket auth tokens; if nil or empty, create/join
// responses omit the token and the WS endpoint rejects everyone.
// rateLimiter is optional: if nil, no rate limiting is applied; otherwise
// create room, join room, and WS chat are limited.
func NewRouter(manager *session.Manager, hub *websocket.Hub, tokenSecret []byte, rateLimiter ratelimit.Limiter) http.Handler {
	if rateLimiter == nil {
		rateLimiter = &ratelimit.Noop{}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", handler.Healthz)

	wsHandler := websocket.NewWSHandler(hub, manager, tokenSecret)

	// Per-room WebSocket (token auth; all in-game traffic flows here)
	r.Get("/ws/rooms/{code}", wsHandler.HandleRoomWebSocket)

	// Rate limit middleware for create/join (by IP)
	rateLimitByIP := RateLimitMiddleware(rateLimiter, RateLimitKeyByIP)

	// Room routes (body size limited to 1MB for JSON)
	roomHandler := handler.NewRoomHandler(manager, tokenSecret)
	r.Route("/api/rooms", func(r chi.Router) {
		r.Use(LimitRequestBody(DefaultMaxBodyBytes))
		r.With(rateLimitByIP).Post("/", roomHandler.CreateRoom)
		r.Get("/{code}", roomHandler.GetRoom)
		r.With(rateLimitByIP).Post("/{code}/join", roomHandler.JoinRoom)
	})

	return r
}

// DefaultRateLimiter returns an in-memory rate limiter for create/join/chat:
// 20 requests per minute per IP. For multi-instance, replace with a
// Redis-backed limiter.
func DefaultRateLimiter() ratelimit.Limiter {
	return ratelimit.NewInMemory(20, time.Minute)
}

// SetupRoomWSRouter returns a chi router with only GET /ws/rooms/{code} for testing.
func SetupRoomWSRouter(wsHandler *websocket.WSHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/ws/rooms/{code}", wsHandler.HandleRoomWebSocket)
	return r
}
