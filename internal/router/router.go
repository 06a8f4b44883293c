package router // package router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ciaapp/seat-reservation/internal/handler"
	"github.com/ciaapp/seat-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems probe this endpoint to verify
	// that the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account endpoints and their middleware.
// Unauthenticated operations live under /v1/auth; the identity echo
// endpoint lives under the protected /v1 group.  The rate limiter keeps
// credential stuffing and reset-token guessing in check; it degrades to
// a no-op when Redis is not configured.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	g.Use(middleware.RateLimit(rdb, 20, time.Minute))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterSeats registers the seat map and reservation endpoints.  All
// of them require a valid access token; none require the admin role.
func RegisterSeats(e *echo.Echo, s *handler.SeatHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group("/v1/seats")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RateLimit(rdb, 60, time.Minute))
	g.GET("", s.ListSeats)
	g.GET("/mine", s.ListMySeats)
	g.POST("/pre-reserve", s.PreReserve)
	g.POST("/reserve", s.Reserve)

	tx := e.Group("/v1/transactions")
	tx.Use(middleware.JWTAuth(jwtSecret))
	tx.GET("", s.ListMyTransactions)
}

// RegisterAdmin registers the payment review and door validation
// endpoints.  The whole group sits behind JWTAuth plus RequireAdmin, so
// the role decision is made once at the group boundary.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireAdmin())
	g.GET("/seats/pending", a.PendingSeats)
	g.POST("/seats/approve", a.ApproveSeat)
	g.POST("/seats/reprove", a.ReproveSeat)
	g.POST("/validate-entry", a.ValidateEntry)
}
