// Package router defines how HTTP routes and middleware are registered.
package router

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
)

// Handlers groups the HTTP handlers served under /v1.
type Handlers struct {
	Auth    *handler.AuthHandler
	Catalog *handler.CatalogHandler
	Tickets *handler.TicketHandler
}

// New returns an Echo instance with every route registered.  rdb may be
// nil, in which case rate limiting and response caching are disabled.
func New(cfg config.Config, h Handlers, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	UseCommon(e)
	RegisterRoutes(e)

	// identify the caller first so per-user rate limit keys see the subject
	v1 := e.Group("/v1",
		middleware.OptionalJWT(cfg.JWTSecret),
		middleware.NewTokenBucket(cfg.RateLimit, rdb),
	)
	RegisterAuth(v1, h.Auth, cfg.JWTSecret)
	RegisterPublic(v1, h.Catalog, h.Tickets, middleware.NewRedisCache(cfg.Cache, rdb))
	RegisterTickets(v1, h.Tickets, cfg.JWTSecret)
	return e
}

// UseCommon installs panic recovery and structured request logging.
func UseCommon(e *echo.Echo) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= 500 {
				level = slog.LevelError
			}
			slog.LogAttrs(context.Background(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	}))
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers registration, login and the profile endpoint.
func RegisterAuth(v1 *echo.Group, a *handler.AuthHandler, jwtSecret string) {
	g := v1.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	v1.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the browse endpoints.  Catalog listings go
// through the response cache; the seat map does not, since occupancy
// changes with every booking.
func RegisterPublic(v1 *echo.Group, p *handler.CatalogHandler, t *handler.TicketHandler, cache echo.MiddlewareFunc) {
	v1.GET("/movies", p.ListMovies, cache)
	v1.GET("/movies/:id", p.GetMovie, cache)
	v1.GET("/movies/:id/showtimes", p.ListShowtimes, cache)
	v1.GET("/showtimes/:id", p.GetShowtime, cache)
	v1.GET("/showtimes/:id/seats", t.Seats)
}

// RegisterTickets registers the ticket lifecycle endpoints.  All of them
// require a valid access token.
func RegisterTickets(v1 *echo.Group, t *handler.TicketHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)
	v1.POST("/showtimes/:id/tickets", t.Book, auth)
	v1.GET("/my-tickets", t.MyTickets, auth)
	v1.DELETE("/tickets/:id", t.Cancel, auth)
}
