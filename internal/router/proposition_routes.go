package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cineclub/cineclub-api/internal/config"
	"github.com/cineclub/cineclub-api/internal/handler"
	"github.com/cineclub/cineclub-api/internal/middleware"
)

// RegisterPropositions registers the proposition-slot workflow routes.
// Reads go through the per-user response cache; every route sits behind
// the token-bucket rate limiter. Listing all propositions, releasing a
// slot and provisioning slots are admin operations.
func RegisterPropositions(e *echo.Echo, p *handler.PropositionHandler, jwtSecret string, rdb *redis.Client, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig) {
	g := e.Group("/v1/propositions",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("member", "admin"),
		middleware.NewTokenBucket(rlCfg, rdb),
	)

	cached := middleware.NewRedisCache(cacheCfg, rdb)
	g.GET("/availableSlots", p.AvailableSlots, cached)
	g.GET("/hasPendingProposition/:userId", p.HasPending, cached)
	g.GET("/:userId", p.PendingForUser, cached)
	g.PUT("/book", p.Book)

	admin := g.Group("", middleware.RequireRole("admin"))
	admin.GET("", p.Pending)
	admin.PUT("/unbook", p.Unbook)
	admin.POST("/slots", p.CreateSlot)
}
