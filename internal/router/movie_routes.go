package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cineclub/cineclub-api/internal/handler"
	"github.com/cineclub/cineclub-api/internal/middleware"
)

// RegisterMovies registers the published selections and review routes.
// Publishing consumes the caller's pending proposition; comment removal
// is a moderation action reserved to admins.
func RegisterMovies(e *echo.Echo, m *handler.MovieHandler, r *handler.ReviewHandler, jwtSecret string) {
	g := e.Group("/v1/movies", middleware.JWTAuth(jwtSecret), middleware.RequireRole("member", "admin"))
	g.GET("", m.List)
	g.GET("/:movieId", m.Get)
	g.POST("", m.Publish)

	g.GET("/:movieId/comments", r.Comments)
	g.GET("/:movieId/review", r.Get)
	g.PUT("/:movieId/review", r.Put)
	g.DELETE("/:movieId/review", r.Delete)

	admin := g.Group("", middleware.RequireRole("admin"))
	admin.DELETE("/:movieId/reviews/:userId/comment", r.DeleteComment)
}
