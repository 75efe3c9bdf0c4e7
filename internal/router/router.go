// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cineclub/cineclub-api/internal/handler"
	"github.com/cineclub/cineclub-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Register, login and
// refresh live under /v1/auth without a session; me and logout require a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1/auth", middleware.JWTAuth(jwtSecret))
	auth.POST("/logout", a.Logout)
	auth.GET("/me", a.Me)
}

// RegisterUsers registers the member profile and account routes. Every
// route requires a session; delete and togglePrivileges are admin only.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1/users", middleware.JWTAuth(jwtSecret), middleware.RequireRole("member", "admin"))
	g.GET("", u.List)
	g.GET("/:userId", u.Get)
	g.PUT("/:userId", u.Update)

	admin := g.Group("", middleware.RequireRole("admin"))
	admin.DELETE("/:userId", u.Delete)
	admin.PUT("/:userId/togglePrivileges", u.TogglePrivileges)
}
