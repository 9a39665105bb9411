package sessionstore

import (
	"github.com/labstack/echo/v4"

	"github.com/goalpost/matchbooking/internal/handler"
	"github.com/goalpost/matchbooking/internal/middleware"
)

// Register mounts the auth and table APIs on the given Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/health", handler.Health)

	auth := e.Group("/auth/v1")
	auth.POST("/signup", h.SignUp)
	auth.POST("/confirm", h.Confirm)
	auth.POST("/token", h.Token)
	auth.POST("/logout", h.Logout)
	auth.GET("/user", h.GetUser, middleware.JWTAuth(h.Cfg.JWTSecret))
	auth.PUT("/user", h.UpdateUser, middleware.JWTAuth(h.Cfg.JWTSecret))

	rest := e.Group("/rest/v1", middleware.OptionalJWT(h.Cfg.JWTSecret))
	rest.GET("", h.ListTables)
	rest.GET("/:table", h.SelectRows)
	rest.POST("/:table", h.InsertRow)
	rest.PATCH("/:table", h.UpdateRows)
}
