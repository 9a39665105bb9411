// Package router mounts the booking app's HTTP surface: public auth and
// reference endpoints, and the guarded group for everything that needs a
// signed-in user.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/goalpost/matchbooking/internal/guard"
	"github.com/goalpost/matchbooking/internal/handler"
	"github.com/goalpost/matchbooking/internal/middleware"
	"github.com/goalpost/matchbooking/internal/session"
)

// Deps carries everything the route table needs.  Redis may be nil; the
// cache and rate-limit middlewares then pass requests through untouched.
type Deps struct {
	Sessions  *session.Manager
	Auth      *handler.AuthHandler
	Booking   *handler.BookingHandler
	Reference *handler.ReferenceHandler
	Redis     *redis.Client
}

// Register mounts all routes on the given Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/health", handler.Health)

	// Login view: anonymous users on protected routes are redirected here.
	e.GET(guard.LoginPath, loginView)

	auth := e.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/state", d.Auth.AuthState)
	auth.GET("/state/stream", d.Auth.StreamState)

	// Reference data is anonymous, cached, and rate limited.
	api := e.Group("/api",
		middleware.RateLimit(d.Redis, 60, time.Minute),
		middleware.RefCache(d.Redis, 30*time.Second),
	)
	api.GET("/stadiums", d.Reference.Stadiums)
	api.GET("/matches", d.Reference.Matches)
	api.GET("/scores", d.Reference.Scores)
	api.GET("/predictions", d.Reference.Predictions)
	api.GET("/predictions/:matchId", d.Reference.PredictionByMatch)
	e.POST("/api/matches", d.Reference.CreateMatch)

	// Everything below waits for session initialization and requires a
	// signed-in user.
	prot := e.Group("", guard.Protect(d.Sessions))
	prot.GET("/me", d.Auth.Me)
	prot.PUT("/me/profile", d.Auth.UpdateProfile)
	prot.PUT("/me/password", d.Auth.ChangePassword)

	prot.POST("/bookings/draft", d.Booking.BeginDraft)
	prot.GET("/bookings/draft", d.Booking.GetDraft)
	prot.PATCH("/bookings/draft", d.Booking.UpdateDraft)
	prot.POST("/bookings/draft/submit", d.Booking.SubmitDraft)
	prot.DELETE("/bookings/draft", d.Booking.AbortDraft)
	prot.POST("/bookings/confirm", d.Booking.ConfirmPayment)
	prot.GET("/bookings", d.Booking.ListBookings)
}

func loginView(c echo.Context) error {
	return c.JSON(200, echo.Map{"view": "login", "hint": "POST /auth/login with email and password"})
}
