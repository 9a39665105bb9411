package main

import (
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/goalpost/matchbooking/internal/config"
	"github.com/goalpost/matchbooking/internal/database"
	"github.com/goalpost/matchbooking/internal/repository"
	"github.com/goalpost/matchbooking/internal/sessionstore"
)

// The session store is the backing identity and data service the booking
// app talks to.  One store instance serves any number of booking app
// processes; sign-in and sign-out events fan out to all of them.
func main() {
	cfg := config.LoadSessionStore()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("app", "sessionstore").Logger()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer func() { _ = db.Close() }()

	h := sessionstore.NewHandler(cfg,
		repository.NewUserRepo(db),
		repository.NewTokenRepo(db),
		repository.NewTableRepo(db),
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	sessionstore.Register(e, h)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Bool("auto_confirm", cfg.AutoConfirm).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
