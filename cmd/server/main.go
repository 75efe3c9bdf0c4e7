package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/cineclub/cineclub-api/internal/config"
	"github.com/cineclub/cineclub-api/internal/database"
	"github.com/cineclub/cineclub-api/internal/handler"
	"github.com/cineclub/cineclub-api/internal/queue"
	"github.com/cineclub/cineclub-api/internal/repository"
	"github.com/cineclub/cineclub-api/internal/router"
	"github.com/cineclub/cineclub-api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, relying on process environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, response cache and rate limiting disabled")
	}
	cacheCfg := config.LoadCacheConfig()

	slots := repository.NewSlotRepo(db)
	pending := repository.NewPendingPropositionRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	reviews := repository.NewReviewRepo(db)

	store := repository.NewBookingStore(db, slots, pending)
	booking := service.NewBookingService(store, service.PublishSlotBooked)

	authH := handler.NewAuthHandler(users, tokens, &cfg)
	userH := handler.NewUserHandler(users, tokens, &cfg)
	propH := handler.NewPropositionHandler(booking, slots, rdb, cacheCfg)
	movieH := handler.NewMovieHandler(movies, pending, rdb, cacheCfg)
	reviewH := handler.NewReviewHandler(reviews)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterUsers(e, userH, cfg.JWTSecret)
	router.RegisterPropositions(e, propH, cfg.JWTSecret, rdb, cacheCfg, config.LoadRateLimitConfig())
	router.RegisterMovies(e, movieH, reviewH, cfg.JWTSecret)

	go func() {
		if err := queue.StartSlotBookedConsumer(); err != nil {
			log.Printf("slot-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
