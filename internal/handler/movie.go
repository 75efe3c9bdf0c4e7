package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cineclub/cineclub-api/internal/config"
	"github.com/cineclub/cineclub-api/internal/middleware"
	"github.com/cineclub/cineclub-api/internal/model"
	"github.com/cineclub/cineclub-api/internal/repository"
)

// MovieHandler serves the published club selections.
type MovieHandler struct {
	Movies   *repository.MovieRepo
	Pending  *repository.PendingPropositionRepo
	RDB      *redis.Client
	CacheCfg config.CacheConfig
}

func NewMovieHandler(movies *repository.MovieRepo, pending *repository.PendingPropositionRepo, rdb *redis.Client, cacheCfg config.CacheConfig) *MovieHandler {
	return &MovieHandler{Movies: movies, Pending: pending, RDB: rdb, CacheCfg: cacheCfg}
}

// List handles GET /v1/movies.
func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	movies, err := h.Movies.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, movies)
}

// Get handles GET /v1/movies/:movieId.
func (h *MovieHandler) Get(c echo.Context) error {
	movieID, ok := pathID(c, "movieId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, m)
}

type publishMovieReq struct {
	FrenchTitle    string  `json:"french_title"`
	OriginalTitle  string  `json:"original_title"`
	PosterURL      *string `json:"poster_url"`
	Presentation   string  `json:"presentation"`
	PublishingDate string  `json:"publishing_date"`
}

// Publish handles POST /v1/movies. The movie fills the caller's pending
// proposition: the row is inserted and the proposition removed in one
// transaction, so a user can only publish into a slot they booked.
func (h *MovieHandler) Publish(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req publishMovieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FrenchTitle = strings.TrimSpace(req.FrenchTitle)
	req.Presentation = strings.TrimSpace(req.Presentation)
	if req.FrenchTitle == "" || req.Presentation == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "french_title and presentation are required"})
	}
	date, ok := parseDate(req.PublishingDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "publishing_date must be YYYY-MM-DD"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	m := model.Movie{
		FrenchTitle:    req.FrenchTitle,
		OriginalTitle:  req.OriginalTitle,
		PosterURL:      req.PosterURL,
		Presentation:   req.Presentation,
		PublishingDate: date,
		UserID:         userID,
	}
	if err := h.Movies.Publish(ctx, h.Pending, &m); err != nil {
		if errors.Is(err, repository.ErrNoPendingToPublish) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no pending proposition to publish"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	// publishing frees the member to book again
	middleware.InvalidateUserCache(ctx, h.RDB, h.CacheCfg, strconv.FormatUint(userID, 10))
	return c.JSON(http.StatusCreated, m)
}
