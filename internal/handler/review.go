package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cineclub/cineclub-api/internal/model"
	"github.com/cineclub/cineclub-api/internal/repository"
)

// ReviewHandler serves a member's interactions with a movie.
type ReviewHandler struct {
	Reviews *repository.ReviewRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews}
}

// Get handles GET /v1/movies/:movieId/review: the caller's own review.
func (h *ReviewHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	movieID, ok := pathID(c, "movieId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	rev, err := h.Reviews.Get(ctx, userID, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rev)
}

type reviewReq struct {
	Bookmarked bool    `json:"bookmarked"`
	Viewed     bool    `json:"viewed"`
	Liked      bool    `json:"liked"`
	Rating     *uint8  `json:"rating"`
	Comment    *string `json:"comment"`
}

// Put handles PUT /v1/movies/:movieId/review: the caller's full review is
// written in one shot, created if absent.
func (h *ReviewHandler) Put(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	movieID, ok := pathID(c, "movieId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating != nil && *req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 0 and 5"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	rev := model.Review{
		UserID:     userID,
		MovieID:    movieID,
		Bookmarked: req.Bookmarked,
		Viewed:     req.Viewed,
		Liked:      req.Liked,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := h.Reviews.Upsert(ctx, rev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rev)
}

// DeleteComment handles DELETE /v1/movies/:movieId/reviews/:userId/comment
// (admin): moderation removes only the comment, the flags and rating stay.
func (h *ReviewHandler) DeleteComment(c echo.Context) error {
	movieID, ok := pathID(c, "movieId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Reviews.ClearComment(ctx, userID, movieID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "comment removed"})
}

// Delete handles DELETE /v1/movies/:movieId/review: the caller removes
// their whole review.
func (h *ReviewHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	movieID, ok := pathID(c, "movieId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Reviews.Delete(ctx, userID, movieID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review deleted"})
}

// Comments handles GET /v1/movies/:movieId/comments: every comment on a
// movie with its author's public profile.
func (h *ReviewHandler) Comments(c echo.Context) error {
	movieID, ok := pathID(c, "movieId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	comments, err := h.Reviews.ListCommentsByMovie(ctx, movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, comments)
}
