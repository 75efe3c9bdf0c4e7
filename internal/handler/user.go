package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cineclub/cineclub-api/internal/config"
	"github.com/cineclub/cineclub-api/internal/repository"
	"github.com/cineclub/cineclub-api/internal/utils"
)

// UserHandler serves member profiles and account management.
type UserHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Cfg    *config.Config
}

func NewUserHandler(users *repository.UserRepo, tokens *repository.TokenRepo, cfg *config.Config) *UserHandler {
	return &UserHandler{Users: users, Tokens: tokens, Cfg: cfg}
}

// List handles GET /v1/users: public profile fields of every member.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /v1/users/:userId.
func (h *UserHandler) Get(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, u)
}

type updateUserReq struct {
	Pseudo      *string `json:"pseudo"`
	Mail        *string `json:"mail"`
	Password    *string `json:"password"`
	OldPassword string  `json:"old_password"`
	AvatarURL   *string `json:"avatar_url"`
}

// Update handles PUT /v1/users/:userId. Members edit only their own
// account; admins may edit anyone. A password change requires the current
// password and revokes every active session.
func (h *UserHandler) Update(c echo.Context) error {
	targetID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)
	if callerID != targetID && role != "admin" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if req.Password != nil {
		if len(*req.Password) < 8 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
		}
		current, err := h.Users.GetByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if role != "admin" && !utils.VerifyPassword(current.PasswordHash, req.OldPassword) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password does not match"})
		}
	}

	upd := repository.UserUpdate{
		Pseudo:    req.Pseudo,
		Mail:      req.Mail,
		Password:  req.Password,
		AvatarURL: req.AvatarURL,
	}
	if err := h.Users.Update(ctx, targetID, upd, h.Cfg.BcryptCost); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case errors.Is(err, repository.ErrUserExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "pseudo or mail already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if req.Password != nil {
		_ = h.Tokens.RevokeAllForUser(ctx, targetID)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user updated"})
}

// Delete handles DELETE /v1/users/:userId (admin). Dependent rows cascade.
func (h *UserHandler) Delete(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// TogglePrivileges handles PUT /v1/users/:userId/togglePrivileges (admin).
func (h *UserHandler) TogglePrivileges(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	role, err := h.Users.TogglePrivileges(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": userID, "role": role})
}
