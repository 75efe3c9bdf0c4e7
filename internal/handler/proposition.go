package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cineclub/cineclub-api/internal/config"
	"github.com/cineclub/cineclub-api/internal/middleware"
	"github.com/cineclub/cineclub-api/internal/repository"
	"github.com/cineclub/cineclub-api/internal/service"
)

// PropositionHandler adapts HTTP requests onto the booking workflow.
// Empty inventories and ineligibility answer 200 with a message; only
// booking and releasing can fail, and they fail as client errors.
// Successful writes drop the affected user's cached reads so a cache HIT
// never answers with pre-write state.
type PropositionHandler struct {
	Svc      *service.BookingService
	Slots    *repository.SlotRepo
	RDB      *redis.Client
	CacheCfg config.CacheConfig
}

// NewPropositionHandler constructs the handler. Svc and Slots must be
// non-nil; Slots is used only for admin slot provisioning. rdb may be nil
// when caching is disabled.
func NewPropositionHandler(svc *service.BookingService, slots *repository.SlotRepo, rdb *redis.Client, cacheCfg config.CacheConfig) *PropositionHandler {
	if svc == nil || slots == nil {
		panic("nil dependency passed to NewPropositionHandler")
	}
	return &PropositionHandler{Svc: svc, Slots: slots, RDB: rdb, CacheCfg: cacheCfg}
}

type slotDateReq struct {
	PublishingDate string `json:"publishing_date"`
}

// AvailableSlots handles GET /v1/propositions/availableSlots. The caller
// identity comes from the JWT; a member holding a pending proposition
// gets the ineligibility message and no inventory.
func (h *PropositionHandler) AvailableSlots(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	inv, err := h.Svc.AvailableSlotsFor(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !inv.Eligible || len(inv.Slots) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"message": inv.Message})
	}
	return c.JSON(http.StatusOK, inv.Slots)
}

// Pending handles GET /v1/propositions (admin): every pending proposition.
func (h *PropositionHandler) Pending(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	list, err := h.Svc.PendingPropositions(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !list.Found {
		return c.JSON(http.StatusOK, echo.Map{"message": list.Message})
	}
	return c.JSON(http.StatusOK, list.Propositions)
}

// PendingForUser handles GET /v1/propositions/:userId.
func (h *PropositionHandler) PendingForUser(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	list, err := h.Svc.PendingPropositionsFor(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !list.Found {
		return c.JSON(http.StatusOK, echo.Map{"message": list.Message})
	}
	return c.JSON(http.StatusOK, list.Propositions)
}

// HasPending handles GET /v1/propositions/hasPendingProposition/:userId.
func (h *PropositionHandler) HasPending(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	has, err := h.Svc.HasPendingProposition(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"has_pending_proposition": has})
}

// Book handles PUT /v1/propositions/book. A missing slot, a lost race on
// the slot and an existing pending proposition are all client errors.
func (h *PropositionHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req slotDateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, ok := parseDate(req.PublishingDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "publishing_date must be YYYY-MM-DD"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	msg, err := h.Svc.Book(ctx, userID, getPseudo(c), date)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "the requested slot is not available"})
		case errors.Is(err, repository.ErrSlotTaken):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "the requested slot is already booked"})
		case errors.Is(err, repository.ErrPendingExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "you already have a pending proposition"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	middleware.InvalidateUserCache(ctx, h.RDB, h.CacheCfg, strconv.FormatUint(userID, 10))
	return c.JSON(http.StatusCreated, echo.Map{"message": msg})
}

// Unbook handles PUT /v1/propositions/unbook (admin).
func (h *PropositionHandler) Unbook(c echo.Context) error {
	var req slotDateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, ok := parseDate(req.PublishingDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "publishing_date must be YYYY-MM-DD"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	msg, claimant, err := h.Svc.Unbook(ctx, date)
	if err != nil {
		if errors.Is(err, repository.ErrUnbookFailed) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "the slot could not be released"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if claimant != 0 {
		middleware.InvalidateUserCache(ctx, h.RDB, h.CacheCfg, strconv.FormatUint(claimant, 10))
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": msg})
}

// CreateSlot handles POST /v1/propositions/slots (admin). Slots are
// provisioned outside the booking workflow, ahead of a season.
func (h *PropositionHandler) CreateSlot(c echo.Context) error {
	var req slotDateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, ok := parseDate(req.PublishingDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "publishing_date must be YYYY-MM-DD"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Slots.Create(ctx, date); err != nil {
		if errors.Is(err, repository.ErrSlotExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"publishing_date": date})
}
