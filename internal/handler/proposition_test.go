package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineclub/cineclub-api/internal/config"
	"github.com/cineclub/cineclub-api/internal/model"
	"github.com/cineclub/cineclub-api/internal/repository"
	"github.com/cineclub/cineclub-api/internal/service"
)

type fakeStore struct {
	slots   map[string]bool
	pending map[uint64]string
}

func newFakeStore(dates ...string) *fakeStore {
	s := &fakeStore{slots: make(map[string]bool), pending: make(map[uint64]string)}
	for _, d := range dates {
		s.slots[d] = false
	}
	return s
}

func (s *fakeStore) ListSlots(ctx context.Context) ([]model.Slot, error) {
	out := make([]model.Slot, 0, len(s.slots))
	for d, booked := range s.slots {
		out = append(out, model.Slot{PublishingDate: d, IsBooked: booked})
	}
	return out, nil
}

func (s *fakeStore) ListPending(ctx context.Context) ([]model.PendingProposition, error) {
	out := make([]model.PendingProposition, 0, len(s.pending))
	for uid, d := range s.pending {
		out = append(out, model.PendingProposition{UserID: uid, PublishingDate: d})
	}
	return out, nil
}

func (s *fakeStore) ListPendingByUser(ctx context.Context, userID uint64) ([]model.PendingProposition, error) {
	if d, ok := s.pending[userID]; ok {
		return []model.PendingProposition{{UserID: userID, PublishingDate: d}}, nil
	}
	return nil, nil
}

func (s *fakeStore) HasPending(ctx context.Context, userID uint64) (bool, error) {
	_, ok := s.pending[userID]
	return ok, nil
}

func (s *fakeStore) BookSlot(ctx context.Context, userID uint64, publishingDate string) error {
	booked, ok := s.slots[publishingDate]
	if !ok {
		return repository.ErrSlotNotFound
	}
	if booked {
		return repository.ErrSlotTaken
	}
	if _, has := s.pending[userID]; has {
		return repository.ErrPendingExists
	}
	s.slots[publishingDate] = true
	s.pending[userID] = publishingDate
	return nil
}

func (s *fakeStore) UnbookSlot(ctx context.Context, publishingDate string) (uint64, error) {
	if booked, ok := s.slots[publishingDate]; !ok || !booked {
		return 0, repository.ErrUnbookFailed
	}
	s.slots[publishingDate] = false
	var claimant uint64
	for uid, d := range s.pending {
		if d == publishingDate {
			claimant = uid
			delete(s.pending, uid)
		}
	}
	return claimant, nil
}

func newTestHandler(t *testing.T, store *fakeStore) *PropositionHandler {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := service.NewBookingService(store, nil)
	return NewPropositionHandler(svc, repository.NewSlotRepo(db), nil, config.CacheConfig{})
}

func doRequest(method, target, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("pseudo", "alice")
	c.Set("role", "member")
	return c, rec
}

func TestAvailableSlotsReturnsInventory(t *testing.T) {
	h := newTestHandler(t, newFakeStore("2026-10-05"))
	c, rec := doRequest(http.MethodGet, "/v1/propositions/availableSlots", "", 7)

	require.NoError(t, h.AvailableSlots(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var slots []model.Slot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))
	require.Len(t, slots, 1)
	assert.Equal(t, "2026-10-05", slots[0].PublishingDate)
}

func TestAvailableSlotsIneligibleAnswersMessage(t *testing.T) {
	store := newFakeStore("2026-10-05")
	store.pending[7] = "2026-09-28"
	h := newTestHandler(t, store)
	c, rec := doRequest(http.MethodGet, "/v1/propositions/availableSlots", "", 7)

	require.NoError(t, h.AvailableSlots(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, service.MsgAlreadyPending, body["message"])
}

func TestBookAnswersCreated(t *testing.T) {
	h := newTestHandler(t, newFakeStore("2026-10-05"))
	c, rec := doRequest(http.MethodPut, "/v1/propositions/book",
		`{"publishing_date":"2026-10-05"}`, 7)

	require.NoError(t, h.Book(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, service.MsgSlotBooked, body["message"])
}

func TestBookRejectsSecondProposition(t *testing.T) {
	store := newFakeStore("2026-10-05", "2026-10-12")
	h := newTestHandler(t, store)

	c, rec := doRequest(http.MethodPut, "/v1/propositions/book",
		`{"publishing_date":"2026-10-05"}`, 7)
	require.NoError(t, h.Book(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = doRequest(http.MethodPut, "/v1/propositions/book",
		`{"publishing_date":"2026-10-12"}`, 7)
	require.NoError(t, h.Book(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "pending proposition")
}

func TestBookRejectsTakenSlot(t *testing.T) {
	store := newFakeStore("2026-10-05")
	store.slots["2026-10-05"] = true
	h := newTestHandler(t, store)

	c, rec := doRequest(http.MethodPut, "/v1/propositions/book",
		`{"publishing_date":"2026-10-05"}`, 7)
	require.NoError(t, h.Book(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already booked")
}

func TestBookRejectsMalformedDate(t *testing.T) {
	h := newTestHandler(t, newFakeStore("2026-10-05"))
	c, rec := doRequest(http.MethodPut, "/v1/propositions/book",
		`{"publishing_date":"05/10/2026"}`, 7)

	require.NoError(t, h.Book(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnbookAnswersCreated(t *testing.T) {
	store := newFakeStore("2026-10-05")
	store.slots["2026-10-05"] = true
	store.pending[7] = "2026-10-05"
	h := newTestHandler(t, store)

	c, rec := doRequest(http.MethodPut, "/v1/propositions/unbook",
		`{"publishing_date":"2026-10-05"}`, 1)
	require.NoError(t, h.Unbook(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, store.slots["2026-10-05"])
	assert.Empty(t, store.pending)
}

func TestUnbookFreeSlotIsClientError(t *testing.T) {
	h := newTestHandler(t, newFakeStore("2026-10-05"))
	c, rec := doRequest(http.MethodPut, "/v1/propositions/unbook",
		`{"publishing_date":"2026-10-05"}`, 1)

	require.NoError(t, h.Unbook(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHasPendingProposition(t *testing.T) {
	store := newFakeStore("2026-10-05")
	store.pending[7] = "2026-10-05"
	h := newTestHandler(t, store)

	c, rec := doRequest(http.MethodGet, "/v1/propositions/hasPendingProposition/7", "", 1)
	c.SetParamNames("userId")
	c.SetParamValues("7")

	require.NoError(t, h.HasPending(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["has_pending_proposition"])
}

func TestPendingForUserWithoutProposition(t *testing.T) {
	h := newTestHandler(t, newFakeStore("2026-10-05"))
	c, rec := doRequest(http.MethodGet, "/v1/propositions/9", "", 1)
	c.SetParamNames("userId")
	c.SetParamValues("9")

	require.NoError(t, h.PendingForUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, service.MsgNoUserPending, body["message"])
}
