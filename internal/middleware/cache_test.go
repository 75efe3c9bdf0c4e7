package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineclub/cineclub-api/internal/config"
)

func TestEncodeDecodePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	body := []byte(`[{"publishing_date":"2026-10-05","is_booked":false}]`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 0, 1})
	assert.False(t, ok)
}

func newCacheCtx(userID string, target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/propositions/availableSlots")
	if userID != "" {
		c.Set("user_id", userID)
	}
	return c
}

func TestCacheKeyVariesPerUser(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query_user"}

	k1 := cacheKeyFrom(cfg, newCacheCtx("7", "/v1/propositions/availableSlots"))
	k2 := cacheKeyFrom(cfg, newCacheCtx("8", "/v1/propositions/availableSlots"))
	assert.NotEqual(t, k1, k2)

	again := cacheKeyFrom(cfg, newCacheCtx("7", "/v1/propositions/availableSlots"))
	assert.Equal(t, k1, again)
}

func TestCacheKeyVariesPerPathParam(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query_user"}

	k7 := cacheKeyFrom(cfg, newCacheCtx("1", "/v1/propositions/7"))
	k9 := cacheKeyFrom(cfg, newCacheCtx("1", "/v1/propositions/9"))
	assert.NotEqual(t, k7, k9)

	h7 := cacheKeyFrom(cfg, newCacheCtx("1", "/v1/propositions/hasPendingProposition/7"))
	h9 := cacheKeyFrom(cfg, newCacheCtx("1", "/v1/propositions/hasPendingProposition/9"))
	assert.NotEqual(t, h7, h9)
}

func TestUserScopedKeysCarryUserSegment(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query_user"}

	key := cacheKeyFrom(cfg, newCacheCtx("7", "/v1/propositions/availableSlots"))
	assert.True(t, strings.HasPrefix(key, "cache:u7:"),
		"user-scoped key %q must sit under the user's segment so invalidation can match it", key)

	anon := cacheKeyFrom(cfg, newCacheCtx("", "/v1/propositions/availableSlots"))
	assert.True(t, strings.HasPrefix(anon, "cache:uanon:"))
}

func TestCacheKeyRouteStrategyIgnoresUser(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}

	k1 := cacheKeyFrom(cfg, newCacheCtx("7", "/v1/propositions/availableSlots"))
	k2 := cacheKeyFrom(cfg, newCacheCtx("8", "/v1/propositions/availableSlots"))
	assert.Equal(t, k1, k2)
}
