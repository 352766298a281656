package gcal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestHandler(t *testing.T) (*Handler, *TokenStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewTokenStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	conf := NewOAuthConfig("client-id", "client-secret", "https://bookline.test/admin/calendar/callback")
	return NewHandler(conf, store, nil), store
}

func TestConnectRedirectsToConsent(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/connect", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	loc := rec.Header().Get("Location")
	assert.Contains(t, loc, "accounts.google.com")
	assert.Contains(t, loc, "client-id")
	assert.Contains(t, loc, "access_type=offline")
}

func TestCallbackRequiresCode(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusReflectsStoredToken(t *testing.T) {
	h, store := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected": false}`, rec.Body.String())

	require.NoError(t, store.Save(context.Background(), &oauth2.Token{AccessToken: "abc"}))

	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected": true}`, rec.Body.String())
}

func TestDisconnect(t *testing.T) {
	h, store := newTestHandler(t)
	require.NoError(t, store.Save(context.Background(), &oauth2.Token{AccessToken: "abc"}))

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/connection", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := store.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}
