package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	repo, mock := newMockRepo(t)
	return NewHandler(repo, nil), mock
}

func TestPublicListReturnsActiveOnly(t *testing.T) {
	h, mock := newTestHandler(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM services WHERE active").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "duration_minutes", "price_cents", "active", "created_at", "updated_at",
		}).AddRow(uuid.New(), "Haircut", 45, 3500, true, now, now))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/services", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var list []Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Haircut", list[0].Name)
}

func TestCreateValidatesBody(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, body := range []string{
		`{"duration_minutes": 45}`,
		`{"name": "Haircut", "duration_minutes": 0}`,
		`{"name": "Haircut", "duration_minutes": 45, "price_cents": -1}`,
		`not json`,
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		h.Create(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestCreateService201(t *testing.T) {
	h, mock := newTestHandler(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO services").
		WithArgs(pgxmock.AnyArg(), "Haircut", 45, 3500).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"name": "Haircut", "duration_minutes": 45, "price_cents": 3500}`))
	h.AdminRoutes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var svc Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &svc))
	assert.True(t, svc.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateUnknownService(t *testing.T) {
	h, mock := newTestHandler(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE services SET active = FALSE").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/"+id.String(), nil)
	h.AdminRoutes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
