package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/trafficpanel/internal/modules/notifications"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) Insert(ctx context.Context, toast notifications.Toast) error { return nil }
func (brokenStore) List(ctx context.Context, limit int) ([]notifications.Toast, error) {
	return nil, errors.New("db closed")
}

func setupRouter(notifier *notifications.Notifier) *chi.Mux {
	handler := NewHandler(notifier, zerolog.New(nil).Level(zerolog.Disabled))
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

type listResponse struct {
	Data     []notifications.Toast  `json:"data"`
	Metadata map[string]interface{} `json:"metadata"`
}

func TestHandleGetRecent(t *testing.T) {
	notifier := notifications.NewNotifier(nil, nil, nil, 10, zerolog.Nop())
	notifier.Success("first")
	notifier.Error("second")

	router := setupRouter(notifier)

	req := httptest.NewRequest("GET", "/notifications?limit=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response listResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, "second", response.Data[0].Text)
	assert.Equal(t, float64(1), response.Metadata["count"])
}

func TestHandleGetRecent_BadLimit(t *testing.T) {
	router := setupRouter(notifications.NewNotifier(nil, nil, nil, 10, zerolog.Nop()))

	req := httptest.NewRequest("GET", "/notifications?limit=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetHistory(t *testing.T) {
	notifier := notifications.NewNotifier(nil, nil, nil, 10, zerolog.Nop())
	notifier.Message("hint")

	router := setupRouter(notifier)

	req := httptest.NewRequest("GET", "/notifications/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response listResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, notifications.KindMessage, response.Data[0].Kind)
}

func TestHandleGetHistory_StoreError(t *testing.T) {
	router := setupRouter(notifications.NewNotifier(brokenStore{}, nil, nil, 10, zerolog.Nop()))

	req := httptest.NewRequest("GET", "/notifications/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Failed to read notification history", response["error"])
}

func TestRegisterRoutes(t *testing.T) {
	handler := NewHandler(notifications.NewNotifier(nil, nil, nil, 10, zerolog.Nop()), zerolog.Nop())
	router := chi.NewRouter()

	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	})
}
