package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/cookie"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var cfg = cookie.Config{Name: "auth_token"}

func TestGet(t *testing.T) {
	h := New(newNoopLogger(), new(MockService), cfg)

	w := httptest.NewRecorder()
	h.Get(w, httptest.NewRequest(http.MethodGet, "/session", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","data":{"user":null}}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req = req.WithContext(middlewarectx.WithUser(req.Context(), &models.PublicUser{ID: "u-1", Name: "Ann"}))
	w = httptest.NewRecorder()
	h.Get(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"u-1"`)
}

func TestDelete(t *testing.T) {
	t.Run("logs out and clears cookie", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Logout", mock.Anything, "tok").Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/session", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: "tok"})
		w := httptest.NewRecorder()
		New(newNoopLogger(), svc, cfg).Delete(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"OK","data":{"success":true}}`, w.Body.String())
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
		svc.AssertExpectations(t)
	})

	t.Run("without session is idempotent", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Logout", mock.Anything, "").Return(nil).Once()

		w := httptest.NewRecorder()
		New(newNoopLogger(), svc, cfg).Delete(w, httptest.NewRequest(http.MethodDelete, "/session", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Logout", mock.Anything, "tok").Return(errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/session", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		New(newNoopLogger(), svc, cfg).Delete(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)
	})
}
