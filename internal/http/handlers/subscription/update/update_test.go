package update

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, id int) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

func (m *MockService) Update(ctx context.Context, id int, upd models.SubscriptionUpdate) (*models.Subscription, error) {
	args := m.Called(ctx, id, upd)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	own := &models.Subscription{ID: 5, UserID: "u-1", Status: models.StatusCancelled}

	tests := []struct {
		name       string
		id         string
		body       string
		setupMock  func(*MockService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "activate own subscription",
			id:   "5",
			body: `{"status":"active","endsAt":null}`,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, 5).Return(own, nil).Once()
				m.On("Update", mock.Anything, 5, mock.MatchedBy(func(u models.SubscriptionUpdate) bool {
					return u.Status != nil && *u.Status == models.StatusActive && u.EndsAt.Set && u.EndsAt.Value == nil && u.PlanID == nil
				})).Return(&models.Subscription{ID: 5, UserID: "u-1", Status: models.StatusActive}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"status":"active"`,
		},
		{
			name: "empty update",
			id:   "5",
			body: `{}`,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, 5).Return(own, nil).Once()
				m.On("Update", mock.Anything, 5, models.SubscriptionUpdate{}).Return(nil, apperr.ErrNoUpdates).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"code":"NO_UPDATES"`,
		},
		{
			name: "foreign subscription",
			id:   "6",
			body: `{"planId":2}`,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, 6).Return(&models.Subscription{ID: 6, UserID: "u-2"}, nil).Once()
			},
			wantStatus: http.StatusForbidden,
			wantBody:   `"code":"FORBIDDEN"`,
		},
		{
			name: "not found",
			id:   "7",
			body: `{"planId":2}`,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, 7).Return(nil, apperr.ErrSubscriptionNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `"code":"NOT_FOUND"`,
		},
		{
			name:       "bad id",
			id:         "abc",
			body:       `{"planId":2}`,
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"code":"INVALID_ID"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPut, "/subscriptions/"+tt.id, bytes.NewBufferString(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = middlewarectx.WithUser(ctx, &models.PublicUser{ID: "u-1"})
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
