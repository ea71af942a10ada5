package create

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/subscription"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, in subscription.CreateInput) (*models.Subscription, error) {
	args := m.Called(ctx, in)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	started := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		user       *models.PublicUser
		setupMock  func(*MockService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "defaults to session user",
			body: `{"planId":3,"status":"active","startedAt":"2025-01-01T00:00:00Z"}`,
			user: &models.PublicUser{ID: "u-1"},
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, subscription.CreateInput{
					UserID: "u-1", PlanID: 3, Status: models.StatusActive, StartedAt: started,
				}).Return(&models.Subscription{ID: 9, UserID: "u-1", PlanID: 3, Status: models.StatusActive}, nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"id":9`,
		},
		{
			name:       "foreign user",
			body:       `{"userId":"u-2","planId":3,"status":"active","startedAt":"2025-01-01T00:00:00Z"}`,
			user:       &models.PublicUser{ID: "u-1"},
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusForbidden,
			wantBody:   `"code":"FORBIDDEN"`,
		},
		{
			name:       "no session",
			body:       `{"planId":3,"status":"active","startedAt":"2025-01-01T00:00:00Z"}`,
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `"code":"UNAUTHORIZED"`,
		},
		{
			name: "invalid status",
			body: `{"planId":3,"status":"paused","startedAt":"2025-01-01T00:00:00Z"}`,
			user: &models.PublicUser{ID: "u-1"},
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, apperr.ErrInvalidStatus).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"code":"INVALID_STATUS"`,
		},
		{
			name:       "malformed date",
			body:       `{"planId":3,"status":"active","startedAt":"yesterday"}`,
			user:       &models.PublicUser{ID: "u-1"},
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"code":"INVALID_BODY"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewBufferString(tt.body))
			if tt.user != nil {
				req = req.WithContext(middlewarectx.WithUser(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
