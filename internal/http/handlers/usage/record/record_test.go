package record

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Record(ctx context.Context, userID string, serviceID int, monthKey string, delta int) (*models.UsageLog, error) {
	args := m.Called(ctx, userID, serviceID, monthKey, delta)
	entry, _ := args.Get(0).(*models.UsageLog)
	return entry, args.Error(1)
}

const testUser = "6f1c2a34-8b7d-4e0f-9a21-3c5d7e9f1b20"

func TestRecordHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "recorded",
			body: `{"userId":"6f1c2a34-8b7d-4e0f-9a21-3c5d7e9f1b20","serviceId":2,"delta":5}`,
			setupMock: func(m *MockService) {
				m.On("Record", mock.Anything, testUser, 2, "", 5).
					Return(&models.UsageLog{ID: 1, UserID: testUser, ServiceID: 2, UsageCount: 15, Month: "2025-01"}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"usageCount":15`,
		},
		{
			name: "zero delta passes",
			body: `{"userId":"6f1c2a34-8b7d-4e0f-9a21-3c5d7e9f1b20","serviceId":2,"month":"2025-01","delta":0}`,
			setupMock: func(m *MockService) {
				m.On("Record", mock.Anything, testUser, 2, "2025-01", 0).
					Return(&models.UsageLog{ID: 1, UsageCount: 10, Month: "2025-01"}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"usageCount":10`,
		},
		{
			name:       "negative delta",
			body:       `{"userId":"6f1c2a34-8b7d-4e0f-9a21-3c5d7e9f1b20","serviceId":2,"delta":-1}`,
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"code":"VALIDATION_ERROR"`,
		},
		{
			name:       "user id is not a uuid",
			body:       `{"userId":"not-a-uuid","serviceId":2,"delta":1}`,
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"code":"VALIDATION_ERROR"`,
		},
		{
			name:       "delta above integer range",
			body:       `{"userId":"6f1c2a34-8b7d-4e0f-9a21-3c5d7e9f1b20","serviceId":2,"delta":2147483648}`,
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"code":"VALIDATION_ERROR"`,
		},
		{
			name: "unknown user",
			body: `{"userId":"6f1c2a34-8b7d-4e0f-9a21-3c5d7e9f1b20","serviceId":2,"delta":1}`,
			setupMock: func(m *MockService) {
				m.On("Record", mock.Anything, testUser, 2, "", 1).Return(nil, apperr.ErrUserNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `"code":"USER_NOT_FOUND"`,
		},
		{
			name: "counter overflow",
			body: `{"userId":"6f1c2a34-8b7d-4e0f-9a21-3c5d7e9f1b20","serviceId":2,"delta":5}`,
			setupMock: func(m *MockService) {
				m.On("Record", mock.Anything, testUser, 2, "", 5).Return(nil, apperr.ErrUsageOverflow).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"code":"USAGE_OVERFLOW"`,
		},
		{
			name:       "missing service",
			body:       `{"userId":"6f1c2a34-8b7d-4e0f-9a21-3c5d7e9f1b20","delta":1}`,
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"code":"VALIDATION_ERROR"`,
		},
		{
			name: "unknown service",
			body: `{"userId":"6f1c2a34-8b7d-4e0f-9a21-3c5d7e9f1b20","serviceId":99,"delta":1}`,
			setupMock: func(m *MockService) {
				m.On("Record", mock.Anything, testUser, 99, "", 1).Return(nil, apperr.ErrServiceNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `"code":"SERVICE_NOT_FOUND"`,
		},
		{
			name:       "broken json",
			body:       `{"userId":`,
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"code":"INVALID_BODY"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/usage", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
