package usage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/usage"
	"github.com/magabrotheeeer/luxera-dashboard/internal/storage/repository"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) UpsertUsage(ctx context.Context, userID string, serviceID int, month string, delta int, now time.Time) (*models.UsageLog, error) {
	args := m.Called(ctx, userID, serviceID, month, delta, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UsageLog), args.Error(1)
}

func (m *RepoMock) ListUsageByMonth(ctx context.Context, userID, month string) ([]models.UsageLog, error) {
	args := m.Called(ctx, userID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UsageLog), args.Error(1)
}

type fakeCatalog struct {
	services []models.Service
	plans    map[int]*models.Plan
	err      error
}

func (f *fakeCatalog) AllServices(context.Context) ([]models.Service, error) {
	return f.services, f.err
}

func (f *fakeCatalog) GetPlan(_ context.Context, id int) (*models.Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, apperr.ErrPlanNotFound
	}
	return p, nil
}

type fakeSubs struct {
	active *models.Subscription
}

func (f fakeSubs) GetActive(context.Context, string) (*models.Subscription, error) {
	return f.active, nil
}

const testUser = "6f1c2a34-8b7d-4e0f-9a21-3c5d7e9f1b20"

var (
	testNow = time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)
	discard = slog.New(slog.NewTextHandler(io.Discard, nil))

	catalogServices = []models.Service{
		{ID: 1, Name: "WhatsApp Automation", Category: "Communication", MonthlyLimit: 1000},
		{ID: 2, Name: "Email Automation", Category: "Communication", MonthlyLimit: 5000},
		{ID: 3, Name: "Data Analytics", Category: "Analytics", MonthlyLimit: 100},
		{ID: 4, Name: "Legacy", Category: "Workflow", MonthlyLimit: 0},
	}
)

func newService(repo usage.Repository, cat usage.Catalog, subs usage.Subscriptions) *usage.Service {
	return usage.New(repo, cat, subs, discard).WithClock(func() time.Time { return testNow })
}

func TestSummarize(t *testing.T) {
	t.Run("zero usage covers every service", func(t *testing.T) {
		got := usage.Summarize(catalogServices, nil)
		require.Len(t, got, len(catalogServices))
		for i, s := range got {
			assert.Equal(t, catalogServices[i].ID, s.ServiceID)
			assert.Zero(t, s.UsageCount)
			assert.Zero(t, s.PercentageUsed)
			assert.Equal(t, catalogServices[i].MonthlyLimit, s.RemainingUsage)
		}
	})

	t.Run("limits and rounding", func(t *testing.T) {
		logs := []models.UsageLog{
			{ServiceID: 1, UsageCount: 250},
			{ServiceID: 2, UsageCount: 6000},
			{ServiceID: 3, UsageCount: 1},
			{ServiceID: 4, UsageCount: 9},
		}
		got := usage.Summarize(catalogServices, logs)
		require.Len(t, got, 4)

		assert.Equal(t, 750, got[0].RemainingUsage)
		assert.Equal(t, 25.0, got[0].PercentageUsed)

		assert.Equal(t, 6000, got[1].UsageCount)
		assert.Equal(t, 0, got[1].RemainingUsage)
		assert.Equal(t, 120.0, got[1].PercentageUsed)

		assert.Equal(t, 1.0, got[2].PercentageUsed)
		assert.Equal(t, 99, got[2].RemainingUsage)

		assert.Equal(t, 0.0, got[3].PercentageUsed)
		assert.Equal(t, 0, got[3].RemainingUsage)
	})

	t.Run("thirds round half up to two places", func(t *testing.T) {
		got := usage.Summarize([]models.Service{{ID: 9, MonthlyLimit: 3}}, []models.UsageLog{{ServiceID: 9, UsageCount: 2}})
		assert.Equal(t, 66.67, got[0].PercentageUsed)
	})

	t.Run("logs for unknown services are ignored", func(t *testing.T) {
		got := usage.Summarize(catalogServices[:1], []models.UsageLog{{ServiceID: 99, UsageCount: 5}})
		require.Len(t, got, 1)
		assert.Zero(t, got[0].UsageCount)
	})
}

func TestRecord(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		serviceID  int
		month      string
		delta      int
		setupMocks func(r *RepoMock)
		wantErr    error
		wantCount  int
	}{
		{
			name:      "default month",
			serviceID: 1,
			delta:     3,
			setupMocks: func(r *RepoMock) {
				r.On("UpsertUsage", mock.Anything, testUser, 1, "2025-03", 3, testNow).
					Return(&models.UsageLog{UsageCount: 7, Month: "2025-03"}, nil).Once()
			},
			wantCount: 7,
		},
		{
			name:      "explicit month",
			serviceID: 2,
			month:     "2024-12",
			delta:     0,
			setupMocks: func(r *RepoMock) {
				r.On("UpsertUsage", mock.Anything, testUser, 2, "2024-12", 0, testNow).
					Return(&models.UsageLog{UsageCount: 0}, nil).Once()
			},
		},
		{name: "negative delta", serviceID: 1, delta: -1, wantErr: apperr.ErrInvalidDelta},
		{name: "bad month", serviceID: 1, month: "2024-1", delta: 1, wantErr: apperr.ErrInvalidMonth},
		{name: "bad service id", serviceID: 0, delta: 1, wantErr: apperr.ErrInvalidID},
		{name: "malformed user id", userID: "not-a-uuid", serviceID: 1, delta: 1, wantErr: apperr.ErrInvalidID},
		{name: "delta above integer column", serviceID: 1, delta: math.MaxInt32 + 1, wantErr: apperr.ErrInvalidDelta},
		{
			name:      "unknown user",
			serviceID: 1,
			delta:     1,
			setupMocks: func(r *RepoMock) {
				r.On("UpsertUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, repository.ErrUnknownUser).Once()
			},
			wantErr: apperr.ErrUserNotFound,
		},
		{
			name:      "counter overflow",
			serviceID: 1,
			delta:     math.MaxInt32,
			setupMocks: func(r *RepoMock) {
				r.On("UpsertUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, repository.ErrInvalidValue).Once()
			},
			wantErr: apperr.ErrUsageOverflow,
		},
		{
			name:      "unknown service",
			serviceID: 404,
			delta:     1,
			setupMocks: func(r *RepoMock) {
				r.On("UpsertUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, repository.ErrUnknownService).Once()
			},
			wantErr: apperr.ErrServiceNotFound,
		},
		{
			name:      "storage failure propagates",
			serviceID: 1,
			delta:     1,
			setupMocks: func(r *RepoMock) {
				r.On("UpsertUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("db down")).Once()
			},
			wantErr: apperr.ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			if tt.setupMocks != nil {
				tt.setupMocks(repo)
			}
			userID := tt.userID
			if userID == "" {
				userID = testUser
			}
			got, err := newService(repo, &fakeCatalog{}, fakeSubs{}).
				Record(context.Background(), userID, tt.serviceID, tt.month, tt.delta)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, apperr.KindOf(tt.wantErr), apperr.KindOf(err))
				repo.AssertExpectations(t)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, got.UsageCount)
			repo.AssertExpectations(t)
		})
	}
}

func TestMonthlySummary(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListUsageByMonth", mock.Anything, testUser, "2025-03").
		Return([]models.UsageLog{{ServiceID: 1, UsageCount: 250}}, nil).Once()

	got, err := newService(repo, &fakeCatalog{services: catalogServices}, fakeSubs{}).
		MonthlySummary(context.Background(), testUser, "")
	require.NoError(t, err)
	require.Len(t, got, len(catalogServices))
	assert.Equal(t, 25.0, got[0].PercentageUsed)

	_, err = newService(repo, &fakeCatalog{}, fakeSubs{}).MonthlySummary(context.Background(), "not-a-uuid", "2025-03")
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = newService(repo, &fakeCatalog{}, fakeSubs{}).MonthlySummary(context.Background(), testUser, "March")
	assert.ErrorIs(t, err, apperr.ErrInvalidMonth)

	catErr := &fakeCatalog{err: apperr.Storage(errors.New("db down"))}
	_, err = newService(repo, catErr, fakeSubs{}).MonthlySummary(context.Background(), testUser, "2025-03")
	assert.ErrorIs(t, err, apperr.ErrInternal)
}

func TestOverview(t *testing.T) {
	free := &models.Plan{ID: 1, Name: "Free"}
	cat := &fakeCatalog{services: catalogServices, plans: map[int]*models.Plan{1: free}}

	t.Run("with active plan", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListUsageByMonth", mock.Anything, testUser, "2025-02").Return([]models.UsageLog{}, nil).Once()
		sub := &models.Subscription{ID: 3, PlanID: 1, Status: models.StatusActive}

		got, err := newService(repo, cat, fakeSubs{active: sub}).Overview(context.Background(), testUser, "2025-02")
		require.NoError(t, err)
		assert.Equal(t, "2025-02", got.Month)
		assert.Equal(t, free, got.Plan)
		assert.Equal(t, sub, got.Subscription)
		assert.Len(t, got.Services, len(catalogServices))
	})

	t.Run("without subscription", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListUsageByMonth", mock.Anything, testUser, "2025-03").Return([]models.UsageLog{}, nil).Once()

		got, err := newService(repo, cat, fakeSubs{}).Overview(context.Background(), testUser, "")
		require.NoError(t, err)
		assert.Equal(t, "2025-03", got.Month)
		assert.Nil(t, got.Plan)
		assert.Nil(t, got.Subscription)
	})
}
