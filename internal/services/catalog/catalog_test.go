package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/catalog"
	"github.com/magabrotheeeer/luxera-dashboard/internal/storage/repository"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListServices(ctx context.Context, f models.ListFilter) ([]models.Service, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Service), args.Error(1)
}

func (m *RepoMock) ListAllServices(ctx context.Context) ([]models.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Service), args.Error(1)
}

func (m *RepoMock) GetService(ctx context.Context, id int) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *RepoMock) CreateService(ctx context.Context, svc models.Service) (*models.Service, error) {
	args := m.Called(ctx, svc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *RepoMock) UpdateService(ctx context.Context, id int, upd models.ServiceUpdate) (*models.Service, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *RepoMock) ListPlans(ctx context.Context, f models.ListFilter) ([]models.Plan, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Plan), args.Error(1)
}

func (m *RepoMock) GetPlan(ctx context.Context, id int) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *RepoMock) CreatePlan(ctx context.Context, p models.Plan) (*models.Plan, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *RepoMock) UpdatePlan(ctx context.Context, id int, upd models.PlanUpdate) (*models.Plan, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *RepoMock) SeedCatalog(ctx context.Context, services []models.Service, plans []models.Plan) (repository.SeedResult, error) {
	args := m.Called(ctx, services, plans)
	return args.Get(0).(repository.SeedResult), args.Error(1)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// seededRepo мок, у которого каталог уже заполнен.
func seededRepo() *RepoMock {
	r := new(RepoMock)
	r.On("SeedCatalog", mock.Anything, mock.Anything, mock.Anything).Return(repository.SeedResult{}, nil).Once()
	return r
}

func TestSeedBlueprint(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	services := catalog.SeedServices(now)
	plans := catalog.SeedPlans(now)

	require.Len(t, services, 6)
	require.Len(t, plans, 4)
	assert.Equal(t, "Free", plans[0].Name)
	assert.Equal(t, 0, plans[0].Price)
	assert.Equal(t, []string{"Free", "Starter", "Pro", "Enterprise"},
		[]string{plans[0].Name, plans[1].Name, plans[2].Name, plans[3].Name})

	names := map[string]bool{}
	for _, svc := range services {
		assert.Positive(t, svc.MonthlyLimit)
		assert.Equal(t, now, svc.CreatedAt)
		names[svc.Name] = true
	}
	assert.Len(t, names, 6)

	plans[0].Features[0] = "mutated"
	assert.NotEqual(t, "mutated", catalog.SeedPlans(now)[0].Features[0])
}

// countingSeeder считает реальные обращения к хранилищу.
type countingSeeder struct {
	RepoMock
	calls atomic.Int32
	fail  atomic.Bool
}

func (c *countingSeeder) SeedCatalog(_ context.Context, services []models.Service, plans []models.Plan) (repository.SeedResult, error) {
	c.calls.Add(1)
	time.Sleep(10 * time.Millisecond)
	if c.fail.Load() {
		return repository.SeedResult{}, errors.New("db down")
	}
	return repository.SeedResult{Services: len(services), Plans: len(plans)}, nil
}

func TestEnsureSeeded_Concurrent(t *testing.T) {
	repo := &countingSeeder{}
	svc := catalog.New(repo, discard)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.EnsureSeeded(context.Background()))
		}()
	}
	wg.Wait()
	require.NoError(t, svc.EnsureSeeded(context.Background()))

	assert.Equal(t, int32(1), repo.calls.Load())
}

func TestEnsureSeeded_RetriesAfterFailure(t *testing.T) {
	repo := &countingSeeder{}
	repo.fail.Store(true)
	svc := catalog.New(repo, discard)

	err := svc.EnsureSeeded(context.Background())
	assert.ErrorIs(t, err, apperr.ErrInternal)

	repo.fail.Store(false)
	require.NoError(t, svc.EnsureSeeded(context.Background()))
	require.NoError(t, svc.EnsureSeeded(context.Background()))
	assert.Equal(t, int32(2), repo.calls.Load())
}

func TestListServices_SeedsAndNormalizes(t *testing.T) {
	repo := seededRepo()
	repo.On("ListServices", mock.Anything, models.ListFilter{Category: "Workflow", Limit: models.MaxPageSize}).
		Return([]models.Service{{ID: 4}, {ID: 6}}, nil).Once()

	got, err := catalog.New(repo, discard).ListServices(context.Background(),
		models.ListFilter{Category: "Workflow", Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	repo.AssertExpectations(t)
}

func TestGetService_NotFound(t *testing.T) {
	repo := seededRepo()
	repo.On("GetService", mock.Anything, 42).Return(nil, repository.ErrNotFound).Once()

	_, err := catalog.New(repo, discard).GetService(context.Background(), 42)
	assert.ErrorIs(t, err, apperr.ErrServiceNotFound)

	_, err = catalog.New(repo, discard).GetService(context.Background(), 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidID)
}

func TestCreateService_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      models.Service
		wantErr error
	}{
		{"empty name", models.Service{Name: " ", Description: "d", Category: "c", MonthlyLimit: 1}, apperr.ErrInvalidName},
		{"empty description", models.Service{Name: "n", Category: "c", MonthlyLimit: 1}, apperr.ErrInvalidDescription},
		{"empty category", models.Service{Name: "n", Description: "d", MonthlyLimit: 1}, apperr.ErrInvalidCategory},
		{"zero limit", models.Service{Name: "n", Description: "d", Category: "c"}, apperr.ErrInvalidLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.New(new(RepoMock), discard).CreateService(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateService(t *testing.T) {
	repo := new(RepoMock)
	blank := "  "
	repo.On("CreateService", mock.Anything, mock.MatchedBy(func(s models.Service) bool {
		return s.Name == "Voice Bot" && s.Icon == nil && !s.CreatedAt.IsZero()
	})).Return(&models.Service{ID: 7, Name: "Voice Bot"}, nil).Once()
	repo.On("CreateService", mock.Anything, mock.Anything).Return(nil, repository.ErrDuplicate).Once()
	svc := catalog.New(repo, discard)

	in := models.Service{Name: " Voice Bot ", Description: "d", Category: "Communication", Icon: &blank, MonthlyLimit: 10}
	got, err := svc.CreateService(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)

	_, err = svc.CreateService(context.Background(), in)
	assert.ErrorIs(t, err, apperr.ErrDuplicateName)
}

func TestUpdateService(t *testing.T) {
	svc := catalog.New(new(RepoMock), discard)
	_, err := svc.UpdateService(context.Background(), 1, models.ServiceUpdate{})
	assert.ErrorIs(t, err, apperr.ErrNoUpdates)

	zero := 0
	_, err = svc.UpdateService(context.Background(), 1, models.ServiceUpdate{MonthlyLimit: &zero})
	assert.ErrorIs(t, err, apperr.ErrInvalidLimit)

	repo := new(RepoMock)
	upd := models.ServiceUpdate{Icon: models.Null[string]()}
	repo.On("UpdateService", mock.Anything, 3, upd).Return(nil, repository.ErrNotFound).Once()
	_, err = catalog.New(repo, discard).UpdateService(context.Background(), 3, upd)
	assert.ErrorIs(t, err, apperr.ErrServiceNotFound)
}

func TestCreatePlan(t *testing.T) {
	svc := catalog.New(new(RepoMock), discard)

	_, err := svc.CreatePlan(context.Background(), models.Plan{Name: "Team", Price: -1, Features: []string{"a"}})
	assert.ErrorIs(t, err, apperr.ErrInvalidPrice)
	_, err = svc.CreatePlan(context.Background(), models.Plan{Name: "Team", Features: nil})
	assert.ErrorIs(t, err, apperr.ErrInvalidFeatures)
	_, err = svc.CreatePlan(context.Background(), models.Plan{Name: "Team", Features: []string{"ok", " "}})
	assert.ErrorIs(t, err, apperr.ErrInvalidFeatures)

	repo := new(RepoMock)
	repo.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
		return p.Name == "Team" && assert.ObjectsAreEqual([]string{"a", "b"}, p.Features)
	})).Return(&models.Plan{ID: 5, Name: "Team"}, nil).Once()
	got, err := catalog.New(repo, discard).CreatePlan(context.Background(),
		models.Plan{Name: "Team", Price: 49, Features: []string{" a", "b "}})
	require.NoError(t, err)
	assert.Equal(t, 5, got.ID)
}

func TestUpdatePlan(t *testing.T) {
	_, err := catalog.New(new(RepoMock), discard).UpdatePlan(context.Background(), 1, models.PlanUpdate{})
	assert.Equal(t, "NO_UPDATE_FIELDS", apperr.From(err).Code)

	repo := new(RepoMock)
	price := 39
	repo.On("UpdatePlan", mock.Anything, 2, models.PlanUpdate{Price: &price}).
		Return(&models.Plan{ID: 2, Price: 39}, nil).Once()
	got, err := catalog.New(repo, discard).UpdatePlan(context.Background(), 2, models.PlanUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 39, got.Price)
}

func TestGetPlan_SeedFailure(t *testing.T) {
	repo := new(RepoMock)
	repo.On("SeedCatalog", mock.Anything, mock.Anything, mock.Anything).
		Return(repository.SeedResult{}, errors.New("db down")).Once()

	_, err := catalog.New(repo, discard).GetPlan(context.Background(), 1)
	assert.ErrorIs(t, err, apperr.ErrInternal)
	repo.AssertNotCalled(t, "GetPlan", mock.Anything, mock.Anything)
}
