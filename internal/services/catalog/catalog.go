// Package catalog управляет справочниками сервисов и тарифов и их
// начальным заполнением.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/metrics"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
	"github.com/magabrotheeeer/luxera-dashboard/internal/storage/repository"
)

// Repository описывает хранилище каталога.
type Repository interface {
	ListServices(ctx context.Context, f models.ListFilter) ([]models.Service, error)
	ListAllServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id int) (*models.Service, error)
	CreateService(ctx context.Context, svc models.Service) (*models.Service, error)
	UpdateService(ctx context.Context, id int, upd models.ServiceUpdate) (*models.Service, error)
	ListPlans(ctx context.Context, f models.ListFilter) ([]models.Plan, error)
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
	CreatePlan(ctx context.Context, p models.Plan) (*models.Plan, error)
	UpdatePlan(ctx context.Context, id int, upd models.PlanUpdate) (*models.Plan, error)
	// SeedCatalog заполняет пустые таблицы сервисов и тарифов.
	SeedCatalog(ctx context.Context, services []models.Service, plans []models.Plan) (repository.SeedResult, error)
}

// Service каталог сервисов и тарифов.
type Service struct {
	repo   Repository
	log    *slog.Logger
	now    func() time.Time
	seeded atomic.Bool
	group  singleflight.Group
}

// New создаёт каталог.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSeeded заполняет каталог базовыми данными, если он пуст. Успешный результат
// запоминается на время жизни процесса, одновременные вызовы выполняют одну
// проверку. После ошибки следующий вызов повторяет попытку.
func (s *Service) EnsureSeeded(ctx context.Context) error {
	const op = "services.catalog.EnsureSeeded"
	if s.seeded.Load() {
		return nil
	}

	_, err, _ := s.group.Do("seed", func() (any, error) {
		if s.seeded.Load() {
			return nil, nil
		}
		now := s.now()
		res, err := s.repo.SeedCatalog(context.WithoutCancel(ctx), SeedServices(now), SeedPlans(now))
		if err != nil {
			return nil, err
		}
		s.seeded.Store(true)
		metrics.CatalogSeeded.WithLabelValues("services").Add(float64(res.Services))
		metrics.CatalogSeeded.WithLabelValues("subscription_plans").Add(float64(res.Plans))
		if res.Services > 0 || res.Plans > 0 {
			s.log.Info("catalog seeded", sl.Op(op),
				slog.Int("services", res.Services), slog.Int("plans", res.Plans))
		}
		return nil, nil
	})
	if err != nil {
		s.log.Error("failed to seed catalog", sl.Op(op), sl.Err(err))
		return apperr.Storage(err)
	}
	return nil
}

// ListServices возвращает сервисы каталога.
func (s *Service) ListServices(ctx context.Context, f models.ListFilter) ([]models.Service, error) {
	const op = "services.catalog.ListServices"
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	res, err := s.repo.ListServices(ctx, f.Normalize())
	if err != nil {
		return nil, s.storageErr(op, err)
	}
	return res, nil
}

// AllServices возвращает весь каталог сервисов по возрастанию id.
func (s *Service) AllServices(ctx context.Context) ([]models.Service, error) {
	const op = "services.catalog.AllServices"
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	res, err := s.repo.ListAllServices(ctx)
	if err != nil {
		return nil, s.storageErr(op, err)
	}
	return res, nil
}

// GetService возвращает сервис по id.
func (s *Service) GetService(ctx context.Context, id int) (*models.Service, error) {
	const op = "services.catalog.GetService"
	if id <= 0 {
		return nil, apperr.ErrInvalidID
	}
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	svc, err := s.repo.GetService(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.ErrServiceNotFound
	}
	if err != nil {
		return nil, s.storageErr(op, err)
	}
	return svc, nil
}

// CreateService добавляет сервис в каталог.
func (s *Service) CreateService(ctx context.Context, svc models.Service) (*models.Service, error) {
	const op = "services.catalog.CreateService"

	svc.Name = strings.TrimSpace(svc.Name)
	svc.Description = strings.TrimSpace(svc.Description)
	svc.Category = strings.TrimSpace(svc.Category)
	switch {
	case svc.Name == "":
		return nil, apperr.ErrInvalidName
	case svc.Description == "":
		return nil, apperr.ErrInvalidDescription
	case svc.Category == "":
		return nil, apperr.ErrInvalidCategory
	case svc.MonthlyLimit <= 0:
		return nil, apperr.ErrInvalidLimit
	}
	svc.Icon = trimOptional(svc.Icon)
	svc.CreatedAt = s.now()

	created, err := s.repo.CreateService(ctx, svc)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.ErrDuplicateName
	}
	if err != nil {
		return nil, s.storageErr(op, err)
	}
	s.log.Info("service created", sl.Op(op), slog.Int("id", created.ID))
	return created, nil
}

// UpdateService частично обновляет сервис.
func (s *Service) UpdateService(ctx context.Context, id int, upd models.ServiceUpdate) (*models.Service, error) {
	const op = "services.catalog.UpdateService"
	if id <= 0 {
		return nil, apperr.ErrInvalidID
	}
	if upd.Name == nil && upd.Description == nil && upd.Category == nil && !upd.Icon.Set && upd.MonthlyLimit == nil {
		return nil, apperr.ErrNoUpdates
	}
	if err := trimRequired(upd.Name, apperr.ErrInvalidName); err != nil {
		return nil, err
	}
	if err := trimRequired(upd.Description, apperr.ErrInvalidDescription); err != nil {
		return nil, err
	}
	if err := trimRequired(upd.Category, apperr.ErrInvalidCategory); err != nil {
		return nil, err
	}
	if upd.MonthlyLimit != nil && *upd.MonthlyLimit <= 0 {
		return nil, apperr.ErrInvalidLimit
	}
	if upd.Icon.Set {
		upd.Icon.Value = trimOptional(upd.Icon.Value)
	}

	svc, err := s.repo.UpdateService(ctx, id, upd)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.ErrServiceNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperr.ErrDuplicateName
	case err != nil:
		return nil, s.storageErr(op, err)
	}
	return svc, nil
}

// ListPlans возвращает тарифы.
func (s *Service) ListPlans(ctx context.Context, f models.ListFilter) ([]models.Plan, error) {
	const op = "services.catalog.ListPlans"
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	res, err := s.repo.ListPlans(ctx, f.Normalize())
	if err != nil {
		return nil, s.storageErr(op, err)
	}
	return res, nil
}

// GetPlan возвращает тариф по id.
func (s *Service) GetPlan(ctx context.Context, id int) (*models.Plan, error) {
	const op = "services.catalog.GetPlan"
	if id <= 0 {
		return nil, apperr.ErrInvalidID
	}
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	p, err := s.repo.GetPlan(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.ErrPlanNotFound
	}
	if err != nil {
		return nil, s.storageErr(op, err)
	}
	return p, nil
}

// CreatePlan добавляет тариф.
func (s *Service) CreatePlan(ctx context.Context, p models.Plan) (*models.Plan, error) {
	const op = "services.catalog.CreatePlan"

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, apperr.ErrInvalidName
	}
	if p.Price < 0 {
		return nil, apperr.ErrInvalidPrice
	}
	features, err := normalizeFeatures(p.Features)
	if err != nil {
		return nil, err
	}
	p.Features = features
	p.CreatedAt = s.now()

	created, err := s.repo.CreatePlan(ctx, p)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.ErrDuplicateName
	}
	if err != nil {
		return nil, s.storageErr(op, err)
	}
	s.log.Info("plan created", sl.Op(op), slog.Int("id", created.ID))
	return created, nil
}

// UpdatePlan частично обновляет тариф.
func (s *Service) UpdatePlan(ctx context.Context, id int, upd models.PlanUpdate) (*models.Plan, error) {
	const op = "services.catalog.UpdatePlan"
	if id <= 0 {
		return nil, apperr.ErrInvalidID
	}
	if upd.Name == nil && upd.Price == nil && upd.Features == nil {
		return nil, errNoPlanFields
	}
	if err := trimRequired(upd.Name, apperr.ErrInvalidName); err != nil {
		return nil, err
	}
	if upd.Price != nil && *upd.Price < 0 {
		return nil, apperr.ErrInvalidPrice
	}
	if upd.Features != nil {
		features, err := normalizeFeatures(upd.Features)
		if err != nil {
			return nil, err
		}
		upd.Features = features
	}

	p, err := s.repo.UpdatePlan(ctx, id, upd)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.ErrPlanNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperr.ErrDuplicateName
	case err != nil:
		return nil, s.storageErr(op, err)
	}
	return p, nil
}

var errNoPlanFields = apperr.Validation("NO_UPDATE_FIELDS", "At least one field (name, price, features) must be provided.")

func (s *Service) storageErr(op string, err error) error {
	s.log.Error("storage failure", sl.Op(op), sl.Err(err))
	return apperr.Storage(err)
}

func normalizeFeatures(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, apperr.ErrInvalidFeatures
	}
	out := make([]string, 0, len(in))
	for _, f := range in {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, apperr.ErrInvalidFeatures
		}
		out = append(out, f)
	}
	return out, nil
}

func trimRequired(p *string, invalid error) error {
	if p == nil {
		return nil
	}
	*p = strings.TrimSpace(*p)
	if *p == "" {
		return invalid
	}
	return nil
}

// trimOptional обрезает пробелы, пустая строка становится nil.
func trimOptional(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
