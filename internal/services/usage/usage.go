// Package usage ведёт помесячный учёт использования сервисов и строит
// сводку использования относительно лимитов каталога.
package usage

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/metrics"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/month"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
	"github.com/magabrotheeeer/luxera-dashboard/internal/storage/repository"
)

// Repository хранилище счётчиков использования.
type Repository interface {
	// UpsertUsage атомарно увеличивает счётчик (user, service, month) на delta.
	UpsertUsage(ctx context.Context, userID string, serviceID int, month string, delta int, now time.Time) (*models.UsageLog, error)
	ListUsageByMonth(ctx context.Context, userID, month string) ([]models.UsageLog, error)
}

// Catalog источник справочников сервисов и тарифов.
type Catalog interface {
	AllServices(ctx context.Context) ([]models.Service, error)
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
}

// Subscriptions источник действующей подписки пользователя.
type Subscriptions interface {
	GetActive(ctx context.Context, userID string) (*models.Subscription, error)
}

// Service учёт использования.
type Service struct {
	repo    Repository
	catalog Catalog
	subs    Subscriptions
	log     *slog.Logger
	now     func() time.Time
}

// New создаёт сервис учёта использования.
func New(repo Repository, catalog Catalog, subs Subscriptions, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		subs:    subs,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// resolveMonth возвращает текущий месяц для пустого ключа и проверяет непустой.
func (s *Service) resolveMonth(key string) (string, error) {
	if key == "" {
		return month.Key(s.now()), nil
	}
	if err := month.Validate(key); err != nil {
		return "", apperr.ErrInvalidMonth
	}
	return key, nil
}

func validUserID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Record увеличивает счётчик использования сервиса за месяц на delta.
// Пустой month означает текущий месяц в UTC.
func (s *Service) Record(ctx context.Context, userID string, serviceID int, monthKey string, delta int) (*models.UsageLog, error) {
	const op = "services.usage.Record"

	if !validUserID(userID) || serviceID <= 0 {
		return nil, apperr.ErrInvalidID
	}
	// usage_count хранится в INTEGER.
	if delta < 0 || delta > math.MaxInt32 {
		return nil, apperr.ErrInvalidDelta
	}
	key, err := s.resolveMonth(monthKey)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.UpsertUsage(ctx, userID, serviceID, key, delta, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUnknownUser):
			return nil, apperr.ErrUserNotFound.Wrap(err)
		case errors.Is(err, repository.ErrUnknownService):
			return nil, apperr.ErrServiceNotFound.Wrap(err)
		case errors.Is(err, repository.ErrInvalidValue):
			return nil, apperr.ErrUsageOverflow.Wrap(err)
		}
		s.log.Error("failed to record usage", sl.Op(op), sl.Err(err),
			slog.String("user_id", userID), slog.Int("service_id", serviceID))
		return nil, apperr.Storage(err)
	}

	metrics.UsageRecorded.WithLabelValues(strconv.Itoa(serviceID)).Add(float64(delta))
	s.log.Debug("usage recorded", sl.Op(op),
		slog.String("user_id", userID), slog.Int("service_id", serviceID),
		slog.String("month", key), slog.Int("usage_count", entry.UsageCount))
	return entry, nil
}

// MonthlySummary возвращает использование каждого сервиса каталога за месяц.
func (s *Service) MonthlySummary(ctx context.Context, userID, monthKey string) ([]models.UsageSummary, error) {
	const op = "services.usage.MonthlySummary"

	if !validUserID(userID) {
		return nil, apperr.ErrInvalidID
	}
	key, err := s.resolveMonth(monthKey)
	if err != nil {
		return nil, err
	}

	services, err := s.catalog.AllServices(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := s.repo.ListUsageByMonth(ctx, userID, key)
	if err != nil {
		s.log.Error("failed to list usage", sl.Op(op), sl.Err(err))
		return nil, apperr.Storage(err)
	}
	return Summarize(services, logs), nil
}

// Overview возвращает действующий тариф пользователя и сводку использования.
func (s *Service) Overview(ctx context.Context, userID, monthKey string) (*models.UsageOverview, error) {
	key, err := s.resolveMonth(monthKey)
	if err != nil {
		return nil, err
	}
	summary, err := s.MonthlySummary(ctx, userID, key)
	if err != nil {
		return nil, err
	}

	res := &models.UsageOverview{Month: key, Services: summary}
	sub, err := s.subs.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return res, nil
	}
	res.Subscription = sub

	plan, err := s.catalog.GetPlan(ctx, sub.PlanID)
	switch {
	case errors.Is(err, apperr.ErrPlanNotFound):
		s.log.Warn("active subscription references missing plan",
			slog.Int("subscription_id", sub.ID), slog.Int("plan_id", sub.PlanID))
	case err != nil:
		return nil, err
	default:
		res.Plan = plan
	}
	return res, nil
}

// Summarize строит сводку по всем сервисам каталога в его порядке. Сервисы без
// записей получают нулевое использование. Использование сверх лимита не обрезается,
// остаток при этом не бывает отрицательным.
func Summarize(services []models.Service, logs []models.UsageLog) []models.UsageSummary {
	counts := make(map[int]int, len(logs))
	for _, l := range logs {
		counts[l.ServiceID] += l.UsageCount
	}

	out := make([]models.UsageSummary, 0, len(services))
	for _, svc := range services {
		used := counts[svc.ID]
		out = append(out, models.UsageSummary{
			ServiceID:      svc.ID,
			ServiceName:    svc.Name,
			Category:       svc.Category,
			MonthlyLimit:   svc.MonthlyLimit,
			UsageCount:     used,
			RemainingUsage: max(0, svc.MonthlyLimit-used),
			PercentageUsed: month.Percent(used, svc.MonthlyLimit),
		})
	}
	return out
}
