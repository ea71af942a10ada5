// Package subscription реализует журнал подписок пользователей на тарифы.
// У пользователя не может быть больше одной активной подписки: создание или
// перевод подписки в active отменяет остальные активные подписки в той же транзакции.
package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
	"github.com/magabrotheeeer/luxera-dashboard/internal/storage/repository"
)

// Repository определяет методы для работы с подписками в хранилище.
type Repository interface {
	// CreateSubscription добавляет подписку, отменяя другие активные при status = active.
	CreateSubscription(ctx context.Context, sub models.Subscription) (*models.Subscription, error)
	// UpdateSubscription частично обновляет подписку.
	UpdateSubscription(ctx context.Context, id int, upd models.SubscriptionUpdate, now time.Time) (*models.Subscription, error)
	GetSubscription(ctx context.Context, id int) (*models.Subscription, error)
	RemoveSubscription(ctx context.Context, id int) error
	ListSubscriptions(ctx context.Context, f models.SubscriptionFilter) ([]models.Subscription, error)
	// GetActiveSubscription возвращает активную подписку с самым поздним started_at.
	GetActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error)
}

// CreateInput параметры новой подписки.
type CreateInput struct {
	UserID    string
	PlanID    int
	Status    models.SubscriptionStatus
	StartedAt time.Time
	EndsAt    *time.Time
}

// Service реализует бизнес-логику журнала подписок.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create создает подписку.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Subscription, error) {
	const op = "services.subscription.Create"

	if in.UserID == "" {
		return nil, apperr.ErrInvalidID
	}
	if in.PlanID <= 0 {
		return nil, apperr.ErrInvalidPlanID
	}
	if !in.Status.Valid() {
		return nil, apperr.ErrInvalidStatus
	}
	if in.StartedAt.IsZero() {
		return nil, apperr.ErrMissingStartedAt
	}

	sub, err := s.repo.CreateSubscription(ctx, models.Subscription{
		UserID:    in.UserID,
		PlanID:    in.PlanID,
		Status:    in.Status,
		StartedAt: in.StartedAt.UTC(),
		EndsAt:    in.EndsAt,
		CreatedAt: s.now(),
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, s.mapError(op, err)
	}

	s.log.Info("created subscription",
		sl.Op(op), slog.Int("id", sub.ID), slog.String("user_id", sub.UserID), slog.String("status", string(sub.Status)))
	return sub, nil
}

// Update частично обновляет подписку. Нужно передать хотя бы одно поле.
func (s *Service) Update(ctx context.Context, id int, upd models.SubscriptionUpdate) (*models.Subscription, error) {
	const op = "services.subscription.Update"

	if id <= 0 {
		return nil, apperr.ErrInvalidID
	}
	if upd.Empty() {
		return nil, apperr.ErrNoUpdates
	}
	if upd.PlanID != nil && *upd.PlanID <= 0 {
		return nil, apperr.ErrInvalidPlanID
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, apperr.ErrInvalidStatus
	}

	sub, err := s.repo.UpdateSubscription(ctx, id, upd, s.now())
	if err != nil {
		return nil, s.mapError(op, err)
	}
	s.log.Info("updated subscription", sl.Op(op), slog.Int("id", id))
	return sub, nil
}

// Get возвращает подписку по id.
func (s *Service) Get(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "services.subscription.Get"
	if id <= 0 {
		return nil, apperr.ErrInvalidID
	}
	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, s.mapError(op, err)
	}
	return sub, nil
}

// Remove удаляет подписку по id.
func (s *Service) Remove(ctx context.Context, id int) error {
	const op = "services.subscription.Remove"
	if id <= 0 {
		return apperr.ErrInvalidID
	}
	if err := s.repo.RemoveSubscription(ctx, id); err != nil {
		return s.mapError(op, err)
	}
	s.log.Info("removed subscription", sl.Op(op), slog.Int("id", id))
	return nil
}

// List возвращает подписки пользователя, при необходимости с фильтром по статусу.
func (s *Service) List(ctx context.Context, f models.SubscriptionFilter) ([]models.Subscription, error) {
	const op = "services.subscription.List"
	if f.UserID == "" {
		return nil, apperr.ErrInvalidID
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, apperr.ErrInvalidStatus
	}
	subs, err := s.repo.ListSubscriptions(ctx, f)
	if err != nil {
		return nil, s.mapError(op, err)
	}
	return subs, nil
}

// GetActive возвращает действующую подписку пользователя или nil.
func (s *Service) GetActive(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "services.subscription.GetActive"
	sub, err := s.repo.GetActiveSubscription(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.mapError(op, err)
	}
	return sub, nil
}

func (s *Service) mapError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.ErrSubscriptionNotFound
	case errors.Is(err, repository.ErrReference):
		return apperr.ErrPlanNotFound
	case errors.Is(err, repository.ErrActiveConflict):
		return apperr.ErrActiveConflict.Wrap(err)
	}
	s.log.Error("storage failure", sl.Op(op), sl.Err(err))
	return apperr.Storage(err)
}
