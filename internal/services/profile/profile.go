// Package profile управляет профилем пользователя.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
	"github.com/magabrotheeeer/luxera-dashboard/internal/storage/repository"
)

// Repository хранилище пользователей.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id string, upd models.ProfileUpdate, now time.Time) (*models.User, error)
}

// Service профиль пользователя.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New создаёт сервис профиля.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Get возвращает публичный профиль пользователя.
func (s *Service) Get(ctx context.Context, id string) (*models.PublicUser, error) {
	const op = "services.profile.Get"
	if strings.TrimSpace(id) == "" {
		return nil, apperr.ErrInvalidID
	}
	u, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user", sl.Op(op), sl.Err(err))
		return nil, apperr.Storage(err)
	}
	return u.Public(), nil
}

// Update меняет имя и аватар. Аватар можно удалить, передав null.
func (s *Service) Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.PublicUser, error) {
	const op = "services.profile.Update"
	if strings.TrimSpace(id) == "" {
		return nil, apperr.ErrInvalidID
	}
	if upd.Name == nil && !upd.Image.Set {
		return nil, apperr.ErrNoUpdateFields
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperr.ErrInvalidName
		}
		upd.Name = &name
	}
	if upd.Image.Value != nil {
		img := strings.TrimSpace(*upd.Image.Value)
		upd.Image.Value = &img
	}

	u, err := s.repo.UpdateUserProfile(ctx, id, upd, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to update user", sl.Op(op), sl.Err(err))
		return nil, apperr.Storage(err)
	}
	s.log.Info("profile updated", sl.Op(op), slog.String("user_id", id))
	return u.Public(), nil
}
