// Package auth реализует сессионную аутентификацию: регистрацию, вход,
// проверку и завершение серверных сессий с непрозрачным токеном.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/luxera-dashboard/internal/config"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/metrics"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/password"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/token"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
	"github.com/magabrotheeeer/luxera-dashboard/internal/storage/repository"
)

// MinPasswordLength минимальная длина пароля.
const MinPasswordLength = 8

const cacheKeyPrefix = "session:"

// Repository описывает контракт хранилища пользователей и сессий.
type Repository interface {
	// CreateUserWithSubscription сохраняет пользователя вместе с подпиской по умолчанию.
	CreateUserWithSubscription(ctx context.Context, user models.User, sub models.Subscription) (*models.User, error)
	// GetUserByEmail возвращает пользователя по почте.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateSession(ctx context.Context, session models.Session) error
	// GetSessionByToken возвращает сессию вместе с владельцем, в том числе истёкшую.
	GetSessionByToken(ctx context.Context, token string) (*models.SessionWithUser, error)
	DeleteSession(ctx context.Context, id string) (int, error)
	DeleteSessionByToken(ctx context.Context, token string) (int, error)
}

// Cache описывает методы для кэширования проверенных сессий.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type cachedSession struct {
	SessionID string             `json:"sessionId"`
	ExpiresAt time.Time          `json:"expiresAt"`
	User      *models.PublicUser `json:"user"`
}

// dummyHash сравнивается с паролем при неизвестной почте, чтобы время ответа
// не выдавало существование аккаунта.
var dummyHash = sync.OnceValue(func() string {
	h, _ := password.GetHash("luxera-dummy-password")
	return h
})

// Service управляет пользователями и сессиями.
type Service struct {
	repo     Repository
	cache    Cache
	log      *slog.Logger
	ttl      time.Duration
	cacheTTL time.Duration
	now      func() time.Time
}

// New создаёт сервис. cache может быть nil, тогда каждая проверка идёт в базу.
func New(repo Repository, cache Cache, log *slog.Logger, cfg config.Session) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		log:      log,
		ttl:      cfg.TTL,
		cacheTTL: cfg.CacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// TTL время жизни новой сессии.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// NormalizeEmail приводит почту к виду, в котором она хранится и сравнивается.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создаёт пользователя и активную подписку на тариф Free.
// Пароль хэшируется как есть, пробелы по краям учитываются только при проверке на пустоту.
func (s *Service) Register(ctx context.Context, name, email, rawPassword string) (*models.PublicUser, error) {
	const op = "services.auth.Register"
	log := s.log.With(sl.Op(op))

	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || strings.TrimSpace(rawPassword) == "" {
		return nil, apperr.ErrMissingFields
	}
	if len(rawPassword) < MinPasswordLength {
		return nil, apperr.ErrPasswordTooShort
	}
	if len(rawPassword) > password.MaxLength {
		return nil, apperr.ErrPasswordTooLong
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		return nil, apperr.Storage(err)
	}

	now := s.now()
	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	sub := models.Subscription{
		UserID:    user.ID,
		PlanID:    models.DefaultPlanID,
		Status:    models.StatusActive,
		StartedAt: now,
		CreatedAt: now,
	}

	created, err := s.repo.CreateUserWithSubscription(ctx, user, sub)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrDuplicateEmail
		}
		log.Error("failed to create user", sl.Err(err))
		return nil, apperr.Storage(err)
	}

	metrics.RegistrationsTotal.Inc()
	log.Info("user registered", slog.String("user_id", created.ID))
	return created.Public(), nil
}

// Login проверяет пароль и открывает новую сессию. Для неизвестной почты и неверного
// пароля возвращается одна и та же ошибка.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.LoginResult, error) {
	const op = "services.auth.Login"
	log := s.log.With(sl.Op(op))

	email = NormalizeEmail(email)
	if email == "" || strings.TrimSpace(rawPassword) == "" {
		return nil, apperr.ErrMissingCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = password.CompareHash(dummyHash(), rawPassword)
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, apperr.ErrInvalidCredentials
		}
		log.Error("failed to get user", sl.Err(err))
		return nil, apperr.Storage(err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, apperr.ErrInvalidCredentials
	}

	tok, err := token.New()
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		return nil, apperr.Storage(err)
	}
	now := s.now()
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     tok,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		log.Error("failed to create session", sl.Err(err))
		return nil, apperr.Storage(err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	log.Info("user logged in", slog.String("user_id", user.ID))
	return &models.LoginResult{
		User:      user.Public(),
		Token:     tok,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Validate возвращает владельца сессии или nil, если токен неизвестен или истёк.
// Истёкшая сессия удаляется при обнаружении.
func (s *Service) Validate(ctx context.Context, tok string) (*models.PublicUser, error) {
	const op = "services.auth.Validate"
	log := s.log.With(sl.Op(op))

	if tok == "" {
		metrics.SessionValidations.WithLabelValues("missing").Inc()
		return nil, nil
	}
	now := s.now()
	key := cacheKeyPrefix + token.Fingerprint(tok)

	if s.cache != nil {
		var cached cachedSession
		found, err := s.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			metrics.SessionCacheLookups.WithLabelValues("error").Inc()
			log.Warn("failed to read session cache", sl.Err(err))
		case found && now.Before(cached.ExpiresAt) && cached.User != nil:
			metrics.SessionCacheLookups.WithLabelValues("hit").Inc()
			metrics.SessionValidations.WithLabelValues("valid").Inc()
			return cached.User, nil
		default:
			metrics.SessionCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	rec, err := s.repo.GetSessionByToken(ctx, tok)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.SessionValidations.WithLabelValues("missing").Inc()
			return nil, nil
		}
		metrics.SessionValidations.WithLabelValues("error").Inc()
		log.Error("failed to get session", sl.Err(err))
		return nil, apperr.Storage(err)
	}

	if rec.Session.IsExpired(now) {
		if _, err := s.repo.DeleteSession(ctx, rec.Session.ID); err != nil {
			metrics.SessionValidations.WithLabelValues("error").Inc()
			log.Error("failed to delete expired session", sl.Err(err))
			return nil, apperr.Storage(err)
		}
		s.invalidate(ctx, log, key)
		metrics.SessionValidations.WithLabelValues("expired").Inc()
		log.Debug("expired session removed", slog.String("session_id", rec.Session.ID))
		return nil, nil
	}

	user := rec.User.Public()
	if s.cache != nil {
		ttl := min(s.cacheTTL, rec.Session.ExpiresAt.Sub(now))
		entry := cachedSession{SessionID: rec.Session.ID, ExpiresAt: rec.Session.ExpiresAt, User: user}
		if err := s.cache.Set(ctx, key, entry, ttl); err != nil {
			log.Warn("failed to cache session", sl.Err(err))
		}
	}
	metrics.SessionValidations.WithLabelValues("valid").Inc()
	return user, nil
}

// Logout удаляет сессию. Повторный вызов с тем же токеном не является ошибкой.
func (s *Service) Logout(ctx context.Context, tok string) error {
	const op = "services.auth.Logout"
	log := s.log.With(sl.Op(op))

	if tok == "" {
		return nil
	}
	if _, err := s.repo.DeleteSessionByToken(ctx, tok); err != nil {
		log.Error("failed to delete session", sl.Err(err))
		return apperr.Storage(err)
	}
	s.invalidate(ctx, log, cacheKeyPrefix+token.Fingerprint(tok))
	return nil
}

func (s *Service) invalidate(ctx context.Context, log *slog.Logger, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, key); err != nil {
		log.Warn("failed to invalidate session cache", sl.Err(err))
	}
}
