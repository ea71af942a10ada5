// Package contact принимает заявки с формы обратной связи: проверяет reCAPTCHA,
// очищает текст, сохраняет заявку и ставит её в очередь на пересылку.
package contact

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/metrics"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// ErrInvalidPayload заявка не прошла проверку полей.
var ErrInvalidPayload = apperr.Validation("INVALID_PAYLOAD", "Contact form payload is invalid.")

// Repository хранилище заявок.
type Repository interface {
	CreateContact(ctx context.Context, c models.Contact) (int, error)
}

// Verifier проверяет токен reCAPTCHA.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (*Verdict, error)
}

// Publisher ставит заявку в очередь на пересылку.
type Publisher interface {
	Publish(ctx context.Context, message any) error
}

// Input поля формы и сведения о клиенте.
type Input struct {
	Name           string `json:"name" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,email,max=254"`
	Company        string `json:"company" validate:"max=100"`
	Message        string `json:"message" validate:"required,max=5000"`
	RecaptchaToken string `json:"recaptchaToken" validate:"required,min=10"`
	IP             string `json:"-"`
	UserAgent      string `json:"-"`
}

// Service обработка заявок.
type Service struct {
	repo      Repository
	verifier  Verifier
	publisher Publisher
	threshold float64
	validate  *validator.Validate
	log       *slog.Logger
	now       func() time.Time
}

// New создаёт сервис. Заявки с оценкой ниже threshold отклоняются.
func New(repo Repository, verifier Verifier, publisher Publisher, threshold float64, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		verifier:  verifier,
		publisher: publisher,
		threshold: threshold,
		validate:  validator.New(),
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit проверяет и сохраняет заявку, затем публикует её для пересылки.
func (s *Service) Submit(ctx context.Context, in Input) (*models.Contact, error) {
	const op = "services.contact.Submit"
	log := s.log.With(sl.Op(op), slog.String("ip", in.IP))

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
			return nil, ErrInvalidPayload.Wrap(err)
		}
		return nil, apperr.Storage(err)
	}

	verdict, err := s.verifier.Verify(ctx, in.RecaptchaToken, in.IP)
	if err != nil {
		log.Warn("recaptcha verification unavailable", sl.Err(err))
		metrics.ContactSubmissions.WithLabelValues("captcha_failed").Inc()
		return nil, apperr.ErrCaptchaFailed.Wrap(err)
	}
	if !verdict.Success {
		log.Info("recaptcha rejected", slog.Any("error_codes", verdict.ErrorCodes))
		metrics.ContactSubmissions.WithLabelValues("captcha_failed").Inc()
		return nil, apperr.ErrCaptchaFailed
	}
	if verdict.Score != nil && *verdict.Score < s.threshold {
		log.Info("recaptcha score below threshold", slog.Float64("score", *verdict.Score))
		metrics.ContactSubmissions.WithLabelValues("captcha_low_score").Inc()
		return nil, apperr.ErrCaptchaLowScore
	}

	c := models.Contact{
		Name:           Sanitize(in.Name),
		Email:          Sanitize(in.Email),
		Company:        Sanitize(in.Company),
		Message:        Sanitize(in.Message),
		IP:             in.IP,
		UserAgent:      in.UserAgent,
		RecaptchaScore: verdict.Score,
		CreatedAt:      s.now(),
	}
	// Тело из одних тегов после очистки пустое.
	if c.Name == "" || c.Message == "" {
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidPayload
	}

	id, err := s.repo.CreateContact(ctx, c)
	if err != nil {
		log.Error("failed to store contact", sl.Err(err))
		metrics.ContactSubmissions.WithLabelValues("error").Inc()
		return nil, apperr.Storage(err)
	}
	c.ID = id

	if err := s.publisher.Publish(ctx, c); err != nil {
		log.Error("failed to enqueue contact", slog.Int("contact_id", id), sl.Err(err))
		metrics.ContactSubmissions.WithLabelValues("error").Inc()
		return nil, apperr.ErrUpstreamFailed.Wrap(err)
	}

	metrics.ContactSubmissions.WithLabelValues("accepted").Inc()
	log.Info("contact accepted", slog.Int("contact_id", id))
	return &c, nil
}
