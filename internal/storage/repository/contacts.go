package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// CreateContact сохраняет заявку с формы обратной связи и возвращает её id.
func (s *Storage) CreateContact(ctx context.Context, c models.Contact) (int, error) {
	const op = "storage.CreateContact"

	var score sql.NullFloat64
	if c.RecaptchaScore != nil {
		score = sql.NullFloat64{Float64: *c.RecaptchaScore, Valid: true}
	}
	var company sql.NullString
	if c.Company != "" {
		company = sql.NullString{String: c.Company, Valid: true}
	}

	var id int
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO contacts (name, email, company, message, ip, user_agent, recaptcha_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		c.Name, c.Email, company, c.Message, c.IP, c.UserAgent, score, c.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
