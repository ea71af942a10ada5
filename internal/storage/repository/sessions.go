package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// CreateSession сохраняет новую сессию.
func (s *Storage) CreateSession(ctx context.Context, session models.Session) error {
	const op = "storage.CreateSession"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.UserID, session.Token, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}
	return nil
}

// GetSessionByToken возвращает сессию вместе с владельцем. Истёкшие сессии тоже
// возвращаются, решение об их удалении принимает сервисный слой.
func (s *Storage) GetSessionByToken(ctx context.Context, token string) (*models.SessionWithUser, error) {
	const op = "storage.GetSessionByToken"

	row := s.DB.QueryRowContext(ctx, `
		SELECT s.id, s.user_id, s.token, s.created_at, s.expires_at,
		       u.id, u.name, u.email, u.email_verified, u.image, u.password_hash, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1`, token)

	var res models.SessionWithUser
	var emailVerified sql.NullTime
	var image sql.NullString
	err := row.Scan(&res.Session.ID, &res.Session.UserID, &res.Session.Token,
		&res.Session.CreatedAt, &res.Session.ExpiresAt,
		&res.User.ID, &res.User.Name, &res.User.Email, &emailVerified, &image,
		&res.User.PasswordHash, &res.User.CreatedAt, &res.User.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	if emailVerified.Valid {
		res.User.EmailVerified = &emailVerified.Time
	}
	res.User.Image = stringPtr(image)
	return &res, nil
}

// DeleteSession удаляет сессию по ID и возвращает количество удалённых строк.
func (s *Storage) DeleteSession(ctx context.Context, id string) (int, error) {
	const op = "storage.DeleteSession"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}

// DeleteSessionByToken удаляет сессию по токену. Отсутствие сессии не ошибка.
func (s *Storage) DeleteSessionByToken(ctx context.Context, token string) (int, error) {
	const op = "storage.DeleteSessionByToken"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}
