package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

const userColumns = `id, name, email, email_verified, image, password_hash, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	var emailVerified sql.NullTime
	var image sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &emailVerified, &image,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if emailVerified.Valid {
		u.EmailVerified = &emailVerified.Time
	}
	u.Image = stringPtr(image)
	return &u, nil
}

// CreateUserWithSubscription сохраняет нового пользователя вместе с подпиской по умолчанию
// в одной транзакции. Занятая почта возвращает ErrDuplicate.
func (s *Storage) CreateUserWithSubscription(ctx context.Context, user models.User, sub models.Subscription) (*models.User, error) {
	const op = "storage.CreateUserWithSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var created *models.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO users (id, name, email, image, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING `+userColumns,
			user.ID, user.Name, user.Email, nullString(user.Image), user.PasswordHash, user.CreatedAt)
		u, err := scanUser(row)
		if err != nil {
			return err
		}
		created = u

		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_subscriptions (user_id, plan_id, status, started_at, ends_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, NULL, $4, $4)`,
			u.ID, sub.PlanID, sub.Status, sub.StartedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return created, nil
}

// GetUserByEmail возвращает пользователя по почте без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = $1`, strings.ToLower(email))
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return u, nil
}

// GetUser возвращает пользователя по его ID.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return u, nil
}

// UpdateUserProfile частично обновляет имя и аватар пользователя.
func (s *Storage) UpdateUserProfile(ctx context.Context, id string, upd models.ProfileUpdate, now time.Time) (*models.User, error) {
	const op = "storage.UpdateUserProfile"

	sets := []string{"updated_at = $1"}
	args := []any{now}
	if upd.Name != nil {
		args = append(args, *upd.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if upd.Image.Set {
		args = append(args, nullString(upd.Image.Value))
		sets = append(sets, fmt.Sprintf("image = $%d", len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return u, nil
}
