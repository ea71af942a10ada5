package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

const subscriptionColumns = `id, user_id, plan_id, status, started_at, ends_at, created_at, updated_at`

func scanSubscription(row scanner) (*models.Subscription, error) {
	var sub models.Subscription
	var endsAt sql.NullTime
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.StartedAt,
		&endsAt, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	if endsAt.Valid {
		sub.EndsAt = &endsAt.Time
	}
	return &sub, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// lockUser блокирует строку пользователя до конца транзакции, сериализуя
// изменения его подписок.
func lockUser(ctx context.Context, tx *sql.Tx, userID string) error {
	var id string
	return tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
}

// deactivateOthers переводит в cancelled все активные подписки пользователя, кроме keepID.
func deactivateOthers(ctx context.Context, tx *sql.Tx, userID string, keepID int, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE user_subscriptions
		SET status = 'cancelled', updated_at = $1
		WHERE user_id = $2 AND status = 'active' AND id <> $3`,
		now, userID, keepID)
	return err
}

// CreateSubscription сохраняет подписку. Если новая подписка активна, прочие активные
// подписки пользователя в той же транзакции отменяются.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var created *models.Subscription
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := lockUser(ctx, tx, sub.UserID); err != nil {
			return err
		}
		if sub.Status == models.StatusActive {
			if err := deactivateOthers(ctx, tx, sub.UserID, 0, sub.CreatedAt); err != nil {
				return err
			}
		}
		var err error
		created, err = scanSubscription(tx.QueryRowContext(ctx, `
			INSERT INTO user_subscriptions (user_id, plan_id, status, started_at, ends_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING `+subscriptionColumns,
			sub.UserID, sub.PlanID, sub.Status, sub.StartedAt, nullTime(sub.EndsAt), sub.CreatedAt))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return created, nil
}

// UpdateSubscription частично обновляет подписку. Перевод в active отменяет
// остальные активные подписки того же пользователя.
func (s *Storage) UpdateSubscription(ctx context.Context, id int, upd models.SubscriptionUpdate, now time.Time) (*models.Subscription, error) {
	const op = "storage.UpdateSubscription"

	var updated *models.Subscription
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var userID string
		if err := tx.QueryRowContext(ctx,
			`SELECT user_id FROM user_subscriptions WHERE id = $1`, id).Scan(&userID); err != nil {
			return err
		}
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}
		if upd.Status != nil && *upd.Status == models.StatusActive {
			if err := deactivateOthers(ctx, tx, userID, id, now); err != nil {
				return err
			}
		}

		sets := []string{"updated_at = $1"}
		args := []any{now}
		if upd.PlanID != nil {
			args = append(args, *upd.PlanID)
			sets = append(sets, fmt.Sprintf("plan_id = $%d", len(args)))
		}
		if upd.Status != nil {
			args = append(args, *upd.Status)
			sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
		}
		if upd.EndsAt.Set {
			args = append(args, nullTime(upd.EndsAt.Value))
			sets = append(sets, fmt.Sprintf("ends_at = $%d", len(args)))
		}
		args = append(args, id)

		query := fmt.Sprintf(`UPDATE user_subscriptions SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), subscriptionColumns)
		var err error
		updated, err = scanSubscription(tx.QueryRowContext(ctx, query, args...))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return updated, nil
}

// GetSubscription возвращает подписку по id.
func (s *Storage) GetSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "storage.GetSubscription"

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM user_subscriptions WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return sub, nil
}

// RemoveSubscription удаляет подписку по id.
func (s *Storage) RemoveSubscription(ctx context.Context, id int) error {
	const op = "storage.RemoveSubscription"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM user_subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListSubscriptions возвращает подписки пользователя, новые первыми.
func (s *Storage) ListSubscriptions(ctx context.Context, f models.SubscriptionFilter) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptions"

	norm := models.ListFilter{Limit: f.Limit, Offset: f.Offset}.Normalize()
	args := []any{f.UserID}
	where := "WHERE user_id = $1"
	if f.Status != nil {
		args = append(args, *f.Status)
		where += " AND status = $2"
	}
	args = append(args, norm.Limit, norm.Offset)
	query := fmt.Sprintf(`SELECT %s FROM user_subscriptions %s
		ORDER BY started_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		subscriptionColumns, where, len(args)-1, len(args))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetActiveSubscription возвращает активную подписку с самым поздним started_at.
func (s *Storage) GetActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.GetActiveSubscription"

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM user_subscriptions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY started_at DESC, id DESC
		LIMIT 1`, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return sub, nil
}
