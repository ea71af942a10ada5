package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

const usageColumns = `id, user_id, service_id, usage_count, month, created_at, updated_at`

func scanUsage(row scanner) (*models.UsageLog, error) {
	var u models.UsageLog
	if err := row.Scan(&u.ID, &u.UserID, &u.ServiceID, &u.UsageCount, &u.Month,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertUsage атомарно увеличивает счётчик (user, service, month) на delta,
// создавая строку при её отсутствии.
func (s *Storage) UpsertUsage(ctx context.Context, userID string, serviceID int, month string, delta int, now time.Time) (*models.UsageLog, error) {
	const op = "storage.UpsertUsage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u, err := scanUsage(s.DB.QueryRowContext(ctx, `
		INSERT INTO usage_logs (user_id, service_id, usage_count, month, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT ON CONSTRAINT usage_logs_user_service_month_unique
		DO UPDATE SET usage_count = usage_logs.usage_count + EXCLUDED.usage_count,
		              updated_at = EXCLUDED.updated_at
		RETURNING `+usageColumns,
		userID, serviceID, delta, month, now))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return u, nil
}

// ListUsageByMonth возвращает все счётчики пользователя за месяц.
func (s *Storage) ListUsageByMonth(ctx context.Context, userID, month string) ([]models.UsageLog, error) {
	const op = "storage.ListUsageByMonth"

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+usageColumns+`
		FROM usage_logs
		WHERE user_id = $1 AND month = $2
		ORDER BY service_id`, userID, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.UsageLog, 0)
	for rows.Next() {
		u, err := scanUsage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
