package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// seedLockKey ключ advisory-блокировки, сериализующей заполнение каталога между процессами.
const seedLockKey = 7_340_001

const serviceColumns = `id, name, description, category, icon, monthly_limit, created_at`
const planColumns = `id, name, price, features, created_at`

func scanService(row scanner) (*models.Service, error) {
	var svc models.Service
	var icon sql.NullString
	if err := row.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.Category, &icon,
		&svc.MonthlyLimit, &svc.CreatedAt); err != nil {
		return nil, err
	}
	svc.Icon = stringPtr(icon)
	return &svc, nil
}

func scanPlan(row scanner) (*models.Plan, error) {
	var p models.Plan
	var features []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &features, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Features = []string{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("decode plan features: %w", err)
		}
	}
	return &p, nil
}

func encodeFeatures(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}
	b, err := json.Marshal(features)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ListServices возвращает сервисы каталога с фильтрацией по названию и категории.
func (s *Storage) ListServices(ctx context.Context, f models.ListFilter) ([]models.Service, error) {
	const op = "storage.ListServices"
	f = f.Normalize()

	var conds []string
	var args []any
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM services %s ORDER BY id LIMIT $%d OFFSET $%d`,
		serviceColumns, where, len(args)-1, len(args))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, *svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ListAllServices возвращает весь каталог сервисов по возрастанию id.
func (s *Storage) ListAllServices(ctx context.Context) ([]models.Service, error) {
	const op = "storage.ListAllServices"

	rows, err := s.DB.QueryContext(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, *svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetService возвращает сервис по id.
func (s *Storage) GetService(ctx context.Context, id int) (*models.Service, error) {
	const op = "storage.GetService"

	svc, err := scanService(s.DB.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return svc, nil
}

// CreateService добавляет сервис в каталог.
func (s *Storage) CreateService(ctx context.Context, svc models.Service) (*models.Service, error) {
	const op = "storage.CreateService"

	created, err := scanService(s.DB.QueryRowContext(ctx, `
		INSERT INTO services (name, description, category, icon, monthly_limit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+serviceColumns,
		svc.Name, svc.Description, svc.Category, nullString(svc.Icon), svc.MonthlyLimit, svc.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return created, nil
}

// UpdateService частично обновляет сервис.
func (s *Storage) UpdateService(ctx context.Context, id int, upd models.ServiceUpdate) (*models.Service, error) {
	const op = "storage.UpdateService"

	var sets []string
	var args []any
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Icon.Set {
		add("icon", nullString(upd.Icon.Value))
	}
	if upd.MonthlyLimit != nil {
		add("monthly_limit", *upd.MonthlyLimit)
	}
	if len(sets) == 0 {
		return s.GetService(ctx, id)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE services SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), serviceColumns)
	svc, err := scanService(s.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return svc, nil
}

// ListPlans возвращает тарифы по возрастанию id.
func (s *Storage) ListPlans(ctx context.Context, f models.ListFilter) ([]models.Plan, error) {
	const op = "storage.ListPlans"
	f = f.Normalize()

	var args []any
	where := ""
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = "WHERE name ILIKE $1"
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM subscription_plans %s ORDER BY id LIMIT $%d OFFSET $%d`,
		planColumns, where, len(args)-1, len(args))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetPlan возвращает тариф по id.
func (s *Storage) GetPlan(ctx context.Context, id int) (*models.Plan, error) {
	const op = "storage.GetPlan"

	p, err := scanPlan(s.DB.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return p, nil
}

// CreatePlan добавляет тариф.
func (s *Storage) CreatePlan(ctx context.Context, p models.Plan) (*models.Plan, error) {
	const op = "storage.CreatePlan"

	features, err := encodeFeatures(p.Features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := scanPlan(s.DB.QueryRowContext(ctx, `
		INSERT INTO subscription_plans (name, price, features, created_at)
		VALUES ($1, $2, $3::jsonb, $4)
		RETURNING `+planColumns,
		p.Name, p.Price, features, p.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return created, nil
}

// UpdatePlan частично обновляет тариф.
func (s *Storage) UpdatePlan(ctx context.Context, id int, upd models.PlanUpdate) (*models.Plan, error) {
	const op = "storage.UpdatePlan"

	var sets []string
	var args []any
	if upd.Name != nil {
		args = append(args, *upd.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if upd.Price != nil {
		args = append(args, *upd.Price)
		sets = append(sets, fmt.Sprintf("price = $%d", len(args)))
	}
	if upd.Features != nil {
		features, err := encodeFeatures(upd.Features)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		args = append(args, features)
		sets = append(sets, fmt.Sprintf("features = $%d::jsonb", len(args)))
	}
	if len(sets) == 0 {
		return s.GetPlan(ctx, id)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE subscription_plans SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), planColumns)
	p, err := scanPlan(s.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return p, nil
}

// SeedResult количество строк, добавленных при заполнении каталога.
type SeedResult struct {
	Services int
	Plans    int
}

// SeedCatalog заполняет пустые таблицы сервисов и тарифов. Каждая таблица проверяется
// независимо, непустая таблица не трогается. Транзакционная advisory-блокировка
// исключает гонку между несколькими экземплярами приложения.
func (s *Storage) SeedCatalog(ctx context.Context, services []models.Service, plans []models.Plan) (SeedResult, error) {
	const op = "storage.SeedCatalog"
	var res SeedResult

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, seedLockKey); err != nil {
			return err
		}

		var hasServices bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM services)`).Scan(&hasServices); err != nil {
			return err
		}
		if !hasServices {
			for _, svc := range services {
				r, err := tx.ExecContext(ctx, `
					INSERT INTO services (name, description, category, icon, monthly_limit, created_at)
					VALUES ($1, $2, $3, $4, $5, $6)
					ON CONFLICT DO NOTHING`,
					svc.Name, svc.Description, svc.Category, nullString(svc.Icon), svc.MonthlyLimit, svc.CreatedAt)
				if err != nil {
					return err
				}
				n, _ := r.RowsAffected()
				res.Services += int(n)
			}
		}

		var hasPlans bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM subscription_plans)`).Scan(&hasPlans); err != nil {
			return err
		}
		if !hasPlans {
			for _, p := range plans {
				features, err := encodeFeatures(p.Features)
				if err != nil {
					return err
				}
				r, err := tx.ExecContext(ctx, `
					INSERT INTO subscription_plans (name, price, features, created_at)
					VALUES ($1, $2, $3::jsonb, $4)
					ON CONFLICT DO NOTHING`,
					p.Name, p.Price, features, p.CreatedAt)
				if err != nil {
					return err
				}
				n, _ := r.RowsAffected()
				res.Plans += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
