// Package repository реализует хранилище данных дашборда на основе PostgreSQL:
// пользователи и сессии, каталог сервисов и тарифов, подписки,
// помесячный учёт использования и заявки с формы обратной связи.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки хранилища, на которые опирается сервисный слой.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
	ErrActiveConflict = errors.New("user already has an active subscription")
	ErrReference      = errors.New("referenced record does not exist")
	ErrUnknownUser    = fmt.Errorf("%w: user", ErrReference)
	ErrUnknownService = fmt.Errorf("%w: service", ErrReference)
	ErrInvalidValue   = errors.New("value is malformed or out of range")
)

const (
	activeSubscriptionIndex = "user_subscriptions_one_active"
	usageUserFK             = "usage_logs_user_id_fkey"
	usageServiceFK          = "usage_logs_service_id_fkey"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// NewWithDB оборачивает уже открытое подключение.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{DB: db}
}

// Ping проверяет доступность базы.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

// translate приводит ошибки драйвера к ошибкам хранилища.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			if pgErr.ConstraintName == activeSubscriptionIndex {
				return fmt.Errorf("%w: %w", ErrActiveConflict, err)
			}
			return fmt.Errorf("%w: %w", ErrDuplicate, err)
		case pgerrcode.ForeignKeyViolation:
			switch pgErr.ConstraintName {
			case usageUserFK:
				return fmt.Errorf("%w: %w", ErrUnknownUser, err)
			case usageServiceFK:
				return fmt.Errorf("%w: %w", ErrUnknownService, err)
			}
			return fmt.Errorf("%w: %w", ErrReference, err)
		case pgerrcode.InvalidTextRepresentation, pgerrcode.NumericValueOutOfRange:
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
	}
	return err
}

// withTx выполняет fn в транзакции, откатывая её при ошибке.
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
