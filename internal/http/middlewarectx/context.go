// Package middlewarectx содержит HTTP middleware дашборда: извлечение сессии из cookie
// или заголовка Authorization, проверку административного ключа, ограничение частоты
// запросов по IP клиента, метрики и CORS.
package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// User ключ пользователя текущей сессии.
	User Key = "user"
	// Token ключ токена текущей сессии.
	Token Key = "session_token"
)

// WithUser кладёт пользователя сессии в контекст.
func WithUser(ctx context.Context, u *models.PublicUser) context.Context {
	return context.WithValue(ctx, User, u)
}

// UserFromContext возвращает пользователя сессии или nil.
func UserFromContext(ctx context.Context) *models.PublicUser {
	u, _ := ctx.Value(User).(*models.PublicUser)
	return u
}

// TokenFromContext возвращает токен, с которым пришёл запрос.
func TokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(Token).(string)
	return tok
}

// ResolveUserID сверяет userId из запроса с пользователем сессии.
// Пустой userId означает пользователя сессии, чужой даёт ErrForbidden.
func ResolveUserID(ctx context.Context, requested string) (string, error) {
	u := UserFromContext(ctx)
	if u == nil {
		return "", apperr.ErrUnauthorized
	}
	if requested != "" && requested != u.ID {
		return "", apperr.ErrForbidden
	}
	return u.ID, nil
}
