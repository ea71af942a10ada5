package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/response"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// SessionValidator проверяет токен сессии. Отсутствующая или истёкшая сессия даёт nil без ошибки.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*models.PublicUser, error)
}

// TokenFromRequest достаёт токен из cookie, а при её отсутствии из заголовка Authorization: Bearer.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// Session проверяет токен запроса и кладёт пользователя в контекст.
// Отсутствие или недействительность токена не ошибка: запрос идёт дальше без пользователя.
func Session(validator SessionValidator, cookieName string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Session"

			tok := TokenFromRequest(r, cookieName)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := validator.Validate(r.Context(), tok)
			if err != nil {
				log.Error("failed to validate session",
					sl.Op(op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err))
				response.Fail(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), Token, tok)
			if user != nil {
				ctx = WithUser(ctx, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser отвечает 401, если в контексте нет пользователя сессии.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			response.Fail(w, r, apperr.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
