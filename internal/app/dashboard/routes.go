package dashboard

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/luxera-dashboard/internal/config"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/cookie"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/auth/session"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/catalog/plans"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/catalog/services"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/contact"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/health"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/usage/overview"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/usage/record"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/usage/summary"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/handlers/users/profile"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/middlewarectx"

	_ "github.com/magabrotheeeer/luxera-dashboard/docs"
)

// loginAttemptsPerMinute лимит попыток входа с одного IP.
const loginAttemptsPerMinute = 10

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, svc Services, healthHandler *health.Handler) {
	sessionCookie := cookie.Config{Name: cfg.CookieName, Secure: cfg.IsProduction()}

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.Metrics,
		middlewarectx.CORS(cfg.CORSAllowedOrigins),
		middlewarectx.Session(svc.Auth, cfg.CookieName, logger),
	)

	loginLimiter := middlewarectx.NewIPLimiter(loginAttemptsPerMinute, time.Minute)
	contactLimiter := middlewarectx.NewIPLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)

	servicesHandlers := services.New(logger, svc.Catalog)
	plansHandlers := plans.New(logger, svc.Catalog)
	sessionHandler := session.New(logger, svc.Auth, sessionCookie)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.ServeHTTP)

		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, svc.Auth).ServeHTTP)
		r.With(middlewarectx.RateLimit(loginLimiter, logger)).
			Post("/auth/login", login.New(logger, svc.Auth, sessionCookie).ServeHTTP)
		r.Get("/auth/session", sessionHandler.Get)
		r.Delete("/auth/session", sessionHandler.Delete)

		r.Get("/services", servicesHandlers.List)
		r.Get("/services/{id}", servicesHandlers.Get)
		r.Get("/subscription-plans", plansHandlers.List)
		r.Get("/subscription-plans/{id}", plansHandlers.Get)

		r.With(middlewarectx.RateLimit(contactLimiter, logger)).
			Post("/contact", contact.New(logger, svc.Contact).ServeHTTP)

		// Группа с сессией пользователя
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireUser)

			r.Post("/subscriptions", create.New(logger, svc.Subscription).ServeHTTP)
			r.Get("/subscriptions", list.New(logger, svc.Subscription).ServeHTTP)
			r.Get("/subscriptions/{id}", read.New(logger, svc.Subscription).ServeHTTP)
			r.Put("/subscriptions/{id}", update.New(logger, svc.Subscription).ServeHTTP)
			r.Delete("/subscriptions/{id}", remove.New(logger, svc.Subscription).ServeHTTP)

			r.Get("/usage/summary", summary.New(logger, svc.Usage).ServeHTTP)
			r.Get("/usage/overview", overview.New(logger, svc.Usage).ServeHTTP)

			profileHandlers := profile.New(logger, svc.Profile)
			r.Get("/users/{id}", profileHandlers.Get)
			r.Put("/users/{id}", profileHandlers.Update)
		})

		// Административная группа
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AdminKey(cfg.AdminAPIKey, logger))

			r.Post("/services", servicesHandlers.Create)
			r.Put("/services/{id}", servicesHandlers.Update)
			r.Post("/subscription-plans", plansHandlers.Create)
			r.Put("/subscription-plans/{id}", plansHandlers.Update)
			r.Post("/usage", record.New(logger, svc.Usage).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
