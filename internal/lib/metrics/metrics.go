// Package metrics объявляет метрики Prometheus приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal количество HTTP-запросов.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luxera_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration длительность HTTP-запросов.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "luxera_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// SessionValidations результаты проверки сессий: valid, missing, expired, error.
	SessionValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luxera_session_validations_total",
			Help: "Session validations by result",
		},
		[]string{"result"},
	)

	// SessionCacheLookups обращения к кешу сессий: hit, miss, error.
	SessionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luxera_session_cache_lookups_total",
			Help: "Session cache lookups by result",
		},
		[]string{"result"},
	)

	// LoginsTotal попытки входа: success, failure.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luxera_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "luxera_registrations_total",
			Help: "Total number of registered users",
		},
	)

	// UsageRecorded суммарное записанное использование по сервисам.
	UsageRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luxera_usage_recorded_total",
			Help: "Recorded usage units by service id",
		},
		[]string{"service_id"},
	)

	// CatalogSeeded строки, добавленные при заполнении каталога.
	CatalogSeeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luxera_catalog_seeded_rows_total",
			Help: "Rows inserted by the catalog seeder",
		},
		[]string{"table"},
	)

	// ContactSubmissions заявки с формы обратной связи по результату.
	ContactSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luxera_contact_submissions_total",
			Help: "Contact form submissions by result",
		},
		[]string{"result"},
	)

	// ContactForwards результаты пересылки заявок во внешний webhook.
	ContactForwards = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luxera_contact_forwards_total",
			Help: "Contact webhook deliveries by result",
		},
		[]string{"result"},
	)
)
