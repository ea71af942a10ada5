// Package record реализует служебный HTTP-обработчик учёта использования сервиса.
// Доступен только с административным ключом.
package record

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/response"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// Request приращение счётчика. Пустой month означает текущий месяц.
type Request struct {
	UserID    string `json:"userId" validate:"required,uuid"`
	ServiceID int    `json:"serviceId" validate:"required,gt=0"`
	Month     string `json:"month"`
	Delta     int    `json:"delta" validate:"gte=0,lte=2147483647"`
}

// Service описывает учёт использования.
type Service interface {
	Record(ctx context.Context, userID string, serviceID int, monthKey string, delta int) (*models.UsageLog, error)
}

// Handler обрабатывает POST /usage.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Учесть использование сервиса
// @Tags Usage
// @Accept json
// @Produce json
// @Security AdminKey
// @Param request body Request true "Приращение"
// @Success 200 {object} response.Response "Запись учёта"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 403 {object} response.ErrorResponse "Нет ключа"
// @Failure 404 {object} response.ErrorResponse "Сервис не найден"
// @Router /usage [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usage.record"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.InvalidBody(w, r)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Fail(w, r, err)
		return
	}

	entry, err := h.service.Record(r.Context(), req.UserID, req.ServiceID, req.Month, req.Delta)
	if err != nil {
		log.Info("failed to record usage", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	response.OK(w, r, http.StatusOK, map[string]any{"usage": entry})
}
