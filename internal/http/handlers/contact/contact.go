// Package contact реализует HTTP-обработчик формы обратной связи.
package contact

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/luxera-dashboard/internal/http/response"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
	"github.com/magabrotheeeer/luxera-dashboard/internal/services/contact"
)

// Service описывает прием заявки.
type Service interface {
	Submit(ctx context.Context, in contact.Input) (*models.Contact, error)
}

// Handler обрабатывает POST /contact.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отправить заявку
// @Description Заявка проверяется reCAPTCHA, очищается от HTML, сохраняется и ставится в очередь на пересылку.
// @Tags Contact
// @Accept json
// @Produce json
// @Param request body contact.Input true "Заявка"
// @Success 200 {object} response.Response "Принята"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 403 {object} response.ErrorResponse "reCAPTCHA отклонила запрос"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 502 {object} response.ErrorResponse "Очередь недоступна"
// @Router /contact [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var in contact.Input
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.InvalidBody(w, r)
		return
	}
	in.IP = middlewarectx.ClientIP(r)
	in.UserAgent = r.UserAgent()

	c, err := h.service.Submit(r.Context(), in)
	if err != nil {
		log.Warn("contact rejected", slog.String("ip", in.IP), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("contact accepted", slog.Int("id", c.ID))
	response.OK(w, r, http.StatusOK, map[string]any{"ok": true})
}
