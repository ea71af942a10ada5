// Package services реализует HTTP-обработчики каталога сервисов автоматизации.
// Чтение открыто всем, изменения доступны только с административным ключом.
package services

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/luxera-dashboard/internal/http/response"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/luxera-dashboard/internal/models"
)

// CreateRequest новый сервис каталога.
type CreateRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Icon         *string `json:"icon"`
	MonthlyLimit int     `json:"monthlyLimit"`
}

// UpdateRequest частичное обновление. icon можно сбросить через null.
type UpdateRequest struct {
	Name         *string                 `json:"name"`
	Description  *string                 `json:"description"`
	Category     *string                 `json:"category"`
	Icon         models.Optional[string] `json:"icon"`
	MonthlyLimit *int                    `json:"monthlyLimit"`
}

// Catalog описывает операции каталога сервисов.
type Catalog interface {
	ListServices(ctx context.Context, f models.ListFilter) ([]models.Service, error)
	GetService(ctx context.Context, id int) (*models.Service, error)
	CreateService(ctx context.Context, svc models.Service) (*models.Service, error)
	UpdateService(ctx context.Context, id int, upd models.ServiceUpdate) (*models.Service, error)
}

// Handlers группирует обработчики /services.
type Handlers struct {
	log     *slog.Logger
	catalog Catalog
}

// New создает обработчики каталога сервисов.
func New(log *slog.Logger, catalog Catalog) *Handlers {
	return &Handlers{log: log, catalog: catalog}
}

func (h *Handlers) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// List godoc
// @Summary Список сервисов
// @Tags Catalog
// @Produce json
// @Param search query string false "Подстрока имени или описания"
// @Param category query string false "Категория"
// @Param limit query int false "Размер страницы, не больше 100"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Сервисы"
// @Router /services [get]
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.services.List")

	q := r.URL.Query()
	f := models.ListFilter{Search: q.Get("search"), Category: q.Get("category")}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	res, err := h.catalog.ListServices(r.Context(), f)
	if err != nil {
		log.Error("failed to list services", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if res == nil {
		res = []models.Service{}
	}
	response.OK(w, r, http.StatusOK, map[string]any{"services": res})
}

// Get godoc
// @Summary Сервис по id
// @Tags Catalog
// @Produce json
// @Param id path int true "ID сервиса"
// @Success 200 {object} response.Response "Сервис"
// @Failure 404 {object} response.ErrorResponse "Не найден"
// @Router /services/{id} [get]
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, apperr.ErrInvalidID)
		return
	}
	svc, err := h.catalog.GetService(r.Context(), id)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{"service": svc})
}

// Create godoc
// @Summary Добавить сервис
// @Tags Catalog
// @Accept json
// @Produce json
// @Security AdminKey
// @Param request body CreateRequest true "Сервис"
// @Success 201 {object} response.Response "Созданный сервис"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Имя занято"
// @Router /services [post]
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.services.Create")

	var req CreateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.InvalidBody(w, r)
		return
	}

	svc, err := h.catalog.CreateService(r.Context(), models.Service{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Icon:         req.Icon,
		MonthlyLimit: req.MonthlyLimit,
	})
	if err != nil {
		log.Info("failed to create service", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusCreated, map[string]any{"service": svc})
}

// Update godoc
// @Summary Изменить сервис
// @Tags Catalog
// @Accept json
// @Produce json
// @Security AdminKey
// @Param id path int true "ID сервиса"
// @Param request body UpdateRequest true "Изменения"
// @Success 200 {object} response.Response "Сервис"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 404 {object} response.ErrorResponse "Не найден"
// @Router /services/{id} [put]
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.services.Update")

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, apperr.ErrInvalidID)
		return
	}
	var req UpdateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.InvalidBody(w, r)
		return
	}

	svc, err := h.catalog.UpdateService(r.Context(), id, models.ServiceUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Icon:         req.Icon,
		MonthlyLimit: req.MonthlyLimit,
	})
	if err != nil {
		log.Info("failed to update service", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{"service": svc})
}
