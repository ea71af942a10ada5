// Package plans реализует HTTP-обработчики тарифных планов.
package plans

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

// CreateRequest новый тариф. Цена в центах.
type CreateRequest struct {
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	Features []string `json:"features"`
}

// UpdateRequest частичное обновление тарифа.
type UpdateRequest struct {
	Name     *string  `json:"name"`
	Price    *int     `json:"price"`
	Features []string `json:"features"`
}

// Catalog описывает операции с тарифами.
type Catalog interface {
	ListPlans(ctx context.Context, f models.ListFilter) ([]models.Plan, error)
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
	CreatePlan(ctx context.Context, p models.Plan) (*models.Plan, error)
	UpdatePlan(ctx context.Context, id int, upd models.PlanUpdate) (*models.Plan, error)
}

// Handlers группирует обработчики /subscription-plans.
type Handlers struct {
	log     *slog.Logger
	catalog Catalog
}

// New создает обработчики тарифов.
func New(log *slog.Logger, catalog Catalog) *Handlers {
	return &Handlers{log: log, catalog: catalog}
}

// List godoc
// @Summary Список тарифов
// @Tags Catalog
// @Produce json
// @Param search query string false "Подстрока имени"
// @Param limit query int false "Размер страницы, не больше 100"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Тарифы"
// @Router /subscription-plans [get]
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.ListFilter{Search: q.Get("search")}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	res, err := h.catalog.ListPlans(r.Context(), f)
	if err != nil {
		h.log.Error("failed to list plans",
			slog.String("request_id", middleware.GetReqID(r.Context())), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if res == nil {
		res = []models.Plan{}
	}
	response.OK(w, r, http.StatusOK, map[string]any{"plans": res})
}

// Get godoc
// @Summary Тариф по id
// @Tags Catalog
// @Produce json
// @Param id path int true "ID тарифа"
// @Success 200 {object} response.Response "Тариф"
// @Failure 404 {object} response.ErrorResponse "Не найден"
// @Router /subscription-plans/{id} [get]
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, apperr.ErrInvalidID)
		return
	}
	p, err := h.catalog.GetPlan(r.Context(), id)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{"plan": p})
}

// Create godoc
// @Summary Добавить тариф
// @Tags Catalog
// @Accept json
// @Produce json
// @Security AdminKey
// @Param request body CreateRequest true "Тариф"
// @Success 201 {object} response.Response "Созданный тариф"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Имя занято"
// @Router /subscription-plans [post]
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.InvalidBody(w, r)
		return
	}

	p, err := h.catalog.CreatePlan(r.Context(), models.Plan{Name: req.Name, Price: req.Price, Features: req.Features})
	if err != nil {
		h.log.Info("failed to create plan",
			slog.String("request_id", middleware.GetReqID(r.Context())), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusCreated, map[string]any{"plan": p})
}

// Update godoc
// @Summary Изменить тариф
// @Tags Catalog
// @Accept json
// @Produce json
// @Security AdminKey
// @Param id path int true "ID тарифа"
// @Param request body UpdateRequest true "Изменения"
// @Success 200 {object} response.Response "Тариф"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 404 {object} response.ErrorResponse "Не найден"
// @Router /subscription-plans/{id} [put]
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, apperr.ErrInvalidID)
		return
	}
	var req UpdateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.InvalidBody(w, r)
		return
	}

	p, err := h.catalog.UpdatePlan(r.Context(), id, models.PlanUpdate{
		Name:     req.Name,
		Price:    req.Price,
		Features: req.Features,
	})
	if err != nil {
		h.log.Info("failed to update plan",
			slog.String("request_id", middleware.GetReqID(r.Context())), sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, map[string]any{"plan": p})
}
