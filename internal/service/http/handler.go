package httpsvc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Handler обслуживает HTTP API заказов.
type Handler struct {
	service *orders.Service
	logger  *log.Entry
}

// NewHandler создает handler поверх сервиса заказов.
func NewHandler(service *orders.Service, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http-handler")
	}
	return &Handler{service: service, logger: logger}
}

// CreateOrder обрабатывает POST /orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	items := make([]orders.CreateItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orders.CreateItemInput{
			ProductID: item.ProductID,
			Qty:       item.Quantity,
		})
	}

	order, err := h.service.Create(r.Context(), items)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, mapOrderToResponse(order))
}

// ListOrders обрабатывает GET /orders?status=&page=&limit=.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := orders.ListQuery{Page: defaultPage, Limit: defaultLimit}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		query.Status = &status
	}

	var err error
	if query.Page, err = parsePositiveInt(r.URL.Query().Get("page"), defaultPage); err != nil {
		h.writeError(w, http.StatusBadRequest, "page must be a positive integer", "")
		return
	}
	if query.Limit, err = parsePositiveInt(r.URL.Query().Get("limit"), defaultLimit); err != nil {
		h.writeError(w, http.StatusBadRequest, "limit must be a positive integer", "")
		return
	}

	page, err := h.service.List(r.Context(), query)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapPageToResponse(page))
}

// GetOrder обрабатывает GET /orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// ChangeOrderStatus обрабатывает PATCH /orders/{id}/status.
func (h *Handler) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	order, err := h.service.ChangeStatus(r.Context(), id, status)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// writeDomainError переводит доменные ошибки в HTTP-ответ:
// "не найдено" — 404, всё остальное — 400 с текстом ошибки.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if domain.IsNotFound(err) {
		status = http.StatusNotFound
	}

	message := err.Error()
	detail := ""

	var unknown *domain.UnknownProductsError
	if errors.As(err, &unknown) {
		message = "some products were not found"
		detail = "unknown product ids: " + strings.Join(unknown.ProductIDs, ", ")
	}

	h.writeError(w, status, message, detail)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, detail string) {
	h.writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Message:    message,
		Detail:     detail,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("failed to encode response")
	}
}

func parsePositiveInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, domain.ErrPaginationInvalid
	}
	return value, nil
}
