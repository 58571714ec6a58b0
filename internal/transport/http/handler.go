// Package httpapi отдаёт операции трекера заказов как JSON REST API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
)

const maxBodyBytes = 1 << 20

// OrderService: операции трекера, которые нужны HTTP-слою.
type OrderService interface {
	AddOrder(ctx context.Context, input domain.NewOrder) (domain.Order, error)
	GetOrderByID(ctx context.Context, orderID string) (domain.Order, bool, error)
	UpdateOrderStatus(ctx context.Context, orderID, newStatus string) (domain.Order, error)
	ListOrders(ctx context.Context, status string) ([]domain.Order, error)
}

// Handler обрабатывает запросы /api/orders.
type Handler struct {
	orders OrderService
	logger *log.Entry
}

// NewHandler создаёт handler поверх сервиса заказов.
func NewHandler(orders OrderService, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http-api")
	}
	return &Handler{orders: orders, logger: logger}
}

type createOrderRequest struct {
	OrderID    string `json:"order_id"`
	ItemName   string `json:"item_name"`
	Quantity   any    `json:"quantity"`
	CustomerID string `json:"customer_id"`
	Status     string `json:"status"`
}

// updateStatusRequest принимает new_status; status оставлен как синоним.
type updateStatusRequest struct {
	NewStatus *string `json:"new_status"`
	Status    *string `json:"status"`
}

func (r updateStatusRequest) value() string {
	switch {
	case r.NewStatus != nil:
		return *r.NewStatus
	case r.Status != nil:
		return *r.Status
	default:
		return ""
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// CreateOrder: POST /api/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.orders.AddOrder(r.Context(), domain.NewOrder{
		OrderID:    req.OrderID,
		ItemName:   req.ItemName,
		Quantity:   parseQuantity(req.Quantity),
		CustomerID: req.CustomerID,
		Status:     req.Status,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetOrder: GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, found, err := h.orders.GetOrderByID(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if !found {
		h.writeDomainError(w, r, &domain.NotFoundError{OrderID: orderID})
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateOrderStatus: PUT /api/orders/{id}/status.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.value())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListOrders: GET /api/orders[?status=...].
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

// parseQuantity принимает только целые JSON-числа. Дробные, строковые и логические
// значения превращаются в 0, и трекер отклоняет их как невалидное quantity.
func parseQuantity(raw any) int {
	number, ok := raw.(float64)
	if !ok || number != math.Trunc(number) || number > math.MaxInt32 || number < math.MinInt32 {
		return 0
	}
	return int(number)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		field, _ := domain.ValidationField(err)
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: field})
	case errors.Is(err, domain.ErrDuplicateOrderID):
		writeError(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		h.logger.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, payload errorResponse) {
	writeJSON(w, status, payload)
}
