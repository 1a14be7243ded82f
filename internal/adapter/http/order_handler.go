package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/domain"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

type OrderHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.OrderService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

type CreateOrderRequest struct {
	TableID       *int64             `json:"table_id"`
	CustomerName  string             `json:"customer_name"`
	PaymentMethod string             `json:"payment_method"`
	Items         []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	MenuItemID int64  `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note"`
}

type UpdateStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]domain.LineInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.LineInput{MenuItemID: it.MenuItemID, Quantity: it.Quantity, Note: it.Note}
	}

	order, err := h.service.CreateOrder(r.Context(), interfaces.CreateOrderCommand{
		TableID:       req.TableID,
		CustomerName:  req.CustomerName,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
		ChangedBy:     changedBy(r),
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "order_creation_failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"order": toOrderResponse(order, false)})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.service.UpdateStatus(r.Context(), interfaces.UpdateStatusCommand{
		OrderID:   req.ID,
		Status:    req.Status,
		ChangedBy: changedBy(r),
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "status_update_failed", err)
		return
	}
	respondOK(w)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, "order_list_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": toOrderResponses(orders)})
}

type statusLogResponse struct {
	Status    string    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

func (h *OrderHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, "Invalid order id", http.StatusBadRequest, nil)
		return
	}

	history, err := h.service.GetOrderHistory(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, "order_history_failed", err)
		return
	}

	resp := make([]statusLogResponse, len(history))
	for i, l := range history {
		resp[i] = statusLogResponse{
			Status:    string(l.Status),
			ChangedBy: l.ChangedBy,
			ChangedAt: l.ChangedAt,
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"history": resp})
}
