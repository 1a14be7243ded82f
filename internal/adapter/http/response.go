package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/domain"
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors,omitempty"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func respondOK(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, okResponse{OK: true})
}

func respondError(w http.ResponseWriter, message string, statusCode int, fields []FieldError) {
	respondJSON(w, statusCode, ErrorResponse{Error: message, Errors: fields})
}

// respondServiceError maps domain errors to 400 (401 for bad credentials)
// and hides everything else behind a logged 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, lgr logger.Logger, action string, err error) {
	if errors.Is(err, domain.ErrInvalidCredentials) {
		respondError(w, err.Error(), http.StatusUnauthorized, nil)
		return
	}

	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, len(verrs))
		for i, v := range verrs {
			fields[i] = FieldError{Field: v.Field, Code: string(v.Code), Message: v.Message}
		}
		respondError(w, verrs.Error(), http.StatusBadRequest, fields)
		return
	}

	lgr.Error(action, "Request failed", logger.RequestID(r.Context()), map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
	}, err)
	respondError(w, "Internal server error", http.StatusInternalServerError, nil)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}
	return true
}

type idRequest struct {
	ID int64 `json:"id"`
}

// Ответы API (snake_case, как строки БД)

type orderItemResponse struct {
	ID           int64   `json:"id"`
	OrderID      int64   `json:"order_id"`
	MenuItemID   int64   `json:"menu_item_id"`
	Quantity     int     `json:"quantity"`
	Price        int64   `json:"price"`
	Note         *string `json:"note"`
	MenuName     *string `json:"menu_name,omitempty"`
	MenuCategory *string `json:"menu_category,omitempty"`
}

type orderResponse struct {
	ID            int64               `json:"id"`
	TableID       *int64              `json:"table_id"`
	CustomerName  string              `json:"customer_name"`
	Status        string              `json:"status"`
	Total         int64               `json:"total"`
	PaymentMethod string              `json:"payment_method"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Items         []orderItemResponse `json:"items,omitempty"`
}

func toOrderResponse(o *domain.Order, withItems bool) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		TableID:       o.TableID,
		CustomerName:  o.CustomerName,
		Status:        string(o.Status),
		Total:         int64(o.Total),
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if !withItems {
		return resp
	}
	resp.Items = make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		resp.Items[i] = orderItemResponse{
			ID:           it.ID,
			OrderID:      it.OrderID,
			MenuItemID:   it.MenuItemID,
			Quantity:     int(it.Quantity),
			Price:        int64(it.Price),
			Note:         it.Note,
			MenuName:     it.MenuName,
			MenuCategory: it.MenuCategory,
		}
	}
	return resp
}

func toOrderResponses(orders []*domain.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o, true)
	}
	return out
}

type menuItemResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	IsAvailable bool      `json:"is_available"`
	PhotoURL    *string   `json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMenuItemResponse(m *domain.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Category:    m.Category,
		Price:       int64(m.Price),
		IsAvailable: m.IsAvailable,
		PhotoURL:    m.PhotoURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toMenuResponses(items []*domain.MenuItem) []menuItemResponse {
	out := make([]menuItemResponse, len(items))
	for i, m := range items {
		out[i] = toMenuItemResponse(m)
	}
	return out
}

type tableResponse struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Capacity  int       `json:"capacity"`
	Status    string    `json:"status"`
	Note      *string   `json:"note"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTableResponse(t *domain.Table) tableResponse {
	return tableResponse{
		ID:        t.ID,
		Label:     t.Label,
		Capacity:  t.Capacity,
		Status:    string(t.Status),
		Note:      t.Note,
		UpdatedAt: t.UpdatedAt,
	}
}

func toTableResponses(tables []*domain.Table) []tableResponse {
	out := make([]tableResponse, len(tables))
	for i, t := range tables {
		out[i] = toTableResponse(t)
	}
	return out
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)}
}
