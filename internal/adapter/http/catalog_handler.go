package http

import (
	"net/http"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/domain"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

type CatalogHandler struct {
	service interfaces.CatalogService
	logger  logger.Logger
}

func NewCatalogHandler(service interfaces.CatalogService, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, logger: logger}
}

type MenuItemRequest struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
	IsAvailable *bool  `json:"is_available"`
	PhotoURL    string `json:"photo_url"`
}

func (req MenuItemRequest) input() domain.MenuItemInput {
	return domain.MenuItemInput{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		IsAvailable: req.IsAvailable,
		PhotoURL:    req.PhotoURL,
	}
}

func (h *CatalogHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMenu(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, "menu_list_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"menuItems": toMenuResponses(items)})
}

func (h *CatalogHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req MenuItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.service.CreateMenuItem(r.Context(), req.input())
	if err != nil {
		respondServiceError(w, r, h.logger, "menu_create_failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"menuItem": toMenuItemResponse(item)})
}

func (h *CatalogHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req MenuItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := h.service.UpdateMenuItem(r.Context(), req.ID, req.input()); err != nil {
		respondServiceError(w, r, h.logger, "menu_update_failed", err)
		return
	}
	respondOK(w)
}

func (h *CatalogHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.service.DeleteMenuItem(r.Context(), req.ID); err != nil {
		respondServiceError(w, r, h.logger, "menu_delete_failed", err)
		return
	}
	respondOK(w)
}

type CreateTableRequest struct {
	Label    string `json:"label"`
	Capacity *int   `json:"capacity"`
	Status   string `json:"status"`
	Note     string `json:"note"`
}

// UpdateTableRequest is a partial update; omitted fields stay unchanged.
type UpdateTableRequest struct {
	ID       int64   `json:"id"`
	Label    *string `json:"label"`
	Capacity *int    `json:"capacity"`
	Status   *string `json:"status"`
	Note     *string `json:"note"`
}

func (h *CatalogHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.service.ListTables(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, "table_list_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tables": toTableResponses(tables)})
}

func (h *CatalogHandler) CreateTable(w http.ResponseWriter, r *http.Request) {
	var req CreateTableRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	table, err := h.service.CreateTable(r.Context(), domain.TableInput{
		Label:    req.Label,
		Capacity: req.Capacity,
		Status:   req.Status,
		Note:     req.Note,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "table_create_failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"table": toTableResponse(table)})
}

func (h *CatalogHandler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	var req UpdateTableRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch, err := domain.NewTablePatch(req.Label, req.Capacity, req.Status, req.Note)
	if err != nil {
		respondServiceError(w, r, h.logger, "table_update_failed", err)
		return
	}
	if _, err := h.service.UpdateTable(r.Context(), req.ID, patch, changedBy(r)); err != nil {
		respondServiceError(w, r, h.logger, "table_update_failed", err)
		return
	}
	respondOK(w)
}

func (h *CatalogHandler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.service.DeleteTable(r.Context(), req.ID); err != nil {
		respondServiceError(w, r, h.logger, "table_delete_failed", err)
		return
	}
	respondOK(w)
}
