package http

import (
	"net/http"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/adapter/session"
	"github.com/YelzhanWeb/kasir/internal/domain"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

type UserHandler struct {
	service  interfaces.StaffService
	sessions *session.Manager
	logger   logger.Logger
}

func NewUserHandler(service interfaces.StaffService, sessions *session.Manager, logger logger.Logger) *UserHandler {
	return &UserHandler{service: service, sessions: sessions, logger: logger}
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	Password *string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, "user_list_failed", err)
		return
	}
	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": resp})
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.service.CreateUser(r.Context(), domain.UserInput{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "user_create_failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"user": toUserResponse(user)})
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	_, err := h.service.UpdateUser(r.Context(), interfaces.UpdateUserCommand{
		ID:       req.ID,
		Name:     req.Name,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, "user_update_failed", err)
		return
	}
	respondOK(w)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, _ := session.FromContext(r.Context())
	if err := h.service.DeleteUser(r.Context(), p.ID, req.ID); err != nil {
		respondServiceError(w, r, h.logger, "user_delete_failed", err)
		return
	}
	respondOK(w)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, "Email and password are required", http.StatusBadRequest, nil)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, h.logger, "login_failed", err)
		return
	}

	if err := h.sessions.Save(w, r, session.PrincipalOf(user)); err != nil {
		respondServiceError(w, r, h.logger, "session_save_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": toUserResponse(user)})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		respondServiceError(w, r, h.logger, "session_clear_failed", err)
		return
	}
	respondOK(w)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, "Authentication required", http.StatusUnauthorized, nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": p})
}
