package adaptor

import (
	"net/http"

	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/usecase"
	"restaurant-directory/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log.With(zap.String("handler", "user")),
	}
}

// ListUsers handles GET /api/admin/users?role=&page=&per_page= (admin only)
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	req := &request.UserListRequest{PaginatedRequest: paginationFromQuery(r)}
	if role := r.URL.Query().Get("role"); role != "" {
		req.Role = &role
	}

	req.Normalize()
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	users, err := h.service.ListUsers(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "list users")
		return
	}

	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}

// UpdateRole handles PATCH /api/admin/users/{id}/role (admin only)
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.UpdateRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.UpdateRole(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update role")
		return
	}

	utils.ResponseSuccess(w, "Role updated successfully", user)
}

// DeleteUser handles DELETE /api/admin/users/{id} (admin only)
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User deleted successfully", nil)
}
