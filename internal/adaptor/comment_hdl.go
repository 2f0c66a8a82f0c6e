package adaptor

import (
	"net/http"

	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/usecase"
	"restaurant-directory/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CommentHandler struct {
	service usecase.CommentService
	log     *zap.Logger
}

func NewCommentHandler(service usecase.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{
		service: service,
		log:     log.With(zap.String("handler", "comment")),
	}
}

// ListComments handles GET /api/restaurants/{id}/comments (public)
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	req := paginationFromQuery(r)
	comments, err := h.service.ListComments(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "list comments")
		return
	}

	utils.ResponseSuccess(w, "success", comments)
}

// CreateComment handles POST /api/restaurants/{id}/comments (protected)
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.CommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	comment, err := h.service.CreateComment(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create comment")
		return
	}

	utils.ResponseCreated(w, "Comment posted", comment)
}

// UpdateComment handles PUT /api/comments/{id} (author only)
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.CommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	comment, err := h.service.UpdateComment(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update comment")
		return
	}

	utils.ResponseSuccess(w, "Comment updated", comment)
}

// DeleteComment handles DELETE /api/comments/{id} (author or admin)
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteComment(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete comment")
		return
	}

	utils.ResponseSuccess(w, "Comment deleted", nil)
}
