package adaptor

import (
	"net/http"

	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/usecase"
	"restaurant-directory/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type VoteHandler struct {
	service usecase.VoteService
	log     *zap.Logger
}

func NewVoteHandler(service usecase.VoteService, log *zap.Logger) *VoteHandler {
	return &VoteHandler{
		service: service,
		log:     log.With(zap.String("handler", "vote")),
	}
}

// Vote handles PUT /api/restaurants/{id}/vote (protected)
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.VoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	vote, err := h.service.Vote(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "vote")
		return
	}

	utils.ResponseSuccess(w, "Vote saved", vote)
}

// GetMyVote handles GET /api/restaurants/{id}/vote (protected)
func (h *VoteHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	vote, err := h.service.GetMyVote(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get vote")
		return
	}

	utils.ResponseSuccess(w, "success", vote)
}

// DeleteVote handles DELETE /api/restaurants/{id}/vote (protected)
func (h *VoteHandler) DeleteVote(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteVote(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete vote")
		return
	}

	utils.ResponseSuccess(w, "Vote removed", nil)
}

// GetRatingStats handles GET /api/restaurants/{id}/ratings (public)
func (h *VoteHandler) GetRatingStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetRatingStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get rating stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}
