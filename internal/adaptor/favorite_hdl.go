package adaptor

import (
	"net/http"

	"restaurant-directory/internal/usecase"
	"restaurant-directory/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type FavoriteHandler struct {
	service usecase.FavoriteService
	log     *zap.Logger
}

func NewFavoriteHandler(service usecase.FavoriteService, log *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		service: service,
		log:     log.With(zap.String("handler", "favorite")),
	}
}

// AddFavorite handles PUT /api/restaurants/{id}/favorite (protected)
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	status, err := h.service.AddFavorite(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "add favorite")
		return
	}

	utils.ResponseSuccess(w, "Added to favorites", status)
}

// RemoveFavorite handles DELETE /api/restaurants/{id}/favorite (protected)
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	status, err := h.service.RemoveFavorite(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "remove favorite")
		return
	}

	utils.ResponseSuccess(w, "Removed from favorites", status)
}

// IsFavorite handles GET /api/restaurants/{id}/favorite (protected)
func (h *FavoriteHandler) IsFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	status, err := h.service.IsFavorite(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "check favorite")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

// ListFavorites handles GET /api/me/favorites (protected)
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req := paginationFromQuery(r)
	favorites, err := h.service.ListFavorites(r.Context(), actor, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "list favorites")
		return
	}

	utils.ResponseSuccess(w, "Favorites retrieved successfully", favorites)
}
