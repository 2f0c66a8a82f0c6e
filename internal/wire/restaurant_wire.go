package wire

import (
	"restaurant-directory/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireRestaurant(r chi.Router, h *adaptor.RestaurantHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.optional)

		r.Get("/api/restaurants", h.ListRestaurants)
		r.Get("/api/restaurants/{id}", h.GetRestaurant)
		r.Get("/api/restaurants/{id}/status", h.GetRestaurantStatus)
	})

	// ==================== ADMIN OR OWNING CLIENT ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth, g.manager)

		r.Patch("/api/restaurants/{id}", h.UpdateRestaurant)
		r.Post("/api/restaurants/{id}/images", h.UploadImage)
	})

	r.With(g.auth, g.client).Get("/api/client/restaurants", h.ListMyRestaurants)

	// ==================== ADMIN ROUTES ====================
	r.With(g.auth, g.admin).Route("/api/admin/restaurants", func(r chi.Router) {
		r.Post("/", h.CreateRestaurant)
		r.Delete("/{id}", h.DeleteRestaurant)
		r.Put("/{id}/owner", h.AssignOwner)
	})
}

func wireVote(r chi.Router, h *adaptor.VoteHandler, g guards) {
	r.Get("/api/restaurants/{id}/ratings", h.GetRatingStats)

	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Get("/api/restaurants/{id}/vote", h.GetMyVote)
		r.Put("/api/restaurants/{id}/vote", h.Vote)
		r.Delete("/api/restaurants/{id}/vote", h.DeleteVote)
	})
}

func wireFavorite(r chi.Router, h *adaptor.FavoriteHandler, g guards) {
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Get("/api/me/favorites", h.ListFavorites)
		r.Get("/api/restaurants/{id}/favorite", h.IsFavorite)
		r.Put("/api/restaurants/{id}/favorite", h.AddFavorite)
		r.Delete("/api/restaurants/{id}/favorite", h.RemoveFavorite)
	})
}

func wireComment(r chi.Router, h *adaptor.CommentHandler, g guards) {
	r.Get("/api/restaurants/{id}/comments", h.ListComments)

	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Post("/api/restaurants/{id}/comments", h.CreateComment)
		r.Put("/api/comments/{id}", h.UpdateComment)
		r.Delete("/api/comments/{id}", h.DeleteComment)
	})
}
