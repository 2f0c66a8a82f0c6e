package wire

import (
	"restaurant-directory/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures admin user management
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, g guards) {
	r.With(g.auth, g.admin).Route("/api/admin/users", func(r chi.Router) {
		r.Get("/", userHandler.ListUsers)             // GET /api/admin/users?role=CLIENT&page=1
		r.Patch("/{id}/role", userHandler.UpdateRole) // PATCH /api/admin/users/{id}/role
		r.Delete("/{id}", userHandler.DeleteUser)     // DELETE /api/admin/users/{id}
	})
}
