package wire

import (
	"restaurant-directory/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, g guards) {
	// ==================== PUBLIC ROUTES (rate limited) ====================
	r.Group(func(r chi.Router) {
		r.Use(g.limit)

		r.Post("/api/auth/signup", authHandler.Signup)
		r.Post("/api/auth/login", authHandler.Login)
		r.Post("/api/auth/send-otp", authHandler.SendOTP)
		r.Post("/api/auth/verify-email", authHandler.VerifyEmail)
		r.Post("/api/auth/password/forgot", authHandler.ForgotPassword)
		r.Post("/api/auth/password/reset", authHandler.ResetPassword)
	})

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Post("/api/auth/logout", authHandler.Logout)
		r.Get("/api/auth/me", authHandler.Me)
	})
}
