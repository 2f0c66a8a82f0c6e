package adaptor

import (
	"net/http"
	"strings"
	"time"

	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/usecase"
	"restaurant-directory/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	cookie  utils.CookieConfig
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, cookie utils.CookieConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookie:  cookie,
		log:     log.With(zap.String("handler", "auth")),
	}
}

func clientInfo(r *http.Request) usecase.ClientInfo {
	return usecase.ClientInfo{
		UserAgent: r.UserAgent(),
		IPAddress: utils.ClientIP(r),
	}
}

func (h *AuthHandler) sameSite() http.SameSite {
	switch strings.ToLower(h.cookie.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Domain:   h.cookie.Domain,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.sameSite(),
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.sameSite(),
	})
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Signup(r.Context(), &req, clientInfo(r))
	if err != nil {
		writeServiceError(w, h.log, err, "signup")
		return
	}

	h.setSessionCookie(w, resp.Token, resp.ExpiresAt)
	utils.ResponseCreated(w, "Signup successful. Check your email for the verification code.", resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req, clientInfo(r))
	if err != nil {
		writeServiceError(w, h.log, err, "login")
		return
	}

	h.setSessionCookie(w, resp.Token, resp.ExpiresAt)
	utils.ResponseSuccess(w, "Login successful", resp)
}

// Logout handles POST /api/auth/logout (protected)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := utils.GetSessionIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), sessionID); err != nil {
		writeServiceError(w, h.log, err, "logout")
		return
	}

	h.clearSessionCookie(w)
	utils.ResponseSuccess(w, "Logout successful", nil)
}

// Me handles GET /api/auth/me (protected)
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireActor(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", profile)
}

// SendOTP handles POST /api/auth/send-otp
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req request.SendOTPRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.SendOTP(r.Context(), &req); err != nil {
		writeServiceError(w, h.log, err, "send OTP")
		return
	}

	utils.ResponseSuccess(w, "OTP sent", nil)
}

// VerifyEmail handles POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyEmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.VerifyEmail(r.Context(), &req); err != nil {
		writeServiceError(w, h.log, err, "verify email")
		return
	}

	utils.ResponseSuccess(w, "Email verified successfully", nil)
}

// ForgotPassword handles POST /api/auth/password/forgot
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.PasswordResetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), &req); err != nil {
		writeServiceError(w, h.log, err, "request password reset")
		return
	}

	utils.ResponseSuccess(w, "If the account exists, a reset code has been sent", nil)
}

// ResetPassword handles POST /api/auth/password/reset
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		writeServiceError(w, h.log, err, "reset password")
		return
	}

	h.clearSessionCookie(w)
	utils.ResponseSuccess(w, "Password updated. Please log in again.", nil)
}
