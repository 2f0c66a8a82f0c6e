package middleware

import (
	"net/http"
	"slices"
	"strings"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"
	"restaurant-directory/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sessionToken reads the session cookie, falling back to "Authorization: Bearer".
func sessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type authResult int

const (
	authOK authResult = iota
	authMissing
	authInvalid
	authFailed
)

// authenticate verifies the token and its session row and returns the
// request context carrying the caller.
func authenticate(r *http.Request, config *utils.Config, sessionRepo repository.SessionRepository, logger *zap.Logger) (*http.Request, authResult) {
	raw := sessionToken(r, config.Cookie.Name)
	if raw == "" {
		return r, authMissing
	}

	claims, err := utils.ParseSessionToken(config.JWT, raw)
	if err != nil {
		logger.Debug("Rejected session token", zap.Error(err))
		return r, authInvalid
	}

	userID, err := claims.UserID()
	if err != nil {
		return r, authInvalid
	}
	token, err := uuid.Parse(claims.ID)
	if err != nil {
		return r, authInvalid
	}

	session, err := sessionRepo.FindValidSession(r.Context(), token)
	if err != nil {
		logger.Error("Failed to validate session", zap.Error(err))
		return r, authFailed
	}
	if session == nil || session.UserID != userID {
		logger.Warn("Invalid or expired session", zap.String("user_id", userID.String()))
		return r, authInvalid
	}

	ctx := utils.SetUserContext(r.Context(), userID, claims.Role)
	ctx = utils.SetSessionContext(ctx, claims.ID)
	return r.WithContext(ctx), authOK
}

// AuthSession rejects requests without a valid session.
func AuthSession(config *utils.Config, sessionRepo repository.SessionRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, result := authenticate(r, config, sessionRepo, logger)
			switch result {
			case authMissing:
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			case authInvalid:
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			case authFailed:
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// OptionalSession attaches the caller when a valid session is present and
// lets anonymous requests through otherwise.
func OptionalSession(config *utils.Config, sessionRepo repository.SessionRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authed, result := authenticate(r, config, sessionRepo, logger); result == authOK {
				r = authed
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole re-reads the caller so a role change applies to the next request.
// It must run after AuthSession.
func RequireRole(userRepo repository.UserRepository, logger *zap.Logger, roles ...entity.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Role check: failed to get user",
					zap.Error(err), zap.String("user_id", userID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if user == nil || !user.IsActive {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !slices.Contains(roles, user.Role) {
				logger.Warn("Role check: access denied",
					zap.String("user_id", userID.String()),
					zap.String("role", string(user.Role)),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Insufficient permissions")
				return
			}

			ctx := utils.SetUserContext(r.Context(), user.ID, string(user.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
