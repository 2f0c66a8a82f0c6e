package wire

import (
	"net/http"
	"strings"

	"restaurant-directory/internal/adaptor"
	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"
	"restaurant-directory/internal/usecase"
	"restaurant-directory/pkg/middleware"
	"restaurant-directory/pkg/storage"
	"restaurant-directory/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired HTTP router
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes
func Wiring(repo *repository.Repository, store *storage.LocalStorage, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, store, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	router := setupRouter(handler, repo, store, config, logger)

	return &App{
		Router: router,
	}
}

// guards are the middleware chains shared by the route files.
type guards struct {
	auth     func(http.Handler) http.Handler
	optional func(http.Handler) http.Handler
	limit    func(http.Handler) http.Handler
	admin    func(http.Handler) http.Handler
	client   func(http.Handler) http.Handler
	manager  func(http.Handler) http.Handler
}

func newGuards(repo *repository.Repository, config *utils.Config, logger *zap.Logger) guards {
	log := logger.With(zap.String("component", "middleware"))
	return guards{
		auth:     middleware.AuthSession(config, repo.Session, log),
		optional: middleware.OptionalSession(config, repo.Session, log),
		limit:    middleware.RateLimit(middleware.NewLimiter(config.RateLimit), log),
		admin:    middleware.RequireRole(repo.User, log, entity.RoleAdmin),
		client:   middleware.RequireRole(repo.User, log, entity.RoleClient),
		manager:  middleware.RequireRole(repo.User, log, entity.RoleAdmin, entity.RoleClient),
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	store *storage.LocalStorage,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Tracing())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Security(config.CORS))

	g := newGuards(repo, config, logger)

	wireAuth(r, handler.Auth, g)
	wireUser(r, handler.User, g)
	wireRestaurant(r, handler.Restaurant, g)
	wireVote(r, handler.Vote, g)
	wireFavorite(r, handler.Favorite, g)
	wireComment(r, handler.Comment, g)
	wireNotification(r, handler.Notification, g)

	if store != nil {
		mediaPath := "/" + strings.Trim(config.Storage.PublicURL, "/")
		r.Handle(mediaPath+"/*", http.StripPrefix(mediaPath, store.Handler()))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, "OK", nil)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseJSON(w, http.StatusMethodNotAllowed, false, "Method not allowed", nil, nil)
	})

	return r
}
