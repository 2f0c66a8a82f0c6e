package usecase

import (
	"context"
	"fmt"
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"
	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/dto/response"
	"restaurant-directory/internal/schedule"
	"restaurant-directory/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FavoriteService interface {
	AddFavorite(ctx context.Context, actorID, restaurantID string) (*response.FavoriteStatusResponse, error)
	RemoveFavorite(ctx context.Context, actorID, restaurantID string) (*response.FavoriteStatusResponse, error)
	ListFavorites(ctx context.Context, actorID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RestaurantResponse], error)
	IsFavorite(ctx context.Context, actorID, restaurantID string) (*response.FavoriteStatusResponse, error)
}

type favoriteService struct {
	repo *repository.Repository
	loc  *time.Location
	log  *zap.Logger
	now  func() time.Time
}

func NewFavoriteService(repo *repository.Repository, loc *time.Location, log *zap.Logger) FavoriteService {
	return &favoriteService{
		repo: repo,
		loc:  loc,
		log:  log.With(zap.String("service", "favorite")),
		now:  time.Now,
	}
}

func (s *favoriteService) AddFavorite(ctx context.Context, actorID, restaurantID string) (*response.FavoriteStatusResponse, error) {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, err
	}

	restaurant, err := findPublishedRestaurant(ctx, s.repo.Restaurant, restaurantID)
	if err != nil {
		return nil, err
	}

	favorite := &entity.Favorite{
		ID:           utils.CompositeID(actor.ID, restaurant.ID),
		UserID:       actor.ID,
		RestaurantID: restaurant.ID,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Favorite.Add(ctx, favorite); err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}

	return &response.FavoriteStatusResponse{RestaurantID: restaurant.ID.String(), IsFavorite: true}, nil
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, actorID, restaurantID string) (*response.FavoriteStatusResponse, error) {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, err
	}

	id, err := parseID(restaurantID, "restaurant")
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.Favorite.Remove(ctx, utils.CompositeID(actor.ID, id))
	if err != nil {
		return nil, fmt.Errorf("remove favorite: %w", err)
	}
	if !removed {
		s.log.Debug("Favorite already absent", zap.String("restaurant_id", restaurantID))
	}

	return &response.FavoriteStatusResponse{RestaurantID: id.String(), IsFavorite: false}, nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, actorID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RestaurantResponse], error) {
	req.Normalize()

	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, err
	}

	ids, err := s.repo.Favorite.FindRestaurantIDsByUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	if len(ids) == 0 {
		return response.NewPaginatedResponse([]response.RestaurantResponse{}, req.Page, req.PerPage, 0), nil
	}

	restaurants, err := s.repo.Restaurant.FindAll(ctx, repository.RestaurantFilter{IDs: ids}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load favorite restaurants: %w", err)
	}

	// Keep the favorites order (newest first) and drop hidden restaurants.
	byID := make(map[uuid.UUID]*entity.Restaurant, len(restaurants))
	for _, r := range restaurants {
		byID[r.ID] = r
	}
	ordered := make([]*entity.Restaurant, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}

	now := s.now()
	window := utils.Paginate(ordered, req.Page, req.PerPage)
	data := make([]response.RestaurantResponse, len(window))
	for i, r := range window {
		data[i] = response.RestaurantToResponse(r, schedule.EvaluateIn(r.Schedule, now, r.Timezone, s.loc))
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, int64(len(ordered))), nil
}

func (s *favoriteService) IsFavorite(ctx context.Context, actorID, restaurantID string) (*response.FavoriteStatusResponse, error) {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, err
	}

	id, err := parseID(restaurantID, "restaurant")
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Favorite.Exists(ctx, utils.CompositeID(actor.ID, id))
	if err != nil {
		return nil, fmt.Errorf("check favorite: %w", err)
	}

	return &response.FavoriteStatusResponse{RestaurantID: id.String(), IsFavorite: exists}, nil
}
