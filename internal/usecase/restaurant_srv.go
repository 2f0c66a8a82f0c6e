package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"
	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/dto/response"
	"restaurant-directory/internal/schedule"
	"restaurant-directory/pkg/storage"
	"restaurant-directory/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RestaurantService interface {
	ListRestaurants(ctx context.Context, actorID string, filter *request.RestaurantFilter) (*response.PaginatedResponse[response.RestaurantResponse], error)
	GetRestaurant(ctx context.Context, actorID, restaurantID string) (*response.RestaurantDetailResponse, error)
	GetRestaurantStatus(ctx context.Context, actorID, restaurantID string) (*response.RestaurantStatusResponse, error)
	CreateRestaurant(ctx context.Context, actorID string, req *request.RestaurantRequest) (*response.RestaurantResponse, error)
	UpdateRestaurant(ctx context.Context, actorID, restaurantID string, req *request.RestaurantUpdateRequest) (*response.RestaurantResponse, error)
	DeleteRestaurant(ctx context.Context, actorID, restaurantID string) error
	UploadRestaurantImage(ctx context.Context, actorID, restaurantID string, file io.Reader) (*response.ImageUploadResponse, error)
	ListClientRestaurants(ctx context.Context, actorID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RestaurantResponse], error)
	AssignOwner(ctx context.Context, actorID, restaurantID string, req *request.AssignOwnerRequest) (*response.RestaurantResponse, error)
}

type restaurantService struct {
	repo  *repository.Repository
	store storage.Storage
	loc   *time.Location
	log   *zap.Logger
	now   func() time.Time
}

func NewRestaurantService(repo *repository.Repository, store storage.Storage, loc *time.Location, log *zap.Logger) RestaurantService {
	return &restaurantService{
		repo:  repo,
		store: store,
		loc:   loc,
		log:   log.With(zap.String("service", "restaurant")),
		now:   time.Now,
	}
}

func (s *restaurantService) status(r *entity.Restaurant, now time.Time) schedule.Status {
	return schedule.EvaluateIn(r.Schedule, now, r.Timezone, s.loc)
}

func (s *restaurantService) ListRestaurants(ctx context.Context, actorID string, filter *request.RestaurantFilter) (*response.PaginatedResponse[response.RestaurantResponse], error) {
	filter.Normalize()
	if err := validate(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.RestaurantFilter{
		Search:     trimmed(filter.Search),
		City:       trimmed(filter.City),
		PriceLevel: filter.PriceLevel,
		MinRating:  filter.MinRating,
		Sort:       repository.RestaurantSort(filter.Sort),
	}
	if filter.Cuisine != nil {
		tag := utils.NormalizeTag(*filter.Cuisine)
		repoFilter.Cuisine = &tag
	}

	if actorID != "" {
		if actor, err := loadActor(ctx, s.repo.User, actorID); err == nil && actor.Role == entity.RoleAdmin {
			repoFilter.IncludeUnpublished = true
		}
	}

	now := s.now()

	if !filter.OpenNow {
		restaurants, err := s.repo.Restaurant.FindAll(ctx, repoFilter, filter.Limit(), filter.Offset())
		if err != nil {
			return nil, fmt.Errorf("list restaurants: %w", err)
		}
		total, err := s.repo.Restaurant.CountAll(ctx, repoFilter)
		if err != nil {
			return nil, fmt.Errorf("count restaurants: %w", err)
		}

		data := make([]response.RestaurantResponse, len(restaurants))
		for i, r := range restaurants {
			data[i] = response.RestaurantToResponse(r, s.status(r, now))
		}
		return response.NewPaginatedResponse(data, filter.Page, filter.PerPage, total), nil
	}

	// open_now depends on each restaurant's timezone, so it is filtered here.
	restaurants, err := s.repo.Restaurant.FindAll(ctx, repoFilter, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}

	open := make([]response.RestaurantResponse, 0, len(restaurants))
	for _, r := range restaurants {
		st := s.status(r, now)
		if st.IsOpen {
			open = append(open, response.RestaurantToResponse(r, st))
		}
	}

	page := utils.Paginate(open, filter.Page, filter.PerPage)
	return response.NewPaginatedResponse(page, filter.Page, filter.PerPage, int64(len(open))), nil
}

func (s *restaurantService) GetRestaurant(ctx context.Context, actorID, restaurantID string) (*response.RestaurantDetailResponse, error) {
	actor, restaurant, err := s.findVisible(ctx, actorID, restaurantID)
	if err != nil {
		return nil, err
	}

	resp := &response.RestaurantDetailResponse{
		RestaurantResponse: response.RestaurantToResponse(restaurant, s.status(restaurant, s.now())),
	}

	if actor != nil {
		key := utils.CompositeID(actor.ID, restaurant.ID)

		isFavorite, err := s.repo.Favorite.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("check favorite: %w", err)
		}
		resp.IsFavorite = &isFavorite

		vote, err := s.repo.Vote.FindByID(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("find vote: %w", err)
		}
		if vote != nil {
			resp.MyRating = &vote.Rating
		}
	}

	return resp, nil
}

func (s *restaurantService) GetRestaurantStatus(ctx context.Context, actorID, restaurantID string) (*response.RestaurantStatusResponse, error) {
	_, restaurant, err := s.findVisible(ctx, actorID, restaurantID)
	if err != nil {
		return nil, err
	}

	return &response.RestaurantStatusResponse{
		RestaurantID: restaurant.ID.String(),
		Status:       s.status(restaurant, s.now()),
	}, nil
}

func (s *restaurantService) CreateRestaurant(ctx context.Context, actorID string, req *request.RestaurantRequest) (*response.RestaurantResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create restaurant validation failed", zap.Error(err))
		return nil, err
	}

	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	weekly, err := cleanSchedule(req.Schedule)
	if err != nil {
		return nil, err
	}

	now := s.now()
	restaurant := &entity.Restaurant{
		Base: entity.NewBase(now),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Address:     strings.TrimSpace(req.Address),
		City:        strings.TrimSpace(req.City),
		Phone:       req.Phone,
		Website:     req.Website,
		PriceLevel:  req.PriceLevel,
		CuisineTags: utils.NormalizeTags(req.CuisineTags),
		Schedule:    weekly,
		ImageURLs:   []string{},
		IsPublished: true,
	}
	if req.Timezone != nil {
		restaurant.Timezone = *req.Timezone
	}
	if req.IsPublished != nil {
		restaurant.IsPublished = *req.IsPublished
	}

	if req.OwnerID != nil {
		owner, err := s.findClient(ctx, *req.OwnerID)
		if err != nil {
			return nil, err
		}
		restaurant.OwnerID = &owner.ID
	}

	if err := s.repo.Restaurant.Create(ctx, restaurant); err != nil {
		return nil, fmt.Errorf("create restaurant: %w", err)
	}

	if restaurant.IsPublished {
		n := newNotification(entity.NotificationRestaurantCreated,
			"New restaurant",
			fmt.Sprintf("%s is now listed in %s.", restaurant.Name, restaurant.City),
		)
		role := entity.RoleUser
		n.TargetRole = &role
		n.RestaurantID = &restaurant.ID
		n.CreatedBy = &actor.ID
		publish(ctx, s.repo.Notification, s.log, n)
	}
	if restaurant.OwnerID != nil {
		s.notifyOwner(ctx, restaurant, actor.ID)
	}

	s.log.Info("Restaurant created",
		zap.String("restaurant_id", restaurant.ID.String()),
		zap.String("name", restaurant.Name),
		zap.String("by", actorID),
	)

	resp := response.RestaurantToResponse(restaurant, s.status(restaurant, now))
	return &resp, nil
}

func (s *restaurantService) UpdateRestaurant(ctx context.Context, actorID, restaurantID string, req *request.RestaurantUpdateRequest) (*response.RestaurantResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	actor, restaurant, err := s.loadManaged(ctx, actorID, restaurantID)
	if err != nil {
		return nil, err
	}

	isAdmin := actor.Role == entity.RoleAdmin
	if !isAdmin && (req.OwnerID != nil || req.IsPublished != nil) {
		return nil, forbidden("only administrators can change the owner or the publish flag")
	}

	// Resolved before any write so a bad owner leaves the restaurant untouched.
	var owner *uuid.UUID
	if req.OwnerID != nil {
		owner, err = s.resolveOwner(ctx, req.OwnerID)
		if err != nil {
			return nil, err
		}
	}

	if req.Name != nil {
		restaurant.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		restaurant.Description = req.Description
	}
	if req.Address != nil {
		restaurant.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		restaurant.City = strings.TrimSpace(*req.City)
	}
	if req.Phone != nil {
		restaurant.Phone = req.Phone
	}
	if req.Website != nil {
		restaurant.Website = req.Website
	}
	if req.PriceLevel != nil {
		restaurant.PriceLevel = *req.PriceLevel
	}
	if req.CuisineTags != nil {
		restaurant.CuisineTags = utils.NormalizeTags(req.CuisineTags)
	}
	if req.Schedule != nil {
		weekly, err := cleanSchedule(req.Schedule)
		if err != nil {
			return nil, err
		}
		restaurant.Schedule = weekly
	}
	if req.Timezone != nil {
		restaurant.Timezone = *req.Timezone
	}
	if req.IsPublished != nil {
		restaurant.IsPublished = *req.IsPublished
	}

	restaurant.UpdatedAt = s.now()
	if err := s.repo.Restaurant.Update(ctx, restaurant); err != nil {
		return nil, fmt.Errorf("update restaurant: %w", err)
	}

	if req.OwnerID != nil {
		if err := s.applyOwner(ctx, actor, restaurant, owner); err != nil {
			return nil, err
		}
	}

	s.log.Info("Restaurant updated", zap.String("restaurant_id", restaurantID), zap.String("by", actorID))

	resp := response.RestaurantToResponse(restaurant, s.status(restaurant, s.now()))
	return &resp, nil
}

func (s *restaurantService) DeleteRestaurant(ctx context.Context, actorID, restaurantID string) error {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return err
	}
	if err := requireRole(actor, entity.RoleAdmin); err != nil {
		return err
	}

	id, err := parseID(restaurantID, "restaurant")
	if err != nil {
		return err
	}

	restaurant, err := s.repo.Restaurant.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find restaurant %s: %w", restaurantID, err)
	}
	if restaurant == nil {
		return notFound("restaurant")
	}

	if err := s.repo.Restaurant.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete restaurant: %w", err)
	}

	s.log.Info("Restaurant deleted", zap.String("restaurant_id", restaurantID), zap.String("by", actorID))
	return nil
}

func (s *restaurantService) UploadRestaurantImage(ctx context.Context, actorID, restaurantID string, file io.Reader) (*response.ImageUploadResponse, error) {
	_, restaurant, err := s.loadManaged(ctx, actorID, restaurantID)
	if err != nil {
		return nil, err
	}

	obj, err := s.store.Save(ctx, "restaurants/"+restaurant.ID.String(), file)
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return nil, invalidInput("%s", err.Error())
	case errors.Is(err, storage.ErrEmpty):
		return nil, invalidInput("%s", err.Error())
	case errors.Is(err, storage.ErrTooLarge):
		return nil, newError(ErrTooLarge, "%s", err.Error())
	case err != nil:
		return nil, fmt.Errorf("store image: %w", err)
	}

	if err := s.repo.Restaurant.AppendImage(ctx, restaurant.ID, obj.URL); err != nil {
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			s.log.Warn("Failed to remove orphaned image", zap.Error(delErr), zap.String("key", obj.Key))
		}
		return nil, fmt.Errorf("attach image: %w", err)
	}

	s.log.Info("Restaurant image uploaded",
		zap.String("restaurant_id", restaurantID),
		zap.String("content_type", obj.ContentType),
		zap.Int64("size", obj.Size),
	)

	return &response.ImageUploadResponse{
		RestaurantID: restaurant.ID.String(),
		URL:          obj.URL,
		ImageURLs:    append(restaurant.ImageURLs, obj.URL),
	}, nil
}

func (s *restaurantService) ListClientRestaurants(ctx context.Context, actorID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RestaurantResponse], error) {
	req.Normalize()

	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, entity.RoleClient); err != nil {
		return nil, err
	}

	filter := repository.RestaurantFilter{
		OwnerID:            &actor.ID,
		IncludeUnpublished: true,
		Sort:               repository.SortByName,
	}

	restaurants, err := s.repo.Restaurant.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list client restaurants: %w", err)
	}
	total, err := s.repo.Restaurant.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count client restaurants: %w", err)
	}

	now := s.now()
	data := make([]response.RestaurantResponse, len(restaurants))
	for i, r := range restaurants {
		data[i] = response.RestaurantToResponse(r, s.status(r, now))
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *restaurantService) AssignOwner(ctx context.Context, actorID, restaurantID string, req *request.AssignOwnerRequest) (*response.RestaurantResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	id, err := parseID(restaurantID, "restaurant")
	if err != nil {
		return nil, err
	}

	restaurant, err := s.repo.Restaurant.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find restaurant %s: %w", restaurantID, err)
	}
	if restaurant == nil {
		return nil, notFound("restaurant")
	}

	if err := s.setOwner(ctx, actor, restaurant, req.OwnerID); err != nil {
		return nil, err
	}

	resp := response.RestaurantToResponse(restaurant, s.status(restaurant, s.now()))
	return &resp, nil
}

// setOwner assigns ownerID (empty or nil clears it) and notifies the new owner.
func (s *restaurantService) setOwner(ctx context.Context, actor *entity.User, restaurant *entity.Restaurant, ownerID *string) error {
	owner, err := s.resolveOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	return s.applyOwner(ctx, actor, restaurant, owner)
}

// resolveOwner checks that ownerID names a CLIENT. Empty or nil means no owner.
func (s *restaurantService) resolveOwner(ctx context.Context, ownerID *string) (*uuid.UUID, error) {
	if ownerID == nil || *ownerID == "" {
		return nil, nil
	}
	client, err := s.findClient(ctx, *ownerID)
	if err != nil {
		return nil, err
	}
	return &client.ID, nil
}

func (s *restaurantService) applyOwner(ctx context.Context, actor *entity.User, restaurant *entity.Restaurant, owner *uuid.UUID) error {
	if sameOwner(restaurant.OwnerID, owner) {
		return nil
	}

	if err := s.repo.Restaurant.SetOwner(ctx, restaurant.ID, owner); err != nil {
		return fmt.Errorf("set restaurant owner: %w", err)
	}
	restaurant.OwnerID = owner

	ownerField := zap.Skip()
	if owner != nil {
		s.notifyOwner(ctx, restaurant, actor.ID)
		ownerField = zap.String("owner_id", owner.String())
	}

	s.log.Info("Restaurant owner changed",
		zap.String("restaurant_id", restaurant.ID.String()),
		ownerField,
		zap.String("by", actor.ID.String()),
	)
	return nil
}

func (s *restaurantService) notifyOwner(ctx context.Context, restaurant *entity.Restaurant, by uuid.UUID) {
	n := newNotification(entity.NotificationOwnerAssigned,
		"Restaurant assigned",
		fmt.Sprintf("You are now the owner of %s.", restaurant.Name),
	)
	n.TargetUserID = restaurant.OwnerID
	n.RestaurantID = &restaurant.ID
	n.CreatedBy = &by
	publish(ctx, s.repo.Notification, s.log, n)
}

func (s *restaurantService) findClient(ctx context.Context, rawID string) (*entity.User, error) {
	id, err := parseID(rawID, "owner")
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find owner %s: %w", rawID, err)
	}
	if user == nil {
		return nil, invalidInput("owner does not exist")
	}
	if user.Role != entity.RoleClient {
		return nil, invalidInput("owner must have role %s", entity.RoleClient)
	}
	return user, nil
}

// findVisible loads a restaurant the caller may see: published ones for
// everyone, unpublished ones only for an admin or the owning client. The
// actor is nil for anonymous or unknown callers.
func (s *restaurantService) findVisible(ctx context.Context, actorID, restaurantID string) (*entity.User, *entity.Restaurant, error) {
	id, err := parseID(restaurantID, "restaurant")
	if err != nil {
		return nil, nil, err
	}

	restaurant, err := s.repo.Restaurant.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("find restaurant %s: %w", restaurantID, err)
	}
	if restaurant == nil {
		return nil, nil, notFound("restaurant")
	}

	var actor *entity.User
	if actorID != "" {
		actor, err = loadActor(ctx, s.repo.User, actorID)
		if err != nil {
			actor = nil
		}
	}

	if !restaurant.IsPublished && !canManage(actor, restaurant) {
		return nil, nil, notFound("restaurant")
	}
	return actor, restaurant, nil
}

// loadManaged returns the restaurant when the actor is an admin or its owner.
func (s *restaurantService) loadManaged(ctx context.Context, actorID, restaurantID string) (*entity.User, *entity.Restaurant, error) {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireRole(actor, entity.RoleAdmin, entity.RoleClient); err != nil {
		return nil, nil, err
	}

	id, err := parseID(restaurantID, "restaurant")
	if err != nil {
		return nil, nil, err
	}

	restaurant, err := s.repo.Restaurant.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("find restaurant %s: %w", restaurantID, err)
	}
	if restaurant == nil {
		return nil, nil, notFound("restaurant")
	}
	if !canManage(actor, restaurant) {
		return nil, nil, forbidden("you do not manage this restaurant")
	}
	return actor, restaurant, nil
}

func canManage(actor *entity.User, restaurant *entity.Restaurant) bool {
	if actor == nil {
		return false
	}
	if actor.Role == entity.RoleAdmin {
		return true
	}
	return actor.Role == entity.RoleClient && restaurant.OwnedBy(actor.ID)
}

// findPublishedRestaurant hides unpublished and deleted restaurants.
func findPublishedRestaurant(ctx context.Context, repo repository.RestaurantRepository, restaurantID string) (*entity.Restaurant, error) {
	id, err := parseID(restaurantID, "restaurant")
	if err != nil {
		return nil, err
	}

	restaurant, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find restaurant %s: %w", restaurantID, err)
	}
	if restaurant == nil || !restaurant.IsPublished {
		return nil, notFound("restaurant")
	}
	return restaurant, nil
}

func cleanSchedule(w schedule.WeeklySchedule) (schedule.WeeklySchedule, error) {
	if w == nil {
		return schedule.WeeklySchedule{}, nil
	}
	normalized := w.Normalize()
	if err := normalized.Validate(); err != nil {
		return nil, invalidInput("invalid schedule: %s", err.Error())
	}
	return normalized, nil
}

func sameOwner(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
