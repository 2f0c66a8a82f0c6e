package usecase

import (
	"context"
	"fmt"
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"
	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	ListUsers(ctx context.Context, req *request.UserListRequest) (*response.PaginatedResponse[response.UserResponse], error)
	UpdateRole(ctx context.Context, actorID, userID string, req *request.UpdateRoleRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, actorID, userID string) error
}

type userService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewUserService(repo *repository.Repository, log *zap.Logger) UserService {
	return &userService{
		repo: repo,
		log:  log.With(zap.String("service", "user")),
	}
}

func (us *userService) ListUsers(ctx context.Context, req *request.UserListRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}

	var role *entity.UserRole
	if req.Role != nil {
		r := entity.UserRole(*req.Role)
		role = &r
	}

	users, err := us.repo.User.FindAll(ctx, role, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	total, err := us.repo.User.CountAll(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	data := make([]response.UserResponse, len(users))
	for i, user := range users {
		data[i] = response.UserToResponse(user)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (us *userService) UpdateRole(ctx context.Context, actorID, userID string, req *request.UpdateRoleRequest) (*response.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	actor, err := loadActor(ctx, us.repo.User, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}

	newRole := entity.UserRole(req.Role)
	if id == actor.ID && newRole != entity.RoleAdmin {
		return nil, forbidden("administrators cannot demote themselves")
	}

	user, err := us.repo.User.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", userID, err)
	}
	if user == nil {
		return nil, notFound("user")
	}

	if user.Role == newRole {
		resp := response.UserToResponse(user)
		return &resp, nil
	}

	previous := user.Role
	if previous == entity.RoleClient {
		if err := us.releaseRestaurants(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	if err := us.repo.User.UpdateRole(ctx, id, newRole); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	user.Role = newRole
	user.UpdatedAt = time.Now()

	n := newNotification(entity.NotificationRoleChanged,
		"Your role has changed",
		fmt.Sprintf("Your account role changed from %s to %s.", previous, newRole),
	)
	n.TargetUserID = &user.ID
	n.CreatedBy = &actor.ID
	publish(ctx, us.repo.Notification, us.log, n)

	us.log.Info("User role updated",
		zap.String("user_id", userID),
		zap.String("from", string(previous)),
		zap.String("to", string(newRole)),
		zap.String("by", actorID),
	)

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) DeleteUser(ctx context.Context, actorID, userID string) error {
	actor, err := loadActor(ctx, us.repo.User, actorID)
	if err != nil {
		return err
	}
	if err := requireRole(actor, entity.RoleAdmin); err != nil {
		return err
	}

	id, err := parseID(userID, "user")
	if err != nil {
		return err
	}
	if id == actor.ID {
		return forbidden("administrators cannot delete themselves")
	}

	user, err := us.repo.User.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find user %s: %w", userID, err)
	}
	if user == nil {
		return notFound("user")
	}

	if user.Role == entity.RoleClient {
		if err := us.releaseRestaurants(ctx, user.ID); err != nil {
			return err
		}
	}

	if err := us.repo.User.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := us.repo.Session.RevokeAllUserSessions(ctx, id); err != nil {
		us.log.Warn("Failed to revoke sessions of deleted user", zap.Error(err), zap.String("user_id", userID))
	}

	us.log.Info("User deleted", zap.String("user_id", userID), zap.String("by", actorID))
	return nil
}

// releaseRestaurants clears ownership held by a user who is no longer a CLIENT.
func (us *userService) releaseRestaurants(ctx context.Context, ownerID uuid.UUID) error {
	released, err := us.repo.Restaurant.ClearOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("release owned restaurants: %w", err)
	}
	if released > 0 {
		us.log.Info("Owned restaurants released",
			zap.String("user_id", ownerID.String()),
			zap.Int64("restaurants", released),
		)
	}
	return nil
}
