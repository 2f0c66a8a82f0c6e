package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"
	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type NotificationService interface {
	CreateNotification(ctx context.Context, actorID string, req *request.CreateNotificationRequest) (*response.NotificationResponse, error)
	ListNotifications(ctx context.Context, actorID string) (*response.NotificationListResponse, error)
	UnreadCount(ctx context.Context, actorID string) (*response.UnreadCountResponse, error)
	MarkRead(ctx context.Context, actorID, notificationID string) error
	MarkAllRead(ctx context.Context, actorID string) (int64, error)
	DeleteNotification(ctx context.Context, actorID, notificationID string) error
}

type notificationService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewNotificationService(repo *repository.Repository, log *zap.Logger) NotificationService {
	return &notificationService{
		repo: repo,
		log:  log.With(zap.String("service", "notification")),
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, actorID string, req *request.CreateNotificationRequest) (*response.NotificationResponse, error) {
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

	kind := entity.NotificationGeneral
	if req.Type != "" {
		kind = entity.NotificationType(req.Type)
	}

	n := newNotification(kind, req.Title, req.Message)
	n.CreatedBy = &actor.ID

	if req.TargetUserID != nil {
		id, err := parseID(*req.TargetUserID, "target user")
		if err != nil {
			return nil, err
		}
		target, err := s.repo.User.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find target user: %w", err)
		}
		if target == nil {
			return nil, invalidInput("target user does not exist")
		}
		n.TargetUserID = &id
	}
	if req.TargetRole != nil {
		role := entity.UserRole(*req.TargetRole)
		n.TargetRole = &role
	}
	if req.RestaurantID != nil {
		id, err := parseID(*req.RestaurantID, "restaurant")
		if err != nil {
			return nil, err
		}
		n.RestaurantID = &id
	}

	if err := s.repo.Notification.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.log.Info("Notification created",
		zap.String("notification_id", n.ID.String()),
		zap.String("type", string(n.Type)),
		zap.String("by", actorID),
	)

	resp := response.NotificationToResponse(n, actor.ID)
	return &resp, nil
}

func (s *notificationService) ListNotifications(ctx context.Context, actorID string) (*response.NotificationListResponse, error) {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, err
	}

	notifications, err := s.visibleTo(ctx, actor)
	if err != nil {
		return nil, err
	}

	resp := &response.NotificationListResponse{
		Notifications: make([]response.NotificationResponse, len(notifications)),
	}
	for i, n := range notifications {
		resp.Notifications[i] = response.NotificationToResponse(n, actor.ID)
		if !resp.Notifications[i].Read {
			resp.UnreadCount++
		}
	}

	return resp, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, actorID string) (*response.UnreadCountResponse, error) {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, err
	}

	notifications, err := s.visibleTo(ctx, actor)
	if err != nil {
		return nil, err
	}

	return &response.UnreadCountResponse{UnreadCount: countUnread(notifications, actor.ID)}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actorID, notificationID string) error {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return err
	}

	n, err := s.find(ctx, notificationID)
	if err != nil {
		return err
	}
	if !visible(n, actor) {
		return notFound("notification")
	}
	if n.IsReadBy(actor.ID) {
		return nil
	}

	if err := s.repo.Notification.MarkRead(ctx, n.ID, actor.ID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actorID string) (int64, error) {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return 0, err
	}

	updated, err := s.repo.Notification.MarkAllRead(ctx, actor.ID, actor.Role)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	s.log.Debug("Notifications marked read", zap.String("user_id", actorID), zap.Int64("count", updated))
	return updated, nil
}

func (s *notificationService) DeleteNotification(ctx context.Context, actorID, notificationID string) error {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return err
	}

	n, err := s.find(ctx, notificationID)
	if err != nil {
		return err
	}

	if actor.Role != entity.RoleAdmin && !n.TargetsUser(actor.ID) {
		return forbidden("you can only delete notifications addressed to you")
	}

	if err := s.repo.Notification.Delete(ctx, n.ID); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	s.log.Info("Notification deleted", zap.String("notification_id", notificationID), zap.String("by", actorID))
	return nil
}

func (s *notificationService) find(ctx context.Context, notificationID string) (*entity.Notification, error) {
	id, err := parseID(notificationID, "notification")
	if err != nil {
		return nil, err
	}

	n, err := s.repo.Notification.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find notification %s: %w", notificationID, err)
	}
	if n == nil {
		return nil, notFound("notification")
	}
	return n, nil
}

// visibleTo runs the user-targeted and role-targeted queries concurrently and
// merges the results.
func (s *notificationService) visibleTo(ctx context.Context, actor *entity.User) ([]*entity.Notification, error) {
	var byUser, byRole []*entity.Notification

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byUser, err = s.repo.Notification.FindByTargetUser(gctx, actor.ID)
		return err
	})
	g.Go(func() error {
		var err error
		byRole, err = s.repo.Notification.FindByTargetRole(gctx, actor.Role)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load notifications for user %s: %w", actor.ID, err)
	}

	return mergeNotifications(byUser, byRole), nil
}

// mergeNotifications concatenates the lists, keeps the first occurrence of
// each id and sorts newest first. Ties are broken by id for a stable order.
func mergeNotifications(lists ...[]*entity.Notification) []*entity.Notification {
	seen := make(map[uuid.UUID]struct{})
	merged := []*entity.Notification{}
	for _, list := range lists {
		for _, n := range list {
			if _, ok := seen[n.ID]; ok {
				continue
			}
			seen[n.ID] = struct{}{}
			merged = append(merged, n)
		}
	}

	slices.SortStableFunc(merged, func(a, b *entity.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return merged
}

func countUnread(notifications []*entity.Notification, userID uuid.UUID) int {
	unread := 0
	for _, n := range notifications {
		if !n.IsReadBy(userID) {
			unread++
		}
	}
	return unread
}

func visible(n *entity.Notification, user *entity.User) bool {
	return n.TargetsUser(user.ID) || (n.TargetRole != nil && *n.TargetRole == user.Role)
}

func newNotification(kind entity.NotificationType, title, message string) *entity.Notification {
	return &entity.Notification{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		Title:   title,
		Message: message,
		Type:    kind,
		ReadBy:  []string{},
	}
}

// publish stores a system notification. Failures are logged and swallowed so
// they never fail the operation that triggered them.
func publish(ctx context.Context, repo repository.NotificationRepository, log *zap.Logger, n *entity.Notification) {
	if err := repo.Create(ctx, n); err != nil {
		log.Warn("Failed to publish notification",
			zap.Error(err),
			zap.String("type", string(n.Type)),
		)
	}
}
