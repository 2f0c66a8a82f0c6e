package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"
	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CommentService interface {
	ListComments(ctx context.Context, restaurantID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CommentResponse], error)
	CreateComment(ctx context.Context, actorID, restaurantID string, req *request.CommentRequest) (*response.CommentResponse, error)
	UpdateComment(ctx context.Context, actorID, commentID string, req *request.CommentRequest) (*response.CommentResponse, error)
	DeleteComment(ctx context.Context, actorID, commentID string) error
}

type commentService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewCommentService(repo *repository.Repository, log *zap.Logger) CommentService {
	return &commentService{
		repo: repo,
		log:  log.With(zap.String("service", "comment")),
	}
}

func (s *commentService) ListComments(ctx context.Context, restaurantID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CommentResponse], error) {
	req.Normalize()

	restaurant, err := findPublishedRestaurant(ctx, s.repo.Restaurant, restaurantID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.Comment.FindByRestaurant(ctx, restaurant.ID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	total, err := s.repo.Comment.CountByRestaurant(ctx, restaurant.ID)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	data := make([]response.CommentResponse, len(comments))
	for i, c := range comments {
		data[i] = response.CommentToResponse(c)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *commentService) CreateComment(ctx context.Context, actorID, restaurantID string, req *request.CommentRequest) (*response.CommentResponse, error) {
	content, err := cleanContent(req)
	if err != nil {
		return nil, err
	}

	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, err
	}

	restaurant, err := findPublishedRestaurant(ctx, s.repo.Restaurant, restaurantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	comment := &entity.Comment{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RestaurantID: restaurant.ID,
		UserID:       actor.ID,
		Content:      content,
		Username:     actor.Username,
	}

	if err := s.repo.Comment.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if restaurant.OwnerID != nil && *restaurant.OwnerID != actor.ID {
		n := newNotification(entity.NotificationNewComment,
			"New comment",
			fmt.Sprintf("%s commented on %s.", actor.Username, restaurant.Name),
		)
		n.TargetUserID = restaurant.OwnerID
		n.RestaurantID = &restaurant.ID
		n.CreatedBy = &actor.ID
		publish(ctx, s.repo.Notification, s.log, n)
	}

	s.log.Info("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("restaurant_id", restaurantID),
		zap.String("user_id", actorID),
	)

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

func (s *commentService) UpdateComment(ctx context.Context, actorID, commentID string, req *request.CommentRequest) (*response.CommentResponse, error) {
	content, err := cleanContent(req)
	if err != nil {
		return nil, err
	}

	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, err
	}

	comment, err := s.find(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actor.ID {
		return nil, forbidden("you can only edit your own comments")
	}

	comment.Content = content
	comment.UpdatedAt = time.Now()
	if err := s.repo.Comment.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

func (s *commentService) DeleteComment(ctx context.Context, actorID, commentID string) error {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return err
	}

	comment, err := s.find(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actor.ID && actor.Role != entity.RoleAdmin {
		return forbidden("you can only delete your own comments")
	}

	if err := s.repo.Comment.Delete(ctx, comment.ID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	s.log.Info("Comment deleted", zap.String("comment_id", commentID), zap.String("by", actorID))
	return nil
}

func (s *commentService) find(ctx context.Context, commentID string) (*entity.Comment, error) {
	id, err := parseID(commentID, "comment")
	if err != nil {
		return nil, err
	}

	comment, err := s.repo.Comment.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find comment %s: %w", commentID, err)
	}
	if comment == nil {
		return nil, notFound("comment")
	}
	return comment, nil
}

func cleanContent(req *request.CommentRequest) (string, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := validate(req); err != nil {
		return "", err
	}
	return req.Content, nil
}
