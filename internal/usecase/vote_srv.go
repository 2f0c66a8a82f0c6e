package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"
	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/dto/response"
	"restaurant-directory/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VoteService interface {
	Vote(ctx context.Context, actorID, restaurantID string, req *request.VoteRequest) (*response.VoteResponse, error)
	GetMyVote(ctx context.Context, actorID, restaurantID string) (*response.VoteResponse, error)
	DeleteVote(ctx context.Context, actorID, restaurantID string) error
	GetRatingStats(ctx context.Context, restaurantID string) (*response.RatingStatsResponse, error)
}

type voteService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewVoteService(repo *repository.Repository, log *zap.Logger) VoteService {
	return &voteService{
		repo: repo,
		log:  log.With(zap.String("service", "vote")),
	}
}

// RatingStats summarizes the votes of one restaurant.
type RatingStats struct {
	Average      float64
	Count        int64
	Distribution map[int]int64
}

// CalculateRating returns the mean rounded to two decimals, 0 without votes.
// Out of range ratings are ignored.
func CalculateRating(ratings []int) RatingStats {
	stats := RatingStats{Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}

	sum := 0
	for _, r := range ratings {
		if r < 1 || r > 5 {
			continue
		}
		sum += r
		stats.Count++
		stats.Distribution[r]++
	}

	if stats.Count > 0 {
		stats.Average = math.Round(float64(sum)/float64(stats.Count)*100) / 100
	}
	return stats
}

func (s *voteService) Vote(ctx context.Context, actorID, restaurantID string, req *request.VoteRequest) (*response.VoteResponse, error) {
	if err := validate(req); err != nil {
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
	vote := &entity.Vote{
		ID:           utils.CompositeID(actor.ID, restaurant.ID),
		UserID:       actor.ID,
		RestaurantID: restaurant.ID,
		Rating:       req.Rating,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Vote.Upsert(ctx, vote); err != nil {
		return nil, fmt.Errorf("save vote: %w", err)
	}

	stats, err := s.recompute(ctx, restaurant.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("Vote recorded",
		zap.String("restaurant_id", restaurantID),
		zap.String("user_id", actorID),
		zap.Int("rating", req.Rating),
		zap.Float64("average", stats.Average),
	)

	return &response.VoteResponse{
		RestaurantID: restaurant.ID.String(),
		Rating:       vote.Rating,
		Average:      stats.Average,
		VoteCount:    stats.Count,
		UpdatedAt:    vote.UpdatedAt,
	}, nil
}

func (s *voteService) GetMyVote(ctx context.Context, actorID, restaurantID string) (*response.VoteResponse, error) {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return nil, err
	}

	restaurant, err := findPublishedRestaurant(ctx, s.repo.Restaurant, restaurantID)
	if err != nil {
		return nil, err
	}

	vote, err := s.repo.Vote.FindByID(ctx, utils.CompositeID(actor.ID, restaurant.ID))
	if err != nil {
		return nil, fmt.Errorf("find vote: %w", err)
	}
	if vote == nil {
		return nil, notFound("vote")
	}

	return &response.VoteResponse{
		RestaurantID: restaurant.ID.String(),
		Rating:       vote.Rating,
		Average:      restaurant.Rating,
		VoteCount:    restaurant.VoteCount,
		UpdatedAt:    vote.UpdatedAt,
	}, nil
}

func (s *voteService) DeleteVote(ctx context.Context, actorID, restaurantID string) error {
	actor, err := loadActor(ctx, s.repo.User, actorID)
	if err != nil {
		return err
	}

	id, err := parseID(restaurantID, "restaurant")
	if err != nil {
		return err
	}

	voteID := utils.CompositeID(actor.ID, id)
	vote, err := s.repo.Vote.FindByID(ctx, voteID)
	if err != nil {
		return fmt.Errorf("find vote: %w", err)
	}
	if vote == nil {
		return notFound("vote")
	}

	if err := s.repo.Vote.Delete(ctx, voteID); err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}

	if _, err := s.recompute(ctx, id); err != nil {
		return err
	}

	s.log.Info("Vote deleted", zap.String("restaurant_id", restaurantID), zap.String("user_id", actorID))
	return nil
}

func (s *voteService) GetRatingStats(ctx context.Context, restaurantID string) (*response.RatingStatsResponse, error) {
	restaurant, err := findPublishedRestaurant(ctx, s.repo.Restaurant, restaurantID)
	if err != nil {
		return nil, err
	}

	ratings, err := s.repo.Vote.FindRatingsByRestaurant(ctx, restaurant.ID)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	stats := CalculateRating(ratings)
	return &response.RatingStatsResponse{
		RestaurantID: restaurant.ID.String(),
		Average:      stats.Average,
		Count:        stats.Count,
		Distribution: stats.Distribution,
	}, nil
}

// recompute rebuilds the cached rating of a restaurant from all of its votes.
func (s *voteService) recompute(ctx context.Context, restaurantID uuid.UUID) (RatingStats, error) {
	ratings, err := s.repo.Vote.FindRatingsByRestaurant(ctx, restaurantID)
	if err != nil {
		return RatingStats{}, fmt.Errorf("load ratings: %w", err)
	}

	stats := CalculateRating(ratings)
	if err := s.repo.Restaurant.UpdateRating(ctx, restaurantID, stats.Average, stats.Count); err != nil {
		return RatingStats{}, fmt.Errorf("update restaurant rating: %w", err)
	}

	s.log.Debug("Restaurant rating updated",
		zap.String("restaurant_id", restaurantID.String()),
		zap.Float64("rating", stats.Average),
		zap.Int64("votes", stats.Count),
	)
	return stats, nil
}
