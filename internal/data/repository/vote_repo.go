package repository

import (
	"context"
	"errors"
	"fmt"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type VoteRepository interface {
	// Upsert creates the vote or replaces the rating of an existing one.
	Upsert(ctx context.Context, vote *entity.Vote) error
	FindByID(ctx context.Context, id string) (*entity.Vote, error)
	Delete(ctx context.Context, id string) error

	// FindRatingsByRestaurant returns every rating given to a restaurant.
	FindRatingsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]int, error)
}

type voteRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewVoteRepository(db database.PgxIface, log *zap.Logger) VoteRepository {
	return &voteRepository{
		db:  db,
		log: log.With(zap.String("repository", "vote")),
	}
}

func (r *voteRepository) Upsert(ctx context.Context, vote *entity.Vote) error {
	query := `
		INSERT INTO votes (id, user_id, restaurant_id, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET rating = EXCLUDED.rating, updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		vote.ID,
		vote.UserID,
		vote.RestaurantID,
		vote.Rating,
		vote.CreatedAt,
		vote.UpdatedAt,
	).Scan(&vote.CreatedAt)

	if err != nil {
		r.log.Error("Failed to upsert vote",
			zap.Error(err),
			zap.String("user_id", vote.UserID.String()),
			zap.String("restaurant_id", vote.RestaurantID.String()),
		)
		return fmt.Errorf("upsert vote for restaurant %s by user %s: %w",
			vote.RestaurantID.String(), vote.UserID.String(), err)
	}

	return nil
}

func (r *voteRepository) FindByID(ctx context.Context, id string) (*entity.Vote, error) {
	query := `
		SELECT id, user_id, restaurant_id, rating, created_at, updated_at
		FROM votes
		WHERE id = $1
	`

	var vote entity.Vote
	err := r.db.QueryRow(ctx, query, id).Scan(
		&vote.ID,
		&vote.UserID,
		&vote.RestaurantID,
		&vote.Rating,
		&vote.CreatedAt,
		&vote.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find vote", zap.Error(err), zap.String("vote_id", id))
		return nil, fmt.Errorf("find vote %s: %w", id, err)
	}

	return &vote, nil
}

func (r *voteRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM votes WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete vote", zap.Error(err), zap.String("vote_id", id))
		return fmt.Errorf("delete vote %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("vote %s not found", id)
	}

	return nil
}

func (r *voteRepository) FindRatingsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]int, error) {
	query := `SELECT rating FROM votes WHERE restaurant_id = $1`

	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		r.log.Error("Failed to find ratings",
			zap.Error(err),
			zap.String("restaurant_id", restaurantID.String()),
		)
		return nil, fmt.Errorf("find ratings of restaurant %s: %w", restaurantID.String(), err)
	}
	defer rows.Close()

	ratings := []int{}
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		ratings = append(ratings, rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating rows: %w", err)
	}

	return ratings, nil
}
