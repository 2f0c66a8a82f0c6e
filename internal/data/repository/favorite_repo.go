package repository

import (
	"context"
	"fmt"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FavoriteRepository interface {
	// Add is a no-op when the favorite already exists.
	Add(ctx context.Context, favorite *entity.Favorite) error
	Remove(ctx context.Context, id string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
	// FindRestaurantIDsByUser returns the user's favorites, newest first.
	FindRestaurantIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type favoriteRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewFavoriteRepository(db database.PgxIface, log *zap.Logger) FavoriteRepository {
	return &favoriteRepository{
		db:  db,
		log: log.With(zap.String("repository", "favorite")),
	}
}

func (r *favoriteRepository) Add(ctx context.Context, favorite *entity.Favorite) error {
	query := `
		INSERT INTO favorites (id, user_id, restaurant_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query,
		favorite.ID,
		favorite.UserID,
		favorite.RestaurantID,
		favorite.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to add favorite",
			zap.Error(err),
			zap.String("user_id", favorite.UserID.String()),
			zap.String("restaurant_id", favorite.RestaurantID.String()),
		)
		return fmt.Errorf("add favorite %s: %w", favorite.ID, err)
	}

	return nil
}

func (r *favoriteRepository) Remove(ctx context.Context, id string) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to remove favorite", zap.Error(err), zap.String("favorite_id", id))
		return false, fmt.Errorf("remove favorite %s: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *favoriteRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM favorites WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check favorite", zap.Error(err), zap.String("favorite_id", id))
		return false, fmt.Errorf("check favorite %s: %w", id, err)
	}

	return exists, nil
}

func (r *favoriteRepository) FindRestaurantIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT restaurant_id
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find favorites", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find favorites of user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorite rows: %w", err)
	}

	return ids, nil
}
