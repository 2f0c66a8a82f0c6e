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

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	// FindByRestaurant returns comments newest first with the author's username.
	FindByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit, offset int) ([]*entity.Comment, error)
	CountByRestaurant(ctx context.Context, restaurantID uuid.UUID) (int64, error)
	Update(ctx context.Context, comment *entity.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type commentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCommentRepository(db database.PgxIface, log *zap.Logger) CommentRepository {
	return &commentRepository{
		db:  db,
		log: log.With(zap.String("repository", "comment")),
	}
}

const commentSelect = `
		SELECT c.id, c.restaurant_id, c.user_id, c.content, c.created_at, c.updated_at,
		       COALESCE(u.username, '')
		FROM comments c
		LEFT JOIN users u ON u.id = c.user_id
`

func scanComment(row rowScanner) (*entity.Comment, error) {
	var c entity.Comment
	err := row.Scan(
		&c.ID,
		&c.RestaurantID,
		&c.UserID,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.Username,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	query := `
		INSERT INTO comments (id, restaurant_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		comment.ID,
		comment.RestaurantID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create comment",
			zap.Error(err),
			zap.String("restaurant_id", comment.RestaurantID.String()),
			zap.String("user_id", comment.UserID.String()),
		)
		return fmt.Errorf("create comment on restaurant %s: %w", comment.RestaurantID.String(), err)
	}

	return nil
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	comment, err := scanComment(r.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find comment", zap.Error(err), zap.String("comment_id", id.String()))
		return nil, fmt.Errorf("find comment %s: %w", id.String(), err)
	}

	return comment, nil
}

func (r *commentRepository) FindByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit, offset int) ([]*entity.Comment, error) {
	query := commentSelect + `
		WHERE c.restaurant_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, restaurantID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find comments",
			zap.Error(err),
			zap.String("restaurant_id", restaurantID.String()),
		)
		return nil, fmt.Errorf("find comments of restaurant %s: %w", restaurantID.String(), err)
	}
	defer rows.Close()

	comments := []*entity.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment rows: %w", err)
	}

	return comments, nil
}

func (r *commentRepository) CountByRestaurant(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE restaurant_id = $1`, restaurantID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count comments", zap.Error(err))
		return 0, fmt.Errorf("count comments of restaurant %s: %w", restaurantID.String(), err)
	}

	return count, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *entity.Comment) error {
	query := `UPDATE comments SET content = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, comment.ID, comment.Content, comment.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update comment", zap.Error(err), zap.String("comment_id", comment.ID.String()))
		return fmt.Errorf("update comment %s: %w", comment.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("comment %s not found", comment.ID.String())
	}

	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete comment", zap.Error(err), zap.String("comment_id", id.String()))
		return fmt.Errorf("delete comment %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("comment %s not found", id.String())
	}

	return nil
}
