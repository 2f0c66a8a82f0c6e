package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RestaurantSort string

const (
	SortByRating RestaurantSort = "rating"
	SortByName   RestaurantSort = "name"
	SortByNewest RestaurantSort = "newest"
)

// RestaurantFilter narrows FindAll/CountAll. Nil fields are ignored.
type RestaurantFilter struct {
	Search             *string
	City               *string
	Cuisine            *string
	PriceLevel         *int
	MinRating          *float64
	OwnerID            *uuid.UUID
	IDs                []uuid.UUID
	IncludeUnpublished bool
	Sort               RestaurantSort
}

type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *entity.Restaurant) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error)
	// IDTaken reports whether any row uses id, soft-deleted rows included.
	IDTaken(ctx context.Context, id uuid.UUID) (bool, error)
	// FindAll returns every match when limit <= 0.
	FindAll(ctx context.Context, filter RestaurantFilter, limit, offset int) ([]*entity.Restaurant, error)
	CountAll(ctx context.Context, filter RestaurantFilter) (int64, error)
	Update(ctx context.Context, restaurant *entity.Restaurant) error
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, voteCount int64) error
	AppendImage(ctx context.Context, id uuid.UUID, url string) error
	SetOwner(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) error
	// ClearOwner detaches every restaurant owned by ownerID and returns how many.
	ClearOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type restaurantRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRestaurantRepository(db database.PgxIface, log *zap.Logger) RestaurantRepository {
	return &restaurantRepository{
		db:  db,
		log: log.With(zap.String("repository", "restaurant")),
	}
}

const restaurantColumns = `id, name, description, address, city, phone, website,
		       price_level, cuisine_tags, schedule, timezone, image_urls,
		       owner_id, rating, vote_count, is_published,
		       created_at, updated_at, deleted_at`

func scanRestaurant(row rowScanner) (*entity.Restaurant, error) {
	var r entity.Restaurant
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Description,
		&r.Address,
		&r.City,
		&r.Phone,
		&r.Website,
		&r.PriceLevel,
		&r.CuisineTags,
		&r.Schedule,
		&r.Timezone,
		&r.ImageURLs,
		&r.OwnerID,
		&r.Rating,
		&r.VoteCount,
		&r.IsPublished,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *restaurantRepository) Create(ctx context.Context, restaurant *entity.Restaurant) error {
	query := `
		INSERT INTO restaurants (id, name, description, address, city, phone, website,
		                         price_level, cuisine_tags, schedule, timezone, image_urls,
		                         owner_id, rating, vote_count, is_published,
		                         created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.Exec(ctx, query,
		restaurant.ID,
		restaurant.Name,
		restaurant.Description,
		restaurant.Address,
		restaurant.City,
		restaurant.Phone,
		restaurant.Website,
		restaurant.PriceLevel,
		nonNilStrings(restaurant.CuisineTags),
		restaurant.Schedule,
		restaurant.Timezone,
		nonNilStrings(restaurant.ImageURLs),
		restaurant.OwnerID,
		restaurant.Rating,
		restaurant.VoteCount,
		restaurant.IsPublished,
		restaurant.CreatedAt,
		restaurant.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create restaurant",
			zap.Error(err),
			zap.String("name", restaurant.Name),
			zap.String("city", restaurant.City),
		)
		return fmt.Errorf("create restaurant %s: %w", restaurant.Name, err)
	}

	return nil
}

func (r *restaurantRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1 AND deleted_at IS NULL`

	restaurant, err := scanRestaurant(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find restaurant by ID",
			zap.Error(err),
			zap.String("restaurant_id", id.String()),
		)
		return nil, fmt.Errorf("find restaurant by ID %s: %w", id.String(), err)
	}

	return restaurant, nil
}

func (r *restaurantRepository) IDTaken(ctx context.Context, id uuid.UUID) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM restaurants WHERE id = $1)`, id).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check restaurant ID %s: %w", id.String(), err)
	}
	return taken, nil
}

// buildWhere renders the filter as a WHERE clause with positional args.
func (f RestaurantFilter) buildWhere() (string, []any) {
	var sb strings.Builder
	sb.WriteString(" WHERE deleted_at IS NULL")

	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.IncludeUnpublished {
		sb.WriteString(" AND is_published = true")
	}
	if f.Search != nil && *f.Search != "" {
		p := next(containsPattern(*f.Search))
		sb.WriteString(fmt.Sprintf(` AND (name ILIKE %s ESCAPE '\' OR description ILIKE %s ESCAPE '\')`, p, p))
	}
	if f.City != nil && *f.City != "" {
		sb.WriteString(" AND city ILIKE " + next(containsPattern(*f.City)) + ` ESCAPE '\'`)
	}
	if f.Cuisine != nil && *f.Cuisine != "" {
		sb.WriteString(" AND " + next(*f.Cuisine) + " = ANY(cuisine_tags)")
	}
	if f.PriceLevel != nil {
		sb.WriteString(" AND price_level = " + next(*f.PriceLevel))
	}
	if f.MinRating != nil {
		sb.WriteString(" AND rating >= " + next(*f.MinRating))
	}
	if f.OwnerID != nil {
		sb.WriteString(" AND owner_id = " + next(*f.OwnerID))
	}
	if f.IDs != nil {
		ids := make([]string, len(f.IDs))
		for i, id := range f.IDs {
			ids[i] = id.String()
		}
		sb.WriteString(" AND id = ANY(" + next(ids) + "::uuid[])")
	}

	return sb.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern matches term literally anywhere in the column.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func (f RestaurantFilter) orderBy() string {
	switch f.Sort {
	case SortByName:
		return " ORDER BY name ASC"
	case SortByNewest:
		return " ORDER BY created_at DESC"
	default:
		return " ORDER BY rating DESC, vote_count DESC, name ASC"
	}
}

func (r *restaurantRepository) FindAll(ctx context.Context, filter RestaurantFilter, limit, offset int) ([]*entity.Restaurant, error) {
	where, args := filter.buildWhere()
	query := `SELECT ` + restaurantColumns + ` FROM restaurants` + where + filter.orderBy()

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find restaurants",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := []*entity.Restaurant{}
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			r.log.Error("Failed to scan restaurant row", zap.Error(err))
			return nil, fmt.Errorf("scan restaurant row: %w", err)
		}
		restaurants = append(restaurants, restaurant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurant rows: %w", err)
	}

	return restaurants, nil
}

func (r *restaurantRepository) CountAll(ctx context.Context, filter RestaurantFilter) (int64, error) {
	where, args := filter.buildWhere()
	query := `SELECT COUNT(*) FROM restaurants` + where

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count restaurants", zap.Error(err))
		return 0, fmt.Errorf("count restaurants: %w", err)
	}

	return count, nil
}

func (r *restaurantRepository) Update(ctx context.Context, restaurant *entity.Restaurant) error {
	query := `
		UPDATE restaurants
		SET name = $2, description = $3, address = $4, city = $5, phone = $6,
		    website = $7, price_level = $8, cuisine_tags = $9, schedule = $10,
		    timezone = $11, image_urls = $12, is_published = $13, updated_at = $14
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		restaurant.ID,
		restaurant.Name,
		restaurant.Description,
		restaurant.Address,
		restaurant.City,
		restaurant.Phone,
		restaurant.Website,
		restaurant.PriceLevel,
		nonNilStrings(restaurant.CuisineTags),
		restaurant.Schedule,
		restaurant.Timezone,
		nonNilStrings(restaurant.ImageURLs),
		restaurant.IsPublished,
		restaurant.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update restaurant",
			zap.Error(err),
			zap.String("restaurant_id", restaurant.ID.String()),
		)
		return fmt.Errorf("update restaurant %s: %w", restaurant.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("restaurant %s not found", restaurant.ID.String())
	}

	return nil
}

func (r *restaurantRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, voteCount int64) error {
	query := `UPDATE restaurants SET rating = $2, vote_count = $3, updated_at = $4 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id, rating, voteCount, time.Now())
	if err != nil {
		r.log.Error("Failed to update restaurant rating",
			zap.Error(err),
			zap.String("restaurant_id", id.String()),
			zap.Float64("rating", rating),
		)
		return fmt.Errorf("update rating of restaurant %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("restaurant %s not found", id.String())
	}

	return nil
}

func (r *restaurantRepository) AppendImage(ctx context.Context, id uuid.UUID, url string) error {
	query := `
		UPDATE restaurants
		SET image_urls = array_append(image_urls, $2), updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id, url, time.Now())
	if err != nil {
		r.log.Error("Failed to append restaurant image",
			zap.Error(err),
			zap.String("restaurant_id", id.String()),
		)
		return fmt.Errorf("append image to restaurant %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("restaurant %s not found", id.String())
	}

	return nil
}

func (r *restaurantRepository) SetOwner(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) error {
	query := `UPDATE restaurants SET owner_id = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id, ownerID, time.Now())
	if err != nil {
		r.log.Error("Failed to set restaurant owner",
			zap.Error(err),
			zap.String("restaurant_id", id.String()),
		)
		return fmt.Errorf("set owner of restaurant %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("restaurant %s not found", id.String())
	}

	return nil
}

func (r *restaurantRepository) ClearOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	query := `UPDATE restaurants SET owner_id = NULL, updated_at = $2 WHERE owner_id = $1`

	result, err := r.db.Exec(ctx, query, ownerID, time.Now())
	if err != nil {
		r.log.Error("Failed to clear restaurant owner",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
		)
		return 0, fmt.Errorf("clear restaurants of owner %s: %w", ownerID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *restaurantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE restaurants SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete restaurant",
			zap.Error(err),
			zap.String("restaurant_id", id.String()),
		)
		return fmt.Errorf("delete restaurant %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("restaurant %s not found", id.String())
	}

	r.log.Info("Restaurant deleted", zap.String("restaurant_id", id.String()))
	return nil
}

// nonNilStrings keeps NOT NULL array columns from receiving NULL.
func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
