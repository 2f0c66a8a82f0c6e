package entity

import (
	"time"

	"github.com/google/uuid"
)

// Vote is keyed by {userId}_{restaurantId}, one per user and restaurant.
type Vote struct {
	ID           string    `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	RestaurantID uuid.UUID `db:"restaurant_id"`
	Rating       int       `db:"rating"` // 1-5
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
