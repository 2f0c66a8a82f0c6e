package entity

import (
	"time"

	"github.com/google/uuid"
)

type Favorite struct {
	ID           string    `db:"id"` // {userId}_{restaurantId}
	UserID       uuid.UUID `db:"user_id"`
	RestaurantID uuid.UUID `db:"restaurant_id"`
	CreatedAt    time.Time `db:"created_at"`
}
