package entity

import (
	"github.com/google/uuid"
)

type Comment struct {
	BaseNoDelete
	RestaurantID uuid.UUID `db:"restaurant_id"`
	UserID       uuid.UUID `db:"user_id"`
	Content      string    `db:"content"`

	// Username is joined from users on reads.
	Username string `db:"-"`
}
