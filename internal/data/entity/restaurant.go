package entity

import (
	"restaurant-directory/internal/schedule"

	"github.com/google/uuid"
)

type Restaurant struct {
	Base
	Name        string                  `db:"name"`
	Description *string                 `db:"description"`
	Address     string                  `db:"address"`
	City        string                  `db:"city"`
	Phone       *string                 `db:"phone"`
	Website     *string                 `db:"website"`
	PriceLevel  int                     `db:"price_level"` // 1-4
	CuisineTags []string                `db:"cuisine_tags"`
	Schedule    schedule.WeeklySchedule `db:"schedule"`
	Timezone    string                  `db:"timezone"`
	ImageURLs   []string                `db:"image_urls"`
	OwnerID     *uuid.UUID              `db:"owner_id"`
	Rating      float64                 `db:"rating"`
	VoteCount   int64                   `db:"vote_count"`
	IsPublished bool                    `db:"is_published"`
}

// OwnedBy reports whether userID is the restaurant's client owner.
func (r *Restaurant) OwnedBy(userID uuid.UUID) bool {
	return r.OwnerID != nil && *r.OwnerID == userID
}
