package request

import "restaurant-directory/internal/schedule"

type RestaurantRequest struct {
	Name        string                  `json:"name" validate:"required,min=1,max=150"`
	Description *string                 `json:"description,omitempty" validate:"omitempty,max=2000"`
	Address     string                  `json:"address" validate:"required,min=1,max=255"`
	City        string                  `json:"city" validate:"required,min=1,max=100"`
	Phone       *string                 `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Website     *string                 `json:"website,omitempty" validate:"omitempty,url"`
	PriceLevel  int                     `json:"price_level" validate:"required,min=1,max=4"`
	CuisineTags []string                `json:"cuisine_tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
	Schedule    schedule.WeeklySchedule `json:"schedule,omitempty" validate:"omitempty,dive,dive"`
	Timezone    *string                 `json:"timezone,omitempty" validate:"omitempty,timezone"`
	OwnerID     *string                 `json:"owner_id,omitempty" validate:"omitempty,uuid"`
	IsPublished *bool                   `json:"is_published,omitempty"`
}

// RestaurantUpdateRequest is a partial update; nil fields are left unchanged.
type RestaurantUpdateRequest struct {
	Name        *string                 `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	Description *string                 `json:"description,omitempty" validate:"omitempty,max=2000"`
	Address     *string                 `json:"address,omitempty" validate:"omitempty,min=1,max=255"`
	City        *string                 `json:"city,omitempty" validate:"omitempty,min=1,max=100"`
	Phone       *string                 `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Website     *string                 `json:"website,omitempty" validate:"omitempty,url"`
	PriceLevel  *int                    `json:"price_level,omitempty" validate:"omitempty,min=1,max=4"`
	CuisineTags []string                `json:"cuisine_tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
	Schedule    schedule.WeeklySchedule `json:"schedule,omitempty" validate:"omitempty,dive,dive"`
	Timezone    *string                 `json:"timezone,omitempty" validate:"omitempty,timezone"`
	OwnerID     *string                 `json:"owner_id,omitempty" validate:"omitempty,uuid"`
	IsPublished *bool                   `json:"is_published,omitempty"`
}

type AssignOwnerRequest struct {
	// OwnerID nil clears the owner.
	OwnerID *string `json:"owner_id" validate:"omitempty,uuid"`
}

// RestaurantFilter is parsed from the list query string.
type RestaurantFilter struct {
	PaginatedRequest
	Search     *string
	City       *string
	Cuisine    *string
	PriceLevel *int     `validate:"omitempty,min=1,max=4"`
	MinRating  *float64 `validate:"omitempty,min=0,max=5"`
	OpenNow    bool
	Sort       string `validate:"omitempty,oneof=rating name newest"`
}
