package response

import (
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/schedule"
)

type RestaurantResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description *string                 `json:"description,omitempty"`
	Address     string                  `json:"address"`
	City        string                  `json:"city"`
	Phone       *string                 `json:"phone,omitempty"`
	Website     *string                 `json:"website,omitempty"`
	PriceLevel  int                     `json:"price_level"`
	CuisineTags []string                `json:"cuisine_tags"`
	Schedule    schedule.WeeklySchedule `json:"schedule"`
	Timezone    string                  `json:"timezone,omitempty"`
	ImageURLs   []string                `json:"image_urls"`
	OwnerID     *string                 `json:"owner_id,omitempty"`
	Rating      float64                 `json:"rating"`
	VoteCount   int64                   `json:"vote_count"`
	IsPublished bool                    `json:"is_published"`
	Status      schedule.Status         `json:"status"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// RestaurantDetailResponse adds caller specific fields, present only when
// the request is authenticated.
type RestaurantDetailResponse struct {
	RestaurantResponse
	IsFavorite *bool `json:"is_favorite,omitempty"`
	MyRating   *int  `json:"my_rating,omitempty"`
}

type RestaurantStatusResponse struct {
	RestaurantID string `json:"restaurant_id"`
	schedule.Status
}

type ImageUploadResponse struct {
	RestaurantID string   `json:"restaurant_id"`
	URL          string   `json:"url"`
	ImageURLs    []string `json:"image_urls"`
}

func RestaurantToResponse(r *entity.Restaurant, status schedule.Status) RestaurantResponse {
	resp := RestaurantResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		Address:     r.Address,
		City:        r.City,
		Phone:       r.Phone,
		Website:     r.Website,
		PriceLevel:  r.PriceLevel,
		CuisineTags: nonNil(r.CuisineTags),
		Schedule:    r.Schedule,
		Timezone:    r.Timezone,
		ImageURLs:   nonNil(r.ImageURLs),
		Rating:      r.Rating,
		VoteCount:   r.VoteCount,
		IsPublished: r.IsPublished,
		Status:      status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if resp.Schedule == nil {
		resp.Schedule = schedule.WeeklySchedule{}
	}
	if r.OwnerID != nil {
		owner := r.OwnerID.String()
		resp.OwnerID = &owner
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
