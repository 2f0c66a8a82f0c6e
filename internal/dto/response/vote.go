package response

import "time"

type VoteResponse struct {
	RestaurantID string    `json:"restaurant_id"`
	Rating       int       `json:"rating"`
	Average      float64   `json:"average"`
	VoteCount    int64     `json:"vote_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RatingStatsResponse struct {
	RestaurantID string  `json:"restaurant_id"`
	Average      float64 `json:"average"`
	Count        int64   `json:"count"`
	// Distribution maps each star value (1-5) to its number of votes.
	Distribution map[int]int64 `json:"distribution"`
}

type FavoriteStatusResponse struct {
	RestaurantID string `json:"restaurant_id"`
	IsFavorite   bool   `json:"is_favorite"`
}
