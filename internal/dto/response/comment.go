package response

import (
	"time"

	"restaurant-directory/internal/data/entity"
)

type CommentResponse struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func CommentToResponse(c *entity.Comment) CommentResponse {
	return CommentResponse{
		ID:           c.ID.String(),
		RestaurantID: c.RestaurantID.String(),
		UserID:       c.UserID.String(),
		Username:     c.Username,
		Content:      c.Content,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
