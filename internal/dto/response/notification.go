package response

import (
	"time"

	"restaurant-directory/internal/data/entity"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	Message      string                  `json:"message"`
	Type         entity.NotificationType `json:"type"`
	TargetUserID *string                 `json:"target_user_id,omitempty"`
	TargetRole   *entity.UserRole        `json:"target_role,omitempty"`
	RestaurantID *string                 `json:"restaurant_id,omitempty"`
	Read         bool                    `json:"read"`
	CreatedAt    time.Time               `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// NotificationToResponse renders n as seen by viewer.
func NotificationToResponse(n *entity.Notification, viewer uuid.UUID) NotificationResponse {
	resp := NotificationResponse{
		ID:         n.ID.String(),
		Title:      n.Title,
		Message:    n.Message,
		Type:       n.Type,
		TargetRole: n.TargetRole,
		Read:       n.IsReadBy(viewer),
		CreatedAt:  n.CreatedAt,
	}
	if n.TargetUserID != nil {
		id := n.TargetUserID.String()
		resp.TargetUserID = &id
	}
	if n.RestaurantID != nil {
		id := n.RestaurantID.String()
		resp.RestaurantID = &id
	}
	return resp
}
