package entity

import (
	"slices"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationGeneral           NotificationType = "general"
	NotificationRestaurantCreated NotificationType = "restaurant_created"
	NotificationNewComment        NotificationType = "new_comment"
	NotificationRoleChanged       NotificationType = "role_changed"
	NotificationOwnerAssigned     NotificationType = "owner_assigned"
)

// Notification targets a single user, every user of a role, or both.
type Notification struct {
	BaseSimple
	Title        string           `db:"title"`
	Message      string           `db:"message"`
	Type         NotificationType `db:"type"`
	TargetUserID *uuid.UUID       `db:"target_user_id"`
	TargetRole   *UserRole        `db:"target_role"`
	RestaurantID *uuid.UUID       `db:"restaurant_id"`
	CreatedBy    *uuid.UUID       `db:"created_by"`
	ReadBy       []string         `db:"read_by"`
}

func (n *Notification) IsReadBy(userID uuid.UUID) bool {
	return slices.Contains(n.ReadBy, userID.String())
}

func (n *Notification) TargetsUser(userID uuid.UUID) bool {
	return n.TargetUserID != nil && *n.TargetUserID == userID
}
