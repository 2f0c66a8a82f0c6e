package request

type CreateNotificationRequest struct {
	Title        string  `json:"title" validate:"required,min=1,max=150"`
	Message      string  `json:"message" validate:"required,min=1,max=2000"`
	Type         string  `json:"type,omitempty" validate:"omitempty,oneof=general restaurant_created new_comment role_changed owner_assigned"`
	TargetUserID *string `json:"target_user_id,omitempty" validate:"required_without=TargetRole,omitempty,uuid"`
	TargetRole   *string `json:"target_role,omitempty" validate:"required_without=TargetUserID,omitempty,role"`
	RestaurantID *string `json:"restaurant_id,omitempty" validate:"omitempty,uuid"`
}
