package request

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

type UserListRequest struct {
	PaginatedRequest
	Role *string `json:"role,omitempty" validate:"omitempty,role"`
}
