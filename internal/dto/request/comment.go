package request

type CommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
