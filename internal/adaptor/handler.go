package adaptor

import (
	"restaurant-directory/internal/usecase"
	"restaurant-directory/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Restaurant   *RestaurantHandler
	Vote         *VoteHandler
	Favorite     *FavoriteHandler
	Comment      *CommentHandler
	Notification *NotificationHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(service.Auth, config.Cookie, log),
		User:         NewUserHandler(service.User, log),
		Restaurant:   NewRestaurantHandler(service.Restaurant, config.Storage.MaxUploadMB<<20, log),
		Vote:         NewVoteHandler(service.Vote, log),
		Favorite:     NewFavoriteHandler(service.Favorite, log),
		Comment:      NewCommentHandler(service.Comment, log),
		Notification: NewNotificationHandler(service.Notification, log),
	}
}
