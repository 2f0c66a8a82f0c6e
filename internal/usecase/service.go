package usecase

import (
	"time"

	"restaurant-directory/internal/data/repository"
	"restaurant-directory/pkg/storage"
	"restaurant-directory/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	User         UserService
	Restaurant   RestaurantService
	Vote         VoteService
	Favorite     FavoriteService
	Comment      CommentService
	Notification NotificationService
}

func NewService(repo *repository.Repository, store storage.Storage, config *utils.Config, log *zap.Logger) *Service {
	loc, err := time.LoadLocation(config.App.Timezone)
	if err != nil {
		log.Warn("Unknown default timezone, using UTC",
			zap.String("timezone", config.App.Timezone),
			zap.Error(err),
		)
		loc = time.UTC
	}

	return &Service{
		Auth:         NewAuthService(repo, config, log),
		User:         NewUserService(repo, log),
		Restaurant:   NewRestaurantService(repo, store, loc, log),
		Vote:         NewVoteService(repo, log),
		Favorite:     NewFavoriteService(repo, loc, log),
		Comment:      NewCommentService(repo, log),
		Notification: NewNotificationService(repo, log),
	}
}
