package repository

import (
	"restaurant-directory/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	OTP          OTPRepository
	Restaurant   RestaurantRepository
	Vote         VoteRepository
	Favorite     FavoriteRepository
	Comment      CommentRepository
	Notification NotificationRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Session:      NewSessionRepository(db, log),
		OTP:          NewOTPRepository(db, log),
		Restaurant:   NewRestaurantRepository(db, log),
		Vote:         NewVoteRepository(db, log),
		Favorite:     NewFavoriteRepository(db, log),
		Comment:      NewCommentRepository(db, log),
		Notification: NewNotificationRepository(db, log),
	}
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
