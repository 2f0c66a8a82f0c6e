package repository

import (
	"context"
	"errors"
	"fmt"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	FindByTargetUser(ctx context.Context, userID uuid.UUID) ([]*entity.Notification, error)
	FindByTargetRole(ctx context.Context, role entity.UserRole) ([]*entity.Notification, error)
	// MarkRead adds userID to read_by once.
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	// MarkAllRead marks every notification visible to the user and returns how many changed.
	MarkAllRead(ctx context.Context, userID uuid.UUID, role entity.UserRole) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type notificationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewNotificationRepository(db database.PgxIface, log *zap.Logger) NotificationRepository {
	return &notificationRepository{
		db:  db,
		log: log.With(zap.String("repository", "notification")),
	}
}

const notificationColumns = `id, title, message, type, target_user_id, target_role,
		       restaurant_id, created_by, read_by, created_at`

func scanNotification(row rowScanner) (*entity.Notification, error) {
	var n entity.Notification
	err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Message,
		&n.Type,
		&n.TargetUserID,
		&n.TargetRole,
		&n.RestaurantID,
		&n.CreatedBy,
		&n.ReadBy,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, title, message, type, target_user_id, target_role,
		                           restaurant_id, created_by, read_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		n.ID,
		n.Title,
		n.Message,
		n.Type,
		n.TargetUserID,
		n.TargetRole,
		n.RestaurantID,
		n.CreatedBy,
		nonNilStrings(n.ReadBy),
		n.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create notification",
			zap.Error(err),
			zap.String("type", string(n.Type)),
		)
		return fmt.Errorf("create notification %q: %w", n.Title, err)
	}

	return nil
}

func (r *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n, err := scanNotification(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find notification", zap.Error(err), zap.String("notification_id", id.String()))
		return nil, fmt.Errorf("find notification %s: %w", id.String(), err)
	}

	return n, nil
}

func (r *notificationRepository) FindByTargetUser(ctx context.Context, userID uuid.UUID) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE target_user_id = $1
		ORDER BY created_at DESC
	`
	return r.findMany(ctx, query, userID)
}

func (r *notificationRepository) FindByTargetRole(ctx context.Context, role entity.UserRole) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE target_role = $1
		ORDER BY created_at DESC
	`
	return r.findMany(ctx, query, string(role))
}

func (r *notificationRepository) findMany(ctx context.Context, query string, arg any) ([]*entity.Notification, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		r.log.Error("Failed to find notifications", zap.Error(err))
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*entity.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification rows: %w", err)
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET read_by = array_append(read_by, $2::text)
		WHERE id = $1 AND NOT ($2::text = ANY(read_by))
	`

	if _, err := r.db.Exec(ctx, query, id, userID.String()); err != nil {
		r.log.Error("Failed to mark notification read",
			zap.Error(err),
			zap.String("notification_id", id.String()),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("mark notification %s read: %w", id.String(), err)
	}

	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, role entity.UserRole) (int64, error) {
	query := `
		UPDATE notifications
		SET read_by = array_append(read_by, $3::text)
		WHERE (target_user_id = $1 OR target_role = $2)
		  AND NOT ($3::text = ANY(read_by))
	`

	result, err := r.db.Exec(ctx, query, userID, string(role), userID.String())
	if err != nil {
		r.log.Error("Failed to mark all notifications read",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("mark all notifications read for user %s: %w", userID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete notification", zap.Error(err), zap.String("notification_id", id.String()))
		return fmt.Errorf("delete notification %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification %s not found", id.String())
	}

	return nil
}
