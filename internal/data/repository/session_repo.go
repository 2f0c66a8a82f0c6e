package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// sessionRetention is how long expired sessions are kept for auditing.
const sessionRetention = 7 * 24 * time.Hour

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	// FindValidSession returns nil for unknown, revoked or expired tokens.
	FindValidSession(ctx context.Context, token uuid.UUID) (*entity.Session, error)
	Revoke(ctx context.Context, token uuid.UUID) error
	RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error
	CleanExpiredSessions(ctx context.Context) (int64, error)
}

type sessionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSessionRepository(db database.PgxIface, log *zap.Logger) SessionRepository {
	return &sessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "session")),
	}
}

const sessionColumns = `id, user_id, token, user_agent, ip_address, expires_at, revoked_at, created_at`

func scanSession(row rowScanner) (*entity.Session, error) {
	var s entity.Session
	if err := row.Scan(
		&s.ID, &s.UserID, &s.Token, &s.UserAgent, &s.IPAddress,
		&s.ExpiresAt, &s.RevokedAt, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID, session.UserID, session.Token, session.UserAgent, session.IPAddress,
		session.ExpiresAt, session.RevokedAt, session.CreatedAt,
	)
	if err != nil {
		r.log.Error("Session insert failed",
			zap.Error(err),
			zap.String("user_id", session.UserID.String()),
		)
		return fmt.Errorf("insert session of user %s: %w", session.UserID, err)
	}

	r.log.Debug("Session opened",
		zap.String("user_id", session.UserID.String()),
		zap.Time("expires_at", session.ExpiresAt),
	)
	return nil
}

func (r *sessionRepository) FindValidSession(ctx context.Context, token uuid.UUID) (*entity.Session, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE token = $1 AND revoked_at IS NULL AND expires_at > NOW()`,
		token,
	)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Session lookup failed", zap.Error(err))
		return nil, fmt.Errorf("look up session: %w", err)
	}
	return session, nil
}

// Revoke ends one session. Revoking an already revoked token is an error so
// a replayed logout is visible to the caller.
func (r *sessionRepository) Revoke(ctx context.Context, token uuid.UUID) error {
	var userID uuid.UUID
	err := r.db.QueryRow(ctx,
		`UPDATE sessions SET revoked_at = NOW()
		 WHERE token = $1 AND revoked_at IS NULL
		 RETURNING user_id`,
		token,
	).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return errors.New("session is unknown or already revoked")
	}
	if err != nil {
		r.log.Error("Session revoke failed", zap.Error(err))
		return fmt.Errorf("revoke session: %w", err)
	}

	r.log.Debug("Session revoked", zap.String("user_id", userID.String()))
	return nil
}

func (r *sessionRepository) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx,
		`UPDATE sessions SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`,
		userID,
	)
	if err != nil {
		r.log.Error("Bulk session revoke failed",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("revoke sessions of user %s: %w", userID, err)
	}

	r.log.Info("User sessions revoked",
		zap.String("user_id", userID.String()),
		zap.Int64("sessions", result.RowsAffected()),
	)
	return nil
}

// CleanExpiredSessions deletes sessions that expired before the retention window.
func (r *sessionRepository) CleanExpiredSessions(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-sessionRetention)

	result, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff)
	if err != nil {
		r.log.Error("Session cleanup failed", zap.Error(err), zap.Time("cutoff", cutoff))
		return 0, fmt.Errorf("delete sessions expired before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return result.RowsAffected(), nil
}
