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

// ErrOTPConsumed is returned when a code was used between lookup and consume.
var ErrOTPConsumed = errors.New("otp already consumed")

type OTPRepository interface {
	Create(ctx context.Context, otp *entity.OTP) error
	// FindValidOTP returns the newest unused, unexpired matching code or nil.
	FindValidOTP(ctx context.Context, email, otpCode string, otpType entity.OTPType) (*entity.OTP, error)
	// MarkAsUsed consumes the code once; a second call returns ErrOTPConsumed.
	MarkAsUsed(ctx context.Context, otpID uuid.UUID) error
	// InvalidateAll consumes every pending code of a type for the user.
	InvalidateAll(ctx context.Context, userID uuid.UUID, otpType entity.OTPType) error
}

type otpRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOTPRepository(db database.PgxIface, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

const otpColumns = `id, user_id, email, otp_code, otp_type, expires_at, is_used, created_at`

func scanOTP(row rowScanner) (*entity.OTP, error) {
	var o entity.OTP
	if err := row.Scan(
		&o.ID, &o.UserID, &o.Email, &o.OTPCode, &o.OTPType,
		&o.ExpiresAt, &o.IsUsed, &o.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *otpRepository) Create(ctx context.Context, otp *entity.OTP) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO otps (`+otpColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		otp.ID, otp.UserID, otp.Email, otp.OTPCode, otp.OTPType,
		otp.ExpiresAt, otp.IsUsed, otp.CreatedAt,
	)
	if err != nil {
		r.log.Error("OTP insert failed",
			zap.Error(err),
			zap.String("user_id", otp.UserID.String()),
			zap.String("otp_type", string(otp.OTPType)),
		)
		return fmt.Errorf("insert %s code for user %s: %w", otp.OTPType, otp.UserID, err)
	}
	return nil
}

func (r *otpRepository) FindValidOTP(ctx context.Context, email, otpCode string, otpType entity.OTPType) (*entity.OTP, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+otpColumns+` FROM otps
		 WHERE LOWER(email) = LOWER($1) AND otp_code = $2 AND otp_type = $3
		   AND is_used = false AND expires_at > NOW()
		 ORDER BY created_at DESC
		 LIMIT 1`,
		email, otpCode, otpType,
	)

	otp, err := scanOTP(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("OTP lookup failed", zap.Error(err), zap.String("otp_type", string(otpType)))
		return nil, fmt.Errorf("look up %s code: %w", otpType, err)
	}
	return otp, nil
}

func (r *otpRepository) MarkAsUsed(ctx context.Context, otpID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE otps SET is_used = true WHERE id = $1 AND is_used = false`, otpID)
	if err != nil {
		r.log.Error("OTP consume failed", zap.Error(err), zap.String("otp_id", otpID.String()))
		return fmt.Errorf("consume code %s: %w", otpID, err)
	}
	if result.RowsAffected() == 0 {
		return ErrOTPConsumed
	}
	return nil
}

func (r *otpRepository) InvalidateAll(ctx context.Context, userID uuid.UUID, otpType entity.OTPType) error {
	result, err := r.db.Exec(ctx,
		`UPDATE otps SET is_used = true WHERE user_id = $1 AND otp_type = $2 AND is_used = false`,
		userID, otpType,
	)
	if err != nil {
		r.log.Error("OTP invalidation failed",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("otp_type", string(otpType)),
		)
		return fmt.Errorf("invalidate %s codes of user %s: %w", otpType, userID, err)
	}

	if n := result.RowsAffected(); n > 0 {
		r.log.Debug("Pending OTPs invalidated",
			zap.String("user_id", userID.String()),
			zap.String("otp_type", string(otpType)),
			zap.Int64("codes", n),
		)
	}
	return nil
}
