package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"
	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/dto/response"
	"restaurant-directory/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientInfo describes where a login comes from.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type AuthService interface {
	Signup(ctx context.Context, req *request.SignupRequest, client ClientInfo) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, client ClientInfo) (*response.AuthResponse, error)
	Logout(ctx context.Context, sessionToken string) error
	Me(ctx context.Context, userID string) (*response.UserResponse, error)
	SendOTP(ctx context.Context, req *request.SendOTPRequest) error
	VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) error
	RequestPasswordReset(ctx context.Context, req *request.PasswordResetRequest) error
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(repo *repository.Repository, config *utils.Config, log *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
		now:    time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, req *request.SignupRequest, client ClientInfo) (*response.AuthResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Signup validation failed", zap.Error(err))
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, newError(ErrConflict, "email already registered")
	}

	existing, err = s.repo.User.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, newError(ErrConflict, "username already taken")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &entity.User{
		Base: entity.NewBase(now),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         entity.RoleUser,
		IsActive:     true,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	if err := s.issueOTP(ctx, user, entity.OTPTypeEmailVerification); err != nil {
		s.log.Warn("Failed to issue verification OTP", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	resp, err := s.startSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.log.Info("User signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, client ClientInfo) (*response.AuthResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	identifier := strings.TrimSpace(req.Identifier)

	user, err := s.repo.User.FindByEmail(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		user, err = s.repo.User.FindByUsername(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("find user by username: %w", err)
		}
	}

	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("identifier", identifier))
		return nil, newError(ErrUnauthorized, "invalid credentials")
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, forbidden("account is deactivated")
	}

	resp, err := s.startSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, sessionToken string) error {
	token, err := uuid.Parse(sessionToken)
	if err != nil {
		return newError(ErrUnauthorized, "invalid session")
	}

	if err := s.repo.Session.Revoke(ctx, token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	s.log.Info("Session revoked", zap.String("session", sessionToken))
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*response.UserResponse, error) {
	user, err := loadActor(ctx, s.repo.User, userID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// SendOTP succeeds without sending anything when the address cannot receive
// a verification code.
func (s *authService) SendOTP(ctx context.Context, req *request.SendOTPRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	otpType := entity.OTPType(req.Type)
	if otpType == entity.OTPTypePasswordReset {
		return s.RequestPasswordReset(ctx, &request.PasswordResetRequest{Email: req.Email})
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("find user for OTP: %w", err)
	}
	// Unknown and already verified addresses answer like any other.
	if user == nil || !user.IsActive {
		s.log.Info("Verification code requested for unknown email")
		return nil
	}
	if user.EmailVerified {
		s.log.Debug("Verification code requested for verified email", zap.String("user_id", user.ID.String()))
		return nil
	}

	return s.issueOTP(ctx, user, otpType)
}

func (s *authService) VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	otp, err := s.consumeOTP(ctx, req.Email, req.OTP, entity.OTPTypeEmailVerification)
	if err != nil {
		return err
	}

	user, err := s.repo.User.FindByID(ctx, otp.UserID)
	if err != nil {
		return fmt.Errorf("find user %s: %w", otp.UserID, err)
	}
	if user == nil {
		return notFound("user")
	}

	user.EmailVerified = true
	user.UpdatedAt = s.now()
	if err := s.repo.User.Update(ctx, user); err != nil {
		return fmt.Errorf("verify email: %w", err)
	}

	s.log.Info("Email verified", zap.String("user_id", user.ID.String()))
	return nil
}

// RequestPasswordReset succeeds for unknown emails so accounts cannot be probed.
func (s *authService) RequestPasswordReset(ctx context.Context, req *request.PasswordResetRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("find user for password reset: %w", err)
	}
	if user == nil || !user.IsActive {
		s.log.Info("Password reset requested for unknown email")
		return nil
	}

	return s.issueOTP(ctx, user, entity.OTPTypePasswordReset)
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	otp, err := s.consumeOTP(ctx, req.Email, req.OTP, entity.OTPTypePasswordReset)
	if err != nil {
		return err
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.User.UpdatePassword(ctx, otp.UserID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.repo.Session.RevokeAllUserSessions(ctx, otp.UserID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	s.log.Info("Password reset", zap.String("user_id", otp.UserID.String()))
	return nil
}

// startSession stores a session row and signs the token bound to it.
func (s *authService) startSession(ctx context.Context, user *entity.User, client ClientInfo) (*response.AuthResponse, error) {
	now := s.now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Token:     uuid.New(),
		UserAgent: optional(client.UserAgent),
		IPAddress: optional(client.IPAddress),
		ExpiresAt: now.Add(s.config.JWT.SessionTTL()),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := utils.IssueSessionToken(s.config.JWT, user.ID, string(user.Role), session.Token.String(), now, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	resp := response.AuthToResponse(user, token, session.ExpiresAt)
	return &resp, nil
}

func (s *authService) issueOTP(ctx context.Context, user *entity.User, otpType entity.OTPType) error {
	if err := s.repo.OTP.InvalidateAll(ctx, user.ID, otpType); err != nil {
		return fmt.Errorf("invalidate previous OTPs: %w", err)
	}

	now := s.now()
	otp := &entity.OTP{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Email:     user.Email,
		OTPCode:   utils.GenerateOTP(s.config.OTP.Length),
		OTPType:   otpType,
		ExpiresAt: now.Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute),
	}

	if err := s.repo.OTP.Create(ctx, otp); err != nil {
		return fmt.Errorf("save OTP: %w", err)
	}

	// No mail transport is wired; the code is only logged in debug mode.
	fields := []zap.Field{
		zap.String("user_id", user.ID.String()),
		zap.String("otp_type", string(otpType)),
		zap.Time("expires_at", otp.ExpiresAt),
	}
	if s.config.App.Debug {
		fields = append(fields, zap.String("otp_code", otp.OTPCode))
	}
	s.log.Info("OTP issued", fields...)

	return nil
}

func (s *authService) consumeOTP(ctx context.Context, email, code string, otpType entity.OTPType) (*entity.OTP, error) {
	otp, err := s.repo.OTP.FindValidOTP(ctx, email, code, otpType)
	if err != nil {
		return nil, fmt.Errorf("find OTP: %w", err)
	}
	if otp == nil || otp.Expired(s.now()) {
		return nil, invalidInput("invalid or expired OTP")
	}

	if err := s.repo.OTP.MarkAsUsed(ctx, otp.ID); err != nil {
		if errors.Is(err, repository.ErrOTPConsumed) {
			return nil, invalidInput("invalid or expired OTP")
		}
		return nil, fmt.Errorf("mark OTP used: %w", err)
	}
	return otp, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
