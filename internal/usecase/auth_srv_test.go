package usecase

import (
	"context"
	"testing"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/dto/request"
	"restaurant-directory/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *utils.Config {
	return &utils.Config{
		JWT: utils.JWTConfig{Secret: "test-secret", Issuer: "test", ExpiryHours: 1},
		OTP: utils.OTPConfig{ExpiryMinutes: 10, Length: 6},
	}
}

func signup(t *testing.T, svc AuthService, username string) string {
	t.Helper()
	resp, err := svc.Signup(context.Background(), &request.SignupRequest{
		Username: username,
		Email:    username + "@Example.com",
		Password: "correct-horse",
	}, ClientInfo{UserAgent: "test", IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	return resp.UserID
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cfg := testConfig()
	svc := NewAuthService(store.repo, cfg, zap.NewNop())

	userID := signup(t, svc, "alice")

	user, _ := store.users.FindByEmail(ctx, "alice@example.com")
	require.NotNil(t, user)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, entity.RoleUser, user.Role)
	assert.False(t, user.EmailVerified)
	assert.NotNil(t, store.otps.latest(entity.OTPTypeEmailVerification))

	_, err := svc.Signup(ctx, &request.SignupRequest{Username: "other", Email: "ALICE@example.com", Password: "correct-horse"}, ClientInfo{})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Signup(ctx, &request.SignupRequest{Username: "alice", Email: "new@example.com", Password: "correct-horse"}, ClientInfo{})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Signup(ctx, &request.SignupRequest{Username: "shorty", Email: "s@example.com", Password: "short"}, ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	for _, identifier := range []string{"alice@example.com", "alice"} {
		t.Run(identifier, func(t *testing.T) {
			resp, err := svc.Login(ctx, &request.LoginRequest{Identifier: identifier, Password: "correct-horse"}, ClientInfo{})
			require.NoError(t, err)
			assert.Equal(t, userID, resp.UserID)

			claims, err := utils.ParseSessionToken(cfg.JWT, resp.Token)
			require.NoError(t, err)
			assert.Equal(t, userID, claims.Subject)
			assert.Equal(t, "USER", claims.Role)

			token, err := uuid.Parse(claims.ID)
			require.NoError(t, err)
			session, _ := store.sessions.FindValidSession(ctx, token)
			require.NotNil(t, session)
			assert.Equal(t, userID, session.UserID.String())
		})
	}

	_, err = svc.Login(ctx, &request.LoginRequest{Identifier: "alice", Password: "wrong-password"}, ClientInfo{})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Login(ctx, &request.LoginRequest{Identifier: "nobody", Password: "correct-horse"}, ClientInfo{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	user.IsActive = false
	require.NoError(t, store.users.Update(ctx, user))
	_, err = svc.Login(ctx, &request.LoginRequest{Identifier: "alice", Password: "correct-horse"}, ClientInfo{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cfg := testConfig()
	svc := NewAuthService(store.repo, cfg, zap.NewNop())

	signup(t, svc, "alice")
	resp, err := svc.Login(ctx, &request.LoginRequest{Identifier: "alice", Password: "correct-horse"}, ClientInfo{})
	require.NoError(t, err)

	claims, err := utils.ParseSessionToken(cfg.JWT, resp.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.ID))

	session, _ := store.sessions.FindValidSession(ctx, uuid.MustParse(claims.ID))
	assert.Nil(t, session)

	assert.ErrorIs(t, svc.Logout(ctx, "garbage"), ErrUnauthorized)
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewAuthService(store.repo, testConfig(), zap.NewNop())

	signup(t, svc, "alice")

	err := svc.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "alice@example.com", OTP: "000000x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Requesting a new code invalidates the one sent at signup.
	first := store.otps.latest(entity.OTPTypeEmailVerification)
	require.NoError(t, svc.SendOTP(ctx, &request.SendOTPRequest{Email: "alice@example.com", Type: "email_verification"}))
	second := store.otps.latest(entity.OTPTypeEmailVerification)
	require.NotEqual(t, first.ID, second.ID)

	if first.OTPCode != second.OTPCode {
		err = svc.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "alice@example.com", OTP: first.OTPCode})
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	require.NoError(t, svc.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "alice@example.com", OTP: second.OTPCode}))

	me, err := svc.Me(ctx, second.UserID.String())
	require.NoError(t, err)
	assert.True(t, me.IsVerified)

	// Codes are single use.
	err = svc.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "alice@example.com", OTP: second.OTPCode})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Verified and unknown addresses get the same answer and no new code.
	require.NoError(t, svc.SendOTP(ctx, &request.SendOTPRequest{Email: "alice@example.com", Type: "email_verification"}))
	require.NoError(t, svc.SendOTP(ctx, &request.SendOTPRequest{Email: "nobody@example.com", Type: "email_verification"}))
	assert.Equal(t, second.ID, store.otps.latest(entity.OTPTypeEmailVerification).ID)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewAuthService(store.repo, testConfig(), zap.NewNop())

	signup(t, svc, "alice")
	login := func(password string) error {
		_, err := svc.Login(ctx, &request.LoginRequest{Identifier: "alice", Password: password}, ClientInfo{})
		return err
	}
	require.NoError(t, login("correct-horse"))

	// Unknown addresses look the same as known ones.
	require.NoError(t, svc.RequestPasswordReset(ctx, &request.PasswordResetRequest{Email: "nobody@example.com"}))
	assert.Nil(t, store.otps.latest(entity.OTPTypePasswordReset))

	require.NoError(t, svc.SendOTP(ctx, &request.SendOTPRequest{Email: "alice@example.com", Type: "password_reset"}))
	otp := store.otps.latest(entity.OTPTypePasswordReset)
	require.NotNil(t, otp)

	err := svc.ResetPassword(ctx, &request.ResetPasswordRequest{Email: "alice@example.com", OTP: otp.OTPCode, NewPassword: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.ResetPassword(ctx, &request.ResetPasswordRequest{
		Email:       "alice@example.com",
		OTP:         otp.OTPCode,
		NewPassword: "battery-staple",
	}))

	for _, s := range store.sessions.sessions {
		assert.NotNil(t, s.RevokedAt, "session %s should be revoked", s.Token)
	}

	assert.ErrorIs(t, login("correct-horse"), ErrUnauthorized)
	assert.NoError(t, login("battery-staple"))
}
