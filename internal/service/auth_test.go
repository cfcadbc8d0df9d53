package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/prerr"
)

type authFixture struct {
	svc    *Auth
	users  *fakeUsers
	tokens *fakeTokens
	subs   *fakeSubscriptions
	mail   *fakeMail
	now    time.Time
}

func newAuthFixture(users ...*model.User) *authFixture {
	f := &authFixture{
		users:  newFakeUsers(users...),
		tokens: newFakeTokens(),
		subs:   newFakeSubscriptions(),
		mail:   &fakeMail{},
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = &Auth{
		Users:           f.users,
		Tokens:          f.tokens,
		Subscriptions:   f.subs,
		Mail:            f.mail,
		Authenticator:   authn.NewWithSecret([]byte("test"), time.Hour, 24*time.Hour),
		CodeTTL:         15 * time.Minute,
		MaxAttempts:     5,
		GracePeriod:     72 * time.Hour,
		FrontendBaseURL: "https://properly.test",
		BcryptCost:      bcrypt.MinCost,
		now:             func() time.Time { return f.now },
	}
	return f
}

func passwordHash(t *testing.T, password string) string {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

func registerRequest() *types.RegisterRequest {
	return &types.RegisterRequest{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "Ada@Example.com ",
		Password:        "correct horse",
		ConfirmPassword: "correct horse",
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	f := newAuthFixture()
	req := registerRequest()
	req.ConfirmPassword = "something else"

	_, err := f.svc.Register(context.Background(), req, "en")
	assert.ErrorIs(t, err, prerr.ErrPasswordMismatch)
	assert.Empty(t, f.users.users)
	assert.Empty(t, f.mail.jobs)
}

func TestRegisterAndVerify(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	user, err := f.svc.Register(ctx, registerRequest(), "fr")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, constant.UserStatusPending, user.Status)
	assert.Equal(t, constant.RoleUser, user.Role)
	assert.Equal(t, "fr", user.Language)

	job := f.mail.last()
	require.NotNil(t, job)
	assert.Equal(t, types.MailKindVerification, job.Kind)
	assert.Equal(t, "15", job.Data["ttlMinutes"])
	code := job.Data["code"]
	assert.Len(t, code, constant.VerificationCodeDigit)

	verified, err := f.svc.VerifyEmail(ctx, &types.VerifyEmailRequest{Email: user.Email, Code: code})
	require.NoError(t, err)
	assert.Equal(t, constant.UserStatusActive, verified.Status)
	assert.Equal(t, types.MailKindWelcome, f.mail.last().Kind)

	// the code is single use
	_, err = f.svc.VerifyEmail(ctx, &types.VerifyEmailRequest{Email: user.Email, Code: code})
	assert.ErrorIs(t, err, prerr.ErrInvalidCode)
}

func TestVerifyCodeAttempts(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user, err := f.svc.Register(ctx, registerRequest(), "en")
	require.NoError(t, err)
	code := f.mail.last().Data["code"]
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 1; i < f.svc.MaxAttempts; i++ {
		_, err := f.svc.VerifyEmail(ctx, &types.VerifyEmailRequest{Email: user.Email, Code: wrong})
		assert.ErrorIs(t, err, prerr.ErrInvalidCode, "attempt %d", i)
	}
	_, err = f.svc.VerifyEmail(ctx, &types.VerifyEmailRequest{Email: user.Email, Code: wrong})
	assert.ErrorIs(t, err, prerr.ErrTooManyAttempts)

	// even the right code is refused once the token is exhausted
	_, err = f.svc.VerifyEmail(ctx, &types.VerifyEmailRequest{Email: user.Email, Code: code})
	assert.ErrorIs(t, err, prerr.ErrTooManyAttempts)

	require.NoError(t, f.svc.ResendVerification(ctx, user.Email))
	fresh := f.mail.last().Data["code"]
	_, err = f.svc.VerifyEmail(ctx, &types.VerifyEmailRequest{Email: user.Email, Code: fresh})
	assert.NoError(t, err)
}

func TestVerifyExpiredCode(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user, err := f.svc.Register(ctx, registerRequest(), "en")
	require.NoError(t, err)
	code := f.mail.last().Data["code"]

	f.now = f.now.Add(16 * time.Minute)
	_, err = f.svc.VerifyEmail(ctx, &types.VerifyEmailRequest{Email: user.Email, Code: code})
	assert.ErrorIs(t, err, prerr.ErrCodeExpired)
}

func TestResendVerificationIsSilent(t *testing.T) {
	f := newAuthFixture(&model.User{UserID: 1, Email: "done@example.com", Status: constant.UserStatusActive})

	assert.NoError(t, f.svc.ResendVerification(context.Background(), "nobody@example.com"))
	assert.NoError(t, f.svc.ResendVerification(context.Background(), "done@example.com"))
	assert.Empty(t, f.mail.jobs)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash := passwordHash(t, "s3cret-pass")
	f := newAuthFixture(
		&model.User{UserID: 1, Email: "pending@example.com", PasswordHash: hash, Role: constant.RoleUser, Status: constant.UserStatusPending},
		&model.User{UserID: 2, Email: "banned@example.com", PasswordHash: hash, Role: constant.RoleUser, Status: constant.UserStatusSuspended},
		&model.User{UserID: 3, Email: "user@example.com", PasswordHash: hash, Role: constant.RoleUser, Status: constant.UserStatusActive},
		&model.User{UserID: 4, Email: "agent@example.com", PasswordHash: hash, Role: constant.RoleAgent, Status: constant.UserStatusActive},
		&model.User{UserID: 5, Email: "admin@example.com", PasswordHash: hash, Role: constant.RoleAdmin, Status: constant.UserStatusActive},
	)

	login := func(email, password string) (*LoginResult, error) {
		return f.svc.Login(ctx, &types.LoginRequest{Email: email, Password: password})
	}

	_, err := login("user@example.com", "wrong")
	assert.ErrorIs(t, err, prerr.ErrInvalidCredentials)
	_, err = login("ghost@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, prerr.ErrInvalidCredentials)
	_, err = login("pending@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, prerr.ErrEmailNotVerified)
	_, err = login("banned@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, prerr.ErrAccountDisabled)

	res, err := login("user@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, constant.RedirectHome, res.RedirectURL)

	res, err = login("admin@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, constant.RedirectAdmin, res.RedirectURL)

	res, err = login("agent@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, constant.RedirectPricing, res.RedirectURL)

	f.subs.granting = &model.Subscription{
		UserID:           4,
		Status:           constant.SubscriptionStatusActive,
		CurrentPeriodEnd: null.TimeFrom(f.now.Add(24 * time.Hour)),
	}
	res, err = login("agent@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, constant.RedirectAgentHome, res.RedirectURL)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(&model.User{UserID: 1, Email: "user@example.com", PasswordHash: passwordHash(t, "old-password"), Status: constant.UserStatusActive})

	require.NoError(t, f.svc.ForgotPassword(ctx, "nobody@example.com"))
	assert.Empty(t, f.mail.jobs)

	require.NoError(t, f.svc.ForgotPassword(ctx, "user@example.com"))
	job := f.mail.last()
	require.NotNil(t, job)
	assert.Equal(t, types.MailKindPasswordReset, job.Kind)

	err := f.svc.ResetPassword(ctx, &types.ResetPasswordRequest{
		Email: "user@example.com", Code: job.Data["code"], Password: "new-password", ConfirmPassword: "typo-password",
	})
	assert.ErrorIs(t, err, prerr.ErrPasswordMismatch)

	err = f.svc.ResetPassword(ctx, &types.ResetPasswordRequest{
		Email: "user@example.com", Code: job.Data["code"], Password: "new-password", ConfirmPassword: "new-password",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.users.users[1].PasswordHash), []byte("new-password")))
}
