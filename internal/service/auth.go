package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/observability"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/pkg/verification"
	"properly.homes/backend/internal/repo"
)

type Auth struct {
	Users         UserStore
	Tokens        VerificationTokenStore
	Subscriptions SubscriptionStore
	Mail          MailQueue
	Authenticator *authn.Authenticator

	CodeTTL         time.Duration
	MaxAttempts     int
	GracePeriod     time.Duration
	FrontendBaseURL string
	BcryptCost      int

	now func() time.Time
}

func NewAuth(conf *appconfig.Config, users *repo.User, tokens *repo.VerificationToken, subs *repo.Subscription, mail *MailPublisher, authenticator *authn.Authenticator) *Auth {
	return &Auth{
		Users:           users,
		Tokens:          tokens,
		Subscriptions:   subs,
		Mail:            mail,
		Authenticator:   authenticator,
		CodeTTL:         conf.VerificationCodeTTL,
		MaxAttempts:     conf.VerificationMaxAttempts,
		GracePeriod:     conf.SubscriptionGracePeriod,
		FrontendBaseURL: conf.FrontendBaseURL,
		BcryptCost:      constant.BcryptCost,
		now:             time.Now,
	}
}

func (s *Auth) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *Auth) hash(password string) (string, error) {
	cost := s.BcryptCost
	if cost == 0 {
		cost = constant.BcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(b), nil
}

func (s *Auth) Register(ctx context.Context, req *types.RegisterRequest, lang string) (*model.User, error) {
	if req.Password != req.ConfirmPassword {
		return nil, prerr.ErrPasswordMismatch
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	if req.Language != "" {
		lang = req.Language
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        null.NewString(req.Phone, req.Phone != ""),
		Role:         constant.RoleUser,
		Status:       constant.UserStatusPending,
		Language:     lang,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendCode(ctx, user, constant.TokenPurposeEmailVerification)
	observability.AuthEvents.WithLabelValues("register", "ok").Inc()
	return user, nil
}

// sendCode issues a fresh code for purpose and queues its mail. Failures are logged only:
// the caller can always ask for a new code.
func (s *Auth) sendCode(ctx context.Context, user *model.User, purpose string) {
	code := verification.NewCode()
	token := &model.VerificationToken{
		UserID:    user.UserID,
		Purpose:   purpose,
		CodeHash:  verification.Hash(code),
		ExpiresAt: s.clock().Add(s.CodeTTL),
	}
	if err := s.Tokens.Replace(ctx, token); err != nil {
		log.Error().Err(err).Str("evt.name", "auth.code.issue_failed").Int64("userId", user.UserID).Msg("failed to store verification token")
		return
	}

	kind := types.MailKindVerification
	if purpose == constant.TokenPurposePasswordReset {
		kind = types.MailKindPasswordReset
	}
	job := &types.MailJob{
		Kind:     kind,
		To:       user.Email,
		Language: user.Language,
		Data: map[string]string{
			"firstName":  user.FirstName,
			"code":       code,
			"ttlMinutes": strconv.Itoa(int(s.CodeTTL.Minutes())),
			"baseUrl":    s.FrontendBaseURL,
		},
		DedupeID: purpose + ":" + strconv.FormatInt(token.TokenID, 10),
	}
	if err := s.Mail.Enqueue(ctx, job); err != nil {
		log.Error().Err(err).Str("evt.name", "auth.code.mail_failed").Int64("userId", user.UserID).Msg("failed to queue verification mail")
	}
}

// checkCode validates a submitted code against the open token of purpose and consumes it.
func (s *Auth) checkCode(ctx context.Context, user *model.User, purpose, code string) error {
	token, err := s.Tokens.GetOpen(ctx, user.UserID, purpose)
	if errors.Is(err, prerr.ErrNotFound) {
		return prerr.ErrInvalidCode
	} else if err != nil {
		return err
	}

	now := s.clock()
	if token.Expired(now) {
		return prerr.ErrCodeExpired
	}
	if token.Attempts >= s.MaxAttempts {
		return prerr.ErrTooManyAttempts
	}
	if !verification.Matches(code, token.CodeHash) {
		attempts, err := s.Tokens.IncrementAttempts(ctx, token.TokenID)
		if err != nil {
			return err
		}
		observability.AuthEvents.WithLabelValues(purpose, "bad_code").Inc()
		if attempts >= s.MaxAttempts {
			return prerr.ErrTooManyAttempts
		}
		return prerr.ErrInvalidCode
	}

	return s.Tokens.Consume(ctx, token.TokenID, now)
}

func (s *Auth) VerifyEmail(ctx context.Context, req *types.VerifyEmailRequest) (*model.User, error) {
	user, err := s.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, prerr.ErrNotFound) {
		return nil, prerr.ErrInvalidCode
	} else if err != nil {
		return nil, err
	}

	if err := s.checkCode(ctx, user, constant.TokenPurposeEmailVerification, req.Code); err != nil {
		return nil, err
	}

	now := s.clock()
	if err := s.Users.MarkVerified(ctx, user.UserID, now); err != nil {
		return nil, err
	}
	user.Status = constant.UserStatusActive
	user.EmailVerifiedAt = null.TimeFrom(now)
	observability.AuthEvents.WithLabelValues("verify_email", "ok").Inc()

	err = s.Mail.Enqueue(ctx, &types.MailJob{
		Kind:     types.MailKindWelcome,
		To:       user.Email,
		Language: user.Language,
		Data: map[string]string{
			"firstName": user.FirstName,
			"role":      user.Role,
			"baseUrl":   s.FrontendBaseURL,
		},
		DedupeID: "welcome:" + strconv.FormatInt(user.UserID, 10),
	})
	if err != nil {
		log.Warn().Err(err).Str("evt.name", "auth.welcome.mail_failed").Int64("userId", user.UserID).Msg("failed to queue welcome mail")
	}

	return user, nil
}

// ResendVerification never reveals whether the address is registered.
func (s *Auth) ResendVerification(ctx context.Context, email string) error {
	user, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, prerr.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}
	if user.Status != constant.UserStatusPending {
		return nil
	}
	s.sendCode(ctx, user, constant.TokenPurposeEmailVerification)
	return nil
}

type LoginResult struct {
	types.LoginResponse
	Issued *authn.Issued
}

func (s *Auth) Login(ctx context.Context, req *types.LoginRequest) (*LoginResult, error) {
	user, err := s.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, prerr.ErrNotFound) {
		observability.AuthEvents.WithLabelValues("login", "unknown_email").Inc()
		return nil, prerr.ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		observability.AuthEvents.WithLabelValues("login", "bad_password").Inc()
		log.Info().Str("evt.name", "auth.login.failed").Int64("userId", user.UserID).Msg("wrong password")
		return nil, prerr.ErrInvalidCredentials
	}

	switch user.Status {
	case constant.UserStatusPending:
		return nil, prerr.ErrEmailNotVerified
	case constant.UserStatusSuspended, constant.UserStatusDeleted:
		return nil, prerr.ErrAccountDisabled
	}

	issued, err := s.Authenticator.Issue(user.UserID, user.Role, req.Remember)
	if err != nil {
		return nil, err
	}

	redirect, err := s.redirectFor(ctx, user)
	if err != nil {
		return nil, err
	}

	observability.AuthEvents.WithLabelValues("login", "ok").Inc()
	return &LoginResult{
		LoginResponse: types.LoginResponse{
			Token:       issued.Token,
			ExpiresAt:   issued.ExpiresAt.Unix(),
			User:        user,
			RedirectURL: redirect,
		},
		Issued: issued,
	}, nil
}

func (s *Auth) redirectFor(ctx context.Context, user *model.User) (string, error) {
	switch user.Role {
	case constant.RoleAdmin:
		return constant.RedirectAdmin, nil
	case constant.RoleAgent:
		_, err := s.Subscriptions.GetGranting(ctx, user.UserID, s.clock(), s.GracePeriod)
		if errors.Is(err, prerr.ErrNotFound) {
			return constant.RedirectPricing, nil
		} else if err != nil {
			return "", err
		}
		return constant.RedirectAgentHome, nil
	default:
		return constant.RedirectHome, nil
	}
}

func (s *Auth) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, prerr.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}
	if user.Status == constant.UserStatusSuspended || user.Status == constant.UserStatusDeleted {
		return nil
	}
	s.sendCode(ctx, user, constant.TokenPurposePasswordReset)
	return nil
}

func (s *Auth) ResetPassword(ctx context.Context, req *types.ResetPasswordRequest) error {
	if req.Password != req.ConfirmPassword {
		return prerr.ErrPasswordMismatch
	}

	user, err := s.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, prerr.ErrNotFound) {
		return prerr.ErrInvalidCode
	} else if err != nil {
		return err
	}

	if err := s.checkCode(ctx, user, constant.TokenPurposePasswordReset, req.Code); err != nil {
		return err
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return err
	}
	observability.AuthEvents.WithLabelValues("reset_password", "ok").Inc()
	return s.Users.UpdatePassword(ctx, user.UserID, hash)
}

func (s *Auth) ChangePassword(ctx context.Context, userID int64, req *types.ChangePasswordRequest) error {
	if req.Password != req.ConfirmPassword {
		return prerr.ErrPasswordMismatch
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return prerr.ErrInvalidCredentials.Msg("current password is incorrect")
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, user.UserID, hash)
}

func (s *Auth) Me(ctx context.Context, userID int64) (*types.MeResponse, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &types.MeResponse{User: user}
	if user.Role == constant.RoleAgent {
		sub, err := s.Subscriptions.GetCurrent(ctx, userID)
		if err != nil && !errors.Is(err, prerr.ErrNotFound) {
			return nil, err
		}
		resp.Subscription = sub
	}
	return resp, nil
}
