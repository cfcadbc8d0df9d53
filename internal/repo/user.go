package repo

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo/selector"
)

type User struct {
	db  *bun.DB
	sel selector.S[model.User]
}

func NewUser(db *bun.DB) *User {
	return &User{
		db:  db,
		sel: selector.New[model.User](db),
	}
}

func (r *User) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("AgentProfile").Where("u.user_id = ?", userID)
	})
}

func (r *User) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("u.email = ?", strings.ToLower(email))
	})
}

func (r *User) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(user.Email)
	_, err := r.db.NewInsert().Model(user).Returning("*").Exec(ctx)
	if isUniqueViolation(err) {
		return prerr.ErrConflict.Msg("an account with this email already exists")
	}
	return err
}

// CreateAgent inserts an agent account and its profile atomically.
func (r *User) CreateAgent(ctx context.Context, user *model.User, profile *model.AgentProfile) error {
	user.Email = strings.ToLower(user.Email)
	user.Role = constant.RoleAgent
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(user).Returning("*").Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return prerr.ErrConflict.Msg("an account with this email already exists")
			}
			return errors.Wrap(err, "insert user")
		}
		profile.UserID = user.UserID
		if _, err := tx.NewInsert().Model(profile).Returning("*").Exec(ctx); err != nil {
			return errors.Wrap(err, "insert agent profile")
		}
		user.AgentProfile = profile
		return nil
	})
}

func (r *User) MarkVerified(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*model.User)(nil)).
		Set("status = ?", constant.UserStatusActive).
		Set("email_verified_at = ?", at).
		Set("updated_at = ?", at).
		Where("user_id = ?", userID).
		Where("status = ?", constant.UserStatusPending).
		Exec(ctx)
	return err
}

func (r *User) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	_, err := r.db.NewUpdate().
		Model((*model.User)(nil)).
		Set("password_hash = ?", hash).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}
