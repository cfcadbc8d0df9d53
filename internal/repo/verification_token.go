package repo

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/repo/selector"
)

type VerificationToken struct {
	db  *bun.DB
	sel selector.S[model.VerificationToken]
}

func NewVerificationToken(db *bun.DB) *VerificationToken {
	return &VerificationToken{
		db:  db,
		sel: selector.New[model.VerificationToken](db),
	}
}

// Replace consumes every open token of the same purpose and inserts token.
func (r *VerificationToken) Replace(ctx context.Context, token *model.VerificationToken) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*model.VerificationToken)(nil)).
			Set("consumed_at = ?", time.Now()).
			Where("user_id = ?", token.UserID).
			Where("purpose = ?", token.Purpose).
			Where("consumed_at IS NULL").
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewInsert().Model(token).Returning("*").Exec(ctx)
		return err
	})
}

// GetOpen returns the newest token of purpose that has not been consumed.
func (r *VerificationToken) GetOpen(ctx context.Context, userID int64, purpose string) (*model.VerificationToken, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("user_id = ?", userID).
			Where("purpose = ?", purpose).
			Where("consumed_at IS NULL").
			Order("created_at DESC")
	})
}

func (r *VerificationToken) IncrementAttempts(ctx context.Context, tokenID int64) (int, error) {
	var attempts int
	err := r.db.NewUpdate().
		Model((*model.VerificationToken)(nil)).
		Set("attempts = attempts + 1").
		Where("token_id = ?", tokenID).
		Returning("attempts").
		Scan(ctx, &attempts)
	return attempts, err
}

func (r *VerificationToken) Consume(ctx context.Context, tokenID int64, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*model.VerificationToken)(nil)).
		Set("consumed_at = ?", at).
		Where("token_id = ?", tokenID).
		Exec(ctx)
	return err
}
