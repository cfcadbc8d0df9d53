package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo/selector"
)

type Subscription struct {
	db  *bun.DB
	sel selector.S[model.Subscription]
}

func NewSubscription(db *bun.DB) *Subscription {
	return &Subscription{
		db:  db,
		sel: selector.New[model.Subscription](db),
	}
}

func (r *Subscription) Create(ctx context.Context, sub *model.Subscription) error {
	_, err := r.db.NewInsert().Model(sub).Returning("*").Exec(ctx)
	return err
}

func (r *Subscription) GetByID(ctx context.Context, subscriptionID int64) (*model.Subscription, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Plan").Where("s.subscription_id = ?", subscriptionID)
	})
}

func (r *Subscription) GetByProviderSubscriptionID(ctx context.Context, providerID string) (*model.Subscription, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Plan").Where("s.provider_subscription_id = ?", providerID)
	})
}

// GetCurrent returns the newest subscription that has not expired, preferring ones that grant rights.
func (r *Subscription) GetCurrent(ctx context.Context, userID int64) (*model.Subscription, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Plan").
			Where("s.user_id = ?", userID).
			Where("s.status != ?", constant.SubscriptionStatusExpired).
			OrderExpr("CASE WHEN s.status IN (?, ?) THEN 0 ELSE 1 END", constant.SubscriptionStatusActive, constant.SubscriptionStatusPastDue).
			Order("s.created_at DESC")
	})
}

// whereGranting keeps subscriptions that entitle their owner to publish at now: active ones until the
// period end, past_due ones until the grace period after it runs out.
func whereGranting(q *bun.SelectQuery, alias string, now time.Time, grace time.Duration) *bun.SelectQuery {
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			WhereGroup(" OR ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where(alias+".status = ?", constant.SubscriptionStatusActive).
					Where(alias+".current_period_end > ?", now)
			}).
			WhereGroup(" OR ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where(alias+".status = ?", constant.SubscriptionStatusPastDue).
					Where(alias+".current_period_end > ?", now.Add(-grace))
			})
	})
}

// GetGranting returns the subscription entitling the user to publish at now, if any.
func (r *Subscription) GetGranting(ctx context.Context, userID int64, now time.Time, grace time.Duration) (*model.Subscription, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Relation("Plan").Where("s.user_id = ?", userID)
		return whereGranting(q, "s", now, grace).Order("s.current_period_end DESC")
	})
}

// Activate marks a checked-out subscription active and cancels every other open subscription of the
// same user. The superseded rows are returned so their provider subscriptions can be stopped.
func (r *Subscription) Activate(ctx context.Context, sub *model.Subscription) ([]*model.Subscription, error) {
	var superseded []*model.Subscription
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(sub).
			Column("status", "provider_customer_id", "provider_subscription_id", "checkout_session_id",
				"current_period_start", "current_period_end", "cancel_at_period_end", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "activate subscription")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return prerr.ErrNotFound
		}
		_, err = tx.NewUpdate().
			Model((*model.Subscription)(nil)).
			Set("status = ?", constant.SubscriptionStatusCanceled).
			Set("updated_at = ?", sub.UpdatedAt).
			Where("user_id = ?", sub.UserID).
			Where("subscription_id != ?", sub.SubscriptionID).
			Where("status IN (?)", bun.In([]string{
				constant.SubscriptionStatusActive,
				constant.SubscriptionStatusPastDue,
				constant.SubscriptionStatusPending,
			})).
			Returning("subscription_id, user_id, provider_subscription_id").
			Exec(ctx, &superseded)
		return errors.Wrap(err, "cancel superseded subscriptions")
	})
	if err != nil {
		return nil, err
	}
	return superseded, nil
}

// ExtendPeriod records a paid renewal. Rows the sweeper already expired are revived, since the
// provider only bills subscriptions it still considers live.
func (r *Subscription) ExtendPeriod(ctx context.Context, providerID string, start, end time.Time) (int64, error) {
	res, err := r.extendPeriodQuery(providerID, start, end, time.Now()).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Subscription) extendPeriodQuery(providerID string, start, end, now time.Time) *bun.UpdateQuery {
	return r.db.NewUpdate().
		Model((*model.Subscription)(nil)).
		Set("status = ?", constant.SubscriptionStatusActive).
		Set("current_period_start = ?", start).
		Set("current_period_end = GREATEST(current_period_end, ?)", end).
		Set("updated_at = ?", now).
		Where("provider_subscription_id = ?", providerID).
		Where("status IN (?)", bun.In([]string{
			constant.SubscriptionStatusActive,
			constant.SubscriptionStatusPastDue,
			constant.SubscriptionStatusExpired,
		}))
}

// SetStatusByProviderID applies a provider-side status change. Only active subscriptions can fall
// past_due; canceled and expired rows stay where they are.
func (r *Subscription) SetStatusByProviderID(ctx context.Context, providerID, status string) (int64, error) {
	res, err := r.setStatusQuery(providerID, status, time.Now()).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Subscription) setStatusQuery(providerID, status string, now time.Time) *bun.UpdateQuery {
	q := r.db.NewUpdate().
		Model((*model.Subscription)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", now).
		Where("provider_subscription_id = ?", providerID)
	if status == constant.SubscriptionStatusPastDue {
		return q.Where("status IN (?)", bun.In([]string{constant.SubscriptionStatusActive, constant.SubscriptionStatusPastDue}))
	}
	return q.Where("status != ?", constant.SubscriptionStatusExpired)
}

func (r *Subscription) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID int64, cancel bool) error {
	_, err := r.db.NewUpdate().
		Model((*model.Subscription)(nil)).
		Set("cancel_at_period_end = ?", cancel).
		Set("updated_at = ?", time.Now()).
		Where("subscription_id = ?", subscriptionID).
		Exec(ctx)
	return err
}

// ExpireEnded expires active subscriptions past their period end, past_due ones past the grace
// period after it, and abandoned checkouts.
func (r *Subscription) ExpireEnded(ctx context.Context, now time.Time, grace, abandonAfter time.Duration) (int64, error) {
	res, err := r.expireEndedQuery(now, grace, abandonAfter).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Subscription) expireEndedQuery(now time.Time, grace, abandonAfter time.Duration) *bun.UpdateQuery {
	return r.db.NewUpdate().
		Model((*model.Subscription)(nil)).
		Set("status = ?", constant.SubscriptionStatusExpired).
		Set("updated_at = ?", now).
		WhereGroup(" AND ", func(q *bun.UpdateQuery) *bun.UpdateQuery {
			return q.
				WhereGroup(" OR ", func(q *bun.UpdateQuery) *bun.UpdateQuery {
					return q.
						Where("status = ?", constant.SubscriptionStatusActive).
						Where("current_period_end <= ?", now)
				}).
				WhereGroup(" OR ", func(q *bun.UpdateQuery) *bun.UpdateQuery {
					return q.
						Where("status = ?", constant.SubscriptionStatusPastDue).
						Where("current_period_end <= ?", now.Add(-grace))
				}).
				WhereGroup(" OR ", func(q *bun.UpdateQuery) *bun.UpdateQuery {
					return q.
						Where("status = ?", constant.SubscriptionStatusPending).
						Where("created_at < ?", now.Add(-abandonAfter))
				})
		})
}

func (r *Subscription) SetCheckoutSession(ctx context.Context, subscriptionID int64, sessionID string) error {
	_, err := r.db.NewUpdate().
		Model((*model.Subscription)(nil)).
		Set("checkout_session_id = ?", sessionID).
		Set("updated_at = ?", time.Now()).
		Where("subscription_id = ?", subscriptionID).
		Exec(ctx)
	return err
}
