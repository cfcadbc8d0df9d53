package repo

import (
	"context"

	"github.com/uptrace/bun"

	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/repo/selector"
)

type SubscriptionPlan struct {
	db  *bun.DB
	sel selector.S[model.SubscriptionPlan]
}

func NewSubscriptionPlan(db *bun.DB) *SubscriptionPlan {
	return &SubscriptionPlan{
		db:  db,
		sel: selector.New[model.SubscriptionPlan](db),
	}
}

func (r *SubscriptionPlan) ListActive(ctx context.Context) ([]*model.SubscriptionPlan, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("active = TRUE").Order("sort_order ASC", "plan_id ASC")
	})
}

func (r *SubscriptionPlan) GetByID(ctx context.Context, planID int64) (*model.SubscriptionPlan, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("plan_id = ?", planID)
	})
}

// Upsert inserts or refreshes a plan identified by its code.
func (r *SubscriptionPlan) Upsert(ctx context.Context, plan *model.SubscriptionPlan) error {
	_, err := r.db.NewInsert().
		Model(plan).
		On("CONFLICT (code) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("monthly_price_cents = EXCLUDED.monthly_price_cents").
		Set("currency = EXCLUDED.currency").
		Set("listing_limit = EXCLUDED.listing_limit").
		Set("featured_listing_quota = EXCLUDED.featured_listing_quota").
		Set("features = EXCLUDED.features").
		Set("sort_order = EXCLUDED.sort_order").
		Set("active = EXCLUDED.active").
		Returning("plan_id").
		Exec(ctx)
	return err
}
