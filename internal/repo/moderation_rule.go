package repo

import (
	"context"

	"github.com/uptrace/bun"

	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo/selector"
)

type ModerationRule struct {
	db  *bun.DB
	sel selector.S[model.ModerationRule]
}

func NewModerationRule(db *bun.DB) *ModerationRule {
	return &ModerationRule{
		db:  db,
		sel: selector.New[model.ModerationRule](db),
	}
}

func (r *ModerationRule) Get(ctx context.Context, ruleID int64) (*model.ModerationRule, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("rule_id = ?", ruleID)
	})
}

func (r *ModerationRule) ListActive(ctx context.Context) ([]*model.ModerationRule, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("active = TRUE").Order("rule_id ASC")
	})
}

func (r *ModerationRule) ListAll(ctx context.Context) ([]*model.ModerationRule, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("rule_id ASC")
	})
}

func (r *ModerationRule) Create(ctx context.Context, rule *model.ModerationRule) error {
	_, err := r.db.NewInsert().Model(rule).Returning("*").Exec(ctx)
	return err
}

func (r *ModerationRule) Update(ctx context.Context, rule *model.ModerationRule) error {
	res, err := r.db.NewUpdate().
		Model(rule).
		Column("name", "expression", "action", "active").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return prerr.ErrNotFound
	}
	return nil
}

func (r *ModerationRule) Delete(ctx context.Context, ruleID int64) error {
	res, err := r.db.NewDelete().
		Model((*model.ModerationRule)(nil)).
		Where("rule_id = ?", ruleID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return prerr.ErrNotFound
	}
	return nil
}
