package repo

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/pgqry"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo/selector"
)

// listedStatuses count against an agent's plan limit.
var listedStatuses = []string{constant.PropertyStatusActive, constant.PropertyStatusPending}

type Property struct {
	db  *bun.DB
	sel selector.S[model.Property]
}

func NewProperty(db *bun.DB) *Property {
	return &Property{
		db:  db,
		sel: selector.New[model.Property](db),
	}
}

func withImages(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Relation("Images", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("pi.sort_order ASC", "pi.image_id ASC")
	})
}

// Search lists active listings matching query.
func (r *Property) Search(ctx context.Context, query *types.PropertySearchQuery, offset, limit int) ([]*model.Property, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = pgqry.New(q).UseCityByID("p.city_id").DoFilterActive().DoFilterSearch(query).DoSort(query.Sort).Q
		return withImages(q).Offset(offset).Limit(limit)
	})
}

func (r *Property) CountSearch(ctx context.Context, query *types.PropertySearchQuery) (int, error) {
	return pgqry.New(r.db.NewSelect().Model((*model.Property)(nil))).
		UseCityByID("p.city_id").
		DoFilterActive().
		DoFilterSearch(query).
		Q.Count(ctx)
}

func (r *Property) GetByReference(ctx context.Context, ref string) (*model.Property, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return withImages(q).Where("p.reference = ?", ref)
	})
}

func (r *Property) Create(ctx context.Context, p *model.Property) error {
	_, err := r.db.NewInsert().Model(p).Returning("*").Exec(ctx)
	return err
}

// Update writes the given columns of p. updated_at is always written.
func (r *Property) Update(ctx context.Context, p *model.Property, columns ...string) error {
	p.UpdatedAt = time.Now()
	res, err := r.db.NewUpdate().
		Model(p).
		Column(append(columns, "updated_at")...).
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

func (r *Property) CountListedByAgent(ctx context.Context, agentID int64) (int, error) {
	return r.db.NewSelect().
		Model((*model.Property)(nil)).
		Where("agent_id = ?", agentID).
		Where("status IN (?)", bun.In(listedStatuses)).
		Count(ctx)
}

func (r *Property) ListByAgent(ctx context.Context, agentID int64) ([]*model.Property, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return withImages(q).
			Where("p.agent_id = ?", agentID).
			Where("p.status != ?", constant.PropertyStatusArchived).
			Order("p.created_at DESC")
	})
}

func (r *Property) ListByStatus(ctx context.Context, status string, offset, limit int) ([]*model.Property, int, error) {
	return r.sel.SelectPage(ctx, offset, limit, func(q *bun.SelectQuery) *bun.SelectQuery {
		if status != "" {
			q = q.Where("p.status = ?", status)
		}
		return withImages(q).Order("p.created_at ASC")
	})
}

func (r *Property) IncrementViews(ctx context.Context, propertyID int64) error {
	_, err := r.db.NewUpdate().
		Model((*model.Property)(nil)).
		Set("view_count = view_count + 1").
		Where("property_id = ?", propertyID).
		Exec(ctx)
	return err
}

// SuspendUnsubscribed moves active listings of agents without a granting subscription back to pending.
func (r *Property) SuspendUnsubscribed(ctx context.Context, now time.Time, grace time.Duration, note string) (int64, error) {
	res, err := r.suspendQuery(now, grace, note).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Property) suspendQuery(now time.Time, grace time.Duration, note string) *bun.UpdateQuery {
	granting := whereGranting(r.db.NewSelect().
		Model((*model.Subscription)(nil)).
		Column("s.user_id"), "s", now, grace)

	return r.db.NewUpdate().
		Model((*model.Property)(nil)).
		Set("status = ?", constant.PropertyStatusPending).
		Set("moderation_note = ?", note).
		Set("updated_at = ?", now).
		Where("status = ?", constant.PropertyStatusActive).
		Where("agent_id NOT IN (?)", granting)
}
