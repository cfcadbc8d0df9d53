package repo

import (
	"context"

	"github.com/uptrace/bun"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/repo/selector"
)

type Favorite struct {
	db  *bun.DB
	sel selector.S[model.Favorite]
}

func NewFavorite(db *bun.DB) *Favorite {
	return &Favorite{
		db:  db,
		sel: selector.New[model.Favorite](db),
	}
}

// Add is a no-op when the favorite already exists.
func (r *Favorite) Add(ctx context.Context, userID, propertyID int64) error {
	_, err := r.db.NewInsert().
		Model(&model.Favorite{UserID: userID, PropertyID: propertyID}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return err
}

func (r *Favorite) Remove(ctx context.Context, userID, propertyID int64) error {
	_, err := r.db.NewDelete().
		Model((*model.Favorite)(nil)).
		Where("user_id = ?", userID).
		Where("property_id = ?", propertyID).
		Exec(ctx)
	return err
}

// ListByUser returns the user's favorites whose listing is still active.
func (r *Favorite) ListByUser(ctx context.Context, userID int64) ([]*model.Favorite, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Relation("Property").
			Where("f.user_id = ?", userID).
			Where("property.status = ?", constant.PropertyStatusActive).
			Order("f.created_at DESC")
	})
}
