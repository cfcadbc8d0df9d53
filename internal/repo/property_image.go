package repo

import (
	"context"

	"github.com/uptrace/bun"

	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/repo/selector"
)

type PropertyImage struct {
	db  *bun.DB
	sel selector.S[model.PropertyImage]
}

func NewPropertyImage(db *bun.DB) *PropertyImage {
	return &PropertyImage{
		db:  db,
		sel: selector.New[model.PropertyImage](db),
	}
}

func (r *PropertyImage) CountByProperty(ctx context.Context, propertyID int64) (int, error) {
	return r.db.NewSelect().
		Model((*model.PropertyImage)(nil)).
		Where("property_id = ?", propertyID).
		Count(ctx)
}

// Append inserts img after the last image of its listing.
func (r *PropertyImage) Append(ctx context.Context, img *model.PropertyImage) error {
	next := r.db.NewSelect().
		Model((*model.PropertyImage)(nil)).
		ColumnExpr("COALESCE(MAX(sort_order) + 1, 0)").
		Where("property_id = ?", img.PropertyID)

	_, err := r.db.NewInsert().
		Model(img).
		Value("sort_order", "(?)", next).
		Returning("*").
		Exec(ctx)
	return err
}

func (r *PropertyImage) Get(ctx context.Context, propertyID, imageID int64) (*model.PropertyImage, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("property_id = ?", propertyID).Where("image_id = ?", imageID)
	})
}

func (r *PropertyImage) Delete(ctx context.Context, imageID int64) error {
	_, err := r.db.NewDelete().
		Model((*model.PropertyImage)(nil)).
		Where("image_id = ?", imageID).
		Exec(ctx)
	return err
}
