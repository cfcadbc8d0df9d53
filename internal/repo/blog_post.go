package repo

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo/selector"
)

type BlogPost struct {
	db  *bun.DB
	sel selector.S[model.BlogPost]
}

func NewBlogPost(db *bun.DB) *BlogPost {
	return &BlogPost{
		db:  db,
		sel: selector.New[model.BlogPost](db),
	}
}

func (r *BlogPost) ListPublished(ctx context.Context, lang, category, tag string, offset, limit int) ([]*model.BlogPost, int, error) {
	return r.sel.SelectPage(ctx, offset, limit, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.ExcludeColumn("body").Where("bp.status = ?", constant.BlogStatusPublished)
		if lang != "" {
			q = q.Where("bp.language = ?", lang)
		}
		if category != "" {
			q = q.Where("bp.category = ?", category)
		}
		if tag != "" {
			q = q.Where("? = ANY(bp.tags)", tag)
		}
		return q.Order("bp.published_at DESC", "bp.post_id DESC")
	})
}

func (r *BlogPost) GetPublishedBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("bp.slug = ?", slug).Where("bp.status = ?", constant.BlogStatusPublished)
	})
}

func (r *BlogPost) Categories(ctx context.Context, lang string) ([]*model.BlogCategory, error) {
	categories := make([]*model.BlogCategory, 0)
	err := r.db.NewSelect().
		Model((*model.BlogPost)(nil)).
		ColumnExpr("bp.category AS category").
		ColumnExpr("COUNT(*) AS count").
		Where("bp.status = ?", constant.BlogStatusPublished).
		Where("bp.language = ?", lang).
		Group("bp.category").
		Order("category ASC").
		Scan(ctx, &categories)
	return categories, err
}

func (r *BlogPost) ListAll(ctx context.Context, status string, offset, limit int) ([]*model.BlogPost, int, error) {
	return r.sel.SelectPage(ctx, offset, limit, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.ExcludeColumn("body")
		if status != "" {
			q = q.Where("bp.status = ?", status)
		}
		return q.Order("bp.updated_at DESC")
	})
}

func (r *BlogPost) GetByID(ctx context.Context, postID int64) (*model.BlogPost, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("bp.post_id = ?", postID)
	})
}

func (r *BlogPost) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.db.NewSelect().
		Model((*model.BlogPost)(nil)).
		Where("slug = ?", slug).
		Exists(ctx)
}

func (r *BlogPost) Create(ctx context.Context, post *model.BlogPost) error {
	_, err := r.db.NewInsert().Model(post).Returning("*").Exec(ctx)
	if isUniqueViolation(err) {
		return prerr.ErrConflict.Msg("a post with this slug already exists")
	}
	return err
}

func (r *BlogPost) Update(ctx context.Context, post *model.BlogPost) error {
	post.UpdatedAt = time.Now()
	res, err := r.updateQuery(post).Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return prerr.ErrNotFound
	}
	return nil
}

func (r *BlogPost) Delete(ctx context.Context, postID int64) error {
	res, err := r.db.NewDelete().
		Model((*model.BlogPost)(nil)).
		Where("post_id = ?", postID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return prerr.ErrNotFound
	}
	return nil
}

func (r *BlogPost) updateQuery(post *model.BlogPost) *bun.UpdateQuery {
	return r.db.NewUpdate().
		Model(post).
		Column("slug", "title", "language", "excerpt", "body", "cover_image_url", "category", "tags",
			"status", "reading_minutes", "published_at", "updated_at").
		WherePK()
}
