package selector

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"properly.homes/backend/internal/pkg/prerr"
)

type S[T any] struct {
	DB bun.IDB
}

func New[T any](db bun.IDB) S[T] {
	return S[T]{
		DB: db,
	}
}

func (r S[T]) SelectOne(ctx context.Context, fn func(q *bun.SelectQuery) *bun.SelectQuery) (*T, error) {
	var model T
	err := fn(r.DB.NewSelect().Model(&model)).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, prerr.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return &model, nil
}

func (r S[T]) SelectMany(ctx context.Context, fn func(q *bun.SelectQuery) *bun.SelectQuery) ([]*T, error) {
	model := []*T{}
	err := fn(r.DB.NewSelect().Model(&model)).Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return model, nil
}

// SelectPage runs the list and the count of a paged query together.
func (r S[T]) SelectPage(ctx context.Context, offset, limit int, fn func(q *bun.SelectQuery) *bun.SelectQuery) ([]*T, int, error) {
	model := []*T{}
	count, err := fn(r.DB.NewSelect().Model(&model)).Offset(offset).Limit(limit).ScanAndCount(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, 0, err
	}

	return model, count, nil
}
