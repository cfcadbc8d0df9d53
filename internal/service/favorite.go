package service

import (
	"context"

	"github.com/samber/lo"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo"
)

type Favorite struct {
	Favorites  FavoriteStore
	Properties PropertyStore
}

func NewFavorite(favorites *repo.Favorite, properties *repo.Property) *Favorite {
	return &Favorite{
		Favorites:  favorites,
		Properties: properties,
	}
}

func (s *Favorite) Add(ctx context.Context, userID int64, ref string) error {
	p, err := s.Properties.GetByReference(ctx, ref)
	if err != nil {
		return err
	}
	if p.Status != constant.PropertyStatusActive {
		return prerr.ErrNotFound
	}
	return s.Favorites.Add(ctx, userID, p.PropertyID)
}

func (s *Favorite) Remove(ctx context.Context, userID int64, ref string) error {
	p, err := s.Properties.GetByReference(ctx, ref)
	if err != nil {
		return err
	}
	return s.Favorites.Remove(ctx, userID, p.PropertyID)
}

// List returns the favorited listings, most recent first.
func (s *Favorite) List(ctx context.Context, userID int64) ([]*model.Property, error) {
	favorites, err := s.Favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(favorites, func(f *model.Favorite, _ int) (*model.Property, bool) {
		return f.Property, f.Property != nil
	}), nil
}
