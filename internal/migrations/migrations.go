// Package migrations holds the database schema, applied with bun's migrator.
package migrations

import (
	"context"
	"embed"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed sql/*.sql
var sqlMigrations embed.FS

var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.Discover(sqlMigrations); err != nil {
		panic(err)
	}
}

func newMigrator(ctx context.Context, db *bun.DB) (*migrate.Migrator, error) {
	m := migrate.NewMigrator(db, Migrations)
	if err := m.Init(ctx); err != nil {
		return nil, errors.Wrap(err, "init migration tables")
	}
	return m, nil
}

// Up applies every pending migration as a new group.
func Up(ctx context.Context, db *bun.DB) error {
	m, err := newMigrator(ctx, db)
	if err != nil {
		return err
	}
	if err := m.Lock(ctx); err != nil {
		return err
	}
	defer m.Unlock(ctx) //nolint:errcheck

	group, err := m.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info().Msg("database is up to date")
		return nil
	}
	log.Info().Str("group", group.String()).Msg("migrated")
	return nil
}

// Down rolls back the last migration group.
func Down(ctx context.Context, db *bun.DB) error {
	m, err := newMigrator(ctx, db)
	if err != nil {
		return err
	}
	if err := m.Lock(ctx); err != nil {
		return err
	}
	defer m.Unlock(ctx) //nolint:errcheck

	group, err := m.Rollback(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info().Msg("there are no groups to roll back")
		return nil
	}
	log.Info().Str("group", group.String()).Msg("rolled back")
	return nil
}

type Status struct {
	Applied   []string `json:"applied"`
	Unapplied []string `json:"unapplied"`
	LastGroup string   `json:"lastGroup"`
}

func CurrentStatus(ctx context.Context, db *bun.DB) (*Status, error) {
	m, err := newMigrator(ctx, db)
	if err != nil {
		return nil, err
	}
	ms, err := m.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{LastGroup: ms.LastGroup().String()}
	for _, mig := range ms.Applied() {
		status.Applied = append(status.Applied, mig.Name)
	}
	for _, mig := range ms.Unapplied() {
		status.Unapplied = append(status.Unapplied, mig.Name)
	}
	return status, nil
}
