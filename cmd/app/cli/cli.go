package cli

import (
	"context"

	"go.uber.org/fx"

	"properly.homes/backend/internal/app"
	"properly.homes/backend/internal/app/appcontext"
)

// Run starts the dependency graph without the HTTP listener or workers, hands the populated
// dependencies to fn and stops the graph afterwards.
func Run[T any](ctx context.Context, fn func(ctx context.Context, deps T) error) error {
	var deps T
	a := app.New(appcontext.Declare(appcontext.EnvCLI), fx.Populate(&deps))
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop(context.Background()) //nolint:errcheck

	return fn(ctx, deps)
}
