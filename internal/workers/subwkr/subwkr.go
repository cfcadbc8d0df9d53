package subwkr

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/app/appcontext"
	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/pkg/middlewares"
	"properly.homes/backend/internal/service"
)

// Sweeper expires lapsed subscriptions.
type Sweeper interface {
	Sweep(ctx context.Context) (expired int64, suspended int64, err error)
}

type WorkerDeps struct {
	fx.In

	Locker              middlewares.Locker
	SubscriptionService *service.Subscription
}

type Worker struct {
	// count counts sweeps this replica has run so far
	count int

	// interval describes the interval in-between two sweeps
	interval time.Duration

	locker  middlewares.Locker
	sweeper Sweeper
}

func Start(lc fx.Lifecycle, conf *appconfig.Config, deps WorkerDeps) {
	if conf.AppContext.Env != appcontext.EnvServer || !conf.WorkerEnabled {
		return
	}

	w := &Worker{
		interval: conf.SubscriptionSweepInterval,
		locker:   deps.Locker,
		sweeper:  deps.SubscriptionService,
	}

	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			cancel = w.do()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func (w *Worker) do() context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			if err := w.sweep(ctx); err != nil {
				log.Error().Err(err).Str("evt.name", "subwkr.sweep.failed").Int("count", w.count).Msg("subscription sweep failed")
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return cancel
}

// sweep runs one pass when this replica wins the lock. Losing the lock is not an error.
func (w *Worker) sweep(ctx context.Context) error {
	mutex := w.locker.NewMutex(constant.SweeperMutexName,
		redsync.WithTries(1),
		redsync.WithExpiry(w.interval))
	if err := mutex.Lock(); err != nil {
		log.Debug().Err(err).Msg("sweeper lock held by another replica, skipping")
		return nil
	}
	defer func() {
		if _, err := mutex.Unlock(); err != nil {
			log.Warn().Err(err).Msg("failed to release sweeper lock")
		}
	}()

	start := time.Now()
	expired, suspended, err := w.sweeper.Sweep(ctx)
	if err != nil {
		return errors.Wrap(err, "sweep")
	}
	w.count++

	log.Info().
		Str("evt.name", "subwkr.sweep.done").
		Int64("expired", expired).
		Int64("suspended", suspended).
		Dur("took", time.Since(start)).
		Msg("subscription sweep finished")
	return nil
}
