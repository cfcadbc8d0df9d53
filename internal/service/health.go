package service

import (
	"context"
	stderrors "errors"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"properly.homes/backend/internal/model/types"
)

var (
	ErrDatabaseNotReachable = errors.New("database not reachable")
	ErrRedisNotReachable    = errors.New("redis not reachable")
	ErrNATSNotReachable     = errors.New("nats not reachable")
)

type Health struct {
	DB    *bun.DB
	Redis *redis.Client
	NATS  *nats.Conn
}

func NewHealth(db *bun.DB, redis *redis.Client, nats *nats.Conn) *Health {
	return &Health{
		DB:    db,
		Redis: redis,
		NATS:  nats,
	}
}

// Check probes every backing store and reports each one separately. The returned error
// joins the failures; the report is always populated.
func (s *Health) Check(ctx context.Context) (*types.HealthReport, error) {
	report := &types.HealthReport{
		Status:     types.HealthStatusOK,
		Components: make(map[string]string, 3),
	}

	var errs []error
	record := func(component string, err error) {
		if err != nil {
			report.Status = types.HealthStatusDegraded
			report.Components[component] = types.HealthStatusDegraded
			errs = append(errs, err)
			return
		}
		report.Components[component] = types.HealthStatusOK
	}

	if err := s.DB.PingContext(ctx); err != nil {
		record("database", errors.Wrap(ErrDatabaseNotReachable, err.Error()))
	} else {
		record("database", nil)
	}

	if err := s.Redis.Ping(ctx).Err(); err != nil {
		record("redis", errors.Wrap(ErrRedisNotReachable, err.Error()))
	} else {
		record("redis", nil)
	}

	// nats pings on its own, see infra/nats.go
	switch status := s.NATS.Status(); status {
	case nats.CONNECTED, nats.DRAINING_PUBS, nats.DRAINING_SUBS:
		record("nats", nil)
	default:
		record("nats", errors.Wrap(ErrNATSNotReachable, status.String()))
	}

	return report, stderrors.Join(errs...)
}
