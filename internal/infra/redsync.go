package infra

import (
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"

	"properly.homes/backend/internal/pkg/middlewares"
)

func RedSync(client *goredislib.Client) *redsync.Redsync {
	pool := goredis.NewPool(client)
	return redsync.New(pool)
}

func Locker(rs *redsync.Redsync) middlewares.Locker {
	return middlewares.RedsyncLocker{RS: rs}
}
