package cache

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("cache: key not found")

// client is shared by every Set. It is installed by Populate during application start.
var client *redis.Client

func Populate(c *redis.Client) {
	client = c
}
