package lock

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 只有持有者（token 一致）才能删除锁，避免误删已经过期后被别人拿到的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Redis struct {
	client         *redis.Client
	ttl            time.Duration
	prefix         string
	releaseTimeout time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration, prefix string) *Redis {
	return &Redis{
		client:         client,
		ttl:            ttl,
		prefix:         prefix,
		releaseTimeout: 5 * time.Second,
	}
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	k := r.prefix + key
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.releaseTimeout)
		defer cancel()

		if err := releaseScript.Run(ctx, r.client, []string{k}, token).Err(); err != nil {
			// 释放失败时锁会在 ttl 之后自动过期
			slog.Warn("无法释放 redis 锁", "key", k, "error", err)
		}
	}, nil
}
