package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "secondchance:seq:"

// 只在当前值小于 floor 时抬高，保证单调
var raiseScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if cur < floor then
  redis.call('SET', KEYS[1], ARGV[1])
  return floor
end
return cur
`)

// Redis INCR 天然原子，多实例部署时共享同一个计数器
type Redis struct {
	RDB *redis.Client
}

func New(addr, pass string, db int) *Redis {
	return &Redis{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.RDB.Ping(ctx).Err()
}

func (r *Redis) Close() error { return r.RDB.Close() }

func (r *Redis) Next(ctx context.Context, name string) (int64, error) {
	v, err := r.RDB.Incr(ctx, keyPrefix+name).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", name, err)
	}
	return v, nil
}

func (r *Redis) EnsureAtLeast(ctx context.Context, name string, floor int64) error {
	if err := raiseScript.Run(ctx, r.RDB, []string{keyPrefix + name}, floor).Err(); err != nil {
		return fmt.Errorf("raise %s: %w", name, err)
	}
	return nil
}
