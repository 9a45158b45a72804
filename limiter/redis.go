package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisNotAvailable Redis不可用错误
var ErrRedisNotAvailable = errors.New("redis not available")

// 令牌桶算法的Lua脚本
const tokenBucketScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])
local period = 1 -- 1秒为单位

-- 获取当前桶中的令牌数和上次更新时间
local tokens_key = key .. ":tokens"
local timestamp_key = key .. ":ts"

local tokens = tonumber(redis.call("get", tokens_key) or burst)
local last_update = tonumber(redis.call("get", timestamp_key) or 0)

-- 计算距离上次更新经过的时间，添加相应的令牌
local elapsed = math.max(0, now - last_update)
local new_tokens = math.min(burst, tokens + elapsed * rate)

-- 判断是否有足够的令牌
if new_tokens < 1 then
	return 0
end

-- 消耗一个令牌
new_tokens = new_tokens - 1

-- 更新令牌数和时间戳
redis.call("setex", tokens_key, period * 2, new_tokens)
redis.call("setex", timestamp_key, period * 2, now)

return 1
`

// RedisLimiter Redis令牌桶限流器。
// 全局桶加每调用方桶，键空间按keyPrefix隔离。
type RedisLimiter struct {
	client    *redis.Client
	keyPrefix string

	globalRate  int
	globalBurst int
	userRate    int
	userBurst   int
}

// NewRedisLimiter 创建Redis限流器
func NewRedisLimiter(client *redis.Client, keyPrefix string, globalRate, globalBurst, userRate, userBurst int) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		keyPrefix:   keyPrefix,
		globalRate:  globalRate,
		globalBurst: globalBurst,
		userRate:    userRate,
		userBurst:   userBurst,
	}
}

// Allow 判断请求是否允许通过
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.client == nil {
		return false, ErrRedisNotAvailable
	}

	// 先检查全局限流
	allowed, err := l.take(ctx, fmt.Sprintf("rate_limit:%s:global", l.keyPrefix), l.globalRate, l.globalBurst)
	if err != nil || !allowed {
		return allowed, err
	}

	// 再检查调用方级别限流
	return l.take(ctx, fmt.Sprintf("rate_limit:%s:user:%s", l.keyPrefix, key), l.userRate, l.userBurst)
}

func (l *RedisLimiter) take(ctx context.Context, bucketKey string, ratePerSec, burst int) (bool, error) {
	result, err := l.client.Eval(ctx, tokenBucketScript,
		[]string{bucketKey}, time.Now().Unix(), ratePerSec, burst).Result()
	if err != nil {
		return false, err
	}
	n, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected eval result %T", result)
	}
	return n == 1, nil
}
