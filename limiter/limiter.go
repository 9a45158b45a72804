// Package limiter 提供API限流能力：本地令牌桶实现和可选的
// Redis令牌桶后端。
package limiter

import "context"

// Limiter 限流器接口
type Limiter interface {
	// Allow 判断key对应调用方的请求是否允许通过
	Allow(ctx context.Context, key string) (bool, error)
}
