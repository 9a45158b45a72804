package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter 进程内令牌桶限流器。
// 全局一个桶，外加每个调用方key一个桶；两者都放行才允许请求。
type LocalLimiter struct {
	global *rate.Limiter

	userRate  rate.Limit
	userBurst int

	mu    sync.Mutex
	users map[string]*userBucket
}

type userBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter 创建本地限流器
func NewLocalLimiter(globalRate, globalBurst, userRate, userBurst int) *LocalLimiter {
	l := &LocalLimiter{
		global:    rate.NewLimiter(rate.Limit(globalRate), globalBurst),
		userRate:  rate.Limit(userRate),
		userBurst: userBurst,
		users:     make(map[string]*userBucket),
	}
	go l.janitor()
	return l
}

// Allow 判断请求是否允许通过
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	if !l.global.Allow() {
		return false, nil
	}

	l.mu.Lock()
	bucket, ok := l.users[key]
	if !ok {
		bucket = &userBucket{limiter: rate.NewLimiter(l.userRate, l.userBurst)}
		l.users[key] = bucket
	}
	bucket.lastSeen = time.Now()
	l.mu.Unlock()

	return bucket.limiter.Allow(), nil
}

// janitor 定期清理长时间未出现的调用方桶
func (l *LocalLimiter) janitor() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-30 * time.Minute)
		l.mu.Lock()
		for key, bucket := range l.users {
			if bucket.lastSeen.Before(cutoff) {
				delete(l.users, key)
			}
		}
		l.mu.Unlock()
	}
}
