package proxy

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

// logLimiter 基于 Token Bucket 的日志限流，被抑制的条数会在下一条放行日志中带出
type logLimiter struct {
	limiter    *rate.Limiter
	suppressed atomic.Int64
}

// newLogLimiter ratePerSec: 每秒允许的日志条数；burst: 突发容量
func newLogLimiter(ratePerSec float64, burst int) *logLimiter {
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &logLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst)}
}

// Allow 放行时返回此前被抑制的条数
func (l *logLimiter) Allow() (bool, int64) {
	if l.limiter.Allow() {
		return true, l.suppressed.Swap(0)
	}
	l.suppressed.Add(1)
	return false, 0
}
