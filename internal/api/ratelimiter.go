package api

import (
	"net/http"
	"time"

	"github.com/juju/ratelimit"
	"github.com/pkg/errors"
)

// JRateLimiter is a token bucket shared by every request of the api.
type JRateLimiter struct {
	bucket *ratelimit.Bucket
}

func NewJRateLimiterWithQuantum(fillInterval time.Duration, capacity, quantum int64) (*JRateLimiter, error) {
	if fillInterval <= 0 {
		return nil, errors.Errorf("invalid limiter interval %s", fillInterval)
	}
	if capacity <= 0 || quantum <= 0 {
		return nil, errors.Errorf("invalid limiter capacity %d or quantum %d", capacity, quantum)
	}
	return &JRateLimiter{
		bucket: ratelimit.NewBucketWithQuantum(fillInterval, capacity, quantum),
	}, nil
}

func (l *JRateLimiter) Available() int64 {
	return l.bucket.Available()
}

func (l *JRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.bucket.TakeAvailable(1) == 0 {
			rateLimitedCounter.Inc()
			writeError(w, http.StatusTooManyRequests, errors.New("request rate exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
