package api

import (
	"sync"

	"glampbook/internal/config"

	"golang.org/x/time/rate"
)

// clientLimiter hands out one token bucket per caller IP. Buckets live for
// the process lifetime; dashboard traffic comes from a handful of addresses.
type clientLimiter struct {
	buckets sync.Map
	rps     rate.Limit
	burst   int
}

func newClientLimiter(cfg *config.APIConfig) *clientLimiter {
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}
	return &clientLimiter{rps: rate.Limit(cfg.RateLimit.RPS), burst: burst}
}

func (l *clientLimiter) allow(key string) bool {
	if v, ok := l.buckets.Load(key); ok {
		return v.(*rate.Limiter).Allow()
	}
	v, _ := l.buckets.LoadOrStore(key, rate.NewLimiter(l.rps, l.burst))
	return v.(*rate.Limiter).Allow()
}
