// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	xlog "github.com/ManuGH/retux/internal/log"
	"github.com/ManuGH/retux/internal/metrics"
)

const (
	headerBucket     = "X-RateLimit-Bucket"
	headerRemaining  = "X-RateLimit-Remaining"
	headerResetAfter = "X-RateLimit-Reset-After"
	headerGlobal     = "X-RateLimit-Global"
	headerScope      = "X-RateLimit-Scope"
	headerRetryAfter = "Retry-After"

	scopeGlobal = "global"
	scopeBucket = "bucket"
)

// DefaultGlobalRate is Discord's global request allowance per bot.
const DefaultGlobalRate = 50

// rateLimiter tracks lockdowns. A lockdown is the instant before which no
// request may be sent, either for every route (global) or for one bucket.
type rateLimiter struct {
	mu      sync.Mutex
	global  time.Time
	buckets map[string]time.Time
	shared  map[string]string

	pacer  *rate.Limiter
	now    func() time.Time
	logger zerolog.Logger
}

func newRateLimiter(perSecond float64, logger zerolog.Logger) *rateLimiter {
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = int(math.Max(1, perSecond))
	}
	return &rateLimiter{
		buckets: make(map[string]time.Time),
		shared:  make(map[string]string),
		pacer:   rate.NewLimiter(limit, burst),
		now:     time.Now,
		logger:  logger,
	}
}

// bucketFor resolves the current bucket key of a route.
func (l *rateLimiter) bucketFor(route Route) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return route.Bucket(l.shared[route.endpoint()])
}

// wait blocks until neither the global nor the bucket lockdown applies and
// the global pacer admits the request.
func (l *rateLimiter) wait(ctx context.Context, bucket string) error {
	for {
		l.mu.Lock()
		now := l.now()
		scope := scopeGlobal
		until := l.global
		if b, ok := l.buckets[bucket]; ok && b.After(until) {
			until = b
			scope = scopeBucket
		}
		if !until.After(now) {
			delete(l.buckets, bucket)
		}
		l.mu.Unlock()

		delay := until.Sub(now)
		if delay <= 0 {
			break
		}

		logger := xlog.WithContext(ctx, l.logger)
		if scope == scopeGlobal {
			logger.Warn().Dur(xlog.FieldRetryAfter, delay).Msg("global rate limit ongoing, waiting")
		} else {
			logger.Warn().Str(xlog.FieldBucket, bucket).Dur(xlog.FieldRetryAfter, delay).Msg("bucket is rate limited, waiting")
		}
		metrics.ObserveRateLimitWait(scope, delay)

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return l.pacer.Wait(ctx)
}

func (l *rateLimiter) lockGlobal(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if until := l.now().Add(d); until.After(l.global) {
		l.global = until
	}
}

func (l *rateLimiter) lockBucket(bucket string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if until := l.now().Add(d); until.After(l.buckets[bucket]) {
		l.buckets[bucket] = until
	}
}

// observe applies the rate limit headers of a response and returns the
// bucket key the route now maps to.
func (l *rateLimiter) observe(route Route, h http.Header) string {
	l.mu.Lock()
	if hash := h.Get(headerBucket); hash != "" {
		l.shared[route.endpoint()] = hash
	}
	bucket := route.Bucket(l.shared[route.endpoint()])
	l.mu.Unlock()

	if h.Get(headerRemaining) == "0" {
		if d := parseSeconds(h.Get(headerResetAfter)); d > 0 {
			l.logger.Debug().Str(xlog.FieldBucket, bucket).Dur(xlog.FieldRetryAfter, d).Msg("bucket exhausted, locking until reset")
			l.lockBucket(bucket, d)
		}
	}
	return bucket
}

type rateLimitBody struct {
	RetryAfter float64 `json:"retry_after"`
	Global     bool    `json:"global"`
}

// parse429 extracts how long to back off and whether the limit is global.
// The body's retry_after wins over headers.
func parse429(h http.Header, body []byte) (time.Duration, bool) {
	var rb rateLimitBody
	_ = json.Unmarshal(body, &rb)

	global := rb.Global ||
		strings.EqualFold(h.Get(headerGlobal), "true") ||
		strings.EqualFold(h.Get(headerScope), scopeGlobal)

	d := time.Duration(rb.RetryAfter * float64(time.Second))
	if d <= 0 {
		d = parseSeconds(h.Get(headerResetAfter))
	}
	if d <= 0 {
		d = parseSeconds(h.Get(headerRetryAfter))
	}
	if d <= 0 {
		d = time.Second
	}
	return d, global
}

func parseSeconds(v string) time.Duration {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
