package middleware

import (
	"net/http"
	"sync"
	"time"

	"famorders/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per client IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

type limiter struct {
	limit   int
	window  time.Duration
	mu      sync.Mutex
	clients map[string]*rateEntry
}

func (l *limiter) entry(ip string) *rateEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.clients[ip]
	if !ok {
		e = &rateEntry{}
		l.clients[ip] = e
	}
	return e
}

// allow counts one request and reports whether it fits the window.
func (l *limiter) allow(ip string, now time.Time) (bool, time.Time) {
	e := l.entry(ip)
	e.mu.Lock()
	defer e.mu.Unlock()
	if now.After(e.windowEnd) {
		e.count = 0
		e.windowEnd = now.Add(l.window)
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *limiter) purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	purged := 0
	for ip, e := range l.clients {
		e.mu.Lock()
		if now.After(e.windowEnd) {
			delete(l.clients, ip)
			purged++
		}
		e.mu.Unlock()
	}
	return purged
}

const purgeInterval = 5 * time.Minute

// RateLimiter allows limit requests per window per client IP. Expired entries
// are purged in the background until stop is closed.
func RateLimiter(limit int, window time.Duration, stop <-chan struct{}) gin.HandlerFunc {
	l := &limiter{limit: limit, window: window, clients: make(map[string]*rateEntry)}

	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				if n := l.purge(now); n > 0 {
					log.Debug().Int("entries_purged", n).Msg("rate limiter purged")
				}
			}
		}
	}()

	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, retry shortly"))
			return
		}
		c.Next()
	}
}
