// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/homelyeats/homelyeats_backend/models"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             *sync.RWMutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:           make(map[string]*rate.Limiter),
		blockedIPs:    make(map[string]time.Time),
		mu:            &sync.RWMutex{},
		defaultLimit:  rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:  20,
		blockDuration: 5 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			// brute force protection on credentials
			"/api/auth/login":    {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/auth/register": {limit: rate.Every(500 * time.Millisecond), burst: 5},
			// booking requests are cheap to spam and each one notifies a host
			"/api/bookings": {limit: rate.Every(time.Second), burst: 10},
		},
		now: time.Now,
	}

	go limiter.cleanupBlockedIPs()

	return limiter
}

func (r *RateLimiter) cleanupBlockedIPs() {
	for {
		time.Sleep(1 * time.Hour)
		r.mu.Lock()
		now := r.now()
		for ip, blockUntil := range r.blockedIPs {
			if now.After(blockUntil) {
				delete(r.blockedIPs, ip)
				r.resetIP(ip)
			}
		}
		r.mu.Unlock()
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if r.now().Before(blockUntil) {
					r.mu.Unlock()
					c.Response().Header().Set("Retry-After", blockUntil.Format(time.RFC1123))
					return c.JSON(http.StatusTooManyRequests, models.Response{
						Status:  http.StatusTooManyRequests,
						Message: "IP address blocked due to too many requests",
					})
				}
				delete(r.blockedIPs, ip)
				r.resetIP(ip)
			}
			r.mu.Unlock()

			limit, burst := r.defaultLimit, r.defaultBurst
			if el, ok := r.endpointLimits[c.Path()]; ok {
				limit, burst = el.limit, el.burst
			}

			// limiters are per ip and endpoint so a chatty inbox poll does not lock out login
			limiter := r.getLimiter(ip+" "+c.Path(), limit, burst)
			if !limiter.Allow() {
				until := r.now().Add(r.blockDuration)
				r.mu.Lock()
				r.blockedIPs[ip] = until
				r.mu.Unlock()

				c.Response().Header().Set("Retry-After", until.Format(time.RFC1123))
				return c.JSON(http.StatusTooManyRequests, models.Response{
					Status:  http.StatusTooManyRequests,
					Message: "Too many requests",
				})
			}

			return next(c)
		}
	}
}

// resetIP drops every limiter of ip; callers hold r.mu
func (r *RateLimiter) resetIP(ip string) {
	prefix := ip + " "
	for key := range r.ips {
		if strings.HasPrefix(key, prefix) {
			delete(r.ips, key)
		}
	}
}

func (r *RateLimiter) getLimiter(key string, limit rate.Limit, burst int) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, exists := r.ips[key]
	if !exists {
		limiter = rate.NewLimiter(limit, burst)
		r.ips[key] = limiter
	}
	return limiter
}
