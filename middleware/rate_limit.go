package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"vertexcore-storefront/models"
)

// RateLimiter throttles the flows that create remote baskets. Every checkout
// or login attempt costs a basket on the provider side, so those endpoints
// get a much tighter budget than the read-only API.
type RateLimiter struct {
	client *redis.Client
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Message  string
}

var endpointConfigs = map[string]RateLimitConfig{
	"/checkout": {
		Requests: 10,
		Window:   time.Minute * 5,
		Message:  "Too many checkout attempts. Please wait a few minutes.",
	},
	"/login": {
		Requests: 10,
		Window:   time.Minute * 5,
		Message:  "Too many login attempts. Please wait a few minutes.",
	},
	"default": {
		Requests: 120,
		Window:   time.Minute,
		Message:  "Rate limit exceeded. Please slow down your requests.",
	},
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (rl *RateLimiter) RateLimitMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			config := configForPath(r.URL.Path)
			key := fmt.Sprintf("rate_limit:%s:%s", ClientIP(r), r.URL.Path)

			allowed, remaining, resetTime, err := rl.check(r.Context(), key, config)
			if err != nil {
				// Redis trouble must not take the storefront down.
				log.Printf("Rate limit check error: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				log.Printf("Rate limit exceeded for %s on %s", ClientIP(r), r.URL.Path)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.FormatInt(int64(time.Until(resetTime).Seconds()), 10))
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(models.APIResponse{
					Status:  "error",
					Message: config.Message,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func configForPath(path string) RateLimitConfig {
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	if config, exists := endpointConfigs[path]; exists {
		return config
	}
	return endpointConfigs["default"]
}

// check runs a sliding-window counter as a single atomic Lua script.
func (rl *RateLimiter) check(ctx context.Context, key string, config RateLimitConfig) (allowed bool, remaining int, resetTime time.Time, err error) {
	now := time.Now()
	windowStart := now.Truncate(config.Window)
	windowEnd := windowStart.Add(config.Window)

	luaScript := `
		local key = KEYS[1]
		local window_start = tonumber(ARGV[1])
		local limit = tonumber(ARGV[2])
		local current_time = tonumber(ARGV[3])

		redis.call('ZREMRANGEBYSCORE', key, 0, window_start - 1)

		local current_count = redis.call('ZCARD', key)
		if current_count < limit then
			redis.call('ZADD', key, current_time, current_time)
			redis.call('EXPIRE', key, 3600)
			return {1, limit - current_count - 1}
		else
			return {0, 0}
		end
	`

	result, err := rl.client.Eval(ctx, luaScript, []string{key},
		windowStart.UnixNano(), config.Requests, now.UnixNano()).Result()
	if err != nil {
		return false, 0, time.Time{}, err
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) != 2 {
		return false, 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	allowedInt, ok1 := resultSlice[0].(int64)
	remainingInt, ok2 := resultSlice[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, time.Time{}, fmt.Errorf("failed to parse redis result")
	}

	return allowedInt == 1, int(remainingInt), windowEnd, nil
}

// SecurityHeadersMiddleware adds the standard hardening headers; API
// responses additionally opt out of caching.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the real client address behind the usual proxy headers.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
