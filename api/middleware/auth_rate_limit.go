package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ezoostore/storefront-backend/api/responses"
	"github.com/ezoostore/storefront-backend/pkg/config"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

// RateLimitStore counts attempts per key within a window.
type RateLimitStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// AuthRateLimitPolicy throttles one auth surface by client IP and by the
// email in the request body. A zero limit disables that dimension.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func LoginRateLimitPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return NewAuthRateLimitPolicy("login", cfg.LoginWindow, cfg.LoginIPLimit, cfg.LoginEmailLimit)
}

func SignupRateLimitPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return NewAuthRateLimitPolicy("signup", cfg.SignupWindow, cfg.SignupIPLimit, cfg.SignupEmailLimit)
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// counter is one dimension checked for a request. Value never holds a raw
// email; emails are hashed before they reach a key or a log line.
type counter struct {
	dimension string
	value     string
	limit     int
}

// AuthRateLimit enforces the policy's counters before the auth handler runs.
// Counting happens on every attempt, successful or not.
func AuthRateLimit(policy AuthRateLimitPolicy, store RateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			counters := make([]counter, 0, 2)
			if policy.ipLimit > 0 {
				if ip := clientIP(r); ip != "" {
					counters = append(counters, counter{dimension: "ip", value: ip, limit: policy.ipLimit})
				}
			}
			if policy.emailLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if email := emailFromBody(body); email != "" {
					counters = append(counters, counter{dimension: "email", value: hashValue(email), limit: policy.emailLimit})
				}
			}

			for _, c := range counters {
				key := store.RateLimitKey(policy.name + ":" + c.dimension + ":" + c.value)
				count, err := store.IncrWithTTL(ctx, key, policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(c.limit) {
					rejectRateLimited(ctx, logg, w, policy, c, count)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, c counter, count int64) {
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":         policy.name,
			"scope":          c.dimension,
			"scope_value":    c.value,
			"attempts":       count,
			"limit":          c.limit,
			"window_seconds": int(policy.window.Seconds()),
		}), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Round(time.Second).Seconds())))
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// clientIP prefers the first X-Forwarded-For hop since the API runs behind a
// load balancer.
func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func emailFromBody(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
