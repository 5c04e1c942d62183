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

	"github.com/agromart/agromart-backend/api/responses"
	"github.com/agromart/agromart-backend/pkg/config"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/logger"
)

// maxRateLimitBody bounds how much of the body is buffered to find the email.
const maxRateLimitBody = 64 << 10

type fixedWindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy throttles one auth surface per client IP and per email.
type RateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

func LoginPolicy(cfg config.AuthRateLimitConfig) RateLimitPolicy {
	return RateLimitPolicy{Name: "login", Window: cfg.LoginWindow, IPLimit: cfg.LoginIPLimit, EmailLimit: cfg.LoginEmailLimit}
}

func RegisterPolicy(cfg config.AuthRateLimitConfig) RateLimitPolicy {
	return RateLimitPolicy{Name: "register", Window: cfg.RegisterWindow, IPLimit: cfg.RegisterIPLimit, EmailLimit: cfg.RegisterEmailLimit}
}

func (p RateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.EmailLimit > 0)
}

// AuthRateLimit rejects requests with 429 once either counter passes its
// limit inside the window. Emails are hashed before they reach Redis.
func AuthRateLimit(policy RateLimitPolicy, limiter fixedWindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.IPLimit > 0 {
				if ip := clientIP(r); ip != "" {
					if !check(ctx, w, limiter, policy, "ip", ip, policy.IPLimit, logg) {
						return
					}
				}
			}

			if policy.EmailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if email := extractEmail(body); email != "" {
					if !check(ctx, w, limiter, policy, "email", hashValue(email), policy.EmailLimit, logg) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// check reports whether the request may continue; on false the response
// has already been written.
func check(ctx context.Context, w http.ResponseWriter, limiter fixedWindowLimiter, policy RateLimitPolicy, dimension, value string, limit int, logg *logger.Logger) bool {
	scope := "auth:" + policy.Name + ":" + dimension + ":" + value
	allowed, count, err := limiter.FixedWindowAllow(ctx, scope, int64(limit), policy.Window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return false
	}
	if allowed {
		return true
	}
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":    policy.Name,
			"dimension": dimension,
			"attempts":  count,
			"limit":     limit,
		}), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", retryAfter(policy.Window))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
	return false
}

func retryAfter(window time.Duration) string {
	secs := int(window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		if first := strings.TrimSpace(strings.Split(header, ",")[0]); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
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
