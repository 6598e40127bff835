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

	"github.com/dealeros/dealeros-backend/api/responses"
	"github.com/dealeros/dealeros-backend/pkg/config"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
)

// emailPeekBytes bounds how much of an auth body is buffered to find the email.
const emailPeekBytes = 64 << 10

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one public auth endpoint per client IP and per
// submitted email. A zero limit disables that dimension.
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

func NewLoginRateLimitPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return NewAuthRateLimitPolicy("login", cfg.LoginWindow, cfg.LoginIPLimit, cfg.LoginEmailLimit)
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

func (p AuthRateLimitPolicy) ipScope(ip string) string {
	return p.name + ":ip:" + ip
}

func (p AuthRateLimitPolicy) emailScope(hash string) string {
	return p.name + ":email:" + hash
}

// rateCheck is one counter a request must stay under.
type rateCheck struct {
	dimension string
	scope     string
	subject   string
	limit     int
}

// AuthRateLimit rejects requests over either counter with 429 and a Retry-After
// header. The email is hashed before it reaches redis or the logs.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			checks, err := policy.checks(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			for _, c := range checks {
				allowed, count, err := store.FixedWindowAllow(ctx, c.scope, int64(c.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
					return
				}
				if !allowed {
					policy.reject(ctx, logg, w, c, count)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checks buffers the body when an email limit applies and restores it for the handler.
func (p AuthRateLimitPolicy) checks(r *http.Request) ([]rateCheck, error) {
	var out []rateCheck
	if ip := clientIP(r); p.ipLimit > 0 && ip != "" {
		out = append(out, rateCheck{dimension: "ip", scope: p.ipScope(ip), subject: ip, limit: p.ipLimit})
	}
	if p.emailLimit == 0 || r.Body == nil {
		return out, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, emailPeekBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body")
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))

	if email := emailFromBody(body); email != "" {
		hash := hashValue(email)
		out = append(out, rateCheck{dimension: "email", scope: p.emailScope(hash), subject: hash, limit: p.emailLimit})
	}
	return out, nil
}

func (p AuthRateLimitPolicy) reject(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, c rateCheck, count int64) {
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":         p.name,
			"dimension":      c.dimension,
			"subject":        c.subject,
			"attempts":       count,
			"limit":          c.limit,
			"window_seconds": int(p.window.Seconds()),
		}), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(p.window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// clientIP prefers the first X-Forwarded-For hop; the api runs behind a proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
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

func emailFromBody(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
