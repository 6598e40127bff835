package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dealeros/dealeros-backend/api/responses"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
)

const (
	IdempotencyKeyHeader  = "Idempotency-Key"
	idempotentReplay      = "Idempotent-Replayed"
	maxIdempotencyKeyLen  = 128
	maxIdempotentBodySize = 1 << 20
)

// IdempotencyStore is satisfied by pkg/redis.Client.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body"`
	RequestHash string `json:"request_hash"`
}

// Idempotency replays the first response recorded for an Idempotency-Key on
// the same route, caller and body. Requests without the header pass through.
// A reused key with a different body is rejected. Server errors are not
// recorded so the client can retry them.
func Idempotency(store IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if store == nil || ttl <= 0 || id == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(id) > maxIdempotencyKeyLen {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Invalid(IdempotencyKeyHeader, "is too long"))
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBodySize+1))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			hash := bodyHash(body)
			key := store.IdempotencyKey(idempotencyScope(r), id)

			prior, err := lookupResponse(r.Context(), store, key)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if prior != nil {
				if prior.RequestHash != hash {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different request body"))
					return
				}
				replay(w, prior)
				return
			}

			rec := &capturingWriter{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status >= http.StatusInternalServerError {
				return
			}

			payload, err := json.Marshal(storedResponse{
				Status:      rec.statusOrOK(),
				ContentType: rec.Header().Get("Content-Type"),
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: hash,
			})
			if err == nil {
				_, err = store.SetNX(r.Context(), key, string(payload), ttl)
			}
			if err != nil && logg != nil {
				logg.Error(r.Context(), "idempotency.persist_failed", err)
			}
		})
	}
}

// idempotencyScope keys anonymous callers by client IP and signed-in callers
// by user and dealer.
func idempotencyScope(r *http.Request) string {
	caller := UserIDFromContext(r.Context())
	if caller == "" {
		caller = "ip:" + clientIP(r)
	}
	dealer := ""
	if tenant := TenantFromContext(r.Context()); tenant != nil {
		dealer = tenant.DealerID.String()
	}
	return strings.Join([]string{caller, dealer, r.Method, r.URL.Path}, "|")
}

func lookupResponse(ctx context.Context, store IdempotencyStore, key string) (*storedResponse, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var prior storedResponse
	if err := json.Unmarshal([]byte(raw), &prior); err != nil {
		return nil, err
	}
	return &prior, nil
}

func replay(w http.ResponseWriter, prior *storedResponse) {
	body, err := base64.StdEncoding.DecodeString(prior.Body)
	if err != nil {
		body = nil
	}
	if prior.ContentType != "" {
		w.Header().Set("Content-Type", prior.ContentType)
	}
	w.Header().Set(idempotentReplay, "true")
	w.WriteHeader(prior.Status)
	_, _ = w.Write(body)
}

func bodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawStdEncoding.EncodeToString(sum[:])
}

type capturingWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *capturingWriter) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *capturingWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *capturingWriter) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
