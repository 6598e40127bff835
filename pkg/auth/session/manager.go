// Package session stores refresh sessions in redis, keyed by the access
// token's jti. Only a sha256 digest of each refresh token is persisted.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/redis"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errAccessIDRequired    = errors.New("access id is required")
)

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GetDel(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker is the read-only view the auth middleware needs.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

type entry struct {
	UserID      uuid.UUID `json:"user_id"`
	RefreshHash string    `json:"refresh_hash"`
	IssuedAt    time.Time `json:"issued_at"`
}

type Manager struct {
	store store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager requires the refresh lifetime to outlast the access token so a
// client can always refresh before the session disappears.
func NewManager(client *redis.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	switch {
	case ttl <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case ttl <= accessTTL:
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: client, ttl: ttl, now: time.Now}, nil
}

// Generate opens a session for userID under accessID and returns the raw refresh token.
func (m *Manager) Generate(ctx context.Context, userID uuid.UUID, accessID string) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", errAccessIDRequired
	}
	if userID == uuid.Nil {
		return "", errors.New("user id is required")
	}
	token, err := newRefreshToken()
	if err != nil {
		return "", err
	}
	if err := m.save(ctx, accessID, userID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate consumes the session under oldAccessID and opens a new one for the
// same user. The old session is gone after the call whether or not the token
// matched: a wrong token under a live jti is treated as a stolen pair.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (userID uuid.UUID, accessID, token string, err error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return uuid.Nil, "", "", ErrInvalidRefreshToken
	}

	raw, err := m.store.GetDel(ctx, m.store.AccessSessionKey(oldAccessID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return uuid.Nil, "", "", ErrInvalidRefreshToken
		}
		return uuid.Nil, "", "", err
	}
	prev, ok := decodeEntry(raw)
	if !ok || subtle.ConstantTimeCompare([]byte(prev.RefreshHash), []byte(digest(provided))) != 1 {
		return uuid.Nil, "", "", ErrInvalidRefreshToken
	}

	accessID = NewAccessID()
	if token, err = newRefreshToken(); err != nil {
		return uuid.Nil, "", "", err
	}
	if err := m.save(ctx, accessID, prev.UserID, token); err != nil {
		return uuid.Nil, "", "", err
	}
	return prev.UserID, accessID, token, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errAccessIDRequired
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

// HasSession reports whether accessID still has a live refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errAccessIDRequired
	}
	_, err := m.store.Get(ctx, m.store.AccessSessionKey(accessID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, goredis.Nil):
		return false, nil
	default:
		return false, err
	}
}

// NewAccessID mints the jti that doubles as the session key.
func NewAccessID() string {
	return uuid.NewString()
}

func (m *Manager) save(ctx context.Context, accessID string, userID uuid.UUID, token string) error {
	payload, err := json.Marshal(entry{
		UserID:      userID,
		RefreshHash: digest(token),
		IssuedAt:    m.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return m.store.Set(ctx, m.store.AccessSessionKey(accessID), string(payload), m.ttl)
}

func decodeEntry(raw string) (entry, bool) {
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil || e.UserID == uuid.Nil {
		return entry{}, false
	}
	return e, true
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
