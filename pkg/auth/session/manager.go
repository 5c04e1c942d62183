package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agromart/agromart-backend/pkg/config"
	redisclient "github.com/agromart/agromart-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a session id has no backing record.
var ErrSessionNotFound = errors.New("session not found")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// Manager stores one Redis record per issued access token so tokens can be
// revoked before they expire.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
	now   func() time.Time
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.SessionTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

// Create records a session for accessID owned by userID.
func (m *Manager) Create(ctx context.Context, accessID string, userID uuid.UUID) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	if userID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	value := fmt.Sprintf("%s|%d", userID, m.clock().UnixNano())
	return m.store.Set(ctx, m.keyer.AccessSessionKey(accessID), value, m.ttl)
}

// Owner returns the user bound to accessID.
func (m *Manager) Owner(ctx context.Context, accessID string) (uuid.UUID, error) {
	rec, err := m.load(ctx, accessID)
	if err != nil {
		return uuid.Nil, err
	}
	return rec.userID, nil
}

// HasSession reports whether the provided access ID still has an active
// session that was created after the owner's last bulk revocation.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	rec, err := m.load(ctx, accessID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}

	raw, err := m.store.Get(ctx, m.revokedKey(rec.userID))
	switch {
	case errors.Is(err, redislib.Nil):
		return true, nil
	case err != nil:
		return false, err
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("corrupt revocation marker: %w", err)
	}
	return rec.createdAt > revokedAt, nil
}

// RevokeUser invalidates every session issued to userID so far. The marker
// lives as long as a session can.
func (m *Manager) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	return m.store.Set(ctx, m.revokedKey(userID), strconv.FormatInt(m.clock().UnixNano(), 10), m.ttl)
}

// Revoke deletes the session tied to the access identifier.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

// NewAccessID produces a stable identifier used as the JWT jti/Redis key.
func NewAccessID() string {
	return uuid.NewString()
}

type record struct {
	userID    uuid.UUID
	createdAt int64
}

func (m *Manager) load(ctx context.Context, accessID string) (record, error) {
	if strings.TrimSpace(accessID) == "" {
		return record{}, ErrSessionNotFound
	}
	raw, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return record{}, ErrSessionNotFound
		}
		return record{}, err
	}

	idPart, createdPart, _ := strings.Cut(raw, "|")
	id, err := uuid.Parse(idPart)
	if err != nil {
		return record{}, fmt.Errorf("corrupt session record: %w", err)
	}
	var createdAt int64
	if createdPart != "" {
		if createdAt, err = strconv.ParseInt(createdPart, 10, 64); err != nil {
			return record{}, fmt.Errorf("corrupt session record: %w", err)
		}
	}
	return record{userID: id, createdAt: createdAt}, nil
}

func (m *Manager) revokedKey(userID uuid.UUID) string {
	return m.keyer.AccessSessionKey("revoked:" + userID.String())
}

func (m *Manager) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}
