// Package session keeps refresh sessions in Redis, keyed by the access
// token's jti. Only a SHA-256 digest of each refresh token is stored. Each
// user also has a set of their live jtis so all of them can be revoked at
// once.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hbnb-dev/hbnb-backend/pkg/config"
	"github.com/hbnb-dev/hbnb-backend/pkg/redis"
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

var (
	errNoAccessID = errors.New("session: access id is required")
	errNoUserID   = errors.New("session: user id is required")
)

type store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
	AddMember(ctx context.Context, key, member string, ttl time.Duration) error
	RemoveMember(ctx context.Context, key, member string) error
	Members(ctx context.Context, key string) ([]string, error)
}

// AccessSessionChecker is what the bearer middleware needs to reject
// tokens whose session was revoked.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

type Manager struct {
	store store
	ttl   time.Duration
}

// NewManager requires the refresh lifetime to outlast the access token,
// otherwise a refresh could never succeed.
func NewManager(client *redis.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("session: redis client is required")
	}
	ttl, access := cfg.RefreshTokenTTL(), cfg.AccessTokenTTL()
	if ttl <= access {
		return nil, fmt.Errorf("session: refresh ttl %s must exceed access ttl %s", ttl, access)
	}
	return &Manager{store: client, ttl: ttl}, nil
}

func sessionKey(accessID string) string {
	return redis.Key("refresh", accessID)
}

func userKey(userID uuid.UUID) string {
	return redis.Key("user_sessions", userID.String())
}

// Generate opens a session for accessID on behalf of userID and returns the
// plaintext refresh token. The token is shown to the client once and never
// persisted.
func (m *Manager) Generate(ctx context.Context, userID uuid.UUID, accessID string) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", errNoAccessID
	}
	if userID == uuid.Nil {
		return "", errNoUserID
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("session: random token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	if err := m.store.AddMember(ctx, userKey(userID), accessID, m.ttl); err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, sessionKey(accessID), digest(token), m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate consumes the session of oldAccessID and opens a new one. The old
// session is removed atomically before the token is compared, so a refresh
// token works at most once and a wrong guess also ends the session.
func (m *Manager) Rotate(ctx context.Context, userID uuid.UUID, oldAccessID, provided string) (string, string, error) {
	if strings.TrimSpace(oldAccessID) == "" || provided == "" || userID == uuid.Nil {
		return "", "", ErrInvalidRefreshToken
	}

	stored, err := m.store.GetDel(ctx, sessionKey(oldAccessID))
	if errors.Is(err, redis.ErrMissing) {
		return "", "", ErrInvalidRefreshToken
	}
	if err != nil {
		return "", "", err
	}
	if err := m.store.RemoveMember(ctx, userKey(userID), oldAccessID); err != nil {
		return "", "", err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(digest(provided))) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	next := NewAccessID()
	token, err := m.Generate(ctx, userID, next)
	if err != nil {
		return "", "", err
	}
	return next, token, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errNoAccessID
	}
	return m.store.Del(ctx, sessionKey(accessID))
}

// RevokeUser ends every session opened for userID.
func (m *Manager) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return errNoUserID
	}
	index := userKey(userID)
	ids, err := m.store.Members(ctx, index)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	return m.store.Del(ctx, append(keys, index)...)
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errNoAccessID
	}
	return m.store.Exists(ctx, sessionKey(accessID))
}

// NewAccessID produces the identifier used as the JWT jti and session key.
func NewAccessID() string {
	return uuid.NewString()
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
