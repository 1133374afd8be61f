package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"carelink/pkg/ai"
)

const (
	defaultSessionTTL = 30 * time.Minute
	maxSessionTurns   = 20
)

// ErrSessionNotFound is returned when no demo session exists for the ID.
var ErrSessionNotFound = errors.New("demo session not found")

// Session is an ephemeral demo conversation. Nothing here touches the
// database; the whole session lives in Redis until the TTL expires.
type Session struct {
	ID         string    `json:"id"`
	SeniorName string    `json:"seniorName"`
	Turns      []ai.Turn `json:"turns"`
	StartedAt  time.Time `json:"startedAt"`
}

// SessionCache stores demo sessions in Redis with a sliding TTL.
type SessionCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewSessionCache(addr, password string) (*SessionCache, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("demo redis addr is required")
	}
	return &SessionCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		keyPrefix: "carelink:demo:session",
		ttl:       defaultSessionTTL,
	}, nil
}

// NewSessionCacheWithClient wraps an existing client. Used by tests.
func NewSessionCacheWithClient(client *redis.Client) *SessionCache {
	return &SessionCache{
		client:    client,
		keyPrefix: "carelink:demo:session",
		ttl:       defaultSessionTTL,
	}
}

// Put stores the session and resets its TTL. Turns beyond the last 20
// are dropped so a long demo never grows the payload unbounded.
func (c *SessionCache) Put(ctx context.Context, session Session) error {
	if strings.TrimSpace(session.ID) == "" {
		return errors.New("session id required")
	}
	if len(session.Turns) > maxSessionTurns {
		session.Turns = session.Turns[len(session.Turns)-maxSessionTurns:]
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal demo session: %w", err)
	}
	if err := c.client.Set(ctx, c.key(session.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("store demo session: %w", err)
	}
	return nil
}

// Get loads a session by ID.
func (c *SessionCache) Get(ctx context.Context, id string) (Session, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load demo session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session{}, fmt.Errorf("decode demo session: %w", err)
	}
	return session, nil
}

// Delete removes a session. Missing sessions are not an error.
func (c *SessionCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("delete demo session: %w", err)
	}
	return nil
}

func (c *SessionCache) key(id string) string {
	return c.keyPrefix + ":" + id
}
