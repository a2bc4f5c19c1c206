package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"koomy/portal/internal/constants"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/session"
)

// maxUpdateRetries bounds the optimistic retries of a redis session update
const maxUpdateRetries = 5

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionConflict = errors.New("session changed concurrently")
)

// SessionData is a browser session as persisted between requests. ExpiresAt
// is fixed at creation and matches the cookie lifetime.
type SessionData struct {
	SessionID string           `json:"session_id"`
	Host      string           `json:"host"`
	State     session.Snapshot `json:"state"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// SessionRepository persists session snapshots
type SessionRepository interface {
	Create(ctx context.Context, host string, state session.Snapshot) (*SessionData, error)
	Get(ctx context.Context, sessionID string) (*SessionData, error)
	Save(ctx context.Context, data *SessionData) error
	// Update applies fn to the latest stored session and saves the result.
	// Concurrent updates of one session never overwrite each other.
	Update(ctx context.Context, sessionID string, fn func(data *SessionData) error) (*SessionData, error)
	Delete(ctx context.Context, sessionID string) error
	// Count reports the sessions that have not expired
	Count(ctx context.Context) (int, error)
}

func newSessionData(host string, state session.Snapshot, ttl time.Duration) *SessionData {
	now := time.Now()
	return &SessionData{
		SessionID: uuid.New().String(),
		Host:      host,
		State:     state,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func sessionKey(sessionID string) string {
	return string(constants.CachePrefixSession) + sessionID
}

func decodeSession(val []byte) (*SessionData, error) {
	var data SessionData
	if err := json.Unmarshal(val, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if time.Now().After(data.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	return &data, nil
}

// remaining is the store TTL left before data expires
func remaining(data *SessionData) (time.Duration, error) {
	left := time.Until(data.ExpiresAt)
	if left <= 0 {
		return 0, ErrSessionExpired
	}
	return left, nil
}

// SessionService manages sessions in Redis
type SessionService struct {
	redis *redis.Client
	ttl   time.Duration
}

var _ SessionRepository = (*SessionService)(nil)

func NewSessionService(redis *redis.Client, ttl time.Duration) *SessionService {
	return &SessionService{
		redis: redis,
		ttl:   ttl,
	}
}

func (s *SessionService) Create(ctx context.Context, host string, state session.Snapshot) (*SessionData, error) {
	data := newSessionData(host, state, s.ttl)
	if err := s.Save(ctx, data); err != nil {
		return nil, err
	}
	logging.Debug("Session created", "session_id", data.SessionID, "host", host)
	return data, nil
}

func (s *SessionService) Get(ctx context.Context, sessionID string) (*SessionData, error) {
	val, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	data, err := decodeSession(val)
	if errors.Is(err, ErrSessionExpired) {
		_ = s.Delete(ctx, sessionID)
	}
	return data, err
}

// Save writes the session until its fixed expiry
func (s *SessionService) Save(ctx context.Context, data *SessionData) error {
	ttl, err := remaining(data)
	if err != nil {
		return err
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(data.SessionID), buf, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Update watches the session key and retries when another writer got there first
func (s *SessionService) Update(ctx context.Context, sessionID string, fn func(data *SessionData) error) (*SessionData, error) {
	key := sessionKey(sessionID)
	var updated *SessionData

	txf := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		data, err := decodeSession(val)
		if err != nil {
			return err
		}
		if err := fn(data); err != nil {
			return err
		}
		ttl, err := remaining(data)
		if err != nil {
			return err
		}
		buf, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, buf, ttl)
			return nil
		})
		if err == nil {
			updated = data
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.redis.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			logging.Debug("Session update raced, retrying", "session_id", sessionID, "attempt", i+1)
			continue
		}
		return nil, err
	}
	return nil, ErrSessionConflict
}

func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Count scans the session keys. Redis drops them at expiry.
func (s *SessionService) Count(ctx context.Context) (int, error) {
	n := 0
	iter := s.redis.Scan(ctx, 0, string(constants.CachePrefixSession)+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

// MemorySessionService keeps sessions in a go-cache instance
type MemorySessionService struct {
	cache *cache.Cache
	ttl   time.Duration

	// mu serialises writers so an update never resurrects or overwrites
	mu sync.Mutex
}

var _ SessionRepository = (*MemorySessionService)(nil)

func NewMemorySessionService(ttl time.Duration) *MemorySessionService {
	return &MemorySessionService{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

func (m *MemorySessionService) Create(_ context.Context, host string, state session.Snapshot) (*SessionData, error) {
	data := newSessionData(host, state, m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Set(sessionKey(data.SessionID), *data, m.ttl)
	return data, nil
}

func (m *MemorySessionService) Get(_ context.Context, sessionID string) (*SessionData, error) {
	return m.get(sessionID)
}

func (m *MemorySessionService) get(sessionID string) (*SessionData, error) {
	val, found := m.cache.Get(sessionKey(sessionID))
	if !found {
		return nil, ErrSessionNotFound
	}
	data := val.(SessionData)
	if time.Now().After(data.ExpiresAt) {
		m.cache.Delete(sessionKey(sessionID))
		return nil, ErrSessionExpired
	}
	return &data, nil
}

func (m *MemorySessionService) Save(_ context.Context, data *SessionData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(data)
}

func (m *MemorySessionService) save(data *SessionData) error {
	ttl, err := remaining(data)
	if err != nil {
		return err
	}
	m.cache.Set(sessionKey(data.SessionID), *data, ttl)
	return nil
}

func (m *MemorySessionService) Update(_ context.Context, sessionID string, fn func(data *SessionData) error) (*SessionData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(data); err != nil {
		return nil, err
	}
	if err := m.save(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (m *MemorySessionService) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Delete(sessionKey(sessionID))
	return nil
}

// Count ignores entries that expired but were not cleaned up yet
func (m *MemorySessionService) Count(_ context.Context) (int, error) {
	return len(m.cache.Items()), nil
}
