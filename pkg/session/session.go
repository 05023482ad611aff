// Package session stores generated diagrams so they can be refined and
// exported later.
//
// A [Session] holds the last validated architecture plan, the diagram plan
// derived from it, and the rendered documents. Generation creates a
// session; refinement replaces its contents in place.
//
// # Backends
//
//   - [MemoryStore]: in-process map, the default for a single server
//   - [FileStore]: one JSON file per session, for CLI use
//   - [RedisStore]: shared store for multi-instance deployments
//   - [MongoStore]: document store with a TTL index
//
// Every backend expires sessions after a TTL. Memory, Redis and Mongo
// also cap the number of live sessions and evict the least recently
// updated ones first.
//
// # Usage
//
//	store := session.NewMemoryStore(session.DefaultTTL, session.DefaultMaxSessions)
//
//	sess := session.New(description, plan.ProviderAWS, session.DefaultTTL)
//	sess.ArchitecturePlan = p
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Unknown or expired
//	}
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	"github.com/harishkotra/SketchStack/pkg/plan"
)

// ErrNotFound is returned by helpers that treat a missing session as an
// error. Store.Get itself reports a miss as nil, nil.
var ErrNotFound = errors.New("session not found")

// Defaults.
const (
	DefaultTTL         = 24 * time.Hour
	DefaultMaxSessions = 1000
)

// Session is the persisted state of one diagram.
type Session struct {
	ID               string                `json:"id"`
	Description      string                `json:"description"`
	CloudProvider    plan.Provider         `json:"cloudProvider"`
	ArchitecturePlan plan.ArchitecturePlan `json:"architecturePlan"`
	DiagramPlan      diagram.Plan          `json:"diagramPlan"`
	// Document is the mxGraph XML of the last render.
	Document string `json:"document"`
	// Scene is the Excalidraw scene of the last render.
	Scene     json.RawMessage `json:"scene,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// New creates a session with a fresh random id.
func New(description string, provider plan.Provider, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:            uuid.NewString(),
		Description:   description,
		CloudProvider: provider,
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
}

// Touch marks the session as updated now and extends its expiry by ttl.
func (s *Session) Touch(ttl time.Duration) {
	s.UpdatedAt = time.Now()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return s.expiredAt(time.Now())
}

func (s *Session) expiredAt(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by id. It returns nil, nil if the session
	// does not exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set creates or replaces a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and reports how many were removed.
	// Backends with native expiry may remove fewer than have expired.
	Cleanup(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// MustGet is Get with a miss reported as [ErrNotFound].
func MustGet(ctx context.Context, s Store, id string) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

func encode(sess *Session) ([]byte, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &sess, nil
}
