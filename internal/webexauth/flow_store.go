package webexauth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultStateTTL bounds how long a user has to finish the login.
const DefaultStateTTL = 10 * time.Minute

var (
	// ErrUnknownState is returned for a state that was never issued or was
	// already used.
	ErrUnknownState = errors.New("authorization state not found")
	// ErrStateExpired is returned for a state older than its TTL.
	ErrStateExpired = errors.New("authorization state expired")
)

// pendingFlow is an authorization waiting for its callback.
type pendingFlow struct {
	verifier  string
	expiresAt time.Time
}

// FlowStore holds pending authorizations keyed by state. Each state can be
// consumed once.
type FlowStore struct {
	mu     sync.Mutex
	flows  map[string]pendingFlow
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewFlowStore returns an empty store. A ttl of zero uses DefaultStateTTL.
func NewFlowStore(ttl time.Duration, logger *slog.Logger) *FlowStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FlowStore{
		flows:  make(map[string]pendingFlow),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Save records a new pending authorization and returns its state.
func (s *FlowStore) Save(verifier string) (string, error) {
	state, err := randomState()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeExpired()
	s.flows[state] = pendingFlow{verifier: verifier, expiresAt: s.now().Add(s.ttl)}
	s.logger.Debug("saved authorization state", "pending", len(s.flows))
	return state, nil
}

// Consume returns the verifier for state and forgets it.
func (s *FlowStore) Consume(state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[state]
	if !ok {
		return "", ErrUnknownState
	}
	delete(s.flows, state)

	if !s.now().Before(flow.expiresAt) {
		return "", ErrStateExpired
	}
	return flow.verifier, nil
}

// Len returns the number of pending authorizations.
func (s *FlowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}

// removeExpired must be called with mu held.
func (s *FlowStore) removeExpired() {
	now := s.now()
	for state, flow := range s.flows {
		if !now.Before(flow.expiresAt) {
			delete(s.flows, state)
		}
	}
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
