package service

import (
	"sync"
	"time"

	"github.com/jonny/kubot/internal/domain/model"
)

type pendingKey struct {
	userID    string
	channelID string
}

// PendingStore holds at most one outstanding confirmation per (user, channel)
// pair. All operations are atomic; two confirmations racing for the same
// pending action cannot both take it.
type PendingStore struct {
	mu      sync.Mutex
	actions map[pendingKey]model.PendingAction
	now     func() time.Time
}

func NewPendingStore() *PendingStore {
	return &PendingStore{
		actions: make(map[pendingKey]model.PendingAction),
		now:     time.Now,
	}
}

// Put stores a pending action, superseding any prior one for the same pair.
// Only the latest destructive request is eligible for confirmation.
func (s *PendingStore) Put(action model.PendingAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[pendingKey{action.UserID, action.ChannelID}] = action
}

// Take atomically fetches and removes the pending action for the pair.
// Expired entries are dropped and reported as absent; expiry and absence are
// indistinguishable to the caller.
func (s *PendingStore) Take(userID, channelID string) (model.PendingAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pendingKey{userID, channelID}
	action, ok := s.actions[key]
	if !ok {
		return model.PendingAction{}, false
	}
	delete(s.actions, key)
	if action.Expired(s.now().UTC()) {
		return model.PendingAction{}, false
	}
	return action, true
}

// Peek returns the pending action without consuming it.
func (s *PendingStore) Peek(userID, channelID string) (model.PendingAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, ok := s.actions[pendingKey{userID, channelID}]
	if !ok || action.Expired(s.now().UTC()) {
		return model.PendingAction{}, false
	}
	return action, true
}

// Sweep drops every expired entry. Called periodically; Take also evicts
// lazily, so sweeping only bounds memory, it is not needed for correctness.
func (s *PendingStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	removed := 0
	for key, action := range s.actions {
		if action.Expired(now) {
			delete(s.actions, key)
			removed++
		}
	}
	return removed
}

func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}
