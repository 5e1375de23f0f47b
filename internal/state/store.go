// Package state holds the in-memory subscription collection that local edits
// and remote loads both write to.
package state

import (
	"sync"

	"github.com/theirongolddev/subtrack/internal/model"
)

// Store is the authoritative local list of subscriptions. Ids come from a
// counter that only moves forward, so a removed id is never handed out again
// for the lifetime of the store.
type Store struct {
	mu     sync.RWMutex
	subs   []model.Subscription
	nextID int
}

// New returns an empty store whose first id is 1.
func New() *Store {
	return &Store{nextID: 1}
}

// Restore rebuilds a store from persisted subscriptions. The counter resumes
// at nextID or one past the highest restored id, whichever is larger.
func Restore(subs []model.Subscription, nextID int) *Store {
	s := &Store{subs: make([]model.Subscription, len(subs)), nextID: nextID}
	copy(s.subs, subs)
	for _, sub := range subs {
		if sub.ID >= s.nextID {
			s.nextID = sub.ID + 1
		}
	}
	if s.nextID < 1 {
		s.nextID = 1
	}
	return s
}

// Add validates r and appends it under a new id.
func (s *Store) Add(r model.Record) (model.Subscription, error) {
	if err := model.Validate(r); err != nil {
		return model.Subscription{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub := model.Subscription{ID: s.allocID(), Record: r}
	s.subs = append(s.subs, sub)
	return sub, nil
}

// Edit replaces every field of the subscription with the given id except the
// id itself. It returns model.ErrNotFound, and changes nothing, if the id is
// unknown.
func (s *Store) Edit(id int, r model.Record) (model.Subscription, error) {
	if err := model.Validate(r); err != nil {
		return model.Subscription{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Subscription{}, model.ErrNotFound
	}
	s.subs[i].Record = r
	return s.subs[i], nil
}

// Remove deletes the subscription with the given id and reports whether it
// was present.
func (s *Store) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.subs = append(s.subs[:i], s.subs[i+1:]...)
	return true
}

// ReplaceAll discards the current contents and stores records under fresh
// ids in the order given. If any record is invalid nothing is replaced.
func (s *Store) ReplaceAll(records []model.Record) error {
	for _, r := range records {
		if err := model.Validate(r); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subs := make([]model.Subscription, len(records))
	for i, r := range records {
		subs[i] = model.Subscription{ID: s.allocID(), Record: r}
	}
	s.subs = subs
	return nil
}

// Clear removes every subscription. The id counter is not reset.
func (s *Store) Clear() {
	s.mu.Lock()
	s.subs = nil
	s.mu.Unlock()
}

// Get returns the subscription with the given id.
func (s *Store) Get(id int) (model.Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Subscription{}, false
	}
	return s.subs[i], true
}

// List returns a copy of the subscriptions in order.
func (s *Store) List() []model.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Subscription, len(s.subs))
	copy(out, s.subs)
	return out
}

// Records returns the subscriptions with ids stripped.
func (s *Store) Records() []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Strip(s.subs)
}

// Len returns the number of subscriptions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// NextID returns the id the next Add would assign.
func (s *Store) NextID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

func (s *Store) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) indexOf(id int) int {
	for i := range s.subs {
		if s.subs[i].ID == id {
			return i
		}
	}
	return -1
}
