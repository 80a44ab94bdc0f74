package store

import (
	"context"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// MemoryStore keeps all states in process memory
type MemoryStore struct {
	states   cmap.ConcurrentMap[string, State]
	notifier *notifier
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states:   cmap.New[State](),
		notifier: newNotifier(),
	}
}

func (s *MemoryStore) Read(_ context.Context, id string) (State, error) {
	state, ok := s.states.Get(id)
	if !ok {
		return State{}, ErrNotFound
	}
	return state, nil
}

func (s *MemoryStore) Write(_ context.Context, id string, value any) error {
	state := State{
		Id:        id,
		Value:     Normalize(value),
		Timestamp: time.Now(),
	}
	s.states.Set(id, state)
	s.notifier.notify(state)
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, id string) (<-chan State, error) {
	return s.notifier.subscribe(ctx, id), nil
}

// Keys returns the ids of all known states
func (s *MemoryStore) Keys() []string {
	return s.states.Keys()
}

func (s *MemoryStore) Close() error {
	s.notifier.close()
	return nil
}
