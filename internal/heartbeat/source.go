package heartbeat

import (
	"context"

	"github.com/markusressel/growctl/internal/store"
)

// StoreSource reads the liveness token from a state in the store
type StoreSource struct {
	store store.Store
	id    string
}

func NewStoreSource(s store.Store, id string) *StoreSource {
	return &StoreSource{
		store: s,
		id:    id,
	}
}

func (s *StoreSource) Token(ctx context.Context) (any, error) {
	state, err := s.store.Read(ctx, s.id)
	if err != nil {
		return nil, err
	}
	return state.Value, nil
}

func (s *StoreSource) Changes(ctx context.Context) (<-chan any, error) {
	states, err := s.store.Subscribe(ctx, s.id)
	if err != nil {
		return nil, err
	}
	tokens := make(chan any)
	go func() {
		defer close(tokens)
		for state := range states {
			select {
			case tokens <- state.Value:
			case <-ctx.Done():
				return
			}
		}
	}()
	return tokens, nil
}
