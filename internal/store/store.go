package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/markusressel/growctl/internal/configuration"
)

var ErrNotFound = errors.New("state not found")

// State is a single value in the external key/value store
type State struct {
	Id        string    `json:"id"`
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the external state store used to exchange values with
// sensors, actuators and clients.
type Store interface {
	// Read returns the current state of the given id, or ErrNotFound
	Read(ctx context.Context, id string) (State, error)
	// Write requests the given id to be set to value
	Write(ctx context.Context, id string, value any) error
	// Subscribe returns a channel that receives every change of the given id
	// until ctx is cancelled.
	Subscribe(ctx context.Context, id string) (<-chan State, error)
	Close() error
}

// NewStore creates the store configured by the given config
func NewStore(config configuration.StoreConfig) (Store, error) {
	switch config.Type {
	case configuration.StoreTypeMemory:
		return NewMemoryStore(), nil
	case configuration.StoreTypeBolt:
		return NewBoltStore(config.Path)
	case configuration.StoreTypeMqtt:
		return NewMqttStore(config.Mqtt)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// Normalize converts numeric values to float64, so that values read back
// from different backends compare equal.
func Normalize(value any) any {
	switch v := value.(type) {
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	default:
		return value
	}
}

const floatTolerance = 1e-9

// Equal compares two store values after normalization
func Equal(a, b any) bool {
	a = Normalize(a)
	b = Normalize(b)
	af, aIsFloat := a.(float64)
	bf, bIsFloat := b.(float64)
	if aIsFloat && bIsFloat {
		return math.Abs(af-bf) <= floatTolerance
	}
	if aIsFloat != bIsFloat {
		return false
	}
	return a == b
}

type notifier struct {
	mu          sync.Mutex
	subscribers map[string][]chan State
}

func newNotifier() *notifier {
	return &notifier{
		subscribers: map[string][]chan State{},
	}
}

func (n *notifier) subscribe(ctx context.Context, id string) <-chan State {
	ch := make(chan State, 1)

	n.mu.Lock()
	n.subscribers[id] = append(n.subscribers[id], ch)
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.unsubscribe(id, ch)
	}()

	return ch
}

func (n *notifier) unsubscribe(id string, ch chan State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	channels := n.subscribers[id]
	for i, c := range channels {
		if c == ch {
			n.subscribers[id] = append(channels[:i], channels[i+1:]...)
			close(ch)
			break
		}
	}
	if len(n.subscribers[id]) == 0 {
		delete(n.subscribers, id)
	}
}

// notify delivers the state to all subscribers of its id.
// Slow subscribers only ever see the latest pending change.
func (n *notifier) notify(state State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subscribers[state.Id] {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, channels := range n.subscribers {
		for _, ch := range channels {
			close(ch)
		}
		delete(n.subscribers, id)
	}
}
