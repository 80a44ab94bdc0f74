package heartbeat

import (
	"context"
	"sync"
	"time"

	"github.com/markusressel/growctl/internal/store"
	"github.com/markusressel/growctl/internal/ui"
)

type State int

const (
	StateUninitialized State = iota
	StateDisconnected
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	default:
		return "uninitialized"
	}
}

// Source provides the liveness token written by the remote client
type Source interface {
	Token(ctx context.Context) (any, error)
	// Changes emits every new token until ctx is cancelled
	Changes(ctx context.Context) (<-chan any, error)
}

// Watchdog monitors the liveness token of the remote client. The client is
// considered connected as long as the token changes between two checks.
type Watchdog struct {
	source   Source
	timeout  time.Duration
	interval time.Duration
	clock    func() time.Time

	onConnect    func()
	onDisconnect func()

	mu               sync.Mutex
	state            State
	lastToken        any
	initialCheckDone bool
	lastChange       time.Time
	nextEmit         time.Time

	connects    int
	disconnects int
}

// Statistics of a Watchdog
type Statistics struct {
	State       State     `json:"state"`
	StateName   string    `json:"stateName"`
	LastToken   any       `json:"lastToken"`
	LastChange  time.Time `json:"lastChange"`
	Connects    int       `json:"connects"`
	Disconnects int       `json:"disconnects"`
}

// NewWatchdog creates a watchdog that checks the source every timeout and emits a
// local liveness value every interval. Callbacks are invoked on state edges only.
func NewWatchdog(source Source, timeout time.Duration, interval time.Duration, clock func() time.Time, onConnect func(), onDisconnect func()) *Watchdog {
	if clock == nil {
		clock = time.Now
	}
	if onConnect == nil {
		onConnect = func() {}
	}
	if onDisconnect == nil {
		onDisconnect = func() {}
	}
	return &Watchdog{
		source:       source,
		timeout:      timeout,
		interval:     interval,
		clock:        clock,
		onConnect:    onConnect,
		onDisconnect: onDisconnect,
		state:        StateUninitialized,
	}
}

// Run checks the source on every timeout tick and on every change notification
// until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) error {
	changes, err := w.source.Changes(ctx)
	if err != nil {
		ui.Warning("Unable to subscribe to heartbeat changes, relying on timeout only: %v", err)
		changes = nil
	}

	tick := time.NewTicker(w.timeout)
	defer tick.Stop()

	w.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			w.Check(ctx)
		case token, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			w.HandleChange(token)
		}
	}
}

// Check reads the current token and compares it to the previous one
func (w *Watchdog) Check(ctx context.Context) State {
	token, err := w.source.Token(ctx)
	if err != nil {
		ui.Error("Unable to read heartbeat: %v", err)
	}
	return w.observe(token, err == nil)
}

// HandleChange evaluates a change notification. Changes are ignored while
// connected, so that only the timeout tick decides about a lost connection.
func (w *Watchdog) HandleChange(token any) State {
	w.mu.Lock()
	connected := w.state == StateConnected
	w.mu.Unlock()
	if connected {
		return StateConnected
	}
	return w.observe(token, true)
}

func (w *Watchdog) observe(token any, ok bool) State {
	w.mu.Lock()

	first := !w.initialCheckDone
	if !ok {
		// an unreadable token counts as unchanged
		token = w.lastToken
	}
	changed := !first && !store.Equal(token, w.lastToken)

	w.lastToken = token
	w.initialCheckDone = true

	var callback func()
	previous := w.state
	if changed {
		w.lastChange = w.clock()
		if previous != StateConnected {
			w.state = StateConnected
			w.connects++
			callback = w.onConnect
		}
	} else if previous != StateDisconnected {
		w.state = StateDisconnected
		if previous == StateConnected {
			w.disconnects++
			callback = w.onDisconnect
		}
	}
	state := w.state
	w.mu.Unlock()

	if previous != state {
		switch state {
		case StateConnected:
			ui.Info("Heartbeat of client received, client is connected")
		case StateDisconnected:
			if previous == StateConnected {
				ui.Error("No heartbeat of client received within %v", w.timeout)
			} else {
				ui.Info("Waiting for heartbeat of client...")
			}
		}
	}

	if callback != nil {
		callback()
	}
	return state
}

// Emit returns the liveness value (unix milliseconds) to write to the client,
// if the emit interval has elapsed since the last emitted value.
func (w *Watchdog) Emit(now time.Time) (int64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if now.Before(w.nextEmit) {
		return 0, false
	}
	w.nextEmit = now.Add(w.interval)
	return now.UnixMilli(), true
}

func (w *Watchdog) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Watchdog) Statistics() Statistics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Statistics{
		State:       w.state,
		StateName:   w.state.String(),
		LastToken:   w.lastToken,
		LastChange:  w.lastChange,
		Connects:    w.connects,
		Disconnects: w.disconnects,
	}
}
