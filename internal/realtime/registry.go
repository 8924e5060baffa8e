package realtime

import (
	"log/slog"
	"sync"
)

// Sink is a single client delivery endpoint. Send must not block: an
// implementation with a full outbound buffer should drop the message or
// report an error rather than stall the caller.
type Sink interface {
	// Send queues the marshaled event for delivery. An error marks the
	// sink as dead; the caller removes it from the registry.
	Send(message []byte) error

	// Close releases the sink's resources. Safe to call more than once.
	Close()
}

// Registry tracks which sinks belong to which user. It is the seam between
// connection handling and event publishing: the Hub reads from it, the
// WebSocket handler writes to it.
type Registry interface {
	// Add registers a sink for the given user and returns a remove
	// function that unregisters exactly that sink.
	Add(userID string, sink Sink) (remove func())

	// ForUser returns a snapshot of the user's current sinks.
	ForUser(userID string) []Sink

	// All returns a snapshot of every registered sink.
	All() []Sink

	// Len reports the number of registered sinks.
	Len() int
}

// InMemoryRegistry is the process-local Registry implementation. Sinks are
// held in a per-user set guarded by a single read/write mutex.
type InMemoryRegistry struct {
	mu     sync.RWMutex
	sinks  map[string]map[Sink]struct{}
	logger *slog.Logger
}

// NewInMemoryRegistry creates an empty registry.
func NewInMemoryRegistry(logger *slog.Logger) *InMemoryRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryRegistry{
		sinks:  make(map[string]map[Sink]struct{}),
		logger: logger.With(slog.String("component", "realtime_registry")),
	}
}

var _ Registry = (*InMemoryRegistry)(nil)

// Add implements Registry.Add
func (r *InMemoryRegistry) Add(userID string, sink Sink) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sinks[userID]
	if !ok {
		set = make(map[Sink]struct{})
		r.sinks[userID] = set
	}
	set[sink] = struct{}{}

	r.logger.Debug("sink registered",
		slog.String("user_id", userID),
		slog.Int("user_sinks", len(set)))

	var once sync.Once
	return func() {
		once.Do(func() {
			r.remove(userID, sink)
		})
	}
}

func (r *InMemoryRegistry) remove(userID string, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sinks[userID]
	if !ok {
		return
	}
	delete(set, sink)
	if len(set) == 0 {
		delete(r.sinks, userID)
	}

	r.logger.Debug("sink removed",
		slog.String("user_id", userID),
		slog.Int("user_sinks", len(set)))
}

// ForUser implements Registry.ForUser
func (r *InMemoryRegistry) ForUser(userID string) []Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.sinks[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]Sink, 0, len(set))
	for sink := range set {
		out = append(out, sink)
	}
	return out
}

// All implements Registry.All
func (r *InMemoryRegistry) All() []Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Sink, 0)
	for _, set := range r.sinks {
		for sink := range set {
			out = append(out, sink)
		}
	}
	return out
}

// Len implements Registry.Len
func (r *InMemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, set := range r.sinks {
		n += len(set)
	}
	return n
}
