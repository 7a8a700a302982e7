package notify

import (
	"sync"

	"github.com/gosuda/campusbot/internal/messenger"
)

// Registry is a simple map-based MessengerRegistry.
type Registry struct {
	mu         sync.RWMutex
	messengers map[string]messenger.Messenger
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		messengers: make(map[string]messenger.Messenger),
	}
}

// Register adds a messenger under its Platform name.
func (r *Registry) Register(m messenger.Messenger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messengers[m.Platform()] = m
}

// Get returns the messenger for the given platform, or false if not registered.
func (r *Registry) Get(platform string) (messenger.Messenger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.messengers[platform]
	return m, ok
}
