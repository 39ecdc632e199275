package llm

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the vendor Client implementations, selected by vendor key.
// Vendors are registered once at bootstrap; adding or removing a vendor never
// touches orchestrator code.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]Client),
	}
}

// Register adds a client under its Vendor() key, replacing any previous
// registration for the same key.
func (r *Registry) Register(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.Vendor()] = c
}

// Get returns the client for the vendor key.
func (r *Registry) Get(vendor string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[vendor]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVendor, vendor)
	}
	return c, nil
}

// Vendors returns the registered vendor keys in stable order.
func (r *Registry) Vendors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.clients))
	for k := range r.clients {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
