package backend

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// DefaultOrder is the default backend priority list
var DefaultOrder = []string{LedongthucName, PdfcpuName, PlainTextName}

// Registry maps backend names to constructors
type Registry struct {
	mu        sync.RWMutex
	factories map[string]func() Source
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]func() Source)}
}

// Register registers a source constructor under name
func (r *Registry) Register(name string, factory func() Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a fresh source by name
func (r *Registry) Get(name string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %v)", name, r.namesLocked())
	}
	return f(), nil
}

// Names returns the registered names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chain builds a chain over the named backends in the given order
func (r *Registry) Chain(names []string, budget time.Duration) (*Chain, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no backends configured")
	}
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		src, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return &Chain{Sources: sources, Budget: budget}, nil
}

var defaultRegistry = NewRegistry()

// Register registers a source constructor in the default registry
func Register(name string, factory func() Source) {
	defaultRegistry.Register(name, factory)
}

// Get returns a fresh source from the default registry
func Get(name string) (Source, error) {
	return defaultRegistry.Get(name)
}

// Names returns the names in the default registry
func Names() []string {
	return defaultRegistry.Names()
}

// NewChainFromNames builds a chain from the default registry
func NewChainFromNames(names []string, budget time.Duration) (*Chain, error) {
	return defaultRegistry.Chain(names, budget)
}

func init() {
	Register(LedongthucName, func() Source { return NewLedongthucSource() })
	Register(PdfcpuName, func() Source { return NewPdfcpuSource() })
	Register(PlainTextName, func() Source { return NewPlainTextSource() })
}
