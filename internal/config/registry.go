package config

import (
	"errors"
	"fmt"
	"sync"

	"voicebrief/pkg/provider/stt"
	"voicebrief/pkg/provider/summary"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	stt         map[string]func(ProviderEntry) (stt.Provider, error)
	summarizers map[string]func(ProviderEntry) (summary.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		stt:         make(map[string]func(ProviderEntry) (stt.Provider, error)),
		summarizers: make(map[string]func(ProviderEntry) (summary.Provider, error)),
	}
}

// RegisterSTT registers an STT provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterSTT(name string, factory func(ProviderEntry) (stt.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stt[name] = factory
}

// RegisterSummarizer registers a summarization provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterSummarizer(name string, factory func(ProviderEntry) (summary.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summarizers[name] = factory
}

// CreateSTT instantiates the STT provider named in entry.
// Returns [ErrProviderNotRegistered] if no factory is registered under that
// name.
func (r *Registry) CreateSTT(entry ProviderEntry) (stt.Provider, error) {
	r.mu.RLock()
	factory, ok := r.stt[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: stt %q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateSummarizer instantiates the summarization provider named in entry.
// Returns [ErrProviderNotRegistered] if no factory is registered under that
// name.
func (r *Registry) CreateSummarizer(entry ProviderEntry) (summary.Provider, error) {
	r.mu.RLock()
	factory, ok := r.summarizers[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: summarizer %q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}
