// registry.go: Name-keyed module registry with first-wins claim semantics
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"sort"
	"sync"
)

// ModuleRegistry is the name-to-descriptor mapping produced by one discovery
// run.
//
// Names are unique within a run: the first successfully validated candidate
// claiming a name wins, and every later claim of the same name is rejected
// with the earlier registrant retained unmodified. The claim check and the
// registration are a single critical section, so two same-named candidates can
// never both pass the collision check.
type ModuleRegistry struct {
	mu      sync.RWMutex
	modules map[string]*ModuleDescriptor
}

// NewModuleRegistry creates an empty module registry.
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{
		modules: make(map[string]*ModuleDescriptor),
	}
}

// Claim atomically records name as taken and registers the descriptor under
// it. Returns false, leaving the registry untouched, when the name is already
// claimed in this run.
func (r *ModuleRegistry) Claim(name string, d *ModuleDescriptor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.modules[name]; taken {
		return false
	}
	r.modules[name] = d
	return true
}

// Get returns the descriptor registered under name.
func (r *ModuleRegistry) Get(name string) (*ModuleDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.modules[name]
	if !ok {
		return nil, NewModuleMissingError(name)
	}
	return d, nil
}

// Has reports whether a module is registered under name.
func (r *ModuleRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.modules[name]
	return ok
}

// Names returns the registered module names in sorted order.
func (r *ModuleRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the name-to-descriptor mapping.
func (r *ModuleRegistry) Snapshot() map[string]*ModuleDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*ModuleDescriptor, len(r.modules))
	for name, d := range r.modules {
		out[name] = d
	}
	return out
}

// Len returns the number of registered modules.
func (r *ModuleRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}
