// descriptor.go: In-memory representation of one loaded module
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"context"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// ModuleDescriptor is the in-memory record of one loaded module: an immutable
// name, an entry-point callable, and the module's resolved configuration
// document.
//
// Construction never fails. A moduleName that is not of scalar identity type
// (string, number, boolean) degrades the descriptor instead: the name stays
// empty, configuration resolution is skipped, and a warning is logged. Callers
// that require a validly named descriptor must check Name() for emptiness —
// the loader does exactly that before registration.
//
// The configuration document is the only mutable field, and only via
// ReloadConfig. All other fields are fixed for the descriptor's lifetime,
// which is the process lifetime unless the host discards it.
type ModuleDescriptor struct {
	name         string
	entry        EntryPoint
	manifestPath string
	export       any
	loadedAt     time.Time

	store  *ConfigStore
	logger Logger

	mu             sync.RWMutex
	config         map[string]any
	configLoadedAt time.Time
}

// NewModuleDescriptor constructs a descriptor for the given module name and
// entry point.
//
// name may be any declared moduleName value; only strings, numbers, and
// booleans produce a usable descriptor. entry may be nil, in which case the
// no-op entry point is substituted. store resolves the module's configuration
// document immediately, best-effort; a nil store yields an empty document.
func NewModuleDescriptor(name any, entry EntryPoint, store *ConfigStore, logger Logger) *ModuleDescriptor {
	if logger == nil {
		logger = DefaultLogger()
	}
	if entry == nil {
		entry = NoOpEntryPoint
	}

	d := &ModuleDescriptor{
		entry:    entry,
		store:    store,
		logger:   logger,
		loadedAt: timecache.CachedTime(),
		config:   map[string]any{},
	}

	normalized, ok := normalizeModuleName(name)
	if !ok {
		// Degraded construction: no name is bound and the configuration
		// lookup is skipped entirely.
		logger.Warn("Module descriptor constructed without a valid name",
			"provided_name", name)
		return d
	}
	d.name = normalized

	d.resolveConfig()
	return d
}

// resolveConfig performs the best-effort configuration lookup by name.
func (d *ModuleDescriptor) resolveConfig() {
	doc := map[string]any{}
	if d.store != nil {
		doc = d.store.Resolve(d.name)
	}

	d.mu.Lock()
	d.config = doc
	d.configLoadedAt = timecache.CachedTime()
	d.mu.Unlock()
}

// configPath returns the conventional configuration file path for this
// descriptor, or "" when there is no store or no valid name to resolve by.
func (d *ModuleDescriptor) configPath() string {
	if d.store == nil || !d.Valid() {
		return ""
	}
	return d.store.PathFor(d.name)
}

// Name returns the module's normalized name, or the empty string for a
// degraded descriptor.
func (d *ModuleDescriptor) Name() string {
	return d.name
}

// Valid reports whether the descriptor carries a usable module name.
func (d *ModuleDescriptor) Valid() bool {
	return d.name != ""
}

// EntryPoint returns the module's entry point. Never nil.
func (d *ModuleDescriptor) EntryPoint() EntryPoint {
	return d.entry
}

// Invoke runs the module's entry point and returns its uniform outcome.
func (d *ModuleDescriptor) Invoke(ctx context.Context) InvocationResult {
	return invokeEntryPoint(ctx, d.name, d.manifestPath, d.entry)
}

// ManifestPath returns the candidate file this descriptor was loaded from,
// when known.
func (d *ModuleDescriptor) ManifestPath() string {
	return d.manifestPath
}

// Export returns the raw module declaration as decoded from the manifest.
func (d *ModuleDescriptor) Export() any {
	return d.export
}

// LoadedAt returns when the descriptor was constructed.
func (d *ModuleDescriptor) LoadedAt() time.Time {
	return d.loadedAt
}

// ConfigLoadedAt returns when the configuration document was last resolved.
func (d *ModuleDescriptor) ConfigLoadedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.configLoadedAt
}

// Config returns a copy of the module's current configuration document.
func (d *ModuleDescriptor) Config() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	doc := make(map[string]any, len(d.config))
	for k, v := range d.config {
		doc[k] = v
	}
	return doc
}

// ConfigValue returns a single configuration value and whether it is present.
func (d *ModuleDescriptor) ConfigValue(key string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.config[key]
	return v, ok
}

// ReloadConfig re-resolves the configuration document by name, with the same
// lookup semantics as construction.
//
// On a degraded descriptor this is a no-op: the current document is kept and a
// diagnostic is emitted instead of re-resolving.
func (d *ModuleDescriptor) ReloadConfig() {
	if !d.Valid() {
		d.logger.Warn("Configuration reload skipped for descriptor without a valid name",
			"error", NewConfigReloadDeniedError())
		return
	}

	d.resolveConfig()
	d.logger.Debug("Module configuration reloaded", "module", d.name)
}
