// config_watcher.go: Hot reload of module configuration with Argus integration
//
// This file wires the descriptor's ReloadConfig lifecycle to filesystem
// changes: every registered module's configuration document is watched through
// Argus, and a change event triggers a re-resolution of that module's document
// without touching the rest of the registry.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// ConfigWatcherOptions customizes module configuration watching behavior.
type ConfigWatcherOptions struct {
	// PollInterval is how often Argus checks watched files for changes.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// CacheTTL is the Argus stat-cache lifetime.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// ErrorHandler receives watch errors. Defaults to logging through the
	// watcher's logger.
	ErrorHandler func(err error, path string) `json:"-" yaml:"-"`
}

// DefaultConfigWatcherOptions returns sensible defaults for module
// configuration files, which change rarely but should apply promptly.
func DefaultConfigWatcherOptions() ConfigWatcherOptions {
	return ConfigWatcherOptions{
		PollInterval: 2 * time.Second,
		CacheTTL:     1 * time.Second,
	}
}

// ModuleConfigWatcher hot-reloads per-module configuration documents.
//
// The watcher observes the conventional configuration file of every valid
// descriptor in a registry. On a change event the affected descriptor
// re-resolves its document via ReloadConfig; deletes are skipped with a
// warning since a module keeps its last resolved document until a readable
// replacement appears.
type ModuleConfigWatcher struct {
	registry *ModuleRegistry
	logger   Logger
	watcher  *argus.Watcher
	options  ConfigWatcherOptions

	enabled  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	mutex    sync.Mutex
}

// NewModuleConfigWatcher creates a watcher over the given registry's module
// configuration files.
func NewModuleConfigWatcher(registry *ModuleRegistry, options ConfigWatcherOptions, logger Logger) (*ModuleConfigWatcher, error) {
	if registry == nil {
		return nil, NewWatcherError("registry is required", nil)
	}
	if logger == nil {
		logger = DefaultLogger()
	}
	if options.PollInterval == 0 {
		options.PollInterval = DefaultConfigWatcherOptions().PollInterval
	}
	if options.CacheTTL == 0 {
		options.CacheTTL = DefaultConfigWatcherOptions().CacheTTL
	}

	argusConfig := argus.Config{
		PollInterval:         options.PollInterval,
		CacheTTL:             options.CacheTTL,
		MaxWatchedFiles:      registry.Len() + 8,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, path string) {
			if options.ErrorHandler != nil {
				options.ErrorHandler(err, path)
				return
			}
			logger.Error("Module config file watching error", "error", err, "file", path)
		},
	}

	return &ModuleConfigWatcher{
		registry: registry,
		logger:   logger,
		watcher:  argus.New(argusConfig),
		options:  options,
	}, nil
}

// Start begins watching every registered module's configuration file.
//
// Returns an error when the watcher was already started, was permanently
// stopped, or Argus fails to start. Descriptors without a configuration store
// are skipped with a debug diagnostic.
func (w *ModuleConfigWatcher) Start(ctx context.Context) error {
	if w.stopped.Load() {
		return NewWatcherError("watcher has been permanently stopped", nil)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.enabled.CompareAndSwap(false, true) {
		return NewWatcherError("watcher is already running", nil)
	}

	watched := 0
	for _, name := range w.registry.Names() {
		descriptor, err := w.registry.Get(name)
		if err != nil {
			continue
		}
		path := descriptor.configPath()
		if path == "" {
			w.logger.Debug("Module has no configuration store, not watching", "module", name)
			continue
		}

		if err := w.watcher.Watch(path, w.changeHandler(descriptor)); err != nil {
			w.enabled.Store(false)
			return NewWatcherError("failed to watch module config file", err).
				WithContext("module", name).
				WithContext("config_path", path)
		}
		watched++
	}

	if err := w.watcher.Start(); err != nil {
		w.enabled.Store(false)
		return NewWatcherError("failed to start Argus watcher", err)
	}

	w.logger.Info("Module configuration watcher started",
		"watched_files", watched,
		"poll_interval", w.options.PollInterval)
	return nil
}

// changeHandler builds the Argus callback applying a change to one descriptor.
func (w *ModuleConfigWatcher) changeHandler(descriptor *ModuleDescriptor) func(argus.ChangeEvent) {
	return func(event argus.ChangeEvent) {
		if event.IsDelete {
			w.logger.Warn("Module configuration file deleted, keeping current document",
				"module", descriptor.Name(), "path", event.Path)
			return
		}

		descriptor.ReloadConfig()
		w.logger.Info("Module configuration change applied",
			"module", descriptor.Name(),
			"path", event.Path,
			"is_create", event.IsCreate)
	}
}

// Stop permanently stops the watcher. Safe to call multiple times.
func (w *ModuleConfigWatcher) Stop() error {
	var stopErr error

	w.stopOnce.Do(func() {
		w.mutex.Lock()
		defer w.mutex.Unlock()

		w.stopped.Store(true)
		w.enabled.Store(false)

		if err := w.watcher.Stop(); err != nil {
			stopErr = NewWatcherError("failed to stop Argus watcher", err)
			w.logger.Error("Module configuration watcher stop failed", "error", stopErr)
			return
		}
		w.logger.Info("Module configuration watcher stopped")
	})

	return stopErr
}

// IsRunning reports whether the watcher is currently active.
func (w *ModuleConfigWatcher) IsRunning() bool {
	return w.enabled.Load() && !w.stopped.Load()
}
