// loader.go: Module discovery, validation, registration, and isolated invocation
//
// This file implements the core pipeline: list a directory, filter candidate
// manifest files by suffix, and for each candidate run an independent
// load-validate-claim-invoke sequence. Every per-candidate failure is resolved
// locally through the logger; only a failure to list the directory aborts a
// run.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LoaderOptions configures a ModuleLoader.
type LoaderOptions struct {
	// Suffixes are the module-file suffixes a directory entry must carry to
	// count as a candidate. Entries not matching any suffix are silently
	// ignored.
	Suffixes []string `json:"suffixes" yaml:"suffixes"`

	// ConfigDir overrides where per-module configuration documents are
	// resolved from. Empty means <scanned dir>/moduleconfigs.
	ConfigDir string `json:"config_dir" yaml:"config_dir"`

	// InvokeTimeout bounds each entry-point invocation. Zero means no bound
	// beyond the run context and any per-module exec timeout.
	InvokeTimeout time.Duration `json:"invoke_timeout" yaml:"invoke_timeout"`

	// SkipInvocation registers modules without running their entry points.
	SkipInvocation bool `json:"skip_invocation" yaml:"skip_invocation"`

	// Logger receives every diagnostic the pipeline produces.
	Logger Logger `json:"-" yaml:"-"`
}

// DefaultLoaderOptions returns the defaults applied to unset option fields.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		Suffixes: []string{".module.json", ".module.yaml", ".module.yml"},
	}
}

// applyLoaderDefaults fills unset option fields with defaults.
func applyLoaderDefaults(opts *LoaderOptions) {
	if len(opts.Suffixes) == 0 {
		opts.Suffixes = DefaultLoaderOptions().Suffixes
	}
	if opts.Logger == nil {
		opts.Logger = DefaultLogger()
	}
}

// ModuleLoader orchestrates one discovery run: directory scanning, candidate
// filtering, per-candidate load and validation, name-collision detection,
// configuration resolution, and isolated entry-point invocation.
//
// A loader is stateless across runs; each Run produces a fresh registry.
type ModuleLoader struct {
	opts   LoaderOptions
	logger Logger
}

// NewModuleLoader creates a module loader with the given options. The logger
// is injected here rather than taken from process-wide state so diagnostics
// stay testable and host-controlled.
func NewModuleLoader(opts LoaderOptions) *ModuleLoader {
	applyLoaderDefaults(&opts)
	return &ModuleLoader{
		opts:   opts,
		logger: opts.Logger,
	}
}

// pendingInvocation is a registered module whose entry point still has to run.
type pendingInvocation struct {
	name  string
	file  string
	entry EntryPoint
}

// Run executes one full discovery run over dir, resolved relative to the
// process working directory.
//
// The returned registry reflects every successfully validated candidate, and
// by the time Run returns every entry-point invocation has completed and had
// its outcome logged. The error return is non-nil only for fatal conditions:
// the directory could not be listed, or the context was cancelled mid-run (in
// which case the partial registry is still returned).
func (l *ModuleLoader) Run(ctx context.Context, dir string) (*ModuleRegistry, error) {
	resolved := dir
	if abs, err := filepath.Abs(dir); err == nil {
		resolved = abs
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		fatal := NewDirectoryUnreadableError(resolved, err)
		l.logger.Error("Module directory listing failed", "directory", resolved, "error", fatal)
		return nil, fatal
	}

	candidates := l.filterCandidates(entries)
	if len(candidates) == 0 {
		l.logger.Warn("No candidate module files found",
			"directory", resolved, "suffixes", l.opts.Suffixes)
		return NewModuleRegistry(), nil
	}

	configDir := l.opts.ConfigDir
	if configDir == "" {
		configDir = filepath.Join(resolved, DefaultConfigDirName)
	}
	store := NewConfigStore(configDir, l.logger)

	registry := NewModuleRegistry()
	pending := make([]*pendingInvocation, 0, len(candidates))

	for i, file := range candidates {
		select {
		case <-ctx.Done():
			l.logger.Warn("Module loading cancelled",
				"directory", resolved, "remaining_candidates", len(candidates)-i)
			return registry, ctx.Err()
		default:
		}

		if p := l.loadCandidate(filepath.Join(resolved, file), file, store, registry); p != nil {
			pending = append(pending, p)
		}
	}

	results := l.invokeAll(ctx, pending)

	failed := 0
	for _, result := range results {
		if !result.Succeeded() {
			failed++
		}
	}
	l.logger.Info("Module loading completed",
		"directory", resolved,
		"candidates", len(candidates),
		"registered", registry.Len(),
		"invoked", len(results),
		"failed", failed)

	return registry, nil
}

// filterCandidates selects directory entries whose names match a configured
// module-file suffix. Subdirectories and other entries generate no diagnostic.
func (l *ModuleLoader) filterCandidates(entries []os.DirEntry) []string {
	candidates := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, suffix := range l.opts.Suffixes {
			if strings.HasSuffix(entry.Name(), suffix) {
				candidates = append(candidates, entry.Name())
				break
			}
		}
	}
	return candidates
}

// loadCandidate runs the load-validate-claim sequence for a single candidate.
// Every outcome of this sequence is independent of sibling candidates. The
// return is nil when the candidate was rejected or registered without an
// invocable entry point.
func (l *ModuleLoader) loadCandidate(path, file string, store *ConfigStore, registry *ModuleRegistry) *pendingInvocation {
	doc, err := parseManifestFile(path)
	if err != nil {
		l.logger.Warn("Failed to load module candidate", "file", file, "error", err)
		return nil
	}

	decl, ok := doc.moduleDeclaration()
	if !ok {
		l.logger.Warn("Candidate declares no module",
			"file", file, "error", NewNoModuleDeclarationError(file))
		return nil
	}

	rawName, ok := mappingField(decl, "moduleName")
	if !ok {
		l.logger.Warn("Module declaration is missing moduleName",
			"file", file, "error", NewMissingModuleNameError(file))
		return nil
	}

	name, ok := normalizeModuleName(rawName)
	if !ok {
		l.logger.Warn("Module declares a moduleName of invalid type",
			"file", file, "error", NewInvalidModuleNameError(file, rawName))
		return nil
	}

	if err := validateModuleNameSecurity(name); err != nil {
		l.logger.Warn("Module name failed safety validation",
			"file", file, "module", name, "error", err)
		return nil
	}

	execVal, execPresent := mappingField(decl, "exec")
	var execSpec *ExecSpec
	execValid := false
	if execPresent {
		execSpec, execValid = parseExecSpec(execVal)
	}

	var entry EntryPoint
	if execValid {
		entry = execSpec.EntryPoint(name)
	}

	descriptor := NewModuleDescriptor(name, entry, store, l.logger)
	descriptor.manifestPath = path
	descriptor.export = decl

	// Claim and registration are one atomic check-and-set; the first
	// registrant of a name is retained unmodified.
	if !registry.Claim(name, descriptor) {
		l.logger.Warn("Module name conflict, keeping earlier registrant",
			"file", file, "module", name, "error", NewNameConflictError(name, file))
		return nil
	}

	l.logger.Debug("Module registered",
		"module", name, "file", file, "config_keys", len(descriptor.Config()))

	// Registration already happened; the shape check is informational only.
	if !isStandardMapping(decl) {
		l.logger.Warn("Module declaration has a non-standard mapping shape",
			"file", file, "module", name)
	}

	if !execPresent {
		l.logger.Warn("Module exposes no exec command, skipping invocation",
			"file", file, "module", name, "error", NewNoEntryPointError(name))
		return nil
	}
	if !execValid {
		l.logger.Warn("Module exec declaration is not a command specification, skipping invocation",
			"file", file, "module", name, "error", NewInvalidExecContractError(name))
		return nil
	}

	return &pendingInvocation{name: name, file: file, entry: entry}
}

// invokeAll fans the pending entry points out on goroutines and waits for the
// full fan-out, logging every outcome identically. A failing or panicking
// entry point is contained to its own InvocationResult and cannot affect
// sibling invocations or the registry.
func (l *ModuleLoader) invokeAll(ctx context.Context, pending []*pendingInvocation) []InvocationResult {
	if l.opts.SkipInvocation || len(pending) == 0 {
		return nil
	}

	results := make([]InvocationResult, len(pending))
	var wg sync.WaitGroup

	for i, p := range pending {
		wg.Add(1)
		go func(i int, p *pendingInvocation) {
			defer wg.Done()
			defer withStackRecover(l.logger)()

			invokeCtx := ctx
			if l.opts.InvokeTimeout > 0 {
				var cancel context.CancelFunc
				invokeCtx, cancel = context.WithTimeout(ctx, l.opts.InvokeTimeout)
				defer cancel()
			}

			results[i] = invokeEntryPoint(invokeCtx, p.name, p.file, p.entry)
		}(i, p)
	}
	wg.Wait()

	for _, result := range results {
		switch {
		case result.Panicked:
			l.logger.Error("Module entry point panicked",
				"module", result.Module, "file", result.File,
				"error", result.Err, "stack", result.Stack,
				"duration", result.Duration)
		case result.Err != nil:
			l.logger.Error("Module entry point failed",
				"module", result.Module, "file", result.File,
				"error", result.Err, "duration", result.Duration)
		default:
			l.logger.Info("Module entry point completed",
				"module", result.Module, "file", result.File,
				"duration", result.Duration)
		}
	}

	return results
}
