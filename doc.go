// Package gomodules provides a filesystem-driven module loading runtime for Go
// applications. It discovers module manifest files in a directory, validates the
// contract each one declares, resolves a per-module JSON configuration document,
// enforces name uniqueness across a run, and invokes each module's entry point
// with full failure isolation so one broken module cannot prevent the others
// from loading or running.
//
// Key Features:
//   - Directory scanning with suffix-based candidate filtering
//   - JSON and YAML module manifests
//   - First-wins name conflict resolution with atomic claim semantics
//   - Per-module configuration documents with explicit reload support
//   - Hot reload of module configuration via Argus file watching
//   - Isolated entry-point invocation with panic recovery and stack traces
//   - Pluggable structured logging
//
// Basic Usage:
//
//	loader := gomodules.NewModuleLoader(gomodules.LoaderOptions{
//		Logger: logger, // any gomodules.Logger implementation
//	})
//
//	registry, err := loader.Run(ctx, "./modules")
//	if err != nil {
//		log.Fatal(err) // directory could not be listed
//	}
//
//	for _, name := range registry.Names() {
//		desc, _ := registry.Get(name)
//		fmt.Printf("loaded module %s (config keys: %d)\n", name, len(desc.Config()))
//	}
//
// Failure Containment:
// Every per-candidate condition (unreadable manifest, missing module
// declaration, missing or invalid module name, name conflict, missing exec
// contract, failing or panicking entry point) is resolved locally: the
// candidate is skipped or flagged, a diagnostic is logged, and the remaining
// candidates proceed untouched. Only a failure to list the target directory
// aborts a run.
//
// Copyright (c) 2025 AGILira - A. Giordano
// SPDX-License-Identifier: MPL-2.0
package gomodules
