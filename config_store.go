// config_store.go: Per-module configuration document resolution
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigDirName is the conventional subdirectory, relative to the
// scanned module directory, holding per-module configuration documents.
const DefaultConfigDirName = "moduleconfigs"

// configFileExt is the extension of per-module configuration documents.
const configFileExt = ".json"

// ConfigStore resolves per-module configuration documents by module name.
//
// Configuration lives by convention at <dir>/<lowercased module name>.json.
// Resolution is strictly best-effort: a missing, unreadable, or unparseable
// document never fails the caller, it yields an empty document plus a logged
// diagnostic. The store itself holds no state beyond the directory path, so a
// Resolve call always reflects the current on-disk content — ReloadConfig on a
// descriptor is just a second Resolve.
type ConfigStore struct {
	dir    string
	logger Logger
}

// NewConfigStore creates a configuration store rooted at dir.
func NewConfigStore(dir string, logger Logger) *ConfigStore {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &ConfigStore{dir: dir, logger: logger}
}

// Dir returns the directory the store resolves documents from.
func (cs *ConfigStore) Dir() string {
	return cs.dir
}

// PathFor returns the conventional configuration file path for a module name.
func (cs *ConfigStore) PathFor(name string) string {
	return filepath.Join(cs.dir, strings.ToLower(name)+configFileExt)
}

// Resolve loads the configuration document for the given module name.
//
// Always returns a usable document: the parsed file content when available,
// otherwise an empty map. Failures are reported through the logger only.
func (cs *ConfigStore) Resolve(name string) map[string]any {
	path := cs.PathFor(name)

	data, err := os.ReadFile(path) // #nosec G304 - path is derived from a validated module name
	if err != nil {
		if os.IsNotExist(err) {
			cs.logger.Debug("No configuration document for module",
				"module", name, "path", path)
		} else {
			cs.logger.Warn("Module configuration unreadable, using empty document",
				"module", name, "path", path,
				"error", NewConfigUnreadableError(path, err))
		}
		return map[string]any{}
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		cs.logger.Warn("Module configuration unparseable, using empty document",
			"module", name, "path", path,
			"error", NewConfigParseError(path, err))
		return map[string]any{}
	}
	if doc == nil {
		// A file containing JSON null parses cleanly but carries no document.
		doc = map[string]any{}
	}

	return doc
}
