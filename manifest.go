// manifest.go: Module manifest decoding and contract extraction
//
// A candidate unit file is a manifest (JSON or YAML) that declares the module
// contract under a top-level "module" object: a required moduleName of scalar
// identity type and an optional exec command specification. This file contains
// the decoding and duck-typed extraction logic the loader validates against.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// declarationKey is the top-level manifest key carrying the module contract.
const declarationKey = "module"

// manifestDocument is one decoded candidate file.
type manifestDocument struct {
	path string
	root any
}

// parseManifestFile reads and decodes a candidate manifest (JSON first, then
// YAML fallback). The returned error is a coded manifest error; the caller
// treats it as a per-candidate failure, never as a run failure.
func parseManifestFile(path string) (*manifestDocument, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path comes from a directory listing
	if err != nil {
		return nil, NewManifestUnreadableError(cleanPath, err)
	}

	var root any
	if jsonErr := json.Unmarshal(data, &root); jsonErr != nil {
		if yamlErr := yaml.Unmarshal(data, &root); yamlErr != nil {
			return nil, NewManifestParseError(cleanPath, yamlErr)
		}
	}

	return &manifestDocument{path: cleanPath, root: root}, nil
}

// moduleDeclaration extracts the manifest's top-level module object.
// The second return is false when the manifest declares no module at all.
func (m *manifestDocument) moduleDeclaration() (any, bool) {
	decl, ok := mappingField(m.root, declarationKey)
	if !ok || decl == nil {
		return nil, false
	}
	return decl, true
}

// mappingField looks up key in a decoded mapping value. YAML decoding can
// produce map[string]any or map[any]any depending on the key nodes, so both
// shapes are handled.
func mappingField(v any, key string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		val, ok := m[key]
		return val, ok
	case map[any]any:
		val, ok := m[key]
		return val, ok
	default:
		return nil, false
	}
}

// isStandardMapping reports whether a declaration decoded to the canonical
// string-keyed mapping shape. Non-standard shapes are still loadable; the
// loader flags them with an informational diagnostic after registration.
func isStandardMapping(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// normalizeModuleName converts a declared moduleName to its string key form.
//
// Only scalar identity types are accepted: strings, numbers, and booleans.
// Anything else (mappings, sequences, null, empty strings) is rejected and the
// caller degrades the descriptor instead of failing.
func normalizeModuleName(v any) (string, bool) {
	switch name := v.(type) {
	case string:
		if name == "" {
			return "", false
		}
		return name, true
	case bool:
		return strconv.FormatBool(name), true
	case int:
		return strconv.Itoa(name), true
	case int64:
		return strconv.FormatInt(name, 10), true
	case uint64:
		return strconv.FormatUint(name, 10), true
	case float64:
		// JSON numbers decode to float64; render integral values without a
		// fractional part so "42" and 42 produce the same registry key.
		if name == math.Trunc(name) && !math.IsInf(name, 0) {
			return strconv.FormatInt(int64(name), 10), true
		}
		return strconv.FormatFloat(name, 'f', -1, 64), true
	case float32:
		return normalizeModuleName(float64(name))
	default:
		return "", false
	}
}

// validateModuleNameSecurity rejects names that could escape the module
// configuration directory or corrupt log output.
func validateModuleNameSecurity(name string) error {
	if strings.Contains(name, "..") {
		return NewUnsafeModuleNameError(name)
	}
	if strings.ContainsAny(name, `/\`) {
		return NewUnsafeModuleNameError(name)
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return NewUnsafeModuleNameError(name)
		}
	}
	return nil
}

// ExecSpec describes a module's entry-point command.
//
// A manifest may declare exec as a plain string (the command) or as a mapping
// with the full specification:
//
//	"exec": {
//	  "command": "./bin/greeter",
//	  "args": ["--start"],
//	  "dir": "work",
//	  "env": {"GREETER_MODE": "startup"},
//	  "timeout": "30s"
//	}
type ExecSpec struct {
	Command string            `json:"command" yaml:"command"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Dir     string            `json:"dir,omitempty" yaml:"dir,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Timeout time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// parseExecSpec coerces a declared exec value into an ExecSpec.
// Returns false when the value is not a usable command specification.
func parseExecSpec(v any) (*ExecSpec, bool) {
	switch spec := v.(type) {
	case string:
		if spec == "" {
			return nil, false
		}
		return &ExecSpec{Command: spec}, true
	case map[string]any, map[any]any:
		return parseExecMapping(spec)
	default:
		return nil, false
	}
}

func parseExecMapping(v any) (*ExecSpec, bool) {
	command, _ := stringField(v, "command")
	if command == "" {
		return nil, false
	}

	spec := &ExecSpec{Command: command}

	if raw, ok := mappingField(v, "args"); ok {
		spec.Args = stringSlice(raw)
	}
	if dir, ok := stringField(v, "dir"); ok {
		spec.Dir = dir
	}
	if raw, ok := mappingField(v, "env"); ok {
		spec.Env = stringMap(raw)
	}
	if raw, ok := stringField(v, "timeout"); ok && raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, false
		}
		spec.Timeout = timeout
	}

	return spec, true
}

func stringField(v any, key string) (string, bool) {
	raw, ok := mappingField(v, key)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, fmt.Sprintf("%v", item))
	}
	return out
}

func stringMap(v any) map[string]string {
	out := make(map[string]string)
	switch m := v.(type) {
	case map[string]any:
		for k, val := range m {
			out[k] = fmt.Sprintf("%v", val)
		}
	case map[any]any:
		for k, val := range m {
			out[fmt.Sprintf("%v", k)] = fmt.Sprintf("%v", val)
		}
	}
	return out
}
