// config_store_test.go: Tests for per-module configuration resolution
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_ResolveVerbatim(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.json"), []byte(`{"a":1}`), 0o600))

	store := NewConfigStore(dir, NewTestLogger())
	doc := store.Resolve("foo")

	require.Len(t, doc, 1)
	assert.Equal(t, float64(1), doc["a"])
}

func TestConfigStore_LowercasedLookupKey(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shouty.json"), []byte(`{"v":2}`), 0o600))

	store := NewConfigStore(dir, NewTestLogger())
	assert.Equal(t, float64(2), store.Resolve("SHOUTY")["v"])
	assert.Equal(t, filepath.Join(dir, "shouty.json"), store.PathFor("SHOUTY"))
}

func TestConfigStore_MissingDocument(t *testing.T) {
	logger := NewTestLogger()
	store := NewConfigStore(t.TempDir(), logger)

	doc := store.Resolve("absent")

	assert.NotNil(t, doc)
	assert.Empty(t, doc)
	assert.True(t, logger.HasMessage("DEBUG", "No configuration document for module"))
	assert.Equal(t, 0, logger.CountLevel("WARN"), "a missing document is not a warning")
}

func TestConfigStore_UnparseableDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{broken`), 0o600))

	logger := NewTestLogger()
	store := NewConfigStore(dir, logger)
	doc := store.Resolve("bad")

	assert.Empty(t, doc, "parse failure must yield an empty document, not an error")
	assert.True(t, logger.HasMessage("WARN", "Module configuration unparseable, using empty document"))
}

func TestConfigStore_NullDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nullish.json"), []byte(`null`), 0o600))

	store := NewConfigStore(dir, NewTestLogger())
	doc := store.Resolve("nullish")

	assert.NotNil(t, doc, "a JSON null file still yields a usable empty document")
	assert.Empty(t, doc)
}
