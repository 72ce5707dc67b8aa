// registry_test.go: Tests for the name-keyed module registry
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"sync"
	"sync/atomic"
	"testing"
)

func testDescriptor(t *testing.T, name string) *ModuleDescriptor {
	t.Helper()
	return NewModuleDescriptor(name, nil, nil, NewTestLogger())
}

func TestModuleRegistry_ClaimAndGet(t *testing.T) {
	registry := NewModuleRegistry()
	first := testDescriptor(t, "alpha")

	if !registry.Claim("alpha", first) {
		t.Fatal("first claim of a name must succeed")
	}

	got, err := registry.Get("alpha")
	if err != nil {
		t.Fatalf("expected registered module, got error: %v", err)
	}
	if got != first {
		t.Error("Get must return the registered descriptor")
	}

	if _, err := registry.Get("missing"); err == nil {
		t.Error("Get of an unregistered name must return an error")
	}
}

func TestModuleRegistry_FirstClaimWins(t *testing.T) {
	registry := NewModuleRegistry()
	first := testDescriptor(t, "dup")
	second := testDescriptor(t, "dup")

	if !registry.Claim("dup", first) {
		t.Fatal("first claim must succeed")
	}
	if registry.Claim("dup", second) {
		t.Fatal("second claim of the same name must be rejected")
	}

	got, err := registry.Get("dup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != first {
		t.Error("earlier registrant must be retained unmodified")
	}
	if registry.Len() != 1 {
		t.Errorf("expected exactly one entry, got %d", registry.Len())
	}
}

func TestModuleRegistry_ClaimIsAtomic(t *testing.T) {
	// Many goroutines race to claim the same name; exactly one may win.
	registry := NewModuleRegistry()

	const contenders = 64
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := NewModuleDescriptor("contested", nil, nil, NewNoOpLogger())
			<-start
			if registry.Claim("contested", d) {
				wins.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one successful claim, got %d", wins.Load())
	}
	if registry.Len() != 1 {
		t.Fatalf("expected one registry entry, got %d", registry.Len())
	}
}

func TestModuleRegistry_NamesAndSnapshot(t *testing.T) {
	registry := NewModuleRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if !registry.Claim(name, testDescriptor(t, name)) {
			t.Fatalf("claim of %s failed", name)
		}
	}

	names := registry.Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("names[%d] = %s, want %s (sorted order)", i, names[i], name)
		}
	}

	snapshot := registry.Snapshot()
	delete(snapshot, "alpha")
	if !registry.Has("alpha") {
		t.Error("mutating a snapshot must not affect the registry")
	}
}
