// panic_recovery.go: Panic recovery utilities with stack trace capture
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"runtime"
)

// RecoveryHandler defines the signature for panic recovery handlers.
type RecoveryHandler func(recovered any, stack []byte)

// withStackRecover returns a panic recovery function that logs panic details
// including the full stack trace. Module entry points and watcher callbacks run
// through it so a panicking module terminates only its own goroutine.
//
// The returned function should be called with defer to ensure proper recovery.
func withStackRecover(logger Logger) func() {
	return func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10) // 64KB is sufficient for most traces
			n := runtime.Stack(buf, false)

			logger.Error("Panic recovered in goroutine",
				"panic", r,
				"stack", string(buf[:n]))
		}
	}
}

// withCustomRecoveryHandler returns a panic recovery function that calls a
// custom handler when a panic occurs, still capturing the stack trace.
func withCustomRecoveryHandler(handler RecoveryHandler) func() {
	return func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)

			handler(r, buf[:n])
		}
	}
}

// SafeGo executes a function in a new goroutine with automatic panic recovery.
//
// If the function panics, the panic is logged with its stack trace and the
// goroutine terminates without crashing the host process.
func SafeGo(logger Logger, fn func()) {
	go func() {
		defer withStackRecover(logger)()
		fn()
	}()
}

// SafeGoWithHandler executes a function in a new goroutine with custom panic recovery.
func SafeGoWithHandler(handler RecoveryHandler, fn func()) {
	go func() {
		defer withCustomRecoveryHandler(handler)()
		fn()
	}()
}
