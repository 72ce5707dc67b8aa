// entrypoint.go: Module entry points and isolated invocation outcomes
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/agilira/go-timecache"
)

// EntryPoint is the zero-argument callable a module exposes to run its startup
// logic. The context carries cancellation and, for exec-backed entry points,
// the per-invocation timeout.
type EntryPoint func(ctx context.Context) error

// NoOpEntryPoint is the substitute installed on descriptors constructed
// without a callable entry point. It returns an empty result.
func NoOpEntryPoint(ctx context.Context) error {
	return nil
}

// maxCapturedOutput bounds how much combined process output is retained for
// diagnostics when an exec-backed entry point fails.
const maxCapturedOutput = 8 << 10

// EntryPoint builds an EntryPoint that runs the specified command.
//
// The command inherits the host environment with the spec's env entries
// appended, runs in the spec's working directory when set, and is bound to the
// invocation context (plus the spec's timeout when non-zero). A non-zero exit
// or a start failure is returned as a coded invocation error carrying the
// tail of the process output.
func (es *ExecSpec) EntryPoint(name string) EntryPoint {
	return func(ctx context.Context) error {
		if es.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, es.Timeout)
			defer cancel()
		}

		cmd := exec.CommandContext(ctx, es.Command, es.Args...) // #nosec G204 - command comes from an operator-managed manifest
		cmd.Dir = es.Dir
		cmd.Env = os.Environ()
		for k, v := range es.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}

		var output bytes.Buffer
		cmd.Stdout = &output
		cmd.Stderr = &output

		if err := cmd.Run(); err != nil {
			return NewInvocationFailedError(name, err).
				WithContext("command", es.Command).
				WithContext("output", tailOf(output.Bytes()))
		}
		return nil
	}
}

func tailOf(out []byte) string {
	if len(out) > maxCapturedOutput {
		out = out[len(out)-maxCapturedOutput:]
	}
	return string(out)
}

// InvocationResult is the uniform outcome of one entry-point invocation.
//
// Every invocation — synchronous or fanned out on a goroutine — yields exactly
// one InvocationResult, so the loader can await and log all outcomes
// identically and a failure in one module stays contained to its own result.
type InvocationResult struct {
	Module    string        `json:"module"`
	File      string        `json:"file,omitempty"`
	Err       error         `json:"-"`
	Panicked  bool          `json:"panicked"`
	Stack     string        `json:"stack,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Succeeded reports whether the invocation completed without error or panic.
func (r InvocationResult) Succeeded() bool {
	return r.Err == nil && !r.Panicked
}

// invokeEntryPoint runs one entry point to completion and captures its outcome.
// Panics are recovered here with a stack trace so they surface as a failed
// result instead of tearing down the process.
func invokeEntryPoint(ctx context.Context, name, file string, entry EntryPoint) (result InvocationResult) {
	result = InvocationResult{
		Module:    name,
		File:      file,
		StartedAt: timecache.CachedTime(),
	}
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)

			result.Panicked = true
			result.Stack = string(buf[:n])
			result.Err = NewInvocationPanicError(name, r)
		}
	}()

	result.Err = entry(ctx)
	return result
}
