/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package startStop wraps a start/stop function pair into a concurrency-safe
// lifecycle: Start launches the start function in its own goroutine, Stop
// cancels it and waits for it to return before invoking the stop function.
package startStop

import (
	"context"
	"time"
)

// FuncStart is run by Start in its own goroutine until it returns, or until
// the context passed to it is cancelled by a matching Stop.
type FuncStart func(ctx context.Context) error

// FuncStop is run by Stop once any running FuncStart has returned (or
// immediately, if nothing is running).
type FuncStop func(ctx context.Context) error

// StartStop is a managed start/stop lifecycle.
type StartStop interface {
	// IsRunning reports whether the start function is currently active.
	IsRunning() bool

	// Uptime returns how long the start function has been running, or zero
	// if it is not currently running.
	Uptime() time.Duration

	// Start stops any previous run, then launches the start function
	// asynchronously. It returns immediately; errors from the start
	// function itself are available through ErrorsLast/ErrorsList.
	Start(ctx context.Context) error

	// Stop cancels the running start function, waits for it to return (or
	// for ctx to expire), and then runs the stop function. It is a no-op
	// if nothing is running.
	Stop(ctx context.Context) error

	// Restart is Stop followed by Start.
	Restart(ctx context.Context) error

	// ErrorsLast returns the most recent error recorded since the last
	// Start, or nil if there is none.
	ErrorsLast() error

	// ErrorsList returns every error recorded since the last Start.
	ErrorsList() []error
}

// New builds a StartStop around the given start/stop pair. Either may be
// nil: calling Start or Stop without a matching function records an error
// instead of panicking.
func New(start FuncStart, stop FuncStop) StartStop {
	return &runner{
		start: start,
		stop:  stop,
	}
}
