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

// Package ticker wraps a periodic function into the same managed lifecycle
// shape as runner/startStop, driving it off a time.Ticker instead of a
// single blocking call.
package ticker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// defaultDuration is used whenever New is given a non-positive duration.
const defaultDuration = 30 * time.Second

// FuncTick is invoked on every tick. A returned error does not stop the
// ticker: it is recorded and the next tick still fires.
type FuncTick func(ctx context.Context, tck *time.Ticker) error

// Ticker is a managed periodic-function lifecycle.
type Ticker interface {
	IsRunning() bool
	Uptime() time.Duration
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	ErrorsLast() error
	ErrorsList() []error
}

// New builds a Ticker that calls fn every d. A non-positive d falls back to
// defaultDuration; a nil fn is accepted, and each tick then records an
// "invalid function" error.
func New(d time.Duration, fn FuncTick) Ticker {
	if d <= 0 {
		d = defaultDuration
	}
	return &ticker{
		interval: d,
		fn:       fn,
	}
}

type ticker struct {
	mu       sync.Mutex
	interval time.Duration
	fn       FuncTick

	running   atomic.Bool
	startedAt atomic.Int64

	cancel context.CancelFunc
	done   chan struct{}

	errMu sync.Mutex
	errs  []error
}

func (t *ticker) recordError(e error) {
	if e == nil {
		return
	}
	t.errMu.Lock()
	t.errs = append(t.errs, e)
	t.errMu.Unlock()
}
