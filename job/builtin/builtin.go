/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

// Package builtin provides the two job classes every client registers out
// of the box: a no-op workload useful for wiring tests, and a
// sleep-and-count workload that exercises the collection-interval and
// thread-startup-delay machinery without needing any real target service.
package builtin

import (
	"context"
	"time"

	"github.com/nabbar/slamd/job/plugin"
	"github.com/nabbar/slamd/job/stattracker"
	"github.com/nabbar/slamd/protocol"
)

// RegisterAll adds every builtin class to cat under its conventional name.
func RegisterAll(cat *plugin.Catalog) {
	cat.Register("noop", plugin.Class{Factory: func() plugin.Thread { return &noopThread{} }})
	cat.Register("sleep", plugin.Class{Factory: func() plugin.Thread { return &sleepThread{} }})
}

// noopThread does nothing but record a zero sample every intervalMs
// milliseconds (one second by default), until stopped.
type noopThread struct {
	interval time.Duration
}

func (t *noopThread) InitializeThread(_ string, params protocol.ParamList) error {
	t.interval = time.Second
	if p, ok := params.Get("intervalMs"); ok {
		if ms, err := p.Int(); err == nil && ms > 0 {
			t.interval = time.Duration(ms) * time.Millisecond
		}
	}
	return nil
}

func (t *noopThread) Run(ctx context.Context, tracker *stattracker.Tracker) error {
	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			tracker.AddSample(0)
		}
	}
}

func (t *noopThread) Destroy() {}

// sleepThread sleeps for a configured duration per iteration and records
// the iteration count as its sample, useful for exercising timing-sensitive
// paths (startup delay, forced-stop escalation) in isolation.
type sleepThread struct {
	sleepFor time.Duration
	count    float64
}

func (t *sleepThread) InitializeThread(_ string, params protocol.ParamList) error {
	t.sleepFor = 100 * time.Millisecond
	if p, ok := params.Get("sleepMs"); ok {
		if ms, err := p.Int(); err == nil && ms > 0 {
			t.sleepFor = time.Duration(ms) * time.Millisecond
		}
	}
	return nil
}

func (t *sleepThread) Run(ctx context.Context, tracker *stattracker.Tracker) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(t.sleepFor):
			t.count++
			tracker.AddSample(t.count)
		}
	}
}

func (t *sleepThread) Destroy() {}
