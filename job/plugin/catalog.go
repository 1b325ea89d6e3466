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

// Package plugin replaces the source protocol's dynamic bytecode class
// transfer with a statically registered catalog: every job class a client
// can run is compiled in and registered here under its wire name, so
// ClassTransferRequest/Response becomes a pure availability probe (spec §9
// redesign note) rather than a code-loading path.
package plugin

import (
	"context"
	"sync"

	"github.com/nabbar/slamd/job/stattracker"
	"github.com/nabbar/slamd/protocol"
)

// Client is implemented by a job class that needs one-time, per-client
// setup before any of its threads are instantiated (spec §4.3 Start
// sequence, step b).
type Client interface {
	InitializeClient(params protocol.ParamList) error
}

// Thread is one job class's per-thread behavior.
type Thread interface {
	// InitializeThread prepares the thread before it is counted as running.
	InitializeThread(threadID string, params protocol.ParamList) error

	// Run executes the thread's workload until ctx is cancelled or the
	// workload completes on its own. Samples are recorded on tracker.
	Run(ctx context.Context, tracker *stattracker.Tracker) error

	// Destroy releases any per-thread resources. Always called once Run
	// returns, including when it was force-stopped.
	Destroy()
}

// Factory builds one Thread instance. When the Class also has a
// ClientFactory, the Client it returns is initialized once per job, before
// any Factory call.
type Factory func() Thread

// Class pairs a Factory with an optional client-level hook.
type Class struct {
	Factory       Factory
	ClientFactory func() Client // nil if the class has no client-level setup
}

// Catalog is the registry of job classes a client is able to run.
type Catalog struct {
	mu      sync.RWMutex
	classes map[string]Class
}

// NewCatalog builds an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{classes: make(map[string]Class)}
}

// Register adds or replaces a class under name.
func (c *Catalog) Register(name string, class Class) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classes[name] = class
}

// Available reports whether name is registered, answering the
// ClassTransferRequest probe without instantiating anything.
func (c *Catalog) Available(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.classes[name]
	return ok
}

// Lookup returns the registered class, if any.
func (c *Catalog) Lookup(name string) (Class, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	class, ok := c.classes[name]
	return class, ok
}

// Names lists every registered class name.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.classes))
	for n := range c.classes {
		out = append(out, n)
	}
	return out
}
