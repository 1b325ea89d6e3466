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

// Package stattracker accumulates per-interval numeric samples produced by a
// running job thread and renders them to the wire TrackerSample form.
package stattracker

import (
	"sync"

	"github.com/nabbar/slamd/protocol"
)

// Tracker is one named statistic collected by a single job thread. A thread
// calls AddSample once per collection interval; the accumulated values are
// later reported in real time and/or folded into the job's JobCompleted
// message.
type Tracker struct {
	mu sync.Mutex

	displayName     string
	threadID        string
	intervalSeconds int64
	running         bool
	values          []float64
}

// New builds a Tracker for one thread. intervalSeconds is the collection
// interval configured on the owning job.
func New(displayName, threadID string, intervalSeconds int64) *Tracker {
	return &Tracker{
		displayName:     displayName,
		threadID:        threadID,
		intervalSeconds: intervalSeconds,
	}
}

// DisplayName returns the tracker's name as it appears on the wire.
func (t *Tracker) DisplayName() string {
	return t.displayName
}

// Start marks the tracker as actively collecting.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = true
}

// Stop marks the tracker as no longer collecting. Already-recorded values
// are left untouched.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// IsRunning reports whether the tracker is currently collecting.
func (t *Tracker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// AddSample appends one interval's value.
func (t *Tracker) AddSample(v float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values = append(t.values, v)
}

// Latest returns the most recently added samples since the given cursor,
// along with the new cursor. Used by the real-time reporter to stream only
// what hasn't been sent yet.
func (t *Tracker) Latest(since int) ([]float64, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if since >= len(t.values) {
		return nil, len(t.values)
	}
	out := make([]float64, len(t.values)-since)
	copy(out, t.values[since:])
	return out, len(t.values)
}

// Snapshot renders the tracker's full accumulated history to the wire form.
func (t *Tracker) Snapshot() protocol.TrackerSample {
	t.mu.Lock()
	defer t.mu.Unlock()

	values := make([]float64, len(t.values))
	copy(values, t.values)

	return protocol.TrackerSample{
		DisplayName:     t.displayName,
		ThreadID:        t.threadID,
		IntervalSeconds: t.intervalSeconds,
		Values:          values,
	}
}

// NewInstance returns a fresh, empty Tracker carrying the same display name
// and interval but no thread affinity and no samples. It is the first half
// of the aggregate-by-displayName fold performed over a job's trackers at
// completion time: one NewInstance per distinct display name, then every
// same-named tracker is folded into it with Aggregate.
func (t *Tracker) NewInstance() *Tracker {
	t.mu.Lock()
	defer t.mu.Unlock()

	return &Tracker{
		displayName:     t.displayName,
		threadID:        "aggregated",
		intervalSeconds: t.intervalSeconds,
	}
}

// Aggregate folds other's per-interval values into t, summing index by
// index and extending t's history when other ran longer.
func (t *Tracker) Aggregate(other *Tracker) {
	other.mu.Lock()
	src := make([]float64, len(other.values))
	copy(src, other.values)
	other.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(src) > len(t.values) {
		grown := make([]float64, len(src))
		copy(grown, t.values)
		t.values = grown
	}
	for i, v := range src {
		t.values[i] += v
	}
}

// Aggregate folds a set of trackers into one-per-displayName, preserving
// the order in which each display name first appears (spec: aggregated
// JobCompleted reporting collapses per-thread trackers this way).
func Aggregate(trackers []*Tracker) []*Tracker {
	order := make([]string, 0, len(trackers))
	byName := make(map[string]*Tracker, len(trackers))

	for _, tr := range trackers {
		name := tr.DisplayName()
		agg, ok := byName[name]
		if !ok {
			agg = tr.NewInstance()
			byName[name] = agg
			order = append(order, name)
		}
		agg.Aggregate(tr)
	}

	out := make([]*Tracker, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}
