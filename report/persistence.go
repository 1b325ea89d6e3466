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

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nabbar/slamd/job"
	"github.com/nabbar/slamd/runner/ticker"
)

// snapshot is the on-disk shape of a persisted job's statistics.
type snapshot struct {
	JobID     string                 `json:"jobId"`
	State     string                 `json:"state"`
	Trackers  []trackerSnapshot      `json:"trackers"`
	Timestamp int64                  `json:"timestamp"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

type trackerSnapshot struct {
	DisplayName string    `json:"displayName"`
	ThreadID    string    `json:"threadId"`
	Values      []float64 `json:"values"`
}

// Persister writes a periodic snapshot of one job's statistics to
// persistenceDirectory, named by jobID (spec §4.4). It is a singleton
// bound to the active job's lifetime: a new job gets a new Persister.
type Persister struct {
	dir string
	job *job.Job

	mu   sync.Mutex
	tick ticker.Ticker
}

// NewPersister builds a Persister for j, writing snapshots under dir.
func NewPersister(dir string, j *job.Job) *Persister {
	return &Persister{dir: dir, job: j}
}

// Start begins periodic snapshots every persistenceInterval (<=0 falls
// back to 30s).
func (p *Persister) Start(ctx context.Context, persistenceInterval time.Duration) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("report: creating persistence directory: %w", err)
	}
	if persistenceInterval <= 0 {
		persistenceInterval = 30 * time.Second
	}

	p.mu.Lock()
	p.tick = ticker.New(persistenceInterval, func(_ context.Context, _ *time.Ticker) error {
		return p.writeOnce()
	})
	p.mu.Unlock()

	return p.tick.Start(ctx)
}

func (p *Persister) path() string {
	return filepath.Join(p.dir, p.job.ID()+".json")
}

func (p *Persister) writeOnce() error {
	state, _, _, _ := p.job.Snapshot()
	trackers := p.job.Trackers()

	snap := snapshot{
		JobID:     p.job.ID(),
		State:     state.String(),
		Timestamp: time.Now().UnixMilli(),
	}
	for _, t := range trackers {
		snap.Trackers = append(snap.Trackers, trackerSnapshot{
			DisplayName: t.DisplayName,
			ThreadID:    t.ThreadID,
			Values:      t.Values,
		})
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshaling snapshot: %w", err)
	}
	return os.WriteFile(p.path(), data, 0o644) //nolint:gosec // persistence files are operator-readable stats, not secrets
}

// Stop flushes a final snapshot and stops the periodic ticker.
func (p *Persister) Stop(ctx context.Context) error {
	p.mu.Lock()
	t := p.tick
	p.mu.Unlock()

	if t != nil {
		_ = t.Stop(ctx)
	}
	return p.writeOnce()
}
