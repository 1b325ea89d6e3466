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

// Package report runs the two side channels a client opens alongside its
// main session: a real-time statistics stream to the server's stat port,
// and a periodic on-disk snapshot of whatever job is currently active.
package report

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/nabbar/slamd/job/stattracker"
	"github.com/nabbar/slamd/protocol"
	"github.com/nabbar/slamd/runner/ticker"
)

// RealTimeReporter streams RegisterStatistic/ReportStatistic over its own
// connection to the server's stat port (spec §4.4), independent of the
// main session connection.
type RealTimeReporter struct {
	conn     *protocol.Conn
	jobID    string
	interval time.Duration

	mu       sync.Mutex
	trackers map[*stattracker.Tracker]int // tracker -> cursor into its sample history

	tick ticker.Ticker
}

// Dial opens the stat-port connection used for real-time reporting.
func Dial(ctx context.Context, addr string, port int) (*RealTimeReporter, error) {
	dialer := &net.Dialer{}
	raw, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", addr, port))
	if err != nil {
		return nil, fmt.Errorf("report: dialing stat port: %w", err)
	}
	return &RealTimeReporter{
		conn:     protocol.NewConn(raw),
		trackers: make(map[*stattracker.Tracker]int),
	}, nil
}

// Register announces a tracker as live, per spec §4.4, and begins
// including it in future report cycles.
func (r *RealTimeReporter) Register(ctx context.Context, jobID string, t *stattracker.Tracker) error {
	r.mu.Lock()
	r.jobID = jobID
	r.trackers[t] = 0
	r.mu.Unlock()

	snap := t.Snapshot()
	return r.conn.WriteMessage(ctx, protocol.Message{Body: protocol.RegisterStatistic{
		JobID:           jobID,
		DisplayName:     snap.DisplayName,
		ThreadID:        snap.ThreadID,
		IntervalSeconds: snap.IntervalSeconds,
	}})
}

// Start begins emitting ReportStatistic for every registered tracker every
// statReportInterval (<=0 falls back to 10s, a reasonable default absent a
// server-advertised value).
func (r *RealTimeReporter) Start(ctx context.Context, statReportInterval time.Duration) {
	if statReportInterval <= 0 {
		statReportInterval = 10 * time.Second
	}
	r.tick = ticker.New(statReportInterval, func(tickCtx context.Context, _ *time.Ticker) error {
		return r.reportOnce(tickCtx)
	})
	_ = r.tick.Start(ctx)
}

func (r *RealTimeReporter) reportOnce(ctx context.Context) error {
	r.mu.Lock()
	jobID := r.jobID
	snapshot := make(map[*stattracker.Tracker]int, len(r.trackers))
	for t, cursor := range r.trackers {
		snapshot[t] = cursor
	}
	r.mu.Unlock()

	var firstErr error
	for t, cursor := range snapshot {
		values, next := t.Latest(cursor)
		if len(values) == 0 {
			continue
		}

		snap := t.Snapshot()
		err := r.conn.WriteMessage(ctx, protocol.Message{Body: protocol.ReportStatistic{
			JobID:       jobID,
			DisplayName: snap.DisplayName,
			ThreadID:    snap.ThreadID,
			Values:      values,
		}})
		if err != nil && firstErr == nil {
			firstErr = err
		}

		r.mu.Lock()
		r.trackers[t] = next
		r.mu.Unlock()
	}
	return firstErr
}

// Stop halts the report ticker and closes the stat-port connection.
func (r *RealTimeReporter) Stop(ctx context.Context) error {
	if r.tick != nil {
		_ = r.tick.Stop(ctx)
	}
	return r.conn.Close()
}
