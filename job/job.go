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

// Package job implements one client's view of a single SLAMD job: its
// state machine, its pool of worker threads, and the stat trackers and log
// entries it accumulates along the way.
package job

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/slamd/job/plugin"
	"github.com/nabbar/slamd/job/stattracker"
	"github.com/nabbar/slamd/protocol"
)

// Config is the immutable definition of a job, taken directly off an
// accepted JobRequest.
type Config struct {
	JobID                     string
	ClassName                 string
	ThreadsPerClient          int
	ClientNumber              int
	ScheduledStartTime        int64 // ms epoch, local clock (already skew-adjusted)
	StopTime                  int64 // ms epoch, local clock; 0 means unset
	DurationSeconds           int64 // <=0 means no limit
	CollectionIntervalSeconds int64
	ThreadStartupDelayMs      int64
	Parameters                protocol.ParamList
	AggregateThreadData       bool
}

// DoneFunc is invoked exactly once, from whichever goroutine observes the
// job reach a terminal state, carrying the finished Job.
type DoneFunc func(*Job)

// Job is one client's runtime instance of Config, from acceptance through
// a terminal state (spec §3, §4.3).
type Job struct {
	cfg     Config
	catalog *plugin.Catalog
	onDone  DoneFunc

	mu              sync.Mutex
	state           protocol.JobState
	actualStartTime int64
	actualStopTime  int64
	threads         []*jobThread
	client          plugin.Client

	stopRequested atomic.Bool

	logMu sync.Mutex
	logs  []protocol.LogMessage
}

// New builds a not-started Job. catalog resolves the job's class at Start
// time; onDone is called once the job reaches a terminal state.
func New(cfg Config, catalog *plugin.Catalog, onDone DoneFunc) *Job {
	return &Job{
		cfg:     cfg,
		catalog: catalog,
		onDone:  onDone,
		state:   protocol.JobStateNotStarted,
	}
}

// ID returns the job's identifier.
func (j *Job) ID() string {
	return j.cfg.JobID
}

// State returns the job's current lifecycle state.
func (j *Job) State() protocol.JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *Job) setState(s protocol.JobState) {
	j.mu.Lock()
	j.state = s
	j.mu.Unlock()
}

// Log appends one entry to the job's log, to be drained into its
// JobCompleted message or a StatusResponse.
func (j *Job) Log(level, threadID, text string) {
	j.logMu.Lock()
	defer j.logMu.Unlock()
	j.logs = append(j.logs, protocol.LogMessage{
		Timestamp: time.Now().UnixMilli(),
		Level:     level,
		JobID:     j.cfg.JobID,
		ThreadID:  threadID,
		Text:      text,
	})
}

// Logs returns a copy of the log entries recorded with an ID greater than
// since (IDs are 1-based positions; 0 means "from the start").
func (j *Job) Logs(since int64) []protocol.LogMessage {
	j.logMu.Lock()
	defer j.logMu.Unlock()

	if since < 0 || since >= int64(len(j.logs)) {
		return nil
	}
	out := make([]protocol.LogMessage, len(j.logs)-int(since))
	copy(out, j.logs[since:])
	return out
}

// Trackers returns a TrackerSample per thread, or one per distinct display
// name when the job was configured to aggregate thread data (spec §4.3).
func (j *Job) Trackers() []protocol.TrackerSample {
	j.mu.Lock()
	threads := append([]*jobThread(nil), j.threads...)
	agg := j.cfg.AggregateThreadData
	j.mu.Unlock()

	raw := make([]*stattracker.Tracker, 0, len(threads))
	for _, th := range threads {
		raw = append(raw, th.tracker)
	}

	var trackers []*stattracker.Tracker
	if agg {
		trackers = stattracker.Aggregate(raw)
	} else {
		trackers = raw
	}

	out := make([]protocol.TrackerSample, 0, len(trackers))
	for _, tr := range trackers {
		out = append(out, tr.Snapshot())
	}
	return out
}

// Snapshot captures the job's timing and duration for JobCompleted / status
// reporting.
func (j *Job) Snapshot() (state protocol.JobState, startMs, stopMs, durationSeconds int64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	state = j.state
	startMs = j.actualStartTime
	stopMs = j.actualStopTime
	if startMs > 0 && stopMs > 0 {
		durationSeconds = (stopMs - startMs) / 1000
	}
	return
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// jobThread is the runtime handle for one of a Job's worker threads.
type jobThread struct {
	job      *Job
	threadID string
	thread   plugin.Thread
	tracker  *stattracker.Tracker

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	abandoned atomic.Bool
}

func (th *jobThread) run() {
	defer close(th.done)
	defer th.thread.Destroy()
	defer th.job.threadDone(th)

	if err := th.thread.Run(th.ctx, th.tracker); err != nil {
		th.job.Log("ERROR", th.threadID, err.Error())
	}
}

func (th *jobThread) waitDone(d time.Duration) bool {
	if d <= 0 {
		select {
		case <-th.done:
			return true
		default:
			return false
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-th.done:
		return true
	case <-timer.C:
		return false
	}
}
