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

package job

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nabbar/slamd/job/stattracker"
	"github.com/nabbar/slamd/protocol"
	"github.com/nabbar/slamd/telemetry"
)

// interruptGrace and interruptRetryWait pace the forced-stop escalation
// sequence: interrupt, wait interruptGrace; if still alive sleep
// interruptRetryWait and interrupt again; if still alive the thread is
// abandoned and its job is reported done anyway.
const (
	interruptGrace     = 100 * time.Millisecond
	interruptRetryWait = 1 * time.Second
)

// Start runs the job's class-instantiation and thread-startup sequence
// (spec §4.3 Start sequence, steps a-e). It returns once every thread has
// been launched, not once they finish.
func (j *Job) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.state != protocol.JobStateNotStarted {
		j.mu.Unlock()
		return ErrAlreadyStarted
	}
	j.mu.Unlock()

	class, ok := j.catalog.Lookup(j.cfg.ClassName)
	if !ok {
		j.setState(protocol.JobStateStoppedDueToError)
		return ErrClassNotFound
	}

	if class.ClientFactory != nil {
		client := class.ClientFactory()
		if err := client.InitializeClient(j.cfg.Parameters); err != nil {
			j.setState(protocol.JobStateStoppedDueToError)
			j.Log("ERROR", "", fmt.Sprintf("client initialization failed: %v", err))
			return fmt.Errorf("%w: %v", ErrClassInitFailed, err)
		}
		j.mu.Lock()
		j.client = client
		j.mu.Unlock()
	}

	// Every thread's class instantiation runs concurrently through an
	// errgroup: fan-out across ThreadsPerClient goroutines, fan-in on the
	// first error via Wait. threads[i] is only ever written by goroutine i,
	// so no locking is needed around the slice itself.
	threads := make([]*jobThread, j.cfg.ThreadsPerClient)
	var g errgroup.Group
	for i := 0; i < j.cfg.ThreadsPerClient; i++ {
		i := i
		g.Go(func() error {
			// threadID keeps the human-readable "<jobID>-<index>" prefix for
			// logs and reports, plus a uuid suffix so two runs of the same
			// job never collide on correlation ID.
			threadID := fmt.Sprintf("%s-%d-%s", j.cfg.JobID, i, uuid.NewString())
			th := class.Factory()
			if err := th.InitializeThread(threadID, j.cfg.Parameters); err != nil {
				j.Log("ERROR", threadID, fmt.Sprintf("thread initialization failed: %v", err))
				return fmt.Errorf("%w: %v", ErrClassInitFailed, err)
			}

			runCtx, cancel := context.WithCancel(context.Background())
			threads[i] = &jobThread{
				job:      j,
				threadID: threadID,
				thread:   th,
				tracker:  stattracker.New(j.cfg.JobID, threadID, j.cfg.CollectionIntervalSeconds),
				ctx:      runCtx,
				cancel:   cancel,
				done:     make(chan struct{}),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		j.setState(protocol.JobStateStoppedDueToError)
		return err
	}

	j.mu.Lock()
	j.threads = threads
	j.state = protocol.JobStateRunning
	j.actualStartTime = nowMillis()
	j.mu.Unlock()

	if j.cfg.DurationSeconds > 0 {
		go j.enforceDuration(time.Duration(j.cfg.DurationSeconds) * time.Second)
	}

	telemetry.JobActiveThreads.WithLabelValues(j.cfg.JobID).Set(float64(len(threads)))

	delay := time.Duration(j.cfg.ThreadStartupDelayMs) * time.Millisecond
	for i, th := range threads {
		th.tracker.Start()
		go th.run()
		if delay > 0 && i < len(threads)-1 {
			time.Sleep(delay)
		}
	}

	return nil
}

func (j *Job) enforceDuration(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	<-timer.C

	// Every thread is signalled to wind down; the state stays running, so
	// the job ends as completed once the last thread exits.
	j.mu.Lock()
	running := j.state == protocol.JobStateRunning
	threads := append([]*jobThread(nil), j.threads...)
	j.mu.Unlock()
	if running {
		for _, th := range threads {
			th.cancel()
		}
	}
}

// threadDone removes th from the active list and, once the list empties,
// finalizes the job (spec §4.3: thread completion triggers jobDone()).
func (j *Job) threadDone(th *jobThread) {
	j.mu.Lock()
	for i, t := range j.threads {
		if t == th {
			j.threads = append(j.threads[:i], j.threads[i+1:]...)
			break
		}
	}
	remaining := len(j.threads)
	j.mu.Unlock()

	th.tracker.Stop()
	telemetry.JobActiveThreads.WithLabelValues(j.cfg.JobID).Set(float64(remaining))

	if remaining == 0 {
		j.finish(protocol.JobStateCompleted)
	}
}

func (j *Job) finish(defaultState protocol.JobState) {
	j.mu.Lock()
	// Stop sets its terminal state before the threads exit, so a recorded
	// stop time, not the state, marks a job that has already finished.
	if j.actualStopTime != 0 {
		j.mu.Unlock()
		return
	}
	if j.state == protocol.JobStateRunning {
		j.state = defaultState
	}
	j.actualStopTime = nowMillis()
	j.mu.Unlock()

	if j.onDone != nil {
		j.onDone(j)
	}
}

// Stop drives the job toward a terminal state per the requested control
// operation (spec §4.3, §6):
//
//   - JobControlStop: cooperative. Sets stopRequested and signals every
//     thread to wind down, then returns immediately. A second STOP while
//     stopRequested is already set escalates to a forced stop.
//   - JobControlStopAndWait: as above, but blocks until the job leaves the
//     running state.
//   - JobControlStopDueToShutdown: always forced, terminal state is
//     stopped-by-shutdown.
//   - JobControlCancel: always forced and blocks until the job leaves the
//     running state, like StopAndWait, but the terminal state is cancelled.
//     Used for an operator-initiated disconnect, as opposed to a server
//     announcing its own shutdown.
func (j *Job) Stop(op protocol.JobControlOp) error {
	j.mu.Lock()
	if j.state == protocol.JobStateNotStarted {
		j.state = protocol.JobStateCancelled
		j.mu.Unlock()
		j.finish(protocol.JobStateCancelled)
		return nil
	}
	if j.state.IsTerminal() {
		j.mu.Unlock()
		return nil
	}
	threads := append([]*jobThread(nil), j.threads...)
	j.mu.Unlock()

	if op == protocol.JobControlStopDueToShutdown {
		j.setState(protocol.JobStateStoppedByShutdown)
		for _, th := range threads {
			go j.forceStop(th)
		}
		return nil
	}

	if op == protocol.JobControlCancel {
		j.setState(protocol.JobStateCancelled)
		for _, th := range threads {
			go j.forceStop(th)
		}
		for {
			j.mu.Lock()
			s := j.state
			j.mu.Unlock()
			if s.IsTerminal() {
				return nil
			}
			time.Sleep(100 * time.Millisecond)
		}
	}

	already := j.stopRequested.Swap(true)

	if already {
		for _, th := range threads {
			go j.forceStop(th)
		}
	} else {
		j.setState(protocol.JobStateStoppedByUser)
		for _, th := range threads {
			th.cancel()
		}
	}

	if op == protocol.JobControlStopAndWait {
		for {
			j.mu.Lock()
			s := j.state
			j.mu.Unlock()
			if s.IsTerminal() {
				return nil
			}
			time.Sleep(100 * time.Millisecond)
		}
	}

	return nil
}

// forceStop runs the escalation sequence against a single thread:
// interrupt, wait interruptGrace; if still alive, sleep interruptRetryWait
// and interrupt again; if still alive, the thread is abandoned (its
// goroutine keeps running, but the job no longer waits on it).
func (j *Job) forceStop(th *jobThread) {
	th.cancel()
	if th.waitDone(interruptGrace) {
		return
	}

	time.Sleep(interruptRetryWait)
	if th.waitDone(0) {
		return
	}

	th.cancel()
	if th.waitDone(interruptGrace) {
		return
	}

	th.abandoned.Store(true)
	j.Log("WARN", th.threadID, "thread did not stop after forced-stop escalation; abandoning")
	j.threadDone(th)
}
