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

package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nabbar/slamd/job"
	"github.com/nabbar/slamd/protocol"
)

// idleReadInterval is the overall deadline handed to ReadMessage by the
// dispatch loop. With 0 there is none: a read waits until a message
// arrives, ctx is cancelled, or the connection is closed (as Shutdown does).
const idleReadInterval = 0 // 0 means "no overall deadline, poll forever"

// Run drives the session's receive loop until the connection closes, the
// context is cancelled, or a ServerShutdown message is received. It returns
// nil on a clean shutdown.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			_ = s.gracefulStop(context.Background())
			return ctx.Err()
		default:
		}

		msg, err := s.conn.ReadMessage(ctx, idleReadInterval)
		if err != nil {
			if s.isStopped() {
				return nil
			}
			return fmt.Errorf("session: read failed: %w", err)
		}

		if err = s.handle(ctx, msg); err != nil {
			if s.cfg.Log != nil {
				s.cfg.Log.Error("session: handling message failed", err)
			}
		}

		if s.isStopped() {
			return nil
		}
	}
}

func (s *Session) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *Session) handle(ctx context.Context, msg protocol.Message) error {
	switch body := msg.Body.(type) {
	case protocol.JobRequest:
		return s.handleJobRequest(ctx, msg.ID, body)
	case protocol.JobControlRequest:
		return s.handleJobControl(ctx, msg.ID, body)
	case protocol.StatusRequest:
		return s.handleStatusRequest(ctx, msg.ID, body)
	case protocol.ClassTransferResponse:
		return s.handleClassTransferResponse(body)
	case protocol.KeepAlive:
		return nil
	case protocol.ServerShutdown:
		return s.handleServerShutdown(ctx, body)
	default:
		return fmt.Errorf("session: unexpected message variant %T", body)
	}
}

func (s *Session) handleJobRequest(ctx context.Context, reqID uint64, req protocol.JobRequest) error {
	s.mu.Lock()
	if s.activeJob != nil {
		s.mu.Unlock()
		return s.reply(ctx, reqID, protocol.JobResponse{
			JobID:        req.JobID,
			ResponseCode: protocol.ResponseJobRequestRefused,
			Message:      "a job is already defined on this client",
		})
	}
	s.mu.Unlock()

	if s.cfg.Catalog != nil && !s.cfg.Catalog.Available(req.JobClassName) {
		if err := s.send(ctx, protocol.ClassTransferRequest{ClassName: req.JobClassName}); err != nil {
			return err
		}
	}

	cfg := job.Config{
		JobID:                     req.JobID,
		ClassName:                 req.JobClassName,
		ThreadsPerClient:          req.ThreadsPerClient,
		ClientNumber:              req.ClientNumber,
		ScheduledStartTime:        s.serverToLocal(req.ScheduledStartTime),
		StopTime:                  s.serverToLocal(req.StopTime),
		DurationSeconds:           req.Duration,
		CollectionIntervalSeconds: req.CollectionInterval,
		ThreadStartupDelayMs:      req.ThreadStartupDelay,
		Parameters:                req.Parameters,
		AggregateThreadData:       s.cfg.AggregateThreadData,
	}

	j := job.New(cfg, s.cfg.Catalog, s.onJobDone)

	s.mu.Lock()
	s.activeJob = j
	s.state = protocol.ClientJobNotYetStarted
	s.mu.Unlock()

	if cfg.ScheduledStartTime > 0 {
		go s.timedStart(j, cfg.ScheduledStartTime)
	}

	return s.reply(ctx, reqID, protocol.JobResponse{JobID: req.JobID, ResponseCode: protocol.ResponseSuccess})
}

func (s *Session) timedStart(j *job.Job, startAtMs int64) {
	delay := time.Duration(startAtMs-time.Now().UnixMilli()) * time.Millisecond
	if delay > 0 {
		time.Sleep(delay)
	}
	if err := j.Start(context.Background()); err != nil && s.cfg.Log != nil {
		s.cfg.Log.Error("session: scheduled job start failed", err)
	} else {
		s.setState(protocol.ClientRunningJob)
	}
}

func (s *Session) handleJobControl(ctx context.Context, reqID uint64, req protocol.JobControlRequest) error {
	s.mu.Lock()
	j := s.activeJob
	s.mu.Unlock()

	if j == nil || j.ID() != req.JobID {
		return s.reply(ctx, reqID, protocol.JobControlResponse{
			JobID:        req.JobID,
			ResponseCode: protocol.ResponseNoSuchJob,
		})
	}

	var err error
	switch req.Op {
	case protocol.JobControlStart:
		if err = j.Start(ctx); err != nil {
			code := protocol.ResponseJobCreationFailure
			if err == job.ErrAlreadyStarted {
				code = protocol.ResponseJobAlreadyStarted
			} else if err == job.ErrClassNotFound {
				code = protocol.ResponseClassNotFound
			}
			return s.reply(ctx, reqID, protocol.JobControlResponse{JobID: req.JobID, ResponseCode: code, Message: err.Error()})
		}
		s.setState(protocol.ClientRunningJob)
	default:
		err = j.Stop(req.Op)
	}

	if err != nil {
		return s.reply(ctx, reqID, protocol.JobControlResponse{
			JobID:        req.JobID,
			ResponseCode: protocol.ResponseLocalError,
			Message:      err.Error(),
		})
	}
	return s.reply(ctx, reqID, protocol.JobControlResponse{JobID: req.JobID, ResponseCode: protocol.ResponseSuccess})
}

func (s *Session) handleStatusRequest(ctx context.Context, reqID uint64, req protocol.StatusRequest) error {
	s.mu.Lock()
	j := s.activeJob
	st := s.state
	s.mu.Unlock()

	resp := protocol.StatusResponse{ClientState: st}
	if j != nil {
		resp.JobID = j.ID()
		resp.JobState = j.State()
		resp.Trackers = j.Trackers()
		resp.Logs = j.Logs(req.SinceLogID)
	}
	return s.reply(ctx, reqID, resp)
}

func (s *Session) handleClassTransferResponse(resp protocol.ClassTransferResponse) error {
	if !resp.Available || len(resp.ClassBytes) == 0 || s.cfg.ClassPathDir == "" {
		return nil
	}
	path := filepath.Join(s.cfg.ClassPathDir, resp.ClassName)
	return os.WriteFile(path, resp.ClassBytes, 0o644) //nolint:gosec // classpath artifacts are operator-controlled, not executed
}

func (s *Session) handleServerShutdown(ctx context.Context, msg protocol.ServerShutdown) error {
	s.mu.Lock()
	s.stopped = true
	s.shutdownMsg = msg.Reason
	j := s.activeJob
	s.state = protocol.ClientShuttingDown
	s.mu.Unlock()

	if j != nil {
		_ = j.Stop(protocol.JobControlStopDueToShutdown)
	}
	return nil
}

func (s *Session) reply(ctx context.Context, reqID uint64, body protocol.Body) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(ctx, protocol.Message{ID: reqID, Body: body})
}

// onJobDone is the job package's DoneFunc: it reports JobCompleted and
// clears the session's active job, making the client idle again.
func (s *Session) onJobDone(j *job.Job) {
	state, startMs, stopMs, durSec := j.Snapshot()

	completed := protocol.JobCompleted{
		JobID:           j.ID(),
		State:           state,
		ActualStartTime: s.localToServer(startMs),
		ActualStopTime:  s.localToServer(stopMs),
		DurationSeconds: durSec,
		Trackers:        j.Trackers(),
		Logs:            j.Logs(0),
	}

	s.mu.Lock()
	shuttingDown := s.stopped
	s.activeJob = nil
	if !shuttingDown {
		s.state = protocol.ClientIdle
	}
	s.mu.Unlock()

	if shuttingDown {
		// spec §8 scenario 6: no JobCompleted is sent once the server has
		// announced it is going away.
		return
	}

	if err := s.send(context.Background(), completed); err != nil && s.cfg.Log != nil {
		s.cfg.Log.Error("session: reporting job completion failed", err)
	}
}

// Shutdown cancels any active job (a forced stop ending in the cancelled
// state) and closes the connection. Used for an operator-initiated client exit rather than a
// server-driven one.
func (s *Session) Shutdown(ctx context.Context) error {
	return s.gracefulStop(ctx)
}

func (s *Session) gracefulStop(ctx context.Context) error {
	s.mu.Lock()
	j := s.activeJob
	s.stopped = true
	s.mu.Unlock()

	if j != nil {
		_ = j.Stop(protocol.JobControlCancel)
	}
	return s.Close()
}
