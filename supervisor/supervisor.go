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

// Package supervisor manages a pool of worker client processes on behalf
// of one host: it holds a control connection to the server's manager port
// and spawns or reaps OS processes on the server's direction (spec §5).
// Its hello carries only a client ID: the MaxClients cap is enforced
// locally and is not advertised to the server.
package supervisor

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nabbar/slamd/logger"

	"github.com/nabbar/slamd/protocol"
	"github.com/nabbar/slamd/telemetry"
)

// defaultAutoReconnect matches the spec's stated default backoff when the
// manager control connection drops.
const defaultAutoReconnect = 30 * time.Second

// Config configures a Supervisor.
type Config struct {
	ServerAddress     string
	SupervisorPort    int
	MaxClients        int
	AutoCreateClients bool
	StartCommand      string // shell command line; "{id}" is replaced with the spawned worker's numeric slot
	AutoReconnect     time.Duration

	Log logger.Logger
}

// worker is one spawned client process.
type worker struct {
	id   int
	cmd  *exec.Cmd
	exit chan error
}

// Supervisor owns a single control connection and the set of worker
// processes it has spawned.
type Supervisor struct {
	cfg Config

	mu      sync.Mutex
	workers map[int]*worker
	nextID  int

	// slots gates concurrently running workers at cfg.MaxClients: one
	// acquire per spawned worker, released on reap.
	slots *semaphore.Weighted

	conn *protocol.Conn
}

// New builds a Supervisor from cfg.
func New(cfg Config) *Supervisor {
	if cfg.AutoReconnect <= 0 {
		cfg.AutoReconnect = defaultAutoReconnect
	}
	telemetry.SupervisorMaxClients.Set(float64(cfg.MaxClients))
	return &Supervisor{
		cfg:     cfg,
		workers: make(map[int]*worker),
		slots:   semaphore.NewWeighted(int64(cfg.MaxClients)),
	}
}

// Run dials the manager port and serves CreateClient/DestroyClient
// directives until ctx is cancelled, reconnecting with the configured
// backoff whenever the connection drops.
func (sv *Supervisor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := sv.runOnce(ctx); err != nil && sv.cfg.Log != nil {
			sv.cfg.Log.Warning(fmt.Sprintf("supervisor: control connection lost: %v", err), nil)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sv.cfg.AutoReconnect):
		}
	}
}

func (sv *Supervisor) runOnce(ctx context.Context) error {
	dialer := &net.Dialer{}
	raw, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", sv.cfg.ServerAddress, sv.cfg.SupervisorPort))
	if err != nil {
		return fmt.Errorf("supervisor: dial failed: %w", err)
	}

	sv.conn = protocol.NewConn(raw)
	defer sv.conn.Close()

	if err = sv.conn.WriteMessage(ctx, protocol.Message{Body: protocol.ClientHello{
		ClientID: fmt.Sprintf("supervisor-%s", sv.cfg.ServerAddress),
	}}); err != nil {
		return err
	}

	for {
		msg, err := sv.conn.ReadMessage(ctx, 0)
		if err != nil {
			return err
		}
		sv.handle(ctx, msg)
	}
}

func (sv *Supervisor) handle(ctx context.Context, msg protocol.Message) {
	req, ok := msg.Body.(protocol.JobControlRequest)
	if !ok {
		return
	}

	switch req.Op {
	case protocol.JobControlStart:
		sv.createClient(ctx, msg.ID)
	case protocol.JobControlStop:
		sv.destroyClient(ctx, msg.ID, req.JobID)
	}
}

func (sv *Supervisor) createClient(ctx context.Context, reqID uint64) {
	if !sv.slots.TryAcquire(1) {
		_ = sv.conn.WriteMessage(ctx, protocol.Message{ID: reqID, Body: protocol.JobResponse{
			ResponseCode: protocol.ResponseJobRequestRefused,
			Message:      "maxClients capacity reached",
		}})
		return
	}

	sv.mu.Lock()
	id := sv.nextID
	sv.nextID++
	sv.mu.Unlock()

	cmdLine := strings.ReplaceAll(sv.cfg.StartCommand, "{id}", strconv.Itoa(id))
	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		sv.slots.Release(1)
		_ = sv.conn.WriteMessage(ctx, protocol.Message{ID: reqID, Body: protocol.JobResponse{
			ResponseCode: protocol.ResponseJobCreationFailure,
			Message:      "no startCommand configured",
		}})
		return
	}

	cmd := exec.CommandContext(context.Background(), parts[0], parts[1:]...)
	if err := cmd.Start(); err != nil {
		sv.slots.Release(1)
		_ = sv.conn.WriteMessage(ctx, protocol.Message{ID: reqID, Body: protocol.JobResponse{
			ResponseCode: protocol.ResponseJobCreationFailure,
			Message:      err.Error(),
		}})
		return
	}

	w := &worker{id: id, cmd: cmd, exit: make(chan error, 1)}
	go func() {
		w.exit <- cmd.Wait()
		sv.reap(id)
	}()

	sv.mu.Lock()
	sv.workers[id] = w
	sv.mu.Unlock()
	telemetry.SupervisorActiveWorkers.Set(float64(sv.ActiveCount()))

	_ = sv.conn.WriteMessage(ctx, protocol.Message{ID: reqID, Body: protocol.JobResponse{
		JobID:        strconv.Itoa(id),
		ResponseCode: protocol.ResponseSuccess,
	}})
}

func (sv *Supervisor) destroyClient(ctx context.Context, reqID uint64, idStr string) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		_ = sv.conn.WriteMessage(ctx, protocol.Message{ID: reqID, Body: protocol.JobResponse{ResponseCode: protocol.ResponseNoSuchJob}})
		return
	}

	sv.mu.Lock()
	w, ok := sv.workers[id]
	sv.mu.Unlock()

	if !ok {
		_ = sv.conn.WriteMessage(ctx, protocol.Message{ID: reqID, Body: protocol.JobResponse{ResponseCode: protocol.ResponseNoSuchJob}})
		return
	}

	if w.cmd.Process != nil {
		_ = w.cmd.Process.Signal(interruptSignal())
	}

	_ = sv.conn.WriteMessage(ctx, protocol.Message{ID: reqID, Body: protocol.JobResponse{
		JobID:        idStr,
		ResponseCode: protocol.ResponseSuccess,
	}})
}

func (sv *Supervisor) reap(id int) {
	sv.mu.Lock()
	delete(sv.workers, id)
	sv.mu.Unlock()
	sv.slots.Release(1)
	telemetry.SupervisorActiveWorkers.Set(float64(sv.ActiveCount()))
}

// ActiveCount reports how many worker processes are currently tracked,
// exposed for the telemetry gauge.
func (sv *Supervisor) ActiveCount() int {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return len(sv.workers)
}
