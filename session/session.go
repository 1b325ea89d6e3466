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

// Package session owns a client's single connection to a SLAMD server: the
// hello handshake, clock-skew tracking, the message dispatch loop, and
// graceful/forced shutdown of whatever job is currently running.
package session

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/slamd/logger"

	"github.com/nabbar/slamd/job"
	"github.com/nabbar/slamd/job/plugin"
	"github.com/nabbar/slamd/protocol"
)

// maxClockSkewMs is the absolute offset, in milliseconds, beyond which the
// session logs a warning about disagreement with the server's clock.
const maxClockSkewMs = 2000

// Config carries everything a Session needs to dial and authenticate.
type Config struct {
	ClientID        string
	SoftwareVersion string

	ServerAddress string
	ClientPort    int

	AuthType        string // "none" or "simple"
	AuthID          string
	AuthCredentials []byte

	RestrictedMode bool

	UseSSL     bool
	BlindTrust bool
	RootCAFile string // PEM file added to the trust pool; ignored when BlindTrust is set

	Catalog             *plugin.Catalog
	AggregateThreadData bool
	ClassPathDir        string // directory class bytes are persisted under, if non-empty

	Log logger.Logger
}

// Session is one client's connection and job-runtime state.
type Session struct {
	cfg  Config
	conn *protocol.Conn

	serverTimeOffset atomic.Int64 // serverTime - localTime, ms
	nextMessageID    atomic.Uint64

	writeMu sync.Mutex

	mu          sync.Mutex
	state       protocol.ClientState
	activeJob   *job.Job
	stopped     bool
	shutdownMsg string

	done chan struct{}
}

// New builds a Session bound to cfg. Call Connect to dial and handshake,
// then Run to drive the dispatch loop.
func New(cfg Config) *Session {
	return &Session{
		cfg:   cfg,
		state: protocol.ClientNotConnected,
		done:  make(chan struct{}),
	}
}

// State returns the session's current client-level state.
func (s *Session) State() protocol.ClientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st protocol.ClientState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Done is closed once the session's dispatch loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) dial(ctx context.Context) (net.Conn, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.ServerAddress, s.cfg.ClientPort)
	dialer := &net.Dialer{}

	if !s.cfg.UseSSL {
		return dialer.DialContext(ctx, "tcp", addr)
	}

	tlsCfg := &tls.Config{
		InsecureSkipVerify: s.cfg.BlindTrust, //nolint:gosec // blindTrust is an explicit, documented configuration key (spec §6)
		ServerName:         s.cfg.ServerAddress,
	}
	if s.cfg.RootCAFile != "" && !s.cfg.BlindTrust {
		pool, err := loadRootCA(s.cfg.RootCAFile)
		if err != nil {
			return nil, err
		}
		tlsCfg.RootCAs = pool
	}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	tlsConn := tls.Client(rawConn, tlsCfg)
	if err = tlsConn.HandshakeContext(ctx); err != nil {
		_ = rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// loadRootCA reads a PEM file and returns a pool containing only its certs,
// so a configured trust store fully replaces the system roots rather than
// extending them.
func loadRootCA(pemFile string) (*x509.CertPool, error) {
	raw, err := os.ReadFile(pemFile)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(raw) {
		return nil, fmt.Errorf("session: no certificates found in %s", pemFile)
	}
	return pool, nil
}

// Connect dials the server and performs the hello handshake, recording the
// clock-skew offset observed in HelloResponse.ServerTime.
func (s *Session) Connect(ctx context.Context) error {
	raw, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("session: dial failed: %w", err)
	}

	s.conn = protocol.NewConn(raw)

	hctx, cancel := context.WithTimeout(ctx, protocol.HandshakeTimeout)
	defer cancel()

	resp, err := s.handshake(hctx)
	if err != nil {
		_ = s.conn.Close()
		return err
	}

	if resp.ResponseCode != protocol.ResponseSuccess {
		_ = s.conn.Close()
		return fmt.Errorf("session: server rejected hello: %s", protocol.ResponseName(resp.ResponseCode))
	}

	if resp.ServerTime > 0 {
		s.applyClockSkew(resp.ServerTime)
	}

	s.setState(protocol.ClientIdle)
	return nil
}

func (s *Session) applyClockSkew(serverTimeMs int64) {
	offset := serverTimeMs - time.Now().UnixMilli()
	s.serverTimeOffset.Store(offset)

	if offset > maxClockSkewMs || offset < -maxClockSkewMs {
		if s.cfg.Log != nil {
			s.cfg.Log.Warning(fmt.Sprintf("clock skew %dms exceeds %dms threshold", offset, maxClockSkewMs), nil)
		}
	}
}

// localToServer converts a local-clock millisecond timestamp to the
// server's clock, for outbound messages.
func (s *Session) localToServer(ms int64) int64 {
	if ms <= 0 {
		return ms
	}
	return ms + s.serverTimeOffset.Load()
}

// serverToLocal converts a server-clock millisecond timestamp to the local
// clock, for inbound messages.
func (s *Session) serverToLocal(ms int64) int64 {
	if ms <= 0 {
		return ms
	}
	return ms - s.serverTimeOffset.Load()
}

// nextID allocates the next client-originated (even) message ID.
func (s *Session) nextID() uint64 {
	return s.nextMessageID.Add(2) - 2
}

func (s *Session) send(ctx context.Context, body protocol.Body) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.conn.WriteMessage(ctx, protocol.Message{ID: s.nextID(), Body: body})
}

// Close tears down the underlying connection without running the shutdown
// protocol; used after the dispatch loop has already exited.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
