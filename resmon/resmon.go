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

// Package resmon implements the resource-monitor client: a variant of the
// session+job runtime (spec §4.5) that samples fixed host-resource
// identifiers instead of running an arbitrary job class.
package resmon

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/nabbar/slamd/logger"

	"github.com/nabbar/slamd/job/stattracker"
	"github.com/nabbar/slamd/protocol"
	"github.com/nabbar/slamd/resmon/sampler"
	"github.com/nabbar/slamd/runner/ticker"
	"github.com/nabbar/slamd/telemetry"
)

// Config configures a resource-monitor Client.
type Config struct {
	ClientID      string
	ServerAddress string
	ResmonPort    int // default 3002 per spec §6
	Log           logger.Logger
}

// Client owns the resource-monitor connection and its sampling tickers.
type Client struct {
	cfg  Config
	conn *protocol.Conn

	tickers map[string]ticker.Ticker
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, tickers: make(map[string]ticker.Ticker)}
}

// Connect dials the resource-monitor port and performs the hello handshake
// shared with the main client protocol.
func (c *Client) Connect(ctx context.Context) error {
	dialer := &net.Dialer{}
	raw, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", c.cfg.ServerAddress, c.cfg.ResmonPort))
	if err != nil {
		return fmt.Errorf("resmon: dial failed: %w", err)
	}
	c.conn = protocol.NewConn(raw)

	hctx, cancel := context.WithTimeout(ctx, protocol.HandshakeTimeout)
	defer cancel()

	if err = c.conn.WriteMessage(hctx, protocol.Message{Body: protocol.ClientHello{
		ClientID: c.cfg.ClientID,
	}}); err != nil {
		_ = c.conn.Close()
		return err
	}

	msg, err := c.conn.ReadMessage(hctx, protocol.HandshakeTimeout)
	if err != nil {
		_ = c.conn.Close()
		return err
	}
	if _, ok := msg.Body.(protocol.HelloResponse); !ok {
		_ = c.conn.Close()
		return fmt.Errorf("resmon: expected HelloResponse, got %T", msg.Body)
	}
	return nil
}

// Run reads JobRequest-shaped directives naming which fixed sampler to
// run (JobRequest.JobClassName carries the sampler identifier, e.g.
// "cpu.percent") and starts/stops sampling tickers accordingly, until ctx
// is cancelled or the connection closes.
func (c *Client) Run(ctx context.Context) error {
	for {
		msg, err := c.conn.ReadMessage(ctx, 0)
		if err != nil {
			return err
		}

		switch body := msg.Body.(type) {
		case protocol.JobRequest:
			c.startSampler(ctx, msg.ID, body)
		case protocol.JobControlRequest:
			c.stopSampler(ctx, msg.ID, body)
		case protocol.ServerShutdown:
			c.stopAll(ctx)
			return nil
		case protocol.KeepAlive:
			continue
		}
	}
}

func (c *Client) startSampler(ctx context.Context, reqID uint64, req protocol.JobRequest) {
	fn, ok := sampler.ByName(req.JobClassName)
	if !ok {
		_ = c.conn.WriteMessage(ctx, protocol.Message{ID: reqID, Body: protocol.JobResponse{
			JobID:        req.JobID,
			ResponseCode: protocol.ResponseClassNotFound,
		}})
		return
	}

	tr := stattracker.New(req.JobClassName, req.JobID, req.CollectionInterval)
	tr.Start()

	interval := time.Duration(req.CollectionInterval) * time.Second
	tk := ticker.New(interval, func(_ context.Context, _ *time.Ticker) error {
		v, err := fn()
		if err != nil {
			if c.cfg.Log != nil {
				c.cfg.Log.Warning("resmon: sample failed", err, req.JobClassName)
			}
			return err
		}
		tr.AddSample(v)
		telemetry.ResmonLastSample.WithLabelValues(req.JobClassName).Set(v)
		return nil
	})
	_ = tk.Start(ctx)
	c.tickers[req.JobID] = tk

	_ = c.conn.WriteMessage(ctx, protocol.Message{ID: reqID, Body: protocol.JobResponse{
		JobID:        req.JobID,
		ResponseCode: protocol.ResponseSuccess,
	}})
}

func (c *Client) stopSampler(ctx context.Context, reqID uint64, req protocol.JobControlRequest) {
	tk, ok := c.tickers[req.JobID]
	if !ok {
		_ = c.conn.WriteMessage(ctx, protocol.Message{ID: reqID, Body: protocol.JobControlResponse{
			JobID:        req.JobID,
			ResponseCode: protocol.ResponseNoSuchJob,
		}})
		return
	}
	_ = tk.Stop(ctx)
	delete(c.tickers, req.JobID)

	_ = c.conn.WriteMessage(ctx, protocol.Message{ID: reqID, Body: protocol.JobControlResponse{
		JobID:        req.JobID,
		ResponseCode: protocol.ResponseSuccess,
	}})
}

func (c *Client) stopAll(ctx context.Context) {
	for id, tk := range c.tickers {
		_ = tk.Stop(ctx)
		delete(c.tickers, id)
	}
}

// Close closes the resource-monitor connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
