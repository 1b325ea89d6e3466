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

package protocol

import (
	"context"
	"fmt"
	"net"
	"time"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// HandshakeTimeout bounds the ClientHello/HelloResponse exchange (spec §4.1,
// §4.2): a client that has not completed its hello inside this window is
// dropped.
const HandshakeTimeout = 5 * time.Second

// pollInterval is the read-deadline granularity used once the handshake is
// past: short enough that Stop(ctx) is noticed promptly, long enough not to
// spin the socket.
const pollInterval = 1 * time.Second

// Conn frames Messages over a net.Conn using the length-implicit BER
// encoding described in package doc.go: each call to WriteMessage or
// ReadMessage handles exactly one SEQUENCE.
type Conn struct {
	raw net.Conn
}

// NewConn wraps conn for framed Message exchange.
func NewConn(raw net.Conn) *Conn {
	return &Conn{raw: raw}
}

// Raw returns the underlying connection, e.g. to inspect its TLS state.
func (c *Conn) Raw() net.Conn { return c.raw }

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.raw.Close() }

// WriteMessage encodes and writes m, honoring ctx's deadline if any.
func (c *Conn) WriteMessage(ctx context.Context, m Message) error {
	pkt, err := Encode(m)
	if err != nil {
		return err
	}

	if dl, ok := ctx.Deadline(); ok {
		_ = c.raw.SetWriteDeadline(dl)
	} else {
		_ = c.raw.SetWriteDeadline(time.Time{})
	}

	_, err = c.raw.Write(pkt.Bytes())
	return err
}

// ReadMessage blocks until a complete Message arrives, ctx is cancelled, or
// deadline is reached (deadline <= 0 means "no overall deadline": the read
// still polls in pollInterval slices so ctx cancellation is noticed within
// one second, per spec §4.1).
func (c *Conn) ReadMessage(ctx context.Context, deadline time.Duration) (Message, error) {
	var overall time.Time
	if deadline > 0 {
		overall = time.Now().Add(deadline)
	}

	type result struct {
		pkt *ber.Packet
		err error
	}
	done := make(chan result, 1)

	go func() {
		for {
			slice := pollInterval
			if !overall.IsZero() {
				remaining := time.Until(overall)
				if remaining <= 0 {
					done <- result{nil, fmt.Errorf("protocol: read deadline exceeded")}
					return
				}
				if remaining < slice {
					slice = remaining
				}
			}

			_ = c.raw.SetReadDeadline(time.Now().Add(slice))
			pkt, err := ber.ReadPacket(c.raw)
			if err == nil {
				done <- result{pkt, nil}
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				select {
				case <-ctx.Done():
					done <- result{nil, ctx.Err()}
					return
				default:
					continue
				}
			}
			done <- result{nil, err}
			return
		}
	}()

	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return Message{}, r.err
		}
		return Decode(r.pkt)
	}
}
