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

	"github.com/nabbar/slamd/protocol"
)

// handshake sends ClientHello and waits for HelloResponse, within ctx's
// deadline (spec §4.2: the handshake must complete inside
// protocol.HandshakeTimeout).
func (s *Session) handshake(ctx context.Context) (protocol.HelloResponse, error) {
	hello := protocol.ClientHello{
		ClientID:         s.cfg.ClientID,
		SoftwareVersion:  s.cfg.SoftwareVersion,
		AuthType:         s.cfg.AuthType,
		AuthID:           s.cfg.AuthID,
		AuthCredentials:  s.cfg.AuthCredentials,
		RestrictedMode:   s.cfg.RestrictedMode,
		SupportsTimeSync: true,
	}

	if err := s.send(ctx, hello); err != nil {
		return protocol.HelloResponse{}, fmt.Errorf("session: sending hello: %w", err)
	}

	msg, err := s.conn.ReadMessage(ctx, protocol.HandshakeTimeout)
	if err != nil {
		return protocol.HelloResponse{}, fmt.Errorf("session: awaiting hello response: %w", err)
	}

	resp, ok := msg.Body.(protocol.HelloResponse)
	if !ok {
		return protocol.HelloResponse{}, fmt.Errorf("session: expected HelloResponse, got %T", msg.Body)
	}
	return resp, nil
}
