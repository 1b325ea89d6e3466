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
	"time"

	"github.com/nabbar/slamd/protocol"
	"github.com/nabbar/slamd/runner/ticker"
)

// defaultKeepAliveInterval matches the teacher runner/ticker package's own
// fallback, which is as good a heartbeat cadence as any absent a
// server-advertised value.
const defaultKeepAliveInterval = 30 * time.Second

// StartKeepAlive launches a background ticker that sends KeepAlive on the
// session's connection every interval (<=0 falls back to
// defaultKeepAliveInterval). Call Stop on the returned Ticker during
// shutdown.
func (s *Session) StartKeepAlive(ctx context.Context, interval time.Duration) ticker.Ticker {
	if interval <= 0 {
		interval = defaultKeepAliveInterval
	}

	t := ticker.New(interval, func(tickCtx context.Context, _ *time.Ticker) error {
		return s.send(tickCtx, protocol.KeepAlive{})
	})
	_ = t.Start(ctx)
	return t
}
