/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package startStop

import (
	"context"
	"fmt"
	"time"
)

func (r *runner) IsRunning() bool {
	return r.running.Load()
}

// Start stops any previous run under the same lock, then launches a new one.
func (r *runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked(ctx)

	r.errMu.Lock()
	r.errs = nil
	r.errMu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	done := make(chan struct{})
	r.done = done

	start := r.start

	r.running.Store(true)
	r.startedAt.Store(time.Now().UnixNano())

	go func() {
		defer close(done)
		defer r.startedAt.Store(0)
		defer r.running.Store(false)
		defer func() {
			if p := recover(); p != nil {
				r.recordError(fmt.Errorf("start function panicked: %v", p))
			}
		}()

		if start == nil {
			r.recordError(fmt.Errorf("invalid start function"))
			return
		}
		if err := start(runCtx); err != nil {
			r.recordError(err)
		}
	}()

	return nil
}

func (r *runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked(ctx)
	return nil
}

// stopLocked assumes r.mu is held. It is a no-op when nothing is running.
func (r *runner) stopLocked(ctx context.Context) {
	if !r.running.Load() {
		return
	}

	if r.cancel != nil {
		r.cancel()
	}

	if done := r.done; done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}

	stop := r.stop
	func() {
		defer func() {
			if p := recover(); p != nil {
				r.recordError(fmt.Errorf("stop function panicked: %v", p))
			}
		}()
		if stop == nil {
			r.recordError(fmt.Errorf("invalid stop function"))
			return
		}
		if err := stop(ctx); err != nil {
			r.recordError(err)
		}
	}()

	r.running.Store(false)
	r.startedAt.Store(0)
}

func (r *runner) Restart(ctx context.Context) error {
	r.mu.Lock()
	r.stopLocked(ctx)
	r.mu.Unlock()

	return r.Start(ctx)
}
