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

package ticker

import (
	"context"
	"errors"
	"time"
)

func (t *ticker) IsRunning() bool {
	return t.running.Load()
}

func (t *ticker) Uptime() time.Duration {
	ns := t.startedAt.Load()
	if ns == 0 {
		return 0
	}
	return time.Since(time.Unix(0, ns))
}

func (t *ticker) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("invalid nil context")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked(ctx)

	t.errMu.Lock()
	t.errs = nil
	t.errMu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	done := make(chan struct{})
	t.done = done

	fn := t.fn
	interval := t.interval

	t.running.Store(true)
	t.startedAt.Store(time.Now().UnixNano())

	go func() {
		defer close(done)
		defer t.startedAt.Store(0)
		defer t.running.Store(false)

		tk := time.NewTicker(interval)
		defer tk.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-tk.C:
				t.runOnce(runCtx, tk, fn)
			}
		}
	}()

	return nil
}

func (t *ticker) runOnce(ctx context.Context, tk *time.Ticker, fn FuncTick) {
	defer func() {
		if p := recover(); p != nil {
			t.recordError(errorFromPanic(p))
		}
	}()

	if fn == nil {
		t.recordError(errors.New("invalid function"))
		return
	}
	if err := fn(ctx, tk); err != nil {
		t.recordError(err)
	}
}

func (t *ticker) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked(ctx)
	return nil
}

func (t *ticker) stopLocked(ctx context.Context) {
	if !t.running.Load() {
		return
	}

	if t.cancel != nil {
		t.cancel()
	}

	if done := t.done; done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}

	t.running.Store(false)
	t.startedAt.Store(0)
}

func (t *ticker) Restart(ctx context.Context) error {
	t.mu.Lock()
	t.stopLocked(ctx)
	t.mu.Unlock()

	return t.Start(ctx)
}
