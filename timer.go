// Dual Turn/Match Timer
//
// Copyright (c) 2024, 2025  The go-gomocup authors
//
// This file is part of go-gomocup.
//
// go-gomocup is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-gomocup is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-gomocup. If not, see
// <http://www.gnu.org/licenses/>

package gomocup

import (
	"context"
	"sync"
	"time"
)

// Timer charges one player with two budgets at once: a turn budget
// that starts over on every resume and a match budget that accumulates
// across the whole game.  A timer is created paused; Resume and Pause
// move it between its two live states, and it becomes expired the
// moment either budget is exhausted while running.  Expiration is
// terminal until Reset.
//
// All methods are safe for concurrent use.  Run blocks until the
// timer expires, whichever goroutine calls it.
type Timer struct {
	turn  time.Duration
	match time.Duration

	mu      sync.Mutex
	elapsed time.Duration // match time charged so far
	started time.Time     // start of the current running span
	running bool
	expired bool
	changed chan struct{} // kicked on every state change
}

// NewTimer returns a paused timer with the given budgets
func NewTimer(turn, match time.Duration) *Timer {
	return &Timer{
		turn:    turn,
		match:   match,
		changed: make(chan struct{}, 1),
	}
}

// kick wakes a pending Run without blocking
func (t *Timer) kick() {
	select {
	case t.changed <- struct{}{}:
	default:
	}
}

// Resume starts charging the timer.  It is a no-op on a running or
// expired timer.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running || t.expired {
		return
	}
	t.running = true
	t.started = time.Now()
	t.kick()
}

// Pause stops charging the timer and adds the running span to the
// match total.  A pause also cancels a pending expiration that has
// not fired yet.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.elapsed += time.Since(t.started)
	t.running = false
	t.kick()
}

// Reset returns the timer to its initial paused state with both
// budgets untouched
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.elapsed = 0
	t.running = false
	t.expired = false
	t.kick()
}

// Elapsed returns the match time charged so far, including the
// current running span
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return t.elapsed + time.Since(t.started)
	}
	return t.elapsed
}

// Remaining returns the unused part of the match budget
func (t *Timer) Remaining() time.Duration {
	if left := t.match - t.Elapsed(); left > 0 {
		return left
	}
	return 0
}

// Expired reports whether the timer has run out
func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

// deadline returns the absolute point at which the current running
// span exhausts a budget.  Caller must hold t.mu and t.running must
// be true.
func (t *Timer) deadline() time.Time {
	d := t.started.Add(t.turn)
	if m := t.started.Add(t.match - t.elapsed); m.Before(d) {
		d = m
	}
	return d
}

// Run blocks until the timer expires and reports true, or until CTX
// is cancelled and reports false.  Expiration is decided against
// absolute deadlines, so a descheduled process cannot miss it.
func (t *Timer) Run(ctx context.Context) bool {
	for {
		t.mu.Lock()
		if t.expired {
			t.mu.Unlock()
			return true
		}
		running := t.running
		var deadline time.Time
		if running {
			deadline = t.deadline()
		}
		t.mu.Unlock()

		if !running {
			select {
			case <-t.changed:
			case <-ctx.Done():
				return false
			}
			continue
		}

		wait := time.NewTimer(time.Until(deadline))
		select {
		case <-wait.C:
			t.mu.Lock()
			// The state may have changed while the wakeup was in
			// flight; only a timer still running past its current
			// deadline expires.
			if t.running && !time.Now().Before(t.deadline()) {
				t.elapsed += time.Since(t.started)
				t.running = false
				t.expired = true
				t.mu.Unlock()
				return true
			}
			t.mu.Unlock()
		case <-t.changed:
			wait.Stop()
		case <-ctx.Done():
			wait.Stop()
			return false
		}
	}
}
