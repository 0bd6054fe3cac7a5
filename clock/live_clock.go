// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package clock

import (
	"context"
	"sync"
	"time"

	"github.com/google/btree"

	"code.stratatrade.io/strata/logging"
)

// LiveClock follows the system clock. A single scheduler goroutine sleeps
// until the earliest scheduled occurrence, dispatches the event, and
// re-queues recurring timers. Inserts and cancels wake the scheduler so it
// can re-evaluate its deadline.
type LiveClock struct {
	log *logging.Logger

	mu       sync.Mutex
	timers   map[string]*timer
	schedule *btree.BTreeG[*timer]

	notify chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func scheduleLess(a, b *timer) bool {
	if a.nextNs != b.nextNs {
		return a.nextNs < b.nextNs
	}
	return a.name < b.name
}

// NewLiveClock creates a live clock and starts its scheduler.
func NewLiveClock(log *logging.Logger, cfg Config) *LiveClock {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	ctx, cancel := context.WithCancel(context.Background())
	c := &LiveClock{
		log:      log,
		timers:   map[string]*timer{},
		schedule: btree.NewG(btreeDegreeSchedule, scheduleLess),
		notify:   make(chan struct{}, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go c.run(ctx)
	return c
}

const btreeDegreeSchedule = 8

// NowNs returns the system time in Unix nanoseconds.
func (c *LiveClock) NowNs() int64 { return time.Now().UnixNano() }

// Stop terminates the scheduler and drops every timer.
func (c *LiveClock) Stop() {
	c.cancel()
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers = map[string]*timer{}
	c.schedule.Clear(false)
}

// SetTimeAlert schedules a one-shot event at the given time.
func (c *LiveClock) SetTimeAlert(name string, atNs int64, handler TimeEventHandler, allowPast bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.timers[name]; ok {
		return ErrTimerExists
	}
	atNs, err := validateAlert(name, atNs, c.NowNs(), handler, allowPast)
	if err != nil {
		return err
	}
	c.insertLocked(newAlert(name, atNs, handler))
	return nil
}

// SetTimer schedules a recurring event.
func (c *LiveClock) SetTimer(name string, intervalNs, startNs, stopNs int64, handler TimeEventHandler, allowPast, fireImmediately bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.timers[name]; ok {
		return ErrTimerExists
	}
	startNs, err := validateInterval(name, intervalNs, startNs, stopNs, c.NowNs(), handler, allowPast)
	if err != nil {
		return err
	}
	c.insertLocked(newInterval(name, intervalNs, startNs, stopNs, handler, fireImmediately))
	return nil
}

// Cancel removes a timer by name.
func (c *LiveClock) Cancel(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.timers[name]
	if !ok {
		return ErrTimerNotFound
	}
	delete(c.timers, name)
	c.schedule.Delete(t)
	c.wake()
	return nil
}

// CancelAll removes every timer.
func (c *LiveClock) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers = map[string]*timer{}
	c.schedule.Clear(false)
	c.wake()
}

// NextTimeNs returns the next occurrence of the named timer.
func (c *LiveClock) NextTimeNs(name string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.timers[name]
	if !ok {
		return 0, false
	}
	return t.nextNs, true
}

// TimerNames returns the scheduled timer names, sorted.
func (c *LiveClock) TimerNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sortedNames(c.timers)
}

// TimerCount returns the number of scheduled timers.
func (c *LiveClock) TimerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *LiveClock) insertLocked(t *timer) {
	c.timers[t.name] = t
	c.schedule.ReplaceOrInsert(t)
	c.wake()
}

func (c *LiveClock) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// run is the scheduler loop: sleep until the earliest occurrence, fire,
// re-queue.
func (c *LiveClock) run(ctx context.Context) {
	defer close(c.done)
	for {
		c.mu.Lock()
		next, ok := c.schedule.Min()
		c.mu.Unlock()

		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-c.notify:
			}
			continue
		}

		now := time.Now().UnixNano()
		if next.nextNs > now {
			sleep := time.NewTimer(time.Duration(next.nextNs - now))
			select {
			case <-ctx.Done():
				sleep.Stop()
				return
			case <-c.notify:
				sleep.Stop()
				continue
			case <-sleep.C:
				continue
			}
		}

		c.fireDue(now)
	}
}

// fireDue pops and dispatches every occurrence at or before now. Handlers
// run on the scheduler goroutine without the lock held.
func (c *LiveClock) fireDue(nowNs int64) {
	type firing struct {
		ev      TimeEvent
		handler TimeEventHandler
	}
	var firings []firing

	c.mu.Lock()
	for {
		t, ok := c.schedule.Min()
		if !ok || t.nextNs > nowNs {
			break
		}
		c.schedule.Delete(t)
		ev, alive := t.pop(time.Now().UnixNano())
		if alive {
			c.schedule.ReplaceOrInsert(t)
		} else {
			delete(c.timers, t.name)
		}
		firings = append(firings, firing{ev: ev, handler: t.handler})
	}
	c.mu.Unlock()

	for _, f := range firings {
		if f.handler != nil {
			f.handler(f.ev)
		}
	}
}
