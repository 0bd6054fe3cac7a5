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

import "sort"

// TestClock is the deterministic time source used by backtests and tests.
// Time only moves when the owner sets or advances it; two identically
// configured clocks produce identical event sequences for identical
// advances. Not safe for concurrent use, by design it lives on the single
// runtime task.
type TestClock struct {
	nowNs  int64
	timers map[string]*timer
}

// NewTestClock creates a test clock at the given start time.
func NewTestClock(startNs int64) *TestClock {
	return &TestClock{
		nowNs:  startNs,
		timers: map[string]*timer{},
	}
}

// NowNs returns the explicitly set current time.
func (c *TestClock) NowNs() int64 { return c.nowNs }

// SetTime moves the clock without firing timers.
func (c *TestClock) SetTime(nowNs int64) { c.nowNs = nowNs }

// SetTimeAlert schedules a one-shot event at the given time.
func (c *TestClock) SetTimeAlert(name string, atNs int64, handler TimeEventHandler, allowPast bool) error {
	if _, ok := c.timers[name]; ok {
		return ErrTimerExists
	}
	atNs, err := validateAlert(name, atNs, c.nowNs, handler, allowPast)
	if err != nil {
		return err
	}
	c.timers[name] = newAlert(name, atNs, handler)
	return nil
}

// SetTimer schedules a recurring event.
func (c *TestClock) SetTimer(name string, intervalNs, startNs, stopNs int64, handler TimeEventHandler, allowPast, fireImmediately bool) error {
	if _, ok := c.timers[name]; ok {
		return ErrTimerExists
	}
	startNs, err := validateInterval(name, intervalNs, startNs, stopNs, c.nowNs, handler, allowPast)
	if err != nil {
		return err
	}
	c.timers[name] = newInterval(name, intervalNs, startNs, stopNs, handler, fireImmediately)
	return nil
}

// Cancel removes a timer by name.
func (c *TestClock) Cancel(name string) error {
	if _, ok := c.timers[name]; !ok {
		return ErrTimerNotFound
	}
	delete(c.timers, name)
	return nil
}

// CancelAll removes every timer.
func (c *TestClock) CancelAll() {
	c.timers = map[string]*timer{}
}

// NextTimeNs returns the next occurrence of the named timer.
func (c *TestClock) NextTimeNs(name string) (int64, bool) {
	t, ok := c.timers[name]
	if !ok {
		return 0, false
	}
	return t.nextNs, true
}

// TimerNames returns the scheduled timer names, sorted.
func (c *TestClock) TimerNames() []string {
	return sortedNames(c.timers)
}

// TimerCount returns the number of scheduled timers.
func (c *TestClock) TimerCount() int { return len(c.timers) }

// AdvanceTo moves the clock to the given time and fires every timer whose
// occurrences fall at or before it, in strict (occurrence, name) order.
// Handlers are invoked in that order and the produced batch is returned so
// the caller can also dispatch it. Advancing backwards is a no-op.
func (c *TestClock) AdvanceTo(toNs int64) []TimeEvent {
	if toNs < c.nowNs {
		return nil
	}

	type firing struct {
		ev      TimeEvent
		handler TimeEventHandler
	}
	var firings []firing
	for name, t := range c.timers {
		for t.nextNs <= toNs {
			// events produced under the test clock carry the occurrence as
			// both timestamps, which keeps replays bit-identical
			ev, alive := t.pop(t.nextNs)
			ev.TsInit = ev.TsEvent
			firings = append(firings, firing{ev: ev, handler: t.handler})
			if !alive {
				delete(c.timers, name)
				break
			}
		}
	}

	sort.Slice(firings, func(i, j int) bool {
		if firings[i].ev.TsEvent != firings[j].ev.TsEvent {
			return firings[i].ev.TsEvent < firings[j].ev.TsEvent
		}
		return firings[i].ev.Name < firings[j].ev.Name
	})

	c.nowNs = toNs
	events := make([]TimeEvent, 0, len(firings))
	for _, f := range firings {
		events = append(events, f.ev)
		if f.handler != nil {
			f.handler(f.ev)
		}
	}
	return events
}
