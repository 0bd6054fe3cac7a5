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

// Package clock provides the time source of a runtime: named one-shot
// alerts and interval timers behind a single interface, with a test
// variant driven explicitly for deterministic replay and a live variant
// following the system clock.
package clock

import "sort"

// Clock is the timer scheduling surface shared by the test and live
// variants. Timer names are unique per clock; replacing a timer is
// explicit, cancel first then set.
type Clock interface {
	// NowNs returns the current time in Unix nanoseconds.
	NowNs() int64
	// SetTimeAlert schedules a one-shot event at the given time.
	SetTimeAlert(name string, atNs int64, handler TimeEventHandler, allowPast bool) error
	// SetTimer schedules a recurring event every intervalNs from startNs
	// until stopNs (0 for no stop). With fireImmediately the first event
	// occurs at startNs, otherwise at startNs+intervalNs.
	SetTimer(name string, intervalNs, startNs, stopNs int64, handler TimeEventHandler, allowPast, fireImmediately bool) error
	// Cancel removes a timer by name.
	Cancel(name string) error
	// CancelAll removes every timer.
	CancelAll()
	// NextTimeNs returns the next occurrence of the named timer.
	NextTimeNs(name string) (int64, bool)
	// TimerNames returns the scheduled timer names, sorted.
	TimerNames() []string
	// TimerCount returns the number of scheduled timers.
	TimerCount() int
}

func validateAlert(name string, atNs, nowNs int64, handler TimeEventHandler, allowPast bool) (int64, error) {
	if name == "" {
		return 0, ErrEmptyName
	}
	if handler == nil {
		return 0, ErrNilHandler
	}
	if atNs < nowNs {
		if !allowPast {
			return 0, ErrTimeInPast
		}
		// a past alert fires at the next opportunity
		atNs = nowNs
	}
	return atNs, nil
}

func validateInterval(name string, intervalNs, startNs, stopNs, nowNs int64, handler TimeEventHandler, allowPast bool) (int64, error) {
	if name == "" {
		return 0, ErrEmptyName
	}
	if handler == nil {
		return 0, ErrNilHandler
	}
	if intervalNs <= 0 {
		return 0, ErrZeroInterval
	}
	if stopNs > 0 && stopNs <= startNs {
		return 0, ErrStopBeforeStart
	}
	if startNs < nowNs {
		if !allowPast {
			return 0, ErrTimeInPast
		}
		startNs = nowNs
	}
	return startNs, nil
}

func sortedNames(timers map[string]*timer) []string {
	names := make([]string, 0, len(timers))
	for name := range timers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
