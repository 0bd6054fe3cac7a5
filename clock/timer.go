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
	"fmt"

	uuid "github.com/satori/go.uuid"
)

// TimeEvent is the payload delivered when a timer fires.
type TimeEvent struct {
	// Name of the timer that produced the event.
	Name string
	// EventID uniquely identifies the firing.
	EventID uuid.UUID
	// TsEvent is the scheduled occurrence in Unix nanoseconds.
	TsEvent int64
	// TsInit is when the event object was produced.
	TsInit int64
}

func (e TimeEvent) String() string {
	return fmt.Sprintf("TimeEvent{%s @ %d}", e.Name, e.TsEvent)
}

// TimeEventHandler consumes a time event. Handlers must be short and
// non-blocking; slow work belongs on a separate task.
type TimeEventHandler func(TimeEvent)

// timer is one scheduled alert or interval timer. A one-shot alert is a
// timer with a zero interval.
type timer struct {
	name       string
	intervalNs int64
	startNs    int64
	stopNs     int64 // 0 means no stop
	nextNs     int64
	handler    TimeEventHandler
}

func (t *timer) recurring() bool { return t.intervalNs > 0 }

// pop produces the event for the current occurrence and advances the timer
// to its next one. Returns false when the timer is exhausted afterwards.
func (t *timer) pop(tsInit int64) (TimeEvent, bool) {
	ev := TimeEvent{
		Name:    t.name,
		EventID: uuid.NewV4(),
		TsEvent: t.nextNs,
		TsInit:  tsInit,
	}
	if !t.recurring() {
		return ev, false
	}
	t.nextNs += t.intervalNs
	if t.stopNs > 0 && t.nextNs > t.stopNs {
		return ev, false
	}
	return ev, true
}

func newAlert(name string, at int64, handler TimeEventHandler) *timer {
	return &timer{name: name, startNs: at, nextNs: at, handler: handler}
}

func newInterval(name string, interval, start, stop int64, handler TimeEventHandler, fireImmediately bool) *timer {
	t := &timer{
		name:       name,
		intervalNs: interval,
		startNs:    start,
		stopNs:     stop,
		handler:    handler,
	}
	if fireImmediately {
		t.nextNs = start
	} else {
		t.nextNs = start + interval
	}
	return t
}
