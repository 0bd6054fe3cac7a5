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

// Package throttler enforces a rate cap between a producer and its
// consumer: at most limit sends per interval, with excess either buffered
// until the budget replenishes or handed to a drop callback.
package throttler

import (
	"github.com/pkg/errors"

	"code.stratatrade.io/strata/clock"
	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/metrics"
	"code.stratatrade.io/strata/types"
)

var (
	// ErrDropped signals a message discarded in drop mode.
	ErrDropped = errors.New("message dropped by throttle")
	// ErrUnknownMode signals a throttle mode outside the enumeration.
	ErrUnknownMode = errors.New("unknown throttle mode")
	// ErrInvalidLimit signals a non-positive limit.
	ErrInvalidLimit = errors.New("throttle limit must be positive")
	// ErrInvalidInterval signals a non-positive interval.
	ErrInvalidInterval = errors.New("throttle interval must be positive")
)

// Output consumes messages the throttler lets through.
type Output func(msg any)

// Dropped consumes messages discarded in drop mode.
type Dropped func(msg any)

// Throttler tracks the timestamps of the last limit sends; a send passes
// when fewer than limit sends happened within the trailing interval. It is
// owned by a single runtime task and is not safe for concurrent use.
type Throttler struct {
	log *logging.Logger
	cfg Config

	name       string
	limit      int
	intervalNs int64
	clk        clock.Clock
	output     Output
	dropped    Dropped

	// send timestamps, oldest first, at most limit entries
	window   []int64
	queue    []any
	limiting bool

	sentCount    uint64
	droppedCount uint64
}

// New creates a throttler feeding the given output. The name scopes its
// replenishment timer on the clock, so it must be unique per clock.
func New(log *logging.Logger, cfg Config, name string, clk clock.Clock, output Output, dropped Dropped) (*Throttler, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	if cfg.Limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if cfg.Interval.Duration <= 0 {
		return nil, ErrInvalidInterval
	}
	if cfg.Mode != ModeBuffer && cfg.Mode != ModeDrop {
		return nil, ErrUnknownMode
	}
	return &Throttler{
		log:        log,
		cfg:        cfg,
		name:       name,
		limit:      cfg.Limit,
		intervalNs: int64(cfg.Interval.Duration),
		clk:        clk,
		output:     output,
		dropped:    dropped,
	}, nil
}

// Send passes the message through when the budget allows, otherwise
// buffers or drops it per the configured mode. A buffered message is
// deferred, not lost, so only a drop reports an error.
func (t *Throttler) Send(msg any) error {
	if t.limiting {
		return t.overflow(msg)
	}
	now := t.clk.NowNs()
	t.prune(now)
	if len(t.window) < t.limit {
		t.passThrough(msg, now)
		return nil
	}
	// budget spent: enter limiting and arm the replenishment timer
	t.limiting = true
	t.armTimer()
	return t.overflow(msg)
}

// Used returns a 0..1 estimate of the consumed budget.
func (t *Throttler) Used() float64 {
	if len(t.window) == 0 {
		return 0
	}
	now := t.clk.NowNs()
	if len(t.window) < t.limit {
		last := t.window[len(t.window)-1]
		return float64(len(t.window)) / float64(t.limit) * t.remainingFraction(now, last)
	}
	return t.remainingFraction(now, t.window[0])
}

// QueueLen returns the number of buffered messages.
func (t *Throttler) QueueLen() int { return len(t.queue) }

// IsLimiting reports whether the throttler is over budget.
func (t *Throttler) IsLimiting() bool { return t.limiting }

// Stats returns the passed and dropped message counts.
func (t *Throttler) Stats() (sent, dropped uint64) {
	return t.sentCount, t.droppedCount
}

func (t *Throttler) remainingFraction(now, since int64) float64 {
	elapsed := now - since
	if elapsed >= t.intervalNs {
		return 0
	}
	if elapsed < 0 {
		return 1
	}
	return 1 - float64(elapsed)/float64(t.intervalNs)
}

// prune drops window entries older than one interval.
func (t *Throttler) prune(now int64) {
	cut := 0
	for cut < len(t.window) && now-t.window[cut] >= t.intervalNs {
		cut++
	}
	if cut > 0 {
		t.window = t.window[cut:]
	}
}

func (t *Throttler) passThrough(msg any, now int64) {
	t.window = append(t.window, now)
	if len(t.window) > t.limit {
		t.window = t.window[1:]
	}
	t.sentCount++
	t.output(msg)
}

func (t *Throttler) overflow(msg any) error {
	if t.cfg.Mode == ModeDrop {
		t.droppedCount++
		metrics.ThrottleDropInc(t.name)
		if t.dropped != nil {
			t.dropped(msg)
		}
		return types.NewKernelError(types.KindResource, errors.Wrap(ErrDropped, t.name))
	}
	t.queue = append(t.queue, msg)
	return nil
}

// armTimer schedules the drain at the next replenishment, when the oldest
// send in the window falls out of the interval.
func (t *Throttler) armTimer() {
	at := t.clk.NowNs() + t.intervalNs
	if len(t.window) > 0 {
		at = t.window[0] + t.intervalNs
	}
	_ = t.clk.Cancel(t.timerName())
	if err := t.clk.SetTimeAlert(t.timerName(), at, t.onTimer, true); err != nil {
		t.log.Error("failed to arm throttle timer",
			logging.String("throttler", t.name),
			logging.Error(err),
		)
	}
}

// onTimer drains the queue up to the replenished budget, re-arming while
// messages remain.
func (t *Throttler) onTimer(ev clock.TimeEvent) {
	now := ev.TsEvent
	t.prune(now)
	for len(t.queue) > 0 && len(t.window) < t.limit {
		msg := t.queue[0]
		t.queue = t.queue[1:]
		t.passThrough(msg, now)
	}
	if len(t.queue) > 0 {
		t.armTimer()
		return
	}
	t.limiting = false
}

func (t *Throttler) timerName() string {
	return "throttler." + t.name
}
