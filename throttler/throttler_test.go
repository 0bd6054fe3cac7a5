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

package throttler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.stratatrade.io/strata/clock"
	"code.stratatrade.io/strata/config/encoding"
	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/throttler"
	"code.stratatrade.io/strata/types"
)

const secNs = int64(time.Second)

func newThrottler(t *testing.T, clk clock.Clock, limit int, mode throttler.Mode, out throttler.Output, drop throttler.Dropped) *throttler.Throttler {
	t.Helper()
	cfg := throttler.NewDefaultConfig()
	cfg.Limit = limit
	cfg.Interval = encoding.Duration{Duration: time.Second}
	cfg.Mode = mode
	th, err := throttler.New(logging.NewTestLogger(), cfg, t.Name(), clk, out, drop)
	require.NoError(t, err)
	return th
}

func TestSendThroughUnderLimit(t *testing.T) {
	clk := clock.NewTestClock(0)
	var out []any
	th := newThrottler(t, clk, 3, throttler.ModeBuffer, func(m any) { out = append(out, m) }, nil)

	th.Send(1)
	th.Send(2)
	th.Send(3)
	assert.Equal(t, []any{1, 2, 3}, out)
	assert.False(t, th.IsLimiting())
}

func TestBufferModeQueuesAndDrains(t *testing.T) {
	clk := clock.NewTestClock(0)
	var out []any
	th := newThrottler(t, clk, 2, throttler.ModeBuffer, func(m any) { out = append(out, m) }, nil)

	th.Send(1)
	th.Send(2)
	// buffered sends are deferred, not lost, so they do not error
	require.NoError(t, th.Send(3))
	require.NoError(t, th.Send(4))

	assert.Equal(t, []any{1, 2}, out)
	assert.True(t, th.IsLimiting())
	assert.Equal(t, 2, th.QueueLen())

	// budget replenishes one interval after the oldest send; FIFO drain
	clk.AdvanceTo(secNs)
	assert.Equal(t, []any{1, 2, 3, 4}, out)
	assert.Equal(t, 0, th.QueueLen())
	assert.False(t, th.IsLimiting())
}

func TestBufferModeReArmsWhileBackedUp(t *testing.T) {
	clk := clock.NewTestClock(0)
	var out []any
	th := newThrottler(t, clk, 1, throttler.ModeBuffer, func(m any) { out = append(out, m) }, nil)

	th.Send(1)
	th.Send(2)
	th.Send(3)
	assert.Equal(t, []any{1}, out)
	assert.Equal(t, 2, th.QueueLen())

	clk.AdvanceTo(secNs)
	assert.Equal(t, []any{1, 2}, out)
	assert.True(t, th.IsLimiting())

	clk.AdvanceTo(2 * secNs)
	assert.Equal(t, []any{1, 2, 3}, out)
	assert.False(t, th.IsLimiting())
}

func TestDropMode(t *testing.T) {
	clk := clock.NewTestClock(0)
	var out, lost []any
	th := newThrottler(t, clk, 2, throttler.ModeDrop,
		func(m any) { out = append(out, m) },
		func(m any) { lost = append(lost, m) })

	require.NoError(t, th.Send(1))
	require.NoError(t, th.Send(2))
	err := th.Send(3)
	require.ErrorIs(t, err, throttler.ErrDropped)
	var kerr *types.KernelError
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, types.KindResource, kerr.Kind)
	require.Error(t, th.Send(4))

	assert.Equal(t, []any{1, 2}, out)
	assert.Equal(t, []any{3, 4}, lost)
	assert.Equal(t, 0, th.QueueLen())

	sent, dropped := th.Stats()
	assert.EqualValues(t, 2, sent)
	assert.EqualValues(t, 2, dropped)

	// once the interval elapses sends pass again
	clk.AdvanceTo(secNs)
	require.NoError(t, th.Send(5))
	assert.Equal(t, []any{1, 2, 5}, out)
}

func TestWindowSlides(t *testing.T) {
	clk := clock.NewTestClock(0)
	var out []any
	th := newThrottler(t, clk, 2, throttler.ModeBuffer, func(m any) { out = append(out, m) }, nil)

	th.Send(1)
	clk.SetTime(secNs / 2)
	th.Send(2)
	// the first send falls out of the window here, freeing one slot
	clk.SetTime(secNs)
	th.Send(3)
	assert.Equal(t, []any{1, 2, 3}, out)
	assert.False(t, th.IsLimiting())
}

func TestUsedEstimate(t *testing.T) {
	clk := clock.NewTestClock(0)
	th := newThrottler(t, clk, 4, throttler.ModeBuffer, func(any) {}, nil)

	assert.Zero(t, th.Used())

	// not yet warm: scaled by the sent fraction
	th.Send(1)
	th.Send(2)
	assert.InDelta(t, 0.5, th.Used(), 1e-9)

	clk.SetTime(secNs / 2)
	assert.InDelta(t, 0.25, th.Used(), 1e-9)

	// warm: fraction of the interval remaining since the oldest send
	clk.SetTime(secNs / 2)
	th.Send(3)
	th.Send(4)
	assert.InDelta(t, 0.5, th.Used(), 1e-9)

	clk.SetTime(2 * secNs)
	assert.Zero(t, th.Used())
}

func TestInvalidConfig(t *testing.T) {
	clk := clock.NewTestClock(0)
	cfg := throttler.NewDefaultConfig()
	cfg.Limit = 0
	_, err := throttler.New(logging.NewTestLogger(), cfg, "x", clk, func(any) {}, nil)
	assert.ErrorIs(t, err, throttler.ErrInvalidLimit)

	cfg = throttler.NewDefaultConfig()
	cfg.Interval = encoding.Duration{}
	_, err = throttler.New(logging.NewTestLogger(), cfg, "x", clk, func(any) {}, nil)
	assert.ErrorIs(t, err, throttler.ErrInvalidInterval)
}
