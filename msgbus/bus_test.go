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

package msgbus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.stratatrade.io/strata/clock"
	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/messages"
	"code.stratatrade.io/strata/msgbus"
	"code.stratatrade.io/strata/types"
)

func newBus(t *testing.T, clk clock.Clock) *msgbus.MessageBus {
	t.Helper()
	return msgbus.New(logging.NewTestLogger(), msgbus.NewDefaultConfig(), clk)
}

func instrument(t *testing.T) types.InstrumentID {
	t.Helper()
	return types.MustInstrumentID("ETHUSDT-PERP.BINANCE")
}

func TestPublishPriorityOrdering(t *testing.T) {
	b := newBus(t, nil)

	var order []string
	sub := func(name string, priority int) {
		_, err := b.Subscribe("data.*", func(any) { order = append(order, name) }, priority)
		require.NoError(t, err)
	}
	sub("low", 1)
	sub("high", 10)
	sub("mid", 5)
	// same priority as mid, registered later, so delivered after it
	sub("mid2", 5)

	require.NoError(t, b.Publish("data.quotes.BINANCE.ETHUSDT", "msg"))
	assert.Equal(t, []string{"high", "mid", "mid2", "low"}, order)
}

func TestPublishInvokesEachMatchOnce(t *testing.T) {
	b := newBus(t, nil)

	count := 0
	_, err := b.Subscribe("data.trades.*", func(any) { count++ }, 0)
	require.NoError(t, err)
	_, err = b.Subscribe("other.*", func(any) { count += 100 }, 0)
	require.NoError(t, err)

	require.NoError(t, b.Publish("data.trades.BINANCE.ETHUSDT", 1))
	require.NoError(t, b.Publish("data.trades.BINANCE.ETHUSDT", 2))
	assert.Equal(t, 2, count)
}

func TestMatchCacheInvalidation(t *testing.T) {
	b := newBus(t, nil)

	count := 0
	require.NoError(t, b.Publish("data.quotes.X.Y", 1))

	// subscribing after the topic was cached must still take effect
	sub, err := b.Subscribe("data.quotes.*", func(any) { count++ }, 0)
	require.NoError(t, err)
	require.NoError(t, b.Publish("data.quotes.X.Y", 1))
	assert.Equal(t, 1, count)

	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, b.Publish("data.quotes.X.Y", 1))
	assert.Equal(t, 1, count)
}

func TestMidPublicationMutationsAreDeferred(t *testing.T) {
	b := newBus(t, nil)

	var got []string
	var late *msgbus.Subscription
	_, err := b.Subscribe("t.*", func(any) {
		got = append(got, "first")
		late, _ = b.Subscribe("t.*", func(any) { got = append(got, "late") }, 100)
	}, 0)
	require.NoError(t, err)

	// the newly added subscription must not observe the current publication
	require.NoError(t, b.Publish("t.x", 1))
	assert.Equal(t, []string{"first"}, got)
	require.NotNil(t, late)

	// but it does observe the next one, at its higher priority
	got = nil
	require.NoError(t, b.Publish("t.x", 2))
	assert.Equal(t, []string{"late", "first"}, got)
}

func TestMidPublicationSubscribeThenUnsubscribe(t *testing.T) {
	b := newBus(t, nil)

	var unsubErr error
	calls := 0
	_, err := b.Subscribe("t.*", func(any) {
		sub, err := b.Subscribe("t.*", func(any) { calls++ }, 0)
		require.NoError(t, err)
		// the subscribe above is still deferred, yet its token must be
		// honoured when handed straight back
		unsubErr = b.Unsubscribe(sub)
	}, 0)
	require.NoError(t, err)

	require.NoError(t, b.Publish("t.x", 1))
	assert.NoError(t, unsubErr)

	// the pair cancelled out: the short-lived subscription never fires
	require.NoError(t, b.Publish("t.x", 2))
	assert.Zero(t, calls)
}

func TestHandlerPanicDoesNotAbortPublication(t *testing.T) {
	b := newBus(t, nil)

	var got []string
	_, err := b.Subscribe("t.*", func(any) { panic("boom") }, 10)
	require.NoError(t, err)
	_, err = b.Subscribe("t.*", func(any) { got = append(got, "survivor") }, 1)
	require.NoError(t, err)

	require.NoError(t, b.Publish("t.x", 1))
	assert.Equal(t, []string{"survivor"}, got)
}

func TestSendEndpoint(t *testing.T) {
	b := newBus(t, nil)

	assert.ErrorIs(t, b.Send("exec.orders", 1), msgbus.ErrEndpointNotRegistered)

	var got any
	require.NoError(t, b.RegisterEndpoint("exec.orders", func(msg any) { got = msg }))
	assert.ErrorIs(t, b.RegisterEndpoint("exec.orders", func(any) {}), msgbus.ErrEndpointExists)

	require.NoError(t, b.Send("exec.orders", "payload"))
	assert.Equal(t, "payload", got)

	require.NoError(t, b.DeregisterEndpoint("exec.orders"))
	assert.ErrorIs(t, b.Send("exec.orders", 1), msgbus.ErrEndpointNotRegistered)
}

func TestRequestResponseCorrelation(t *testing.T) {
	b := newBus(t, nil)

	var received messages.Command
	require.NoError(t, b.RegisterEndpoint("adapter.data", func(msg any) {
		received = msg.(messages.Command)
	}))

	req, err := messages.NewRequest(messages.KindTrades, instrument(t), "strategy-1", "BINANCE", 0, 0, 100, 1_000)
	require.NoError(t, err)

	var resp messages.Response
	responded := false
	require.NoError(t, b.Request("adapter.data", req, func(r messages.Response) {
		resp = r
		responded = true
	}, 0))
	require.NotNil(t, received)
	assert.Equal(t, req.ID(), received.ID())

	// duplicate correlation IDs are rejected while pending
	assert.ErrorIs(t, b.Request("adapter.data", req, func(messages.Response) {}, 0),
		msgbus.ErrDuplicateCorrelationID)
	assert.Equal(t, 1, b.PendingRequests())

	require.NoError(t, b.Respond(messages.NewResponse(req.ID(), messages.KindTrades, "trades", 2_000)))
	require.True(t, responded)
	assert.False(t, resp.Timeout)
	assert.Equal(t, "trades", resp.Payload)
	assert.Equal(t, 0, b.PendingRequests())

	// resolved correlations are gone
	assert.ErrorIs(t, b.Respond(messages.NewResponse(req.ID(), messages.KindTrades, nil, 3_000)),
		msgbus.ErrUnknownCorrelationID)
}

func TestRequestTimeout(t *testing.T) {
	clk := clock.NewTestClock(0)
	b := newBus(t, clk)

	require.NoError(t, b.RegisterEndpoint("adapter.data", func(any) {}))

	req, err := messages.NewRequest(messages.KindBars, instrument(t), "strategy-1", "", 0, 0, 0, 0)
	require.NoError(t, err)

	var resp messages.Response
	got := false
	timeout := int64(time.Second)
	require.NoError(t, b.Request("adapter.data", req, func(r messages.Response) {
		resp = r
		got = true
	}, timeout))

	clk.AdvanceTo(timeout / 2)
	assert.False(t, got)

	clk.AdvanceTo(2 * timeout)
	require.True(t, got)
	assert.True(t, resp.Timeout)
	assert.Equal(t, req.ID(), resp.CorrelationID)
	assert.Equal(t, 0, b.PendingRequests())

	// a late response finds no pending entry
	assert.ErrorIs(t, b.Respond(messages.NewResponse(req.ID(), messages.KindBars, nil, 0)),
		msgbus.ErrUnknownCorrelationID)
}

func TestResponseFansOutOnReservedTopic(t *testing.T) {
	b := newBus(t, nil)
	require.NoError(t, b.RegisterEndpoint("adapter.data", func(any) {}))

	req, err := messages.NewRequest(messages.KindQuotes, instrument(t), "s", "", 0, 0, 0, 0)
	require.NoError(t, err)

	observed := 0
	_, err = b.Subscribe("system.response.*", func(any) { observed++ }, 0)
	require.NoError(t, err)

	require.NoError(t, b.Request("adapter.data", req, func(messages.Response) {}, 0))
	require.NoError(t, b.Respond(messages.NewResponse(req.ID(), messages.KindQuotes, nil, 0)))
	assert.Equal(t, 1, observed)
}
