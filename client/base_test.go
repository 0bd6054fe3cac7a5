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

package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.stratatrade.io/strata/client"
	"code.stratatrade.io/strata/config/encoding"
	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/messages"
	"code.stratatrade.io/strata/types"
)

func newBase(t *testing.T) *client.Base {
	t.Helper()
	cfg := client.NewDefaultConfig()
	cfg.RetryBase = encoding.Duration{Duration: time.Millisecond}
	cfg.RetryMax = encoding.Duration{Duration: 5 * time.Millisecond}
	return client.NewBase(logging.NewTestLogger(), cfg, "BINANCE")
}

func TestConnectRetriesUntilSuccess(t *testing.T) {
	b := newBase(t)

	attempts := 0
	dial := func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}

	require.NoError(t, b.Connect(context.Background(), dial))
	assert.Equal(t, 3, attempts)
	assert.True(t, b.IsConnected())

	assert.ErrorIs(t, b.Connect(context.Background(), dial), client.ErrAlreadyConnected)
}

func TestConnectGivesUpAfterBudget(t *testing.T) {
	cfg := client.NewDefaultConfig()
	cfg.RetryBase = encoding.Duration{Duration: time.Millisecond}
	cfg.RetryMax = encoding.Duration{Duration: 2 * time.Millisecond}
	cfg.MaxAttempts = 2
	b := client.NewBase(logging.NewTestLogger(), cfg, "BINANCE")

	attempts := 0
	err := b.Connect(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("down")
	})
	require.Error(t, err)
	// initial attempt plus the configured retries
	assert.Equal(t, 3, attempts)
	assert.False(t, b.IsConnected())

	// a spent dial budget surfaces as an elapsed deadline
	var kerr *types.KernelError
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, types.KindTimeout, kerr.Kind)
}

func TestDisconnectKeepsSubscriptions(t *testing.T) {
	b := newBase(t)
	require.NoError(t, b.Connect(context.Background(), func(context.Context) error { return nil }))

	assert.True(t, b.Track("quotes:ETHUSDT-PERP.BINANCE"))
	// re-subscribe is a no-op
	assert.False(t, b.Track("quotes:ETHUSDT-PERP.BINANCE"))

	require.NoError(t, b.Disconnect(context.Background(), nil))
	assert.False(t, b.IsConnected())
	assert.Equal(t, []string{"quotes:ETHUSDT-PERP.BINANCE"}, b.Subscriptions())

	assert.True(t, b.Untrack("quotes:ETHUSDT-PERP.BINANCE"))
	assert.False(t, b.Untrack("quotes:ETHUSDT-PERP.BINANCE"))

	assert.ErrorIs(t, b.Disconnect(context.Background(), nil), client.ErrNotConnected)
}

func TestReservedTopics(t *testing.T) {
	id := types.MustInstrumentID("ETHUSDT-PERP.BINANCE")
	assert.Equal(t, "data.quotes.BINANCE.ETHUSDT-PERP", client.DataTopic(messages.KindQuotes, id))
	assert.Equal(t, "data.trades.BINANCE.*", client.DataPattern(messages.KindTrades, "BINANCE"))

	barType, err := types.ParseBarType("ETHUSDT-PERP.BINANCE-1-MINUTE-EXTERNAL")
	require.NoError(t, err)
	assert.Equal(t, "data.bars.BINANCE.ETHUSDT-PERP.BINANCE-1-MINUTE-EXTERNAL", client.BarTopic(barType))

	assert.Equal(t, "system.time.kernel.heartbeat", client.TimeTopic("kernel.heartbeat"))
	assert.Equal(t, "events.order.BINANCE.ETHUSDT-PERP", client.OrderEventTopic(id))
}
