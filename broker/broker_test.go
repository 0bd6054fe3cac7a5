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

package broker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"code.stratatrade.io/strata/broker"
	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/msgbus"
)

type captureSender struct {
	frames [][]byte
	closed bool
}

func (s *captureSender) Send(buf []byte) error {
	s.frames = append(s.frames, buf)
	return nil
}

func (s *captureSender) Close() error {
	s.closed = true
	return nil
}

func TestBrokerForwardsMatchingTraffic(t *testing.T) {
	bus := msgbus.New(logging.NewTestLogger(), msgbus.NewDefaultConfig(), nil)

	sender := &captureSender{}
	cfg := broker.NewDefaultConfig()
	cfg.Enabled = true
	cfg.Patterns = []string{"data.*"}

	b, err := broker.New(logging.NewTestLogger(), cfg, bus, sender)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, bus.Publish("data.trades.BINANCE.ETHUSDT", map[string]any{"px": "100.5"}))
	require.NoError(t, bus.Publish("events.order.BINANCE.ETHUSDT", "ignored"))

	require.Len(t, sender.frames, 1)

	var env broker.Envelope
	require.NoError(t, msgpack.Unmarshal(sender.frames[0], &env))
	assert.Equal(t, "data.*", env.Pattern)

	forwarded, failed := b.Stats()
	assert.EqualValues(t, 1, forwarded)
	assert.Zero(t, failed)
}

func TestBrokerDisabled(t *testing.T) {
	bus := msgbus.New(logging.NewTestLogger(), msgbus.NewDefaultConfig(), nil)

	sender := &captureSender{}
	cfg := broker.NewDefaultConfig()
	cfg.Enabled = false

	b, err := broker.New(logging.NewTestLogger(), cfg, bus, sender)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, bus.Publish("data.trades.BINANCE.ETHUSDT", 1))
	assert.Empty(t, sender.frames)
}

func TestBrokerCloseUnsubscribes(t *testing.T) {
	bus := msgbus.New(logging.NewTestLogger(), msgbus.NewDefaultConfig(), nil)

	sender := &captureSender{}
	cfg := broker.NewDefaultConfig()
	cfg.Enabled = true
	cfg.Patterns = []string{"data.*"}

	b, err := broker.New(logging.NewTestLogger(), cfg, bus, sender)
	require.NoError(t, err)

	b.Close()
	assert.True(t, sender.closed)

	require.NoError(t, bus.Publish("data.trades.BINANCE.ETHUSDT", 1))
	assert.Empty(t, sender.frames)
}
