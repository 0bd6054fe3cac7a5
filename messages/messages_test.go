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

package messages_test

import (
	"testing"

	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.stratatrade.io/strata/messages"
	"code.stratatrade.io/strata/types"
)

var testInstrument = types.MustInstrumentID("ETHUSDT-PERP.BINANCE")

func TestSubscribeRequiresClientIDOrVenue(t *testing.T) {
	_, err := messages.NewSubscribe(messages.KindQuotes, testInstrument, "", "", 1)
	assert.ErrorIs(t, err, messages.ErrNoClientIDOrVenue)

	sub, err := messages.NewSubscribe(messages.KindQuotes, testInstrument, "binance-data", "", 1)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.UUID{}, sub.ID())
	assert.Equal(t, int64(1), sub.InitTime())
}

func TestCommandIDsUnique(t *testing.T) {
	a, err := messages.NewUnsubscribe(messages.KindTrades, testInstrument, "c", "", 1)
	require.NoError(t, err)
	b, err := messages.NewUnsubscribe(messages.KindTrades, testInstrument, "c", "", 1)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestSubscribeBarsCarriesBarType(t *testing.T) {
	bt, err := types.ParseBarType("ETHUSDT-PERP.BINANCE-1-MINUTE-EXTERNAL")
	require.NoError(t, err)

	sub, err := messages.NewSubscribeBars(bt, "", "BINANCE", 1)
	require.NoError(t, err)
	assert.Equal(t, messages.KindBars, sub.Kind)
	require.NotNil(t, sub.BarType)
	assert.Equal(t, bt, *sub.BarType)
	assert.Equal(t, testInstrument, sub.InstrumentID)
}

func TestRequestRange(t *testing.T) {
	req, err := messages.NewRequest(messages.KindTrades, testInstrument, "c", "", 100, 200, 50, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), req.StartNs)
	assert.Equal(t, int64(200), req.EndNs)
	assert.Equal(t, 50, req.Limit)
}

func TestTimeoutResponse(t *testing.T) {
	id := uuid.NewV4()
	resp := messages.NewTimeoutResponse(id, 7)
	assert.True(t, resp.Timeout)
	assert.Nil(t, resp.Payload)
	assert.Equal(t, id, resp.CorrelationID)
}

func TestDataKindTopicSegments(t *testing.T) {
	assert.Equal(t, "quotes", messages.KindQuotes.String())
	assert.Equal(t, "funding_rates", messages.KindFundingRates.String())

	k, err := messages.ParseDataKind("deltas")
	require.NoError(t, err)
	assert.Equal(t, messages.KindBookDeltas, k)

	_, err = messages.ParseDataKind("nope")
	assert.Error(t, err)
}
