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

package kernel_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.stratatrade.io/strata/kernel"
	"code.stratatrade.io/strata/libs/num"
	"code.stratatrade.io/strata/types"
)

func TestTradeCacheBounded(t *testing.T) {
	c := kernel.NewDataCache(3)
	for i := 0; i < 5; i++ {
		c.AddTrade(trade(t, 100+float64(i), 1, fmt.Sprintf("T-%d", i)))
	}

	trades := c.RecentTrades(testInstrument)
	require.Len(t, trades, 3)
	assert.Equal(t, types.TradeID("T-2"), trades[0].TradeID)
	assert.Equal(t, types.TradeID("T-4"), trades[2].TradeID)

	last, ok := c.LastTrade(testInstrument)
	require.True(t, ok)
	assert.Equal(t, types.TradeID("T-4"), last.TradeID)
}

func TestBarCacheKeyedByBarType(t *testing.T) {
	c := kernel.NewDataCache(1)
	bt1, err := types.ParseBarType("ETHUSDT-PERP.BINANCE-1-MINUTE-EXTERNAL")
	require.NoError(t, err)
	bt5, err := types.ParseBarType("ETHUSDT-PERP.BINANCE-5-MINUTE-EXTERNAL")
	require.NoError(t, err)

	px := func(v float64) num.Price { return num.MustPriceFromFloat(v, 2) }
	b1, err := types.NewBar(bt1, px(100), px(110), px(90), px(105), num.MustQuantityFromFloat(10, 3), 1, 1)
	require.NoError(t, err)
	b5, err := types.NewBar(bt5, px(100), px(120), px(80), px(101), num.MustQuantityFromFloat(50, 3), 1, 1)
	require.NoError(t, err)

	c.AddBar(b1)
	c.AddBar(b5)

	got, ok := c.LastBar(bt1)
	require.True(t, ok)
	assert.Equal(t, "105.00", got.Close.String())

	got, ok = c.LastBar(bt5)
	require.True(t, ok)
	assert.Equal(t, "101.00", got.Close.String())
}

func TestMarkAndCloseCache(t *testing.T) {
	c := kernel.NewDataCache(1)
	c.AddMarkPrice(types.MarkPrice{InstrumentID: testInstrument, Value: num.MustPriceFromFloat(99.5, 2), TsEvent: 1, TsInit: 1})
	c.AddInstrumentClose(types.InstrumentClose{InstrumentID: testInstrument, Price: num.MustPriceFromFloat(98, 2), TsEvent: 2, TsInit: 2})

	m, ok := c.LastMarkPrice(testInstrument)
	require.True(t, ok)
	assert.Equal(t, "99.50", m.Value.String())

	cl, ok := c.LastClose(testInstrument)
	require.True(t, ok)
	assert.Equal(t, "98.00", cl.Price.String())

	_, ok = c.LastIndexPrice(testInstrument)
	assert.False(t, ok)
}
