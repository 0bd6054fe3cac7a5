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

package kernel

import "code.stratatrade.io/strata/types"

// DataCache keeps the latest state per instrument so strategies can read
// without replaying the stream: last quote, recent trades, last bar per
// bar type, and the latest mark/index/funding updates. Owned by the
// runtime task.
type DataCache struct {
	tradeCap int

	quotes  map[types.InstrumentID]types.Quote
	trades  map[types.InstrumentID][]types.Trade
	bars    map[string]types.Bar
	marks   map[types.InstrumentID]types.MarkPrice
	indexes map[types.InstrumentID]types.IndexPrice
	funding map[types.InstrumentID]types.FundingRate
	status  map[types.InstrumentID]types.InstrumentStatus
	closes  map[types.InstrumentID]types.InstrumentClose
}

// NewDataCache creates a cache keeping up to tradeCap trades per
// instrument.
func NewDataCache(tradeCap int) *DataCache {
	if tradeCap <= 0 {
		tradeCap = 1
	}
	return &DataCache{
		tradeCap: tradeCap,
		quotes:   map[types.InstrumentID]types.Quote{},
		trades:   map[types.InstrumentID][]types.Trade{},
		bars:     map[string]types.Bar{},
		marks:    map[types.InstrumentID]types.MarkPrice{},
		indexes:  map[types.InstrumentID]types.IndexPrice{},
		funding:  map[types.InstrumentID]types.FundingRate{},
		status:   map[types.InstrumentID]types.InstrumentStatus{},
		closes:   map[types.InstrumentID]types.InstrumentClose{},
	}
}

// AddQuote stores the latest quote for its instrument.
func (c *DataCache) AddQuote(q types.Quote) { c.quotes[q.InstrumentID] = q }

// LastQuote returns the latest quote for the instrument.
func (c *DataCache) LastQuote(id types.InstrumentID) (types.Quote, bool) {
	q, ok := c.quotes[id]
	return q, ok
}

// AddTrade appends a trade to the instrument's recent window.
func (c *DataCache) AddTrade(t types.Trade) {
	buf := append(c.trades[t.InstrumentID], t)
	if len(buf) > c.tradeCap {
		buf = buf[len(buf)-c.tradeCap:]
	}
	c.trades[t.InstrumentID] = buf
}

// LastTrade returns the most recent trade for the instrument.
func (c *DataCache) LastTrade(id types.InstrumentID) (types.Trade, bool) {
	buf := c.trades[id]
	if len(buf) == 0 {
		return types.Trade{}, false
	}
	return buf[len(buf)-1], true
}

// RecentTrades returns the buffered trades for the instrument, oldest
// first. The returned slice is shared; callers must not mutate it.
func (c *DataCache) RecentTrades(id types.InstrumentID) []types.Trade {
	return c.trades[id]
}

// AddBar stores the latest bar of its bar type.
func (c *DataCache) AddBar(b types.Bar) { c.bars[b.BarType.String()] = b }

// LastBar returns the latest bar of the given bar type.
func (c *DataCache) LastBar(barType types.BarType) (types.Bar, bool) {
	b, ok := c.bars[barType.String()]
	return b, ok
}

// AddMarkPrice stores the latest mark price for its instrument.
func (c *DataCache) AddMarkPrice(m types.MarkPrice) { c.marks[m.InstrumentID] = m }

// LastMarkPrice returns the latest mark price for the instrument.
func (c *DataCache) LastMarkPrice(id types.InstrumentID) (types.MarkPrice, bool) {
	m, ok := c.marks[id]
	return m, ok
}

// AddIndexPrice stores the latest index price for its instrument.
func (c *DataCache) AddIndexPrice(i types.IndexPrice) { c.indexes[i.InstrumentID] = i }

// LastIndexPrice returns the latest index price for the instrument.
func (c *DataCache) LastIndexPrice(id types.InstrumentID) (types.IndexPrice, bool) {
	i, ok := c.indexes[id]
	return i, ok
}

// AddFundingRate stores the latest funding rate for its instrument,
// ignoring stale sequence numbers.
func (c *DataCache) AddFundingRate(f types.FundingRate) bool {
	if prev, ok := c.funding[f.InstrumentID]; ok && f.Sequence > 0 && f.Sequence <= prev.Sequence {
		return false
	}
	c.funding[f.InstrumentID] = f
	return true
}

// LastFundingRate returns the latest funding rate for the instrument.
func (c *DataCache) LastFundingRate(id types.InstrumentID) (types.FundingRate, bool) {
	f, ok := c.funding[id]
	return f, ok
}

// SetStatus stores the latest trading status for its instrument.
func (c *DataCache) SetStatus(s types.InstrumentStatus) { c.status[s.InstrumentID] = s }

// Status returns the latest trading status for the instrument.
func (c *DataCache) Status(id types.InstrumentID) (types.InstrumentStatus, bool) {
	s, ok := c.status[id]
	return s, ok
}

// AddInstrumentClose stores the latest close for its instrument.
func (c *DataCache) AddInstrumentClose(cl types.InstrumentClose) { c.closes[cl.InstrumentID] = cl }

// LastClose returns the latest close for the instrument.
func (c *DataCache) LastClose(id types.InstrumentID) (types.InstrumentClose, bool) {
	cl, ok := c.closes[id]
	return cl, ok
}
