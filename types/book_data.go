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

package types

import (
	"fmt"

	"code.stratatrade.io/strata/libs/num"
)

// BookOrder is the order payload of a book delta.
type BookOrder struct {
	Side    Side         `json:"side" msgpack:"side"`
	Price   num.Price    `json:"price" msgpack:"price"`
	Size    num.Quantity `json:"size" msgpack:"size"`
	OrderID uint64       `json:"order_id" msgpack:"order_id"`
}

// BookDelta is a single mutation to an order book.
type BookDelta struct {
	InstrumentID InstrumentID `json:"instrument_id" msgpack:"instrument_id"`
	Action       BookAction   `json:"action" msgpack:"action"`
	Order        BookOrder    `json:"order" msgpack:"order"`
	Flags        RecordFlags  `json:"flags" msgpack:"flags"`
	Sequence     uint64       `json:"sequence" msgpack:"sequence"`
	TsEvent      int64        `json:"ts_event" msgpack:"ts_event"`
	TsInit       int64        `json:"ts_init" msgpack:"ts_init"`
}

// NewBookDelta builds a book delta, validating the timestamps.
func NewBookDelta(id InstrumentID, action BookAction, order BookOrder, flags RecordFlags, sequence uint64, tsEvent, tsInit int64) (BookDelta, error) {
	if err := checkTimestamps(tsEvent, tsInit); err != nil {
		return BookDelta{}, err
	}
	return BookDelta{
		InstrumentID: id,
		Action:       action,
		Order:        order,
		Flags:        flags,
		Sequence:     sequence,
		TsEvent:      tsEvent,
		TsInit:       tsInit,
	}, nil
}

func (d BookDelta) Instrument() InstrumentID { return d.InstrumentID }
func (d BookDelta) EventTime() int64         { return d.TsEvent }
func (d BookDelta) InitTime() int64          { return d.TsInit }

func (d BookDelta) String() string {
	return fmt.Sprintf("BookDelta{%s %s %s %s@%s id=%d seq=%d flags=%08b}",
		d.InstrumentID, d.Action, d.Order.Side, d.Order.Size, d.Order.Price, d.Order.OrderID, d.Sequence, d.Flags)
}

// BookDeltaBatch is a packet of deltas applied atomically; the final delta
// carries the last-of-packet flag.
type BookDeltaBatch []BookDelta

// Instrument returns the instrument of the packet, taken from its first
// delta.
func (b BookDeltaBatch) Instrument() InstrumentID {
	if len(b) == 0 {
		return InstrumentID{}
	}
	return b[0].InstrumentID
}

// Terminated reports whether the packet ends with the last-of-packet flag.
func (b BookDeltaBatch) Terminated() bool {
	return len(b) > 0 && b[len(b)-1].Flags.IsLast()
}

// BookLevel is one aggregated price level of a depth view.
type BookLevel struct {
	Price num.Price    `json:"price" msgpack:"price"`
	Size  num.Quantity `json:"size" msgpack:"size"`
	Count uint32       `json:"count" msgpack:"count"`
}

// DepthLevels is the number of levels per side carried by a depth update.
const DepthLevels = 10

// BookDepth10 is a ten-level-per-side depth update.
type BookDepth10 struct {
	InstrumentID InstrumentID           `json:"instrument_id" msgpack:"instrument_id"`
	Bids         [DepthLevels]BookLevel `json:"bids" msgpack:"bids"`
	Asks         [DepthLevels]BookLevel `json:"asks" msgpack:"asks"`
	BidCount     uint32                 `json:"bid_count" msgpack:"bid_count"`
	AskCount     uint32                 `json:"ask_count" msgpack:"ask_count"`
	Flags        RecordFlags            `json:"flags" msgpack:"flags"`
	Sequence     uint64                 `json:"sequence" msgpack:"sequence"`
	TsEvent      int64                  `json:"ts_event" msgpack:"ts_event"`
	TsInit       int64                  `json:"ts_init" msgpack:"ts_init"`
}

func (d BookDepth10) Instrument() InstrumentID { return d.InstrumentID }
func (d BookDepth10) EventTime() int64         { return d.TsEvent }
func (d BookDepth10) InitTime() int64          { return d.TsInit }

// BestBid returns the first bid level, if present.
func (d BookDepth10) BestBid() (BookLevel, bool) {
	if d.BidCount == 0 {
		return BookLevel{}, false
	}
	return d.Bids[0], true
}

// BestAsk returns the first ask level, if present.
func (d BookDepth10) BestAsk() (BookLevel, bool) {
	if d.AskCount == 0 {
		return BookLevel{}, false
	}
	return d.Asks[0], true
}
