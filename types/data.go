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

	"github.com/pkg/errors"

	"code.stratatrade.io/strata/libs/num"
)

var (
	// ErrInvalidTimestamps signals ts_init earlier than ts_event.
	ErrInvalidTimestamps = errors.New("ts_init cannot be earlier than ts_event")
	// ErrZeroSize signals a trade or level built with a zero size.
	ErrZeroSize = errors.New("size must be positive")
	// ErrPrecisionPairMismatch signals a quote whose bid and ask carry
	// different precisions.
	ErrPrecisionPairMismatch = errors.New("bid and ask precisions must match pairwise")
)

// Datum is implemented by every market data primitive.
type Datum interface {
	Instrument() InstrumentID
	EventTime() int64
	InitTime() int64
}

func checkTimestamps(tsEvent, tsInit int64) error {
	if tsInit < tsEvent {
		return errors.Wrapf(ErrInvalidTimestamps, "ts_event %d > ts_init %d", tsEvent, tsInit)
	}
	return nil
}

// Trade is a single trade tick.
type Trade struct {
	InstrumentID InstrumentID  `json:"instrument_id" msgpack:"instrument_id"`
	Price        num.Price     `json:"price" msgpack:"price"`
	Size         num.Quantity  `json:"size" msgpack:"size"`
	Aggressor    AggressorSide `json:"aggressor_side" msgpack:"aggressor_side"`
	TradeID      TradeID       `json:"trade_id" msgpack:"trade_id"`
	TsEvent      int64         `json:"ts_event" msgpack:"ts_event"`
	TsInit       int64         `json:"ts_init" msgpack:"ts_init"`
}

// NewTrade builds a trade tick, validating the size and timestamps.
func NewTrade(id InstrumentID, price num.Price, size num.Quantity, aggressor AggressorSide, tradeID TradeID, tsEvent, tsInit int64) (Trade, error) {
	if !size.IsPositive() {
		return Trade{}, ErrZeroSize
	}
	if err := checkTimestamps(tsEvent, tsInit); err != nil {
		return Trade{}, err
	}
	return Trade{
		InstrumentID: id,
		Price:        price,
		Size:         size,
		Aggressor:    aggressor,
		TradeID:      tradeID,
		TsEvent:      tsEvent,
		TsInit:       tsInit,
	}, nil
}

func (t Trade) Instrument() InstrumentID { return t.InstrumentID }
func (t Trade) EventTime() int64         { return t.TsEvent }
func (t Trade) InitTime() int64          { return t.TsInit }

func (t Trade) String() string {
	return fmt.Sprintf("Trade{%s %s@%s %s id=%s}", t.InstrumentID, t.Size, t.Price, t.Aggressor, t.TradeID)
}

// Quote is a top-of-book quote tick.
type Quote struct {
	InstrumentID InstrumentID `json:"instrument_id" msgpack:"instrument_id"`
	BidPrice     num.Price    `json:"bid_price" msgpack:"bid_price"`
	AskPrice     num.Price    `json:"ask_price" msgpack:"ask_price"`
	BidSize      num.Quantity `json:"bid_size" msgpack:"bid_size"`
	AskSize      num.Quantity `json:"ask_size" msgpack:"ask_size"`
	TsEvent      int64        `json:"ts_event" msgpack:"ts_event"`
	TsInit       int64        `json:"ts_init" msgpack:"ts_init"`
}

// NewQuote builds a quote tick, validating the pairwise precisions and
// timestamps.
func NewQuote(id InstrumentID, bidPrice, askPrice num.Price, bidSize, askSize num.Quantity, tsEvent, tsInit int64) (Quote, error) {
	if bidPrice.Precision() != askPrice.Precision() || bidSize.Precision() != askSize.Precision() {
		return Quote{}, ErrPrecisionPairMismatch
	}
	if err := checkTimestamps(tsEvent, tsInit); err != nil {
		return Quote{}, err
	}
	return Quote{
		InstrumentID: id,
		BidPrice:     bidPrice,
		AskPrice:     askPrice,
		BidSize:      bidSize,
		AskSize:      askSize,
		TsEvent:      tsEvent,
		TsInit:       tsInit,
	}, nil
}

func (q Quote) Instrument() InstrumentID { return q.InstrumentID }
func (q Quote) EventTime() int64         { return q.TsEvent }
func (q Quote) InitTime() int64          { return q.TsInit }

// Mid returns the midpoint of the quote.
func (q Quote) Mid() num.Price {
	sum := q.BidPrice.Add(q.AskPrice)
	half, _ := num.NewPriceFromRaw(sum.Raw()/2, sum.Precision())
	return half
}

func (q Quote) String() string {
	return fmt.Sprintf("Quote{%s %sx%s %s/%s}", q.InstrumentID, q.BidSize, q.AskSize, q.BidPrice, q.AskPrice)
}
