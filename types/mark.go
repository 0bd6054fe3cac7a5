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

// MarkPrice is a venue mark price update.
type MarkPrice struct {
	InstrumentID InstrumentID `json:"instrument_id" msgpack:"instrument_id"`
	Value        num.Price    `json:"value" msgpack:"value"`
	TsEvent      int64        `json:"ts_event" msgpack:"ts_event"`
	TsInit       int64        `json:"ts_init" msgpack:"ts_init"`
}

// NewMarkPrice builds a mark price update, validating the timestamps.
func NewMarkPrice(id InstrumentID, value num.Price, tsEvent, tsInit int64) (MarkPrice, error) {
	if err := checkTimestamps(tsEvent, tsInit); err != nil {
		return MarkPrice{}, err
	}
	return MarkPrice{InstrumentID: id, Value: value, TsEvent: tsEvent, TsInit: tsInit}, nil
}

func (m MarkPrice) Instrument() InstrumentID { return m.InstrumentID }
func (m MarkPrice) EventTime() int64         { return m.TsEvent }
func (m MarkPrice) InitTime() int64          { return m.TsInit }

func (m MarkPrice) String() string {
	return fmt.Sprintf("MarkPrice{%s %s}", m.InstrumentID, m.Value)
}

// IndexPrice is an index price update.
type IndexPrice struct {
	InstrumentID InstrumentID `json:"instrument_id" msgpack:"instrument_id"`
	Value        num.Price    `json:"value" msgpack:"value"`
	TsEvent      int64        `json:"ts_event" msgpack:"ts_event"`
	TsInit       int64        `json:"ts_init" msgpack:"ts_init"`
}

// NewIndexPrice builds an index price update, validating the timestamps.
func NewIndexPrice(id InstrumentID, value num.Price, tsEvent, tsInit int64) (IndexPrice, error) {
	if err := checkTimestamps(tsEvent, tsInit); err != nil {
		return IndexPrice{}, err
	}
	return IndexPrice{InstrumentID: id, Value: value, TsEvent: tsEvent, TsInit: tsInit}, nil
}

func (i IndexPrice) Instrument() InstrumentID { return i.InstrumentID }
func (i IndexPrice) EventTime() int64         { return i.TsEvent }
func (i IndexPrice) InitTime() int64          { return i.TsInit }

func (i IndexPrice) String() string {
	return fmt.Sprintf("IndexPrice{%s %s}", i.InstrumentID, i.Value)
}

// FundingRate is a perpetual funding rate update. The rate is kept as an
// exact decimal string; venues publish more decimals than the fixed scale
// carries. Sequence is optional, venues which number their funding stream
// set it for replay correctness.
type FundingRate struct {
	InstrumentID  InstrumentID `json:"instrument_id" msgpack:"instrument_id"`
	Rate          string       `json:"rate" msgpack:"rate"`
	NextFundingNs int64        `json:"next_funding_ns,omitempty" msgpack:"next_funding_ns,omitempty"`
	Sequence      uint64       `json:"sequence,omitempty" msgpack:"sequence,omitempty"`
	TsEvent       int64        `json:"ts_event" msgpack:"ts_event"`
	TsInit        int64        `json:"ts_init" msgpack:"ts_init"`
}

// NewFundingRate builds a funding rate update, validating the rate string
// and timestamps.
func NewFundingRate(id InstrumentID, rate string, nextFundingNs int64, tsEvent, tsInit int64) (FundingRate, error) {
	if err := num.ValidateDecimalString(rate); err != nil {
		return FundingRate{}, err
	}
	if err := checkTimestamps(tsEvent, tsInit); err != nil {
		return FundingRate{}, err
	}
	return FundingRate{InstrumentID: id, Rate: rate, NextFundingNs: nextFundingNs, TsEvent: tsEvent, TsInit: tsInit}, nil
}

func (f FundingRate) Instrument() InstrumentID { return f.InstrumentID }
func (f FundingRate) EventTime() int64         { return f.TsEvent }
func (f FundingRate) InitTime() int64          { return f.TsInit }

func (f FundingRate) String() string {
	return fmt.Sprintf("FundingRate{%s %s}", f.InstrumentID, f.Rate)
}

// InstrumentStatus reports a venue trading status change for an instrument.
type InstrumentStatus struct {
	InstrumentID InstrumentID `json:"instrument_id" msgpack:"instrument_id"`
	Status       string       `json:"status" msgpack:"status"`
	Reason       string       `json:"reason,omitempty" msgpack:"reason,omitempty"`
	TsEvent      int64        `json:"ts_event" msgpack:"ts_event"`
	TsInit       int64        `json:"ts_init" msgpack:"ts_init"`
}

func (s InstrumentStatus) Instrument() InstrumentID { return s.InstrumentID }
func (s InstrumentStatus) EventTime() int64         { return s.TsEvent }
func (s InstrumentStatus) InitTime() int64          { return s.TsInit }

// InstrumentClose reports the closing price of an instrument.
type InstrumentClose struct {
	InstrumentID InstrumentID `json:"instrument_id" msgpack:"instrument_id"`
	Price        num.Price    `json:"price" msgpack:"price"`
	TsEvent      int64        `json:"ts_event" msgpack:"ts_event"`
	TsInit       int64        `json:"ts_init" msgpack:"ts_init"`
}

func (c InstrumentClose) Instrument() InstrumentID { return c.InstrumentID }
func (c InstrumentClose) EventTime() int64         { return c.TsEvent }
func (c InstrumentClose) InitTime() int64          { return c.TsInit }
