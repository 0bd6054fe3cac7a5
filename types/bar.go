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
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"code.stratatrade.io/strata/libs/num"
)

var (
	// ErrInvalidBarSpec signals a bar spec with a non-positive step or
	// unknown aggregation.
	ErrInvalidBarSpec = errors.New("invalid bar specification")
	// ErrBarOHLCInvariant signals a bar violating low <= open,close <= high.
	ErrBarOHLCInvariant = errors.New("bar violates OHLC ordering")
)

// BarSpec describes the aggregation of a bar stream.
type BarSpec struct {
	Step        uint64         `json:"step" msgpack:"step"`
	Aggregation BarAggregation `json:"aggregation" msgpack:"aggregation"`
}

func (s BarSpec) String() string {
	return fmt.Sprintf("%d-%s", s.Step, s.Aggregation)
}

// BarType identifies a bar stream: instrument, spec and source.
type BarType struct {
	InstrumentID InstrumentID `json:"instrument_id" msgpack:"instrument_id"`
	Spec         BarSpec      `json:"spec" msgpack:"spec"`
	Source       BarSource    `json:"source" msgpack:"source"`
}

// NewBarType builds a bar type, validating the spec.
func NewBarType(id InstrumentID, spec BarSpec, source BarSource) (BarType, error) {
	if spec.Step == 0 || spec.Aggregation == 0 {
		return BarType{}, ErrInvalidBarSpec
	}
	return BarType{InstrumentID: id, Spec: spec, Source: source}, nil
}

// String formats the bar type as INSTRUMENT-STEP-AGGREGATION-SOURCE.
func (t BarType) String() string {
	return fmt.Sprintf("%s-%s-%s", t.InstrumentID, t.Spec, t.Source)
}

// ParseBarType parses a bar type from its string form.
func ParseBarType(s string) (BarType, error) {
	parts := strings.Split(s, "-")
	if len(parts) < 4 {
		return BarType{}, errors.Wrap(ErrInvalidBarSpec, s)
	}
	// The instrument ID may itself contain dashes; source and aggregation
	// and step are the last three segments.
	instrument := strings.Join(parts[:len(parts)-3], "-")
	id, err := ParseInstrumentID(instrument)
	if err != nil {
		return BarType{}, err
	}
	step, err := strconv.ParseUint(parts[len(parts)-3], 10, 64)
	if err != nil || step == 0 {
		return BarType{}, errors.Wrap(ErrInvalidBarSpec, s)
	}
	var agg BarAggregation
	switch parts[len(parts)-2] {
	case "TICK":
		agg = BarAggregationTick
	case "SECOND":
		agg = BarAggregationSecond
	case "MINUTE":
		agg = BarAggregationMinute
	case "HOUR":
		agg = BarAggregationHour
	case "DAY":
		agg = BarAggregationDay
	default:
		return BarType{}, errors.Wrap(ErrInvalidBarSpec, s)
	}
	var source BarSource
	switch parts[len(parts)-1] {
	case "EXTERNAL":
		source = BarSourceExternal
	case "INTERNAL":
		source = BarSourceInternal
	default:
		return BarType{}, errors.Wrap(ErrInvalidBarSpec, s)
	}
	return BarType{InstrumentID: id, Spec: BarSpec{Step: step, Aggregation: agg}, Source: source}, nil
}

// Bar is an OHLCV aggregation.
type Bar struct {
	BarType BarType      `json:"bar_type" msgpack:"bar_type"`
	Open    num.Price    `json:"open" msgpack:"open"`
	High    num.Price    `json:"high" msgpack:"high"`
	Low     num.Price    `json:"low" msgpack:"low"`
	Close   num.Price    `json:"close" msgpack:"close"`
	Volume  num.Quantity `json:"volume" msgpack:"volume"`
	TsEvent int64        `json:"ts_event" msgpack:"ts_event"`
	TsInit  int64        `json:"ts_init" msgpack:"ts_init"`
}

// NewBar builds a bar, validating the OHLC ordering and timestamps.
func NewBar(barType BarType, open, high, low, closep num.Price, volume num.Quantity, tsEvent, tsInit int64) (Bar, error) {
	if low.GT(high) || low.GT(open) || low.GT(closep) || open.GT(high) || closep.GT(high) {
		return Bar{}, ErrBarOHLCInvariant
	}
	if err := checkTimestamps(tsEvent, tsInit); err != nil {
		return Bar{}, err
	}
	return Bar{
		BarType: barType,
		Open:    open,
		High:    high,
		Low:     low,
		Close:   closep,
		Volume:  volume,
		TsEvent: tsEvent,
		TsInit:  tsInit,
	}, nil
}

func (b Bar) Instrument() InstrumentID { return b.BarType.InstrumentID }
func (b Bar) EventTime() int64         { return b.TsEvent }
func (b Bar) InitTime() int64          { return b.TsInit }

func (b Bar) String() string {
	return fmt.Sprintf("Bar{%s o=%s h=%s l=%s c=%s v=%s}", b.BarType, b.Open, b.High, b.Low, b.Close, b.Volume)
}
