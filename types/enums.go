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

import "github.com/pkg/errors"

// ErrUnknownEnumValue signals a wire value outside an enumeration.
var ErrUnknownEnumValue = errors.New("unknown enum value")

// Side is the side of the book an order or delta applies to. Wire values
// are stable.
type Side uint8

const (
	// SideUnspecified is the zero value, only valid for clear actions
	// applying to both sides.
	SideUnspecified Side = 0
	// SideBuy is the bid side of the book.
	SideBuy Side = 1
	// SideSell is the ask side of the book.
	SideSell Side = 2
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNSPECIFIED"
	}
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	default:
		return SideUnspecified
	}
}

// AggressorSide is the side of the party that removed liquidity in a trade.
type AggressorSide uint8

const (
	// NoAggressor indicates the aggressor is unknown or not applicable.
	NoAggressor AggressorSide = 0
	// AggressorBuyer indicates the buyer removed liquidity.
	AggressorBuyer AggressorSide = 1
	// AggressorSeller indicates the seller removed liquidity.
	AggressorSeller AggressorSide = 2
)

func (a AggressorSide) String() string {
	switch a {
	case AggressorBuyer:
		return "BUYER"
	case AggressorSeller:
		return "SELLER"
	default:
		return "NONE"
	}
}

// BookAction is the mutation a delta applies to a book.
type BookAction uint8

const (
	// BookActionAdd inserts an order or level.
	BookActionAdd BookAction = 1
	// BookActionUpdate changes the size at an existing key; a zero size is
	// normalised to a delete.
	BookActionUpdate BookAction = 2
	// BookActionDelete removes an order or level.
	BookActionDelete BookAction = 3
	// BookActionClear empties one or both sides.
	BookActionClear BookAction = 4
)

func (a BookAction) String() string {
	switch a {
	case BookActionAdd:
		return "ADD"
	case BookActionUpdate:
		return "UPDATE"
	case BookActionDelete:
		return "DELETE"
	case BookActionClear:
		return "CLEAR"
	default:
		return "UNKNOWN"
	}
}

// BookType is the granularity at which a book is maintained.
type BookType uint8

const (
	// BookTypeL1TBBO keeps top of book only.
	BookTypeL1TBBO BookType = 1
	// BookTypeL2MBP keeps price-aggregated depth.
	BookTypeL2MBP BookType = 2
	// BookTypeL3MBO keeps every order.
	BookTypeL3MBO BookType = 3
)

func (t BookType) String() string {
	switch t {
	case BookTypeL1TBBO:
		return "L1_TBBO"
	case BookTypeL2MBP:
		return "L2_MBP"
	case BookTypeL3MBO:
		return "L3_MBO"
	default:
		return "UNKNOWN"
	}
}

// ParseBookType parses a book type from its string form.
func ParseBookType(s string) (BookType, error) {
	switch s {
	case "L1_TBBO":
		return BookTypeL1TBBO, nil
	case "L2_MBP":
		return BookTypeL2MBP, nil
	case "L3_MBO":
		return BookTypeL3MBO, nil
	default:
		return 0, errors.Wrap(ErrUnknownEnumValue, s)
	}
}

// UnmarshalText unmarshals a book type from bytes.
func (t *BookType) UnmarshalText(text []byte) error {
	v, err := ParseBookType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// UnmarshalFlag unmarshals a book type from a command line flag.
func (t *BookType) UnmarshalFlag(s string) error {
	return t.UnmarshalText([]byte(s))
}

// MarshalText marshals a book type into bytes.
func (t BookType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// RecordFlags is the bitset carried by book deltas.
type RecordFlags uint8

const (
	// FlagLast marks the final delta of a packet; operations inside a
	// packet are atomic from an observer's perspective.
	FlagLast RecordFlags = 1 << 7
	// FlagTBBO marks a delta paired with the top-of-book at trade time.
	FlagTBBO RecordFlags = 1 << 6
	// FlagSnapshot marks a delta belonging to a snapshot run.
	FlagSnapshot RecordFlags = 1 << 5
	// FlagRevise marks a revision of a previously published record.
	FlagRevise RecordFlags = 1 << 4
)

// IsLast reports whether the last-of-packet bit is set.
func (f RecordFlags) IsLast() bool { return f&FlagLast != 0 }

// IsSnapshot reports whether the snapshot bit is set.
func (f RecordFlags) IsSnapshot() bool { return f&FlagSnapshot != 0 }

// IsTBBO reports whether the top-of-book bit is set.
func (f RecordFlags) IsTBBO() bool { return f&FlagTBBO != 0 }

// CurrencyKind classifies a currency.
type CurrencyKind uint8

const (
	// CurrencyFiat is a government-issued currency.
	CurrencyFiat CurrencyKind = 1
	// CurrencyCrypto is a crypto asset.
	CurrencyCrypto CurrencyKind = 2
	// CurrencyCommodity is a commodity-backed unit.
	CurrencyCommodity CurrencyKind = 3
)

func (k CurrencyKind) String() string {
	switch k {
	case CurrencyFiat:
		return "FIAT"
	case CurrencyCrypto:
		return "CRYPTO"
	case CurrencyCommodity:
		return "COMMODITY"
	default:
		return "UNKNOWN"
	}
}

// BarAggregation is the dimension a bar aggregates over.
type BarAggregation uint8

const (
	// BarAggregationTick aggregates a fixed number of ticks.
	BarAggregationTick BarAggregation = 1
	// BarAggregationSecond aggregates over seconds.
	BarAggregationSecond BarAggregation = 2
	// BarAggregationMinute aggregates over minutes.
	BarAggregationMinute BarAggregation = 3
	// BarAggregationHour aggregates over hours.
	BarAggregationHour BarAggregation = 4
	// BarAggregationDay aggregates over days.
	BarAggregationDay BarAggregation = 5
)

func (a BarAggregation) String() string {
	switch a {
	case BarAggregationTick:
		return "TICK"
	case BarAggregationSecond:
		return "SECOND"
	case BarAggregationMinute:
		return "MINUTE"
	case BarAggregationHour:
		return "HOUR"
	case BarAggregationDay:
		return "DAY"
	default:
		return "UNKNOWN"
	}
}

// BarSource is where a bar stream is built.
type BarSource uint8

const (
	// BarSourceExternal bars are built by the venue.
	BarSourceExternal BarSource = 1
	// BarSourceInternal bars are built by the kernel from ticks.
	BarSourceInternal BarSource = 2
)

func (s BarSource) String() string {
	switch s {
	case BarSourceExternal:
		return "EXTERNAL"
	case BarSourceInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}
