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

// Package types holds the identifiers, enumerations and market data
// primitives shared across the kernel.
package types

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyIdentifier signals an identifier built from an empty string.
	ErrEmptyIdentifier = errors.New("identifier cannot be empty")
	// ErrMalformedInstrumentID signals an instrument ID which does not
	// follow the SYMBOL.VENUE form.
	ErrMalformedInstrumentID = errors.New("instrument ID must be of the form SYMBOL.VENUE")
)

// Venue is a trading venue identifier.
type Venue string

// Symbol is a venue-native instrument symbol.
type Symbol string

// TradeID is a venue-assigned trade identifier.
type TradeID string

// ClientOrderID is a client-assigned order identifier.
type ClientOrderID string

// VenueOrderID is a venue-assigned order identifier.
type VenueOrderID string

// PositionID identifies a position in the arena.
type PositionID string

// AccountID identifies an account at a venue.
type AccountID string

// TraderID identifies a trader instance.
type TraderID string

// StrategyID identifies a strategy instance.
type StrategyID string

// ClientID identifies a data or execution client.
type ClientID string

func (v Venue) String() string         { return string(v) }
func (s Symbol) String() string        { return string(s) }
func (t TradeID) String() string       { return string(t) }
func (c ClientOrderID) String() string { return string(c) }
func (v VenueOrderID) String() string  { return string(v) }
func (p PositionID) String() string    { return string(p) }
func (a AccountID) String() string     { return string(a) }
func (t TraderID) String() string      { return string(t) }
func (s StrategyID) String() string    { return string(s) }
func (c ClientID) String() string      { return string(c) }

// InstrumentID identifies an instrument as a symbol at a venue. It parses
// and formats losslessly as {symbol}.{venue}; the venue is everything after
// the last dot so symbols may themselves contain dots.
type InstrumentID struct {
	Symbol Symbol `json:"symbol" msgpack:"symbol"`
	Venue  Venue  `json:"venue" msgpack:"venue"`
}

// NewInstrumentID builds an instrument ID from its parts.
func NewInstrumentID(symbol Symbol, venue Venue) (InstrumentID, error) {
	if symbol == "" || venue == "" {
		return InstrumentID{}, ErrEmptyIdentifier
	}
	return InstrumentID{Symbol: symbol, Venue: venue}, nil
}

// ParseInstrumentID parses an instrument ID from its SYMBOL.VENUE form.
func ParseInstrumentID(s string) (InstrumentID, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return InstrumentID{}, errors.Wrap(ErrMalformedInstrumentID, s)
	}
	return InstrumentID{Symbol: Symbol(s[:i]), Venue: Venue(s[i+1:])}, nil
}

// MustInstrumentID parses an instrument ID, panicking on error. For use in
// tests and static tables only.
func MustInstrumentID(s string) InstrumentID {
	id, err := ParseInstrumentID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String formats the instrument ID as SYMBOL.VENUE.
func (id InstrumentID) String() string {
	return string(id.Symbol) + "." + string(id.Venue)
}

// IsZero reports whether the instrument ID is unset.
func (id InstrumentID) IsZero() bool {
	return id.Symbol == "" && id.Venue == ""
}
