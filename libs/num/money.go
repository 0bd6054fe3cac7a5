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

package num

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrCurrencyMismatch signals arithmetic between monetary amounts of
// different currencies.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is a signed fixed-point monetary amount in a single currency. The
// raw value is carried at the fixed 10^9 scale, the precision is the
// currency's precision.
type Money struct {
	raw       int64
	precision uint8
	currency  string
}

// NewMoneyFromFloat builds a monetary amount from a float, rounding
// half-to-even at the currency precision.
func NewMoneyFromFloat(value float64, currency string, precision uint8) (Money, error) {
	if err := CheckPrecision(precision); err != nil {
		return Money{}, err
	}
	return Money{raw: rawFromFloat(value, precision), precision: precision, currency: currency}, nil
}

// NewMoneyFromString builds a monetary amount from an exact decimal string.
func NewMoneyFromString(s, currency string, precision uint8) (Money, error) {
	if err := CheckPrecision(precision); err != nil {
		return Money{}, err
	}
	d, err := parseExact(s)
	if err != nil {
		return Money{}, err
	}
	raw, err := rawFromDecimal(d)
	if err != nil {
		return Money{}, err
	}
	return Money{raw: truncateRaw(raw, precision), precision: precision, currency: currency}, nil
}

// NewMoneyFromRaw builds a monetary amount from a raw value at the fixed
// 10^9 scale.
func NewMoneyFromRaw(raw int64, currency string, precision uint8) (Money, error) {
	if err := CheckPrecision(precision); err != nil {
		return Money{}, err
	}
	return Money{raw: raw, precision: precision, currency: currency}, nil
}

// Raw returns the backing raw value at the fixed 10^9 scale.
func (m Money) Raw() int64 { return m.raw }

// Precision returns the currency precision.
func (m Money) Precision() uint8 { return m.precision }

// Currency returns the currency code.
func (m Money) Currency() string { return m.currency }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.raw < 0 }

// Float64 returns the lossy float representation of the amount.
func (m Money) Float64() float64 {
	return float64(m.raw) / float64(FixedScalar)
}

// String renders the amount followed by its currency code.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", rawToString(m.raw, m.precision), m.currency)
}

// Add returns m+o, erroring when the currencies differ.
func (m Money) Add(o Money) (Money, error) {
	if m.currency != o.currency {
		return Money{}, errors.Wrapf(ErrCurrencyMismatch, "%s != %s", m.currency, o.currency)
	}
	return Money{raw: m.raw + o.raw, precision: m.precision, currency: m.currency}, nil
}

// Sub returns m-o, erroring when the currencies differ.
func (m Money) Sub(o Money) (Money, error) {
	if m.currency != o.currency {
		return Money{}, errors.Wrapf(ErrCurrencyMismatch, "%s != %s", m.currency, o.currency)
	}
	return Money{raw: m.raw - o.raw, precision: m.precision, currency: m.currency}, nil
}

// EQ returns whether two amounts are equal in raw value and currency.
func (m Money) EQ(o Money) bool {
	return m.currency == o.currency && m.raw == o.raw
}
