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
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrWideOverflow signals a value too large for the wide 256-bit raw.
var ErrWideOverflow = errors.New("value overflows wide quantity")

// WideQuantity is an unsigned quantity carried on a 256-bit raw at wei
// scale (10^18). It exists for DeFi-scale sizes which do not fit the
// standard 64-bit raw; everything on the book hot path uses Quantity.
type WideQuantity struct {
	raw       uint256.Int
	precision uint8
}

// NewWideQuantityFromString builds a wide quantity from an exact decimal
// string with up to WidePrecision decimal places.
func NewWideQuantityFromString(s string) (WideQuantity, error) {
	d, err := parseExact(s)
	if err != nil {
		return WideQuantity{}, err
	}
	if d.IsNegative() {
		return WideQuantity{}, ErrNegativeQuantity
	}
	precision := decimalPlaces(d)
	if precision > WidePrecision {
		return WideQuantity{}, errors.Wrapf(ErrInvalidPrecision, "precision %d > %d", precision, WidePrecision)
	}
	shifted := d.Shift(int32(WidePrecision))
	if !shifted.IsInteger() {
		return WideQuantity{}, errors.Wrapf(ErrInvalidPrecision, "%s has more than %d decimal places", d.String(), WidePrecision)
	}
	raw, overflow := uint256.FromBig(shifted.BigInt())
	if overflow {
		return WideQuantity{}, ErrWideOverflow
	}
	return WideQuantity{raw: *raw, precision: precision}, nil
}

// NewWideQuantityFromRaw builds a wide quantity from a raw value at wei
// scale.
func NewWideQuantityFromRaw(raw *uint256.Int, precision uint8) (WideQuantity, error) {
	if precision > WidePrecision {
		return WideQuantity{}, errors.Wrapf(ErrInvalidPrecision, "precision %d > %d", precision, WidePrecision)
	}
	return WideQuantity{raw: *raw, precision: precision}, nil
}

// Raw returns a copy of the backing 256-bit raw value at wei scale.
func (w WideQuantity) Raw() *uint256.Int {
	return new(uint256.Int).Set(&w.raw)
}

// Precision returns the display precision.
func (w WideQuantity) Precision() uint8 { return w.precision }

// IsZero reports whether the quantity is exactly zero.
func (w WideQuantity) IsZero() bool { return w.raw.IsZero() }

// String renders the quantity with exactly precision decimal places.
func (w WideQuantity) String() string {
	d := decimal.NewFromBigInt(w.raw.ToBig(), -int32(WidePrecision))
	return d.StringFixed(int32(w.precision))
}

// Add returns w+o with the precision promoted to the larger of the two,
// erroring on 256-bit overflow.
func (w WideQuantity) Add(o WideQuantity) (WideQuantity, error) {
	sum := new(uint256.Int)
	if _, overflow := sum.AddOverflow(&w.raw, &o.raw); overflow {
		return WideQuantity{}, ErrWideOverflow
	}
	return WideQuantity{raw: *sum, precision: MaxOfPrecisions(w.precision, o.precision)}, nil
}

// Sub returns w-o, erroring on underflow.
func (w WideQuantity) Sub(o WideQuantity) (WideQuantity, error) {
	if o.raw.Gt(&w.raw) {
		return WideQuantity{}, ErrQuantityUnderflow
	}
	diff := new(uint256.Int).Sub(&w.raw, &o.raw)
	return WideQuantity{raw: *diff, precision: MaxOfPrecisions(w.precision, o.precision)}, nil
}

// Cmp compares two wide quantities on their raw values.
func (w WideQuantity) Cmp(o WideQuantity) int {
	return w.raw.Cmp(&o.raw)
}

// BigInt returns the raw value as a big.Int at wei scale.
func (w WideQuantity) BigInt() *big.Int {
	return w.raw.ToBig()
}
