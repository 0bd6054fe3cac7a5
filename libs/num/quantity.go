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

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// QuantityMax is the maximum representable quantity value.
	QuantityMax float64 = 18_446_744_073.0
)

var (
	// QuantityRawMax is the maximum raw value backing a quantity.
	QuantityRawMax = uint64(QuantityMax) * uint64(FixedScalar)

	// ErrNegativeQuantity signals an attempt to build a quantity from a
	// negative value.
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
	// ErrQuantityOutOfRange signals a quantity outside the representable
	// bounds, the returned quantity is clamped to the maximum.
	ErrQuantityOutOfRange = errors.New("quantity outside representable bounds")
	// ErrQuantityUnderflow signals a subtraction which would go below zero.
	ErrQuantityUnderflow = errors.New("quantity subtraction underflow")
)

// Quantity is an unsigned fixed-point size. The raw value is carried at the
// fixed 10^9 scale regardless of precision, like Price.
type Quantity struct {
	raw       uint64
	precision uint8
}

// NewQuantityFromFloat builds a quantity from a float, rounding half-to-even
// at the given precision. Negative values error, values above QuantityMax
// clamp and return ErrQuantityOutOfRange alongside the clamped quantity.
func NewQuantityFromFloat(value float64, precision uint8) (Quantity, error) {
	if err := CheckPrecision(precision); err != nil {
		return Quantity{}, err
	}
	if value < 0 {
		return Quantity{}, ErrNegativeQuantity
	}
	if value > QuantityMax {
		return Quantity{raw: QuantityRawMax, precision: precision}, ErrQuantityOutOfRange
	}
	d := decimal.NewFromFloat(value).RoundBank(int32(precision)).Shift(int32(FixedPrecision))
	return Quantity{raw: d.BigInt().Uint64(), precision: precision}, nil
}

// MustQuantityFromFloat builds a quantity from a float, panicking on error.
// For use in tests and static tables only.
func MustQuantityFromFloat(value float64, precision uint8) Quantity {
	q, err := NewQuantityFromFloat(value, precision)
	if err != nil {
		panic(err)
	}
	return q
}

// NewQuantityFromString builds a quantity from an exact decimal string, the
// precision taken from the number of decimal places in the string.
func NewQuantityFromString(s string) (Quantity, error) {
	d, err := parseExact(s)
	if err != nil {
		return Quantity{}, err
	}
	if d.IsNegative() {
		return Quantity{}, ErrNegativeQuantity
	}
	precision := decimalPlaces(d)
	if err := CheckPrecision(precision); err != nil {
		return Quantity{}, err
	}
	shifted := d.Shift(int32(FixedPrecision))
	if !shifted.IsInteger() {
		return Quantity{}, errors.Wrapf(ErrInvalidPrecision, "%s has more than %d decimal places", d.String(), FixedPrecision)
	}
	raw := shifted.BigInt()
	if !raw.IsUint64() || raw.Uint64() > QuantityRawMax {
		return Quantity{}, ErrQuantityOutOfRange
	}
	return Quantity{raw: raw.Uint64(), precision: precision}, nil
}

// NewQuantityFromRaw builds a quantity from a raw value at the fixed 10^9
// scale.
func NewQuantityFromRaw(raw uint64, precision uint8) (Quantity, error) {
	if err := CheckPrecision(precision); err != nil {
		return Quantity{}, err
	}
	if raw > QuantityRawMax {
		return Quantity{}, ErrQuantityOutOfRange
	}
	return Quantity{raw: raw, precision: precision}, nil
}

// ZeroQuantity returns the zero quantity at the given precision.
func ZeroQuantity(precision uint8) Quantity {
	return Quantity{precision: precision}
}

// Raw returns the backing raw value at the fixed 10^9 scale.
func (q Quantity) Raw() uint64 { return q.raw }

// Precision returns the display precision.
func (q Quantity) Precision() uint8 { return q.precision }

// IsZero reports whether the quantity is exactly zero.
func (q Quantity) IsZero() bool { return q.raw == 0 }

// IsPositive reports whether the quantity is strictly positive.
func (q Quantity) IsPositive() bool { return q.raw > 0 }

// Float64 returns the lossy float representation of the quantity.
func (q Quantity) Float64() float64 {
	return float64(q.raw) / float64(FixedScalar)
}

// String renders the quantity with exactly precision decimal places.
func (q Quantity) String() string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(q.raw), -int32(FixedPrecision))
	return d.StringFixed(int32(q.precision))
}

// Add returns q+o with the precision promoted to the larger of the two.
func (q Quantity) Add(o Quantity) Quantity {
	return Quantity{raw: q.raw + o.raw, precision: MaxOfPrecisions(q.precision, o.precision)}
}

// Sub returns q-o with the precision promoted to the larger of the two,
// erroring on underflow.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if o.raw > q.raw {
		return Quantity{}, ErrQuantityUnderflow
	}
	return Quantity{raw: q.raw - o.raw, precision: MaxOfPrecisions(q.precision, o.precision)}, nil
}

// AddStrict returns q+o, erroring when the precisions differ.
func (q Quantity) AddStrict(o Quantity) (Quantity, error) {
	if q.precision != o.precision {
		return Quantity{}, errors.Wrapf(ErrPrecisionMismatch, "%d != %d", q.precision, o.precision)
	}
	return q.Add(o), nil
}

// EQ returns whether q == o on the raw values.
func (q Quantity) EQ(o Quantity) bool { return q.raw == o.raw }

// GT returns whether q > o on the raw values.
func (q Quantity) GT(o Quantity) bool { return q.raw > o.raw }

// LT returns whether q < o on the raw values.
func (q Quantity) LT(o Quantity) bool { return q.raw < o.raw }
