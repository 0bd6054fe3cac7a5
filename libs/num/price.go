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
	"github.com/pkg/errors"
)

const (
	// PriceMax is the maximum representable price value.
	PriceMax float64 = 9_223_372_036.0
	// PriceMin is the minimum representable price value.
	PriceMin float64 = -9_223_372_036.0
)

var (
	// PriceRawMax is the maximum raw value backing a price.
	PriceRawMax = int64(PriceMax) * FixedScalar
	// PriceRawMin is the minimum raw value backing a price.
	PriceRawMin = int64(PriceMin) * FixedScalar

	// ErrPriceOutOfRange signals a price outside the representable bounds,
	// the returned price is clamped to the nearest bound.
	ErrPriceOutOfRange = errors.New("price outside representable bounds")
)

// Price is a signed fixed-point price. The raw value is carried at the fixed
// 10^9 scale regardless of precision; precision governs rounding on
// construction and the number of decimals rendered by String.
type Price struct {
	raw       int64
	precision uint8
}

// NewPriceFromFloat builds a price from a float, rounding half-to-even at
// the given precision. Values outside [PriceMin, PriceMax] clamp to the
// bound and ErrPriceOutOfRange is returned alongside the clamped price.
func NewPriceFromFloat(value float64, precision uint8) (Price, error) {
	if err := CheckPrecision(precision); err != nil {
		return Price{}, err
	}
	if value > PriceMax {
		return Price{raw: PriceRawMax, precision: precision}, ErrPriceOutOfRange
	}
	if value < PriceMin {
		return Price{raw: PriceRawMin, precision: precision}, ErrPriceOutOfRange
	}
	return Price{raw: rawFromFloat(value, precision), precision: precision}, nil
}

// MustPriceFromFloat builds a price from a float, panicking on error. For
// use in tests and static tables only.
func MustPriceFromFloat(value float64, precision uint8) Price {
	p, err := NewPriceFromFloat(value, precision)
	if err != nil {
		panic(err)
	}
	return p
}

// NewPriceFromString builds a price from an exact decimal string. The
// precision is taken from the number of decimal places in the string.
func NewPriceFromString(s string) (Price, error) {
	d, err := parseExact(s)
	if err != nil {
		return Price{}, err
	}
	precision := decimalPlaces(d)
	if err := CheckPrecision(precision); err != nil {
		return Price{}, err
	}
	raw, err := rawFromDecimal(d)
	if err != nil {
		return Price{}, err
	}
	if raw > PriceRawMax || raw < PriceRawMin {
		return Price{}, ErrPriceOutOfRange
	}
	return Price{raw: raw, precision: precision}, nil
}

// NewPriceFromRaw builds a price from a raw value at the fixed 10^9 scale.
func NewPriceFromRaw(raw int64, precision uint8) (Price, error) {
	if err := CheckPrecision(precision); err != nil {
		return Price{}, err
	}
	if raw > PriceRawMax || raw < PriceRawMin {
		return Price{}, ErrPriceOutOfRange
	}
	return Price{raw: raw, precision: precision}, nil
}

// MaxPrice returns the maximum representable price at the given precision.
func MaxPrice(precision uint8) Price {
	return Price{raw: PriceRawMax, precision: precision}
}

// MinPrice returns the minimum representable price at the given precision.
func MinPrice(precision uint8) Price {
	return Price{raw: PriceRawMin, precision: precision}
}

// Raw returns the backing raw value at the fixed 10^9 scale.
func (p Price) Raw() int64 { return p.raw }

// Precision returns the display precision.
func (p Price) Precision() uint8 { return p.precision }

// IsZero reports whether the price is exactly zero.
func (p Price) IsZero() bool { return p.raw == 0 }

// Float64 returns the lossy float representation of the price.
func (p Price) Float64() float64 {
	return float64(p.raw) / float64(FixedScalar)
}

// String renders the price with exactly precision decimal places.
func (p Price) String() string {
	return rawToString(p.raw, p.precision)
}

// Add returns p+o with the precision promoted to the larger of the two.
func (p Price) Add(o Price) Price {
	return Price{raw: p.raw + o.raw, precision: MaxOfPrecisions(p.precision, o.precision)}
}

// Sub returns p-o with the precision promoted to the larger of the two.
func (p Price) Sub(o Price) Price {
	return Price{raw: p.raw - o.raw, precision: MaxOfPrecisions(p.precision, o.precision)}
}

// AddStrict returns p+o, erroring when the precisions differ.
func (p Price) AddStrict(o Price) (Price, error) {
	if p.precision != o.precision {
		return Price{}, errors.Wrapf(ErrPrecisionMismatch, "%d != %d", p.precision, o.precision)
	}
	return p.Add(o), nil
}

// SubStrict returns p-o, erroring when the precisions differ.
func (p Price) SubStrict(o Price) (Price, error) {
	if p.precision != o.precision {
		return Price{}, errors.Wrapf(ErrPrecisionMismatch, "%d != %d", p.precision, o.precision)
	}
	return p.Sub(o), nil
}

// Mul returns the decimal-exact product of p and o, rounded half-to-even at
// the promoted precision.
func (p Price) Mul(o Price) Price {
	precision := MaxOfPrecisions(p.precision, o.precision)
	d := rawToDecimal(p.raw).Mul(rawToDecimal(o.raw)).RoundBank(int32(precision))
	raw, _ := rawFromDecimal(d)
	return Price{raw: raw, precision: precision}
}

// Div returns the decimal-exact quotient of p and o, rounded half-to-even
// at the promoted precision. Division by zero is an error.
func (p Price) Div(o Price) (Price, error) {
	if o.raw == 0 {
		return Price{}, ErrDivisionByZero
	}
	precision := MaxOfPrecisions(p.precision, o.precision)
	d := rawToDecimal(p.raw).Div(rawToDecimal(o.raw)).RoundBank(int32(precision))
	raw, err := rawFromDecimal(d)
	if err != nil {
		return Price{}, err
	}
	return Price{raw: raw, precision: precision}, nil
}

// EQ returns whether p == o on the raw values.
func (p Price) EQ(o Price) bool { return p.raw == o.raw }

// NE returns whether p != o on the raw values.
func (p Price) NE(o Price) bool { return p.raw != o.raw }

// GT returns whether p > o on the raw values.
func (p Price) GT(o Price) bool { return p.raw > o.raw }

// GTE returns whether p >= o on the raw values.
func (p Price) GTE(o Price) bool { return p.raw >= o.raw }

// LT returns whether p < o on the raw values.
func (p Price) LT(o Price) bool { return p.raw < o.raw }

// LTE returns whether p <= o on the raw values.
func (p Price) LTE(o Price) bool { return p.raw <= o.raw }
