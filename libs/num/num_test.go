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

package num_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.stratatrade.io/strata/libs/num"
)

func TestPriceStringRoundTrip(t *testing.T) {
	cases := []string{"1987.55", "0.000000001", "-42.10", "0.00", "9000000000.000000000"}
	for _, s := range cases {
		p, err := num.NewPriceFromString(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, p.String(), s)
	}
}

func TestPriceRawScale(t *testing.T) {
	p, err := num.NewPriceFromString("1.5")
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000_000), p.Raw())
	assert.Equal(t, uint8(1), p.Precision())
}

func TestPriceFloatRoundsHalfToEven(t *testing.T) {
	// 2.5 cents rounds down to 2, 3.5 rounds up to 4
	a := num.MustPriceFromFloat(0.025, 2)
	b := num.MustPriceFromFloat(0.035, 2)
	assert.Equal(t, "0.02", a.String())
	assert.Equal(t, "0.04", b.String())
}

func TestPricePrecisionTooHigh(t *testing.T) {
	_, err := num.NewPriceFromFloat(1, 10)
	assert.ErrorIs(t, err, num.ErrInvalidPrecision)

	_, err = num.NewPriceFromString("0.0000000001")
	assert.ErrorIs(t, err, num.ErrInvalidPrecision)
}

func TestPriceOutOfRangeClamps(t *testing.T) {
	p, err := num.NewPriceFromFloat(1e12, 0)
	assert.ErrorIs(t, err, num.ErrPriceOutOfRange)
	assert.Equal(t, num.MaxPrice(0).Raw(), p.Raw())
}

func TestPriceStrictArithmetic(t *testing.T) {
	a := num.MustPriceFromFloat(10.50, 2)
	b := num.MustPriceFromFloat(0.25, 2)

	sum, err := a.AddStrict(b)
	require.NoError(t, err)
	assert.Equal(t, "10.75", sum.String())

	c := num.MustPriceFromFloat(1, 3)
	_, err = a.AddStrict(c)
	assert.ErrorIs(t, err, num.ErrPrecisionMismatch)
}

func TestPricePrecisionPromotion(t *testing.T) {
	a := num.MustPriceFromFloat(10.5, 1)
	b := num.MustPriceFromFloat(0.255, 3)

	sum := a.Add(b)
	assert.Equal(t, uint8(3), sum.Precision())
	assert.Equal(t, "10.755", sum.String())

	diff := b.Sub(a)
	assert.Equal(t, uint8(3), diff.Precision())
	assert.Equal(t, "-10.245", diff.String())
}

func TestPriceOrderingOnRaw(t *testing.T) {
	// same numeric value at different precisions compares equal
	a := num.MustPriceFromFloat(1.5, 1)
	b := num.MustPriceFromFloat(1.50, 2)
	assert.True(t, a.EQ(b))
	assert.False(t, a.GT(b))
	assert.True(t, num.MustPriceFromFloat(2, 0).GT(a))
}

func TestPriceDivByZero(t *testing.T) {
	a := num.MustPriceFromFloat(1, 2)
	_, err := a.Div(num.MustPriceFromFloat(0, 2))
	assert.ErrorIs(t, err, num.ErrDivisionByZero)
}

func TestQuantityUnsigned(t *testing.T) {
	q, err := num.NewQuantityFromString("0.025")
	require.NoError(t, err)
	assert.Equal(t, "0.025", q.String())
	assert.True(t, q.IsPositive())

	_, err = num.NewQuantityFromString("-1")
	require.Error(t, err)
}

func TestMoneyCarriesCurrency(t *testing.T) {
	m, err := num.NewMoneyFromFloat(10.5, "USD", 2)
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency())
	assert.Equal(t, "10.50 USD", m.String())
}

func TestWideQuantityStringRoundTrip(t *testing.T) {
	cases := []string{
		"0.000000000000000001",
		"1000000000000.000000000000000005",
		"42.5",
		"0",
	}
	for _, s := range cases {
		w, err := num.NewWideQuantityFromString(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, w.String(), s)
	}
}

func TestWideQuantityRawScale(t *testing.T) {
	// one token at wei scale
	w, err := num.NewWideQuantityFromString("1")
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1_000_000_000_000_000_000), w.Raw())
	assert.Equal(t, uint8(0), w.Precision())
	assert.False(t, w.IsZero())
}

func TestWideQuantityRejectsInvalidInput(t *testing.T) {
	_, err := num.NewWideQuantityFromString("-1")
	assert.ErrorIs(t, err, num.ErrNegativeQuantity)

	_, err = num.NewWideQuantityFromString("0.0000000000000000001")
	assert.ErrorIs(t, err, num.ErrInvalidPrecision)

	_, err = num.NewWideQuantityFromRaw(uint256.NewInt(1), 19)
	assert.ErrorIs(t, err, num.ErrInvalidPrecision)

	// one above the 256-bit raw capacity
	_, err = num.NewWideQuantityFromString("200000000000000000000000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, num.ErrWideOverflow)
}

func TestWideQuantityArithmeticBoundaries(t *testing.T) {
	max, err := num.NewWideQuantityFromRaw(new(uint256.Int).SetAllOne(), 18)
	require.NoError(t, err)
	one, err := num.NewWideQuantityFromRaw(uint256.NewInt(1), 0)
	require.NoError(t, err)

	_, err = max.Add(one)
	assert.ErrorIs(t, err, num.ErrWideOverflow)

	_, err = one.Sub(max)
	assert.ErrorIs(t, err, num.ErrQuantityUnderflow)

	sum, err := one.Add(one)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(2), sum.Raw())
	// precision promotes to the larger operand
	diff, err := max.Sub(one)
	require.NoError(t, err)
	assert.Equal(t, uint8(18), diff.Precision())
	assert.Equal(t, 1, max.Cmp(diff))
}

func TestValidateDecimalString(t *testing.T) {
	assert.NoError(t, num.ValidateDecimalString("0.0001"))
	assert.Error(t, num.ValidateDecimalString("not-a-number"))
}
