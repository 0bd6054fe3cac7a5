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

// Package num implements the fixed-point numeric types used across the
// kernel. Prices, quantities and monetary amounts are carried as an integer
// raw value at a fixed scale of 10^9, with a per-value display precision.
// Equality and ordering on the raw value are exact, and the raw integers can
// be stored in columnar batches without float noise.
package num

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// FixedPrecision is the maximum number of decimal places representable
	// by the standard 64-bit raw values.
	FixedPrecision uint8 = 9

	// FixedScalar is the scale of all 64-bit raw values (10^FixedPrecision).
	FixedScalar int64 = 1_000_000_000

	// WidePrecision is the maximum number of decimal places representable
	// by the wide 256-bit quantity raw values (wei scale).
	WidePrecision uint8 = 18
)

var (
	// ErrInvalidPrecision signals a precision outside the supported range.
	ErrInvalidPrecision = errors.New("precision exceeds maximum fixed-point precision")
	// ErrPrecisionMismatch signals strict arithmetic between values of
	// different precisions.
	ErrPrecisionMismatch = errors.New("fixed-point precision mismatch")
	// ErrDivisionByZero signals a division by a zero fixed-point value.
	ErrDivisionByZero = errors.New("fixed-point division by zero")
	// ErrMalformedDecimal signals a string which could not be parsed as an
	// exact decimal.
	ErrMalformedDecimal = errors.New("malformed decimal string")
)

// pow10 holds the powers of ten up to the fixed scale.
var pow10 = [10]int64{1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000, 1_000_000_000}

// CheckPrecision returns an error if the given precision cannot be carried
// by a 64-bit raw value.
func CheckPrecision(precision uint8) error {
	if precision > FixedPrecision {
		return errors.Wrapf(ErrInvalidPrecision, "precision %d > %d", precision, FixedPrecision)
	}
	return nil
}

// rawFromFloat converts a float into a raw value at the fixed scale, rounded
// half-to-even at the given precision.
func rawFromFloat(value float64, precision uint8) int64 {
	d := decimal.NewFromFloat(value).RoundBank(int32(precision))
	return d.Shift(int32(FixedPrecision)).IntPart()
}

// rawFromDecimal converts an exact decimal into a raw value at the fixed
// scale. The decimal must not carry more than FixedPrecision decimals.
func rawFromDecimal(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(int32(FixedPrecision))
	if !shifted.IsInteger() {
		return 0, errors.Wrapf(ErrInvalidPrecision, "%s has more than %d decimal places", d.String(), FixedPrecision)
	}
	return shifted.IntPart(), nil
}

// rawToDecimal converts a raw value at the fixed scale back into a decimal.
func rawToDecimal(raw int64) decimal.Decimal {
	return decimal.New(raw, -int32(FixedPrecision))
}

// rawToString renders a raw value with exactly precision decimal places.
func rawToString(raw int64, precision uint8) string {
	return rawToDecimal(raw).StringFixed(int32(precision))
}

// truncateRaw drops decimals beyond the given precision from a raw value,
// rounding half-to-even.
func truncateRaw(raw int64, precision uint8) int64 {
	d := rawToDecimal(raw).RoundBank(int32(precision))
	return d.Shift(int32(FixedPrecision)).IntPart()
}

// MaxOfPrecisions returns the larger of two precisions.
func MaxOfPrecisions(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

// parseExact parses a decimal string, failing on anything inexact.
func parseExact(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrap(ErrMalformedDecimal, err.Error())
	}
	return d, nil
}

// ValidateDecimalString returns an error unless s parses as an exact
// decimal.
func ValidateDecimalString(s string) error {
	_, err := parseExact(s)
	return err
}

// decimalPlaces counts the decimals carried by the given decimal value.
func decimalPlaces(d decimal.Decimal) uint8 {
	if exp := d.Exponent(); exp < 0 {
		return uint8(-exp)
	}
	return 0
}
