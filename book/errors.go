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

package book

import (
	"fmt"

	"github.com/pkg/errors"

	"code.stratatrade.io/strata/types"
)

var (
	// ErrDuplicateOrderID signals an L3 add for an order ID already on the
	// book.
	ErrDuplicateOrderID = errors.New("duplicate order ID on add")
	// ErrOrderNotFound signals a delete or update for an absent key.
	ErrOrderNotFound = errors.New("order not found on the book")
	// ErrZeroSizeAdd signals an add carrying a zero size.
	ErrZeroSizeAdd = errors.New("add delta carries zero size")
	// ErrSequenceRegression signals a packet whose sequence went backwards.
	ErrSequenceRegression = errors.New("delta sequence regression")
	// ErrNonMonotonePacket signals out-of-order sequences inside a packet.
	ErrNonMonotonePacket = errors.New("non-monotone sequence within packet")
	// ErrCrossedBook signals best bid >= best ask after a non-snapshot
	// apply.
	ErrCrossedBook = errors.New("book crossed after apply")
	// ErrUnknownAction signals an action outside the enumeration.
	ErrUnknownAction = errors.New("unknown book action")
	// ErrSideRequired signals an add/update/delete without a side.
	ErrSideRequired = errors.New("delta requires an explicit side")
	// ErrWrongInstrument signals a delta for another instrument.
	ErrWrongInstrument = errors.New("delta instrument does not match book")
)

// Warning is the structured reconciliation warning emitted when a delta or
// packet is rejected. The book keeps its prior state; the warning is keyed
// by (instrument, sequence) so downstream consumers can track gaps.
type Warning struct {
	InstrumentID types.InstrumentID
	Sequence     uint64
	Err          error
}

func (w *Warning) Error() string {
	return fmt.Sprintf("book warning %s seq=%d: %s", w.InstrumentID, w.Sequence, w.Err)
}

// Unwrap exposes the underlying cause.
func (w *Warning) Unwrap() error { return w.Err }

func warnf(id types.InstrumentID, seq uint64, err error) *Warning {
	return &Warning{InstrumentID: id, Sequence: seq, Err: err}
}
