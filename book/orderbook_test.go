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

package book_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.stratatrade.io/strata/book"
	"code.stratatrade.io/strata/libs/num"
	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/types"
)

var testInstrument = types.MustInstrumentID("ETHUSDT-PERP.BINANCE")

func price(t *testing.T, s string) num.Price {
	t.Helper()
	p, err := num.NewPriceFromString(s)
	require.NoError(t, err)
	return p
}

func qty(t *testing.T, s string) num.Quantity {
	t.Helper()
	q, err := num.NewQuantityFromString(s)
	require.NoError(t, err)
	return q
}

type deltaOpt func(*types.BookDelta)

func withFlags(f types.RecordFlags) deltaOpt {
	return func(d *types.BookDelta) { d.Flags = f }
}

func withOrderID(id uint64) deltaOpt {
	return func(d *types.BookDelta) { d.Order.OrderID = id }
}

func delta(t *testing.T, action types.BookAction, side types.Side, px, sz string, seq uint64, opts ...deltaOpt) types.BookDelta {
	t.Helper()
	d := types.BookDelta{
		InstrumentID: testInstrument,
		Action:       action,
		Sequence:     seq,
		TsEvent:      int64(seq) * 1_000,
		TsInit:       int64(seq)*1_000 + 50,
	}
	if action != types.BookActionClear {
		d.Order = types.BookOrder{
			Side:    side,
			Price:   price(t, px),
			Size:    qty(t, sz),
			OrderID: seq,
		}
	} else {
		d.Order.Side = side
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func newBook(t *testing.T, bt types.BookType) *book.OrderBook {
	t.Helper()
	return book.New(logging.NewTestLogger(), book.NewDefaultConfig(), testInstrument, bt)
}

func TestL2Reconstruction(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	deltas := []types.BookDelta{
		delta(t, types.BookActionAdd, types.SideBuy, "100.50", "2.0", 1),
		delta(t, types.BookActionAdd, types.SideBuy, "100.25", "5.0", 2),
		delta(t, types.BookActionAdd, types.SideSell, "100.75", "1.5", 3),
		delta(t, types.BookActionAdd, types.SideSell, "101.00", "4.0", 4),
	}
	for _, d := range deltas {
		_, err := b.Apply(d)
		require.NoError(t, err)
	}

	top := b.BestBidAsk()
	require.True(t, top.HasBid)
	require.True(t, top.HasAsk)
	assert.True(t, top.Bid.Price.EQ(price(t, "100.50")))
	assert.True(t, top.Ask.Price.EQ(price(t, "100.75")))
	assert.True(t, top.Bid.Size.EQ(qty(t, "2.0")))

	bids, asks := b.SnapshotInto(10)
	require.Len(t, bids, 2)
	require.Len(t, asks, 2)
	// best first on both sides
	assert.True(t, bids[0].Price.GT(bids[1].Price))
	assert.True(t, asks[0].Price.LT(asks[1].Price))

	require.NoError(t, b.CheckIntegrity())
	assert.EqualValues(t, 4, b.Sequence())
}

func TestL2AggregatesSamePrice(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.50", "2.0", 1, withOrderID(0)))
	require.NoError(t, err)
	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.50", "3.0", 2, withOrderID(0)))
	require.NoError(t, err)

	top := b.BestBidAsk()
	assert.True(t, top.Bid.Size.EQ(qty(t, "5.0")))
}

func TestZeroSizeUpdateDeletes(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideSell, "101.00", "4.0", 1))
	require.NoError(t, err)
	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideSell, "101.50", "1.0", 2))
	require.NoError(t, err)

	d := delta(t, types.BookActionUpdate, types.SideSell, "101.00", "0", 3, withOrderID(1))
	ch, err := b.Apply(d)
	require.NoError(t, err)
	assert.True(t, ch.Changed)

	top := b.BestBidAsk()
	require.True(t, top.HasAsk)
	assert.True(t, top.Ask.Price.EQ(price(t, "101.50")))
}

func TestZeroSizeAddRejected(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.00", "0", 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, book.ErrZeroSizeAdd))

	var warn *book.Warning
	require.True(t, errors.As(err, &warn))
	assert.Equal(t, testInstrument, warn.InstrumentID)
	assert.EqualValues(t, 1, warn.Sequence)

	// rejection leaves the book untouched
	top := b.BestBidAsk()
	assert.False(t, top.HasBid)
	assert.EqualValues(t, 0, b.Sequence())
}

func TestPacketAtomicity(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.00", "1.0", 1))
	require.NoError(t, err)

	// the middle delta is invalid, so the whole packet must be discarded
	packet := []types.BookDelta{
		delta(t, types.BookActionAdd, types.SideBuy, "99.00", "1.0", 2),
		delta(t, types.BookActionAdd, types.SideBuy, "98.00", "0", 3),
		delta(t, types.BookActionAdd, types.SideBuy, "97.00", "1.0", 4),
	}
	_, err = b.ApplyBatch(packet)
	require.Error(t, err)

	bids, _ := b.SnapshotInto(10)
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Price.EQ(price(t, "100.00")))
	assert.EqualValues(t, 1, b.Sequence())
}

func TestSequenceRegressionDropsPacket(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.00", "1.0", 10))
	require.NoError(t, err)

	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "99.00", "1.0", 5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, book.ErrSequenceRegression))
	assert.EqualValues(t, 10, b.Sequence())

	bids, _ := b.SnapshotInto(10)
	assert.Len(t, bids, 1)
}

func TestNonMonotonePacketRejected(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	packet := []types.BookDelta{
		delta(t, types.BookActionAdd, types.SideBuy, "100.00", "1.0", 3),
		delta(t, types.BookActionAdd, types.SideBuy, "99.00", "1.0", 2),
	}
	_, err := b.ApplyBatch(packet)
	require.Error(t, err)
	assert.True(t, errors.Is(err, book.ErrNonMonotonePacket))
}

func TestCrossedBookRejected(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideSell, "100.00", "1.0", 1))
	require.NoError(t, err)

	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.50", "1.0", 2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, book.ErrCrossedBook))

	top := b.BestBidAsk()
	assert.False(t, top.HasBid)
}

func TestCrossedBookTolerated(t *testing.T) {
	cfg := book.NewDefaultConfig()
	cfg.AllowCrossed = true
	b := book.New(logging.NewTestLogger(), cfg, testInstrument, types.BookTypeL2MBP)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideSell, "100.00", "1.0", 1))
	require.NoError(t, err)
	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.50", "1.0", 2))
	require.NoError(t, err)

	assert.True(t, b.BestBidAsk().Crossed())
}

func TestSnapshotRunSwapsAtomically(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "90.00", "1.0", 1))
	require.NoError(t, err)

	// snapshot run starts: reads must keep observing the prior state
	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.00", "2.0", 2,
		withFlags(types.FlagSnapshot)))
	require.NoError(t, err)
	require.True(t, b.InSnapshot())

	top := b.BestBidAsk()
	assert.True(t, top.Bid.Price.EQ(price(t, "90.00")))

	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideSell, "101.00", "3.0", 3))
	require.NoError(t, err)
	assert.False(t, b.BestBidAsk().HasAsk)

	// terminal delta swaps the snapshot in and replaces the prior state
	ch, err := b.Apply(delta(t, types.BookActionAdd, types.SideSell, "102.00", "1.0", 4,
		withFlags(types.FlagLast)))
	require.NoError(t, err)
	assert.False(t, b.InSnapshot())
	assert.True(t, ch.Changed)

	top = b.BestBidAsk()
	assert.True(t, top.Bid.Price.EQ(price(t, "100.00")))
	assert.True(t, top.Ask.Price.EQ(price(t, "101.00")))

	bids, asks := b.SnapshotInto(10)
	assert.Len(t, bids, 1)
	assert.Len(t, asks, 2)
}

func TestSnapshotToleratesAbsentDeletes(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	_, err := b.Apply(delta(t, types.BookActionDelete, types.SideBuy, "100.00", "1.0", 1,
		withFlags(types.FlagSnapshot)))
	require.NoError(t, err)

	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "99.00", "1.0", 2,
		withFlags(types.FlagLast)))
	require.NoError(t, err)

	bids, _ := b.SnapshotInto(10)
	require.Len(t, bids, 1)
}

func TestDeleteAbsentOutsideSnapshotWarns(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	_, err := b.Apply(delta(t, types.BookActionDelete, types.SideBuy, "100.00", "1.0", 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, book.ErrOrderNotFound))
}

func TestL3DuplicateAddRejected(t *testing.T) {
	b := newBook(t, types.BookTypeL3MBO)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.00", "1.0", 1, withOrderID(42)))
	require.NoError(t, err)

	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "99.00", "1.0", 2, withOrderID(42)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, book.ErrDuplicateOrderID))
}

func TestL3UpdateKeepsQueuePosition(t *testing.T) {
	b := newBook(t, types.BookTypeL3MBO)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.00", "1.0", 1, withOrderID(1)))
	require.NoError(t, err)
	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.00", "2.0", 2, withOrderID(2)))
	require.NoError(t, err)

	// amending size in place must not lose queue position
	_, err = b.Apply(delta(t, types.BookActionUpdate, types.SideBuy, "100.00", "0.5", 3, withOrderID(1)))
	require.NoError(t, err)

	top := b.BestBidAsk()
	assert.True(t, top.Bid.Size.EQ(qty(t, "2.5")))
	assert.EqualValues(t, 2, top.Bid.Count)
}

func TestL3UpdateMovesPriceToBackOfQueue(t *testing.T) {
	b := newBook(t, types.BookTypeL3MBO)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.00", "1.0", 1, withOrderID(1)))
	require.NoError(t, err)
	_, err = b.Apply(delta(t, types.BookActionUpdate, types.SideBuy, "99.00", "1.0", 2, withOrderID(1)))
	require.NoError(t, err)

	top := b.BestBidAsk()
	assert.True(t, top.Bid.Price.EQ(price(t, "99.00")))
	bids, _ := b.SnapshotInto(10)
	require.Len(t, bids, 1)
}

func TestL1RestatesSide(t *testing.T) {
	b := newBook(t, types.BookTypeL1TBBO)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.00", "1.0", 1))
	require.NoError(t, err)
	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.25", "2.0", 2))
	require.NoError(t, err)

	bids, _ := b.SnapshotInto(10)
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Price.EQ(price(t, "100.25")))
}

func TestClearAction(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.00", "1.0", 1))
	require.NoError(t, err)
	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideSell, "101.00", "1.0", 2))
	require.NoError(t, err)

	// a side-scoped clear drops only that side
	_, err = b.Apply(delta(t, types.BookActionClear, types.SideBuy, "0", "0", 3))
	require.NoError(t, err)

	top := b.BestBidAsk()
	assert.False(t, top.HasBid)
	assert.True(t, top.HasAsk)
}

func TestPrecisionMismatchRejected(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	_, err := b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.00", "1.0", 1))
	require.NoError(t, err)

	_, err = b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "99.125", "1.0", 2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, num.ErrPrecisionMismatch))
}

func TestTopChangeOnlyWhenTopMoves(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	ch, err := b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "100.00", "1.0", 1))
	require.NoError(t, err)
	assert.True(t, ch.Changed)

	// a deep add does not move the top
	ch, err = b.Apply(delta(t, types.BookActionAdd, types.SideBuy, "99.00", "1.0", 2))
	require.NoError(t, err)
	assert.False(t, ch.Changed)
}

func TestDepth10Derivation(t *testing.T) {
	b := newBook(t, types.BookTypeL2MBP)

	for i := 0; i < 12; i++ {
		px := num.MustPriceFromFloat(100.0-float64(i), 2)
		d := types.BookDelta{
			InstrumentID: testInstrument,
			Action:       types.BookActionAdd,
			Order:        types.BookOrder{Side: types.SideBuy, Price: px, Size: qty(t, "1.0")},
			Sequence:     uint64(i + 1),
		}
		_, err := b.Apply(d)
		require.NoError(t, err)
	}

	depth := b.Depth10(12_000, 12_050)
	assert.EqualValues(t, 10, depth.BidCount)
	best, ok := depth.BestBid()
	require.True(t, ok)
	assert.InDelta(t, 100.0, best.Price.Float64(), 1e-9)
}
