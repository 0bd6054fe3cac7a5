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

// Package book reconstructs and maintains per-instrument order books from
// delta streams. Books are keyed by (instrument, book type) and support L1
// top-of-book, L2 price-aggregated and L3 per-order granularity.
package book

import (
	"code.stratatrade.io/strata/libs/num"
	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/types"
)

// Top is the best bid and ask of a book at a point in time.
type Top struct {
	HasBid bool
	HasAsk bool
	Bid    types.BookLevel
	Ask    types.BookLevel
}

// Crossed reports whether the top is crossed (best bid at or above best
// ask).
func (t Top) Crossed() bool {
	return t.HasBid && t.HasAsk && t.Bid.Price.GTE(t.Ask.Price)
}

// TopChange reports the best bid/ask before and after an apply. Changed is
// false when the apply did not move the top of the book.
type TopChange struct {
	Changed bool
	Before  Top
	After   Top
}

// OrderBook is the reconstruction state for one instrument at one
// granularity. It is owned by a single runtime and is not safe for
// concurrent use.
type OrderBook struct {
	log *logging.Logger
	cfg Config

	instrument types.InstrumentID
	bookType   types.BookType

	bids *bookSide
	asks *bookSide

	// shadow sides during a snapshot run; reads observe the prior state
	// until the run terminates.
	snapBids *bookSide
	snapAsks *bookSide

	lastSequence uint64
	seqSeen      bool

	pricePrecision uint8
	sizePrecision  uint8
	precisionSet   bool

	tsLast int64
	count  uint64
}

// New creates an empty book for the given instrument and granularity.
func New(log *logging.Logger, cfg Config, instrument types.InstrumentID, bookType types.BookType) *OrderBook {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())
	return &OrderBook{
		log:        log,
		cfg:        cfg,
		instrument: instrument,
		bookType:   bookType,
		bids:       newBookSide(types.SideBuy),
		asks:       newBookSide(types.SideSell),
	}
}

// Instrument returns the instrument the book tracks.
func (b *OrderBook) Instrument() types.InstrumentID { return b.instrument }

// Type returns the granularity of the book.
func (b *OrderBook) Type() types.BookType { return b.bookType }

// Sequence returns the last applied sequence number.
func (b *OrderBook) Sequence() uint64 { return b.lastSequence }

// UpdateCount returns the number of deltas applied since creation.
func (b *OrderBook) UpdateCount() uint64 { return b.count }

// InSnapshot reports whether a snapshot run is in flight.
func (b *OrderBook) InSnapshot() bool { return b.snapBids != nil }

// BestBidAsk returns the current top of book. During a snapshot run this
// observes the pre-snapshot state.
func (b *OrderBook) BestBidAsk() Top {
	return topOf(b.bids, b.asks)
}

func topOf(bids, asks *bookSide) Top {
	var t Top
	if lvl := bids.best(); lvl != nil {
		t.HasBid = true
		t.Bid = types.BookLevel{Price: lvl.price, Size: lvl.Volume(), Count: uint32(lvl.OrderCount())}
	}
	if lvl := asks.best(); lvl != nil {
		t.HasAsk = true
		t.Ask = types.BookLevel{Price: lvl.price, Size: lvl.Volume(), Count: uint32(lvl.OrderCount())}
	}
	return t
}

// Apply applies a single delta. The returned TopChange reports the best
// bid/ask only when the apply moved them. Rejected deltas leave the book
// untouched and return a *Warning.
func (b *OrderBook) Apply(delta types.BookDelta) (TopChange, error) {
	return b.ApplyBatch([]types.BookDelta{delta})
}

// ApplyBatch applies a packet of deltas atomically: either every delta in
// the packet is applied, or none is. A packet is normally terminated by the
// delta carrying the last-of-packet flag.
func (b *OrderBook) ApplyBatch(deltas []types.BookDelta) (TopChange, error) {
	if len(deltas) == 0 {
		return TopChange{}, nil
	}
	if err := b.validatePacket(deltas); err != nil {
		return TopChange{}, err
	}

	if deltas[0].Flags.IsSnapshot() || b.InSnapshot() {
		return b.applySnapshotRun(deltas)
	}

	before := b.BestBidAsk()

	// stage the packet on copy-on-write clones so a rejected packet never
	// mutates observable state
	bids, asks := b.bids.clone(), b.asks.clone()
	for _, d := range deltas {
		if err := b.applyOne(bids, asks, d, false); err != nil {
			return TopChange{}, err
		}
	}

	after := topOf(bids, asks)
	if after.Crossed() && !bool(b.cfg.AllowCrossed) {
		return TopChange{}, warnf(b.instrument, deltas[len(deltas)-1].Sequence, ErrCrossedBook)
	}

	b.commit(bids, asks, deltas)
	return change(before, after), nil
}

// Clear empties both sides of the book and abandons any snapshot run.
func (b *OrderBook) Clear() {
	b.bids = newBookSide(types.SideBuy)
	b.asks = newBookSide(types.SideSell)
	b.snapBids = nil
	b.snapAsks = nil
}

// Levels returns the number of resting price levels per side.
func (b *OrderBook) Levels() (bidLevels, askLevels int) {
	return b.bids.levelCount(), b.asks.levelCount()
}

// SnapshotInto returns up to depth levels per side, best first.
func (b *OrderBook) SnapshotInto(depth int) (bids, asks []types.BookLevel) {
	conv := func(lvls []*PriceLevel) []types.BookLevel {
		out := make([]types.BookLevel, 0, len(lvls))
		for _, lvl := range lvls {
			out = append(out, types.BookLevel{Price: lvl.price, Size: lvl.Volume(), Count: uint32(lvl.OrderCount())})
		}
		return out
	}
	return conv(b.bids.topLevels(depth)), conv(b.asks.topLevels(depth))
}

// Depth10 derives a ten-level depth update from the current state.
func (b *OrderBook) Depth10(tsEvent, tsInit int64) types.BookDepth10 {
	bids, asks := b.SnapshotInto(types.DepthLevels)
	d := types.BookDepth10{
		InstrumentID: b.instrument,
		BidCount:     uint32(len(bids)),
		AskCount:     uint32(len(asks)),
		Sequence:     b.lastSequence,
		TsEvent:      tsEvent,
		TsInit:       tsInit,
	}
	copy(d.Bids[:], bids)
	copy(d.Asks[:], asks)
	return d
}

// Quote derives a top-of-book quote from the current state; ok is false
// when either side is empty.
func (b *OrderBook) Quote(tsEvent, tsInit int64) (types.Quote, bool) {
	top := b.BestBidAsk()
	if !top.HasBid || !top.HasAsk {
		return types.Quote{}, false
	}
	return types.Quote{
		InstrumentID: b.instrument,
		BidPrice:     top.Bid.Price,
		AskPrice:     top.Ask.Price,
		BidSize:      top.Bid.Size,
		AskSize:      top.Ask.Size,
		TsEvent:      tsEvent,
		TsInit:       tsInit,
	}, true
}

// CheckIntegrity verifies the at-rest invariants: monotone level ordering,
// no crossed top unless tolerated, and no order ID resting on both sides.
func (b *OrderBook) CheckIntegrity() error {
	if top := b.BestBidAsk(); top.Crossed() && !bool(b.cfg.AllowCrossed) {
		return ErrCrossedBook
	}
	if b.bookType == types.BookTypeL3MBO {
		dup := false
		b.bids.levels.Ascend(func(lvl *PriceLevel) bool {
			for _, o := range lvl.orders {
				if b.asks.hasOrder(o.id) {
					dup = true
					return false
				}
			}
			return true
		})
		if dup {
			return ErrDuplicateOrderID
		}
	}
	return nil
}

func (b *OrderBook) validatePacket(deltas []types.BookDelta) error {
	last := deltas[len(deltas)-1].Sequence
	prev := uint64(0)
	for i, d := range deltas {
		if !d.InstrumentID.IsZero() && d.InstrumentID != b.instrument {
			return warnf(b.instrument, d.Sequence, ErrWrongInstrument)
		}
		switch d.Action {
		case types.BookActionAdd, types.BookActionUpdate, types.BookActionDelete:
			if d.Order.Side != types.SideBuy && d.Order.Side != types.SideSell {
				return warnf(b.instrument, d.Sequence, ErrSideRequired)
			}
		case types.BookActionClear:
		default:
			return warnf(b.instrument, d.Sequence, ErrUnknownAction)
		}
		if err := b.checkPrecision(d); err != nil {
			return warnf(b.instrument, d.Sequence, err)
		}
		if bool(b.cfg.TrackSequence) && d.Sequence > 0 {
			if i > 0 && d.Sequence < prev {
				return warnf(b.instrument, last, ErrNonMonotonePacket)
			}
			prev = d.Sequence
		}
	}
	// an out-of-order packet is dropped, the engine does not reorder
	if bool(b.cfg.TrackSequence) && b.seqSeen && deltas[0].Sequence > 0 && deltas[0].Sequence <= b.lastSequence {
		return warnf(b.instrument, deltas[0].Sequence, ErrSequenceRegression)
	}
	return nil
}

func (b *OrderBook) checkPrecision(d types.BookDelta) error {
	if d.Action == types.BookActionClear {
		return nil
	}
	if !b.precisionSet {
		return nil
	}
	if d.Order.Price.Precision() != b.pricePrecision {
		return num.ErrPrecisionMismatch
	}
	// zero sizes normalise to deletes and commonly arrive with no
	// fractional digits
	if !d.Order.Size.IsZero() && d.Order.Size.Precision() != b.sizePrecision {
		return num.ErrPrecisionMismatch
	}
	return nil
}

// applyOne mutates a staged pair of sides with a single delta. snapshotting
// relaxes the missing-key checks per the reconciliation rules.
func (b *OrderBook) applyOne(bids, asks *bookSide, d types.BookDelta, snapshotting bool) error {
	pick := func(side types.Side) *bookSide {
		if side == types.SideBuy {
			return bids
		}
		return asks
	}

	switch d.Action {
	case types.BookActionClear:
		switch d.Order.Side {
		case types.SideBuy:
			bids.clear()
		case types.SideSell:
			asks.clear()
		default:
			bids.clear()
			asks.clear()
		}
		return nil

	case types.BookActionAdd:
		if !d.Order.Size.IsPositive() {
			return warnf(b.instrument, d.Sequence, ErrZeroSizeAdd)
		}
		return b.addOrder(pick(d.Order.Side), d)

	case types.BookActionUpdate:
		// a zero size is normalised to a delete, uniformly across venues
		if d.Order.Size.IsZero() {
			return b.deleteOrder(pick(d.Order.Side), d, snapshotting)
		}
		return b.updateOrder(pick(d.Order.Side), d, snapshotting)

	case types.BookActionDelete:
		return b.deleteOrder(pick(d.Order.Side), d, snapshotting)
	}
	return warnf(b.instrument, d.Sequence, ErrUnknownAction)
}

func (b *OrderBook) addOrder(side *bookSide, d types.BookDelta) error {
	switch b.bookType {
	case types.BookTypeL1TBBO:
		// top-of-book only: an add restates the whole side
		side.clear()
		side.ensureLevel(d.Order.Price).addOrder(d.Order.OrderID, d.Order.Size)
	case types.BookTypeL2MBP:
		lvl := side.ensureLevel(d.Order.Price)
		if i := lvl.findOrder(d.Order.OrderID); i != -1 {
			// aggregate onto the existing entry at this price
			lvl.orders[i].size = lvl.orders[i].size.Add(d.Order.Size)
		} else {
			lvl.addOrder(d.Order.OrderID, d.Order.Size)
		}
	case types.BookTypeL3MBO:
		if side.hasOrder(d.Order.OrderID) {
			return warnf(b.instrument, d.Sequence, ErrDuplicateOrderID)
		}
		side.ensureLevel(d.Order.Price).addOrder(d.Order.OrderID, d.Order.Size)
	}
	return nil
}

func (b *OrderBook) updateOrder(side *bookSide, d types.BookDelta, snapshotting bool) error {
	if b.bookType == types.BookTypeL3MBO {
		resting := side.findOrderLevel(d.Order.OrderID)
		if resting == nil {
			if snapshotting {
				return b.addOrder(side, d)
			}
			return warnf(b.instrument, d.Sequence, ErrOrderNotFound)
		}
		if resting.price.EQ(d.Order.Price) {
			lvl := side.mutableLevel(resting.price)
			if bool(b.cfg.UpdateIsReorder) {
				lvl.reorderOrder(d.Order.OrderID, d.Order.Size)
			} else {
				lvl.updateOrder(d.Order.OrderID, d.Order.Size)
			}
			return nil
		}
		// price moved: leave the queue at the old level, join the back of
		// the new one
		old := side.mutableLevel(resting.price)
		old.removeOrder(d.Order.OrderID)
		side.removeLevelIfEmpty(resting.price)
		side.ensureLevel(d.Order.Price).addOrder(d.Order.OrderID, d.Order.Size)
		return nil
	}

	if b.bookType == types.BookTypeL1TBBO {
		side.clear()
		side.ensureLevel(d.Order.Price).addOrder(d.Order.OrderID, d.Order.Size)
		return nil
	}

	lvl := side.mutableLevel(d.Order.Price)
	if lvl == nil || !lvl.updateOrder(d.Order.OrderID, d.Order.Size) {
		// an update for an unknown key behaves as an add; venues restate
		// levels this way after gaps
		return b.addOrder(side, d)
	}
	return nil
}

func (b *OrderBook) deleteOrder(side *bookSide, d types.BookDelta, snapshotting bool) error {
	lvl := side.mutableLevel(d.Order.Price)
	if b.bookType == types.BookTypeL3MBO && lvl == nil {
		if found := side.findOrderLevel(d.Order.OrderID); found != nil {
			lvl = side.mutableLevel(found.price)
		}
	}
	if lvl == nil || !lvl.removeOrder(d.Order.OrderID) {
		if snapshotting {
			// deletes of absent keys are tolerated while a snapshot is in
			// effect
			return nil
		}
		return warnf(b.instrument, d.Sequence, ErrOrderNotFound)
	}
	side.removeLevelIfEmpty(lvl.price)
	return nil
}

func (b *OrderBook) applySnapshotRun(deltas []types.BookDelta) (TopChange, error) {
	if !b.InSnapshot() {
		// a snapshot run replaces the whole book when it terminates
		b.snapBids = newBookSide(types.SideBuy)
		b.snapAsks = newBookSide(types.SideSell)
	}

	for _, d := range deltas {
		if err := b.applyOne(b.snapBids, b.snapAsks, d, true); err != nil {
			b.snapBids = nil
			b.snapAsks = nil
			return TopChange{}, err
		}
	}

	last := deltas[len(deltas)-1]
	if !last.Flags.IsLast() {
		// mid-run: reads keep observing the prior state
		return TopChange{}, nil
	}

	before := b.BestBidAsk()
	bids, asks := b.snapBids, b.snapAsks
	b.snapBids = nil
	b.snapAsks = nil

	after := topOf(bids, asks)
	if after.Crossed() && !bool(b.cfg.AllowCrossed) {
		return TopChange{}, warnf(b.instrument, last.Sequence, ErrCrossedBook)
	}

	b.commit(bids, asks, deltas)
	return change(before, after), nil
}

func (b *OrderBook) commit(bids, asks *bookSide, deltas []types.BookDelta) {
	bids.cow = false
	bids.owned = nil
	asks.cow = false
	asks.owned = nil
	b.bids = bids
	b.asks = asks

	for _, d := range deltas {
		if bool(b.cfg.TrackSequence) && d.Sequence > 0 {
			b.lastSequence = d.Sequence
			b.seqSeen = true
		}
		if d.TsEvent > b.tsLast {
			b.tsLast = d.TsEvent
		}
		if !b.precisionSet && d.Action != types.BookActionClear {
			b.pricePrecision = d.Order.Price.Precision()
			b.sizePrecision = d.Order.Size.Precision()
			b.precisionSet = true
		}
		b.count++
	}
}

func change(before, after Top) TopChange {
	changed := before.HasBid != after.HasBid || before.HasAsk != after.HasAsk
	if !changed && before.HasBid {
		changed = !before.Bid.Price.EQ(after.Bid.Price) || !before.Bid.Size.EQ(after.Bid.Size)
	}
	if !changed && before.HasAsk {
		changed = !before.Ask.Price.EQ(after.Ask.Price) || !before.Ask.Size.EQ(after.Ask.Size)
	}
	return TopChange{Changed: changed, Before: before, After: after}
}
