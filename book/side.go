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
	"github.com/google/btree"

	"code.stratatrade.io/strata/libs/num"
	"code.stratatrade.io/strata/types"
)

const btreeDegree = 32

func levelLess(a, b *PriceLevel) bool {
	return a.price.LT(b.price)
}

// bookSide holds one side of a book as a btree of price levels ordered by
// price. Bids iterate descending, asks ascending, so the best level is
// always visited first.
//
// Sides support copy-on-write cloning: a cloned side shares tree nodes and
// levels with its parent until a level is mutated, at which point the level
// is copied into the clone. Packets are staged on a clone and swapped in
// only when the whole packet validates.
type bookSide struct {
	side   types.Side
	levels *btree.BTreeG[*PriceLevel]
	cow    bool
	owned  map[int64]struct{}
}

func newBookSide(side types.Side) *bookSide {
	return &bookSide{
		side:   side,
		levels: btree.NewG(btreeDegree, levelLess),
	}
}

// clone returns a copy-on-write snapshot of the side.
func (s *bookSide) clone() *bookSide {
	return &bookSide{
		side:   s.side,
		levels: s.levels.Clone(),
		cow:    true,
		owned:  map[int64]struct{}{},
	}
}

func (s *bookSide) probe(price num.Price) *PriceLevel {
	lvl, ok := s.levels.Get(&PriceLevel{price: price})
	if !ok {
		return nil
	}
	return lvl
}

// mutableLevel returns the level at the given price, copying it first when
// the side is a copy-on-write clone which does not own it yet. Returns nil
// when the level does not exist.
func (s *bookSide) mutableLevel(price num.Price) *PriceLevel {
	lvl := s.probe(price)
	if lvl == nil {
		return nil
	}
	if s.cow {
		if _, owned := s.owned[price.Raw()]; !owned {
			lvl = lvl.clone()
			s.levels.ReplaceOrInsert(lvl)
			s.owned[price.Raw()] = struct{}{}
		}
	}
	return lvl
}

// ensureLevel returns a mutable level at the given price, creating it when
// absent.
func (s *bookSide) ensureLevel(price num.Price) *PriceLevel {
	if lvl := s.mutableLevel(price); lvl != nil {
		return lvl
	}
	lvl := NewPriceLevel(price)
	s.levels.ReplaceOrInsert(lvl)
	if s.cow {
		s.owned[price.Raw()] = struct{}{}
	}
	return lvl
}

func (s *bookSide) removeLevelIfEmpty(price num.Price) {
	if lvl := s.probe(price); lvl != nil && lvl.isEmpty() {
		s.levels.Delete(lvl)
		if s.cow {
			delete(s.owned, price.Raw())
		}
	}
}

// best returns the top level of the side, nil when empty.
func (s *bookSide) best() *PriceLevel {
	var top *PriceLevel
	var ok bool
	if s.side == types.SideBuy {
		top, ok = s.levels.Max()
	} else {
		top, ok = s.levels.Min()
	}
	if !ok {
		return nil
	}
	return top
}

// walk visits levels best-first until the iterator returns false.
func (s *bookSide) walk(fn func(*PriceLevel) bool) {
	if s.side == types.SideBuy {
		s.levels.Descend(func(lvl *PriceLevel) bool { return fn(lvl) })
		return
	}
	s.levels.Ascend(func(lvl *PriceLevel) bool { return fn(lvl) })
}

// topLevels returns up to n levels best-first.
func (s *bookSide) topLevels(n int) []*PriceLevel {
	out := make([]*PriceLevel, 0, n)
	s.walk(func(lvl *PriceLevel) bool {
		out = append(out, lvl)
		return len(out) < n
	})
	return out
}

// hasOrder reports whether the given order ID rests anywhere on the side.
func (s *bookSide) hasOrder(id uint64) bool {
	found := false
	s.levels.Ascend(func(lvl *PriceLevel) bool {
		if lvl.findOrder(id) != -1 {
			found = true
			return false
		}
		return true
	})
	return found
}

// findOrderLevel returns the level holding the given order ID, nil when
// the order is not on the side.
func (s *bookSide) findOrderLevel(id uint64) *PriceLevel {
	var found *PriceLevel
	s.levels.Ascend(func(lvl *PriceLevel) bool {
		if lvl.findOrder(id) != -1 {
			found = lvl
			return false
		}
		return true
	})
	return found
}

// levelCount returns the number of levels on the side.
func (s *bookSide) levelCount() int { return s.levels.Len() }

// orderCount returns the number of orders resting on the side.
func (s *bookSide) orderCount() int {
	var n int
	s.levels.Ascend(func(lvl *PriceLevel) bool {
		n += len(lvl.orders)
		return true
	})
	return n
}

// clear drops every level from the side.
func (s *bookSide) clear() {
	s.levels = btree.NewG(btreeDegree, levelLess)
	if s.cow {
		s.owned = map[int64]struct{}{}
	}
}
