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
	"code.stratatrade.io/strata/libs/num"
)

// levelOrder is a single resting order at a price level.
type levelOrder struct {
	id   uint64
	size num.Quantity
}

// PriceLevel aggregates the orders resting at one price. Orders keep
// insertion order, which is the venue queue order for L3 books.
type PriceLevel struct {
	price  num.Price
	orders []levelOrder
}

// NewPriceLevel creates an empty level at the given price.
func NewPriceLevel(price num.Price) *PriceLevel {
	return &PriceLevel{price: price}
}

// Price returns the level price.
func (l *PriceLevel) Price() num.Price { return l.price }

// Volume returns the aggregated size at the level.
func (l *PriceLevel) Volume() num.Quantity {
	total := num.ZeroQuantity(0)
	for _, o := range l.orders {
		total = total.Add(o.size)
	}
	return total
}

// OrderCount returns the number of orders resting at the level.
func (l *PriceLevel) OrderCount() int { return len(l.orders) }

func (l *PriceLevel) findOrder(id uint64) int {
	for i, o := range l.orders {
		if o.id == id {
			return i
		}
	}
	return -1
}

// addOrder appends an order at the back of the queue. Returns false when
// the order ID is already resting at the level.
func (l *PriceLevel) addOrder(id uint64, size num.Quantity) bool {
	if l.findOrder(id) != -1 {
		return false
	}
	l.orders = append(l.orders, levelOrder{id: id, size: size})
	return true
}

// updateOrder changes the size of a resting order in place, keeping queue
// position. Returns false when the order is not at the level.
func (l *PriceLevel) updateOrder(id uint64, size num.Quantity) bool {
	i := l.findOrder(id)
	if i == -1 {
		return false
	}
	l.orders[i].size = size
	return true
}

// reorderOrder moves a resting order to the back of the queue with a new
// size. Returns false when the order is not at the level.
func (l *PriceLevel) reorderOrder(id uint64, size num.Quantity) bool {
	i := l.findOrder(id)
	if i == -1 {
		return false
	}
	l.orders = append(l.orders[:i], l.orders[i+1:]...)
	l.orders = append(l.orders, levelOrder{id: id, size: size})
	return true
}

// removeOrder deletes a resting order. Returns false when the order is not
// at the level.
func (l *PriceLevel) removeOrder(id uint64) bool {
	i := l.findOrder(id)
	if i == -1 {
		return false
	}
	l.orders = append(l.orders[:i], l.orders[i+1:]...)
	return true
}

// isEmpty reports whether the level has no resting orders.
func (l *PriceLevel) isEmpty() bool { return len(l.orders) == 0 }

// clone returns a deep copy of the level, used when staging a packet.
func (l *PriceLevel) clone() *PriceLevel {
	orders := make([]levelOrder, len(l.orders))
	copy(orders, l.orders)
	return &PriceLevel{price: l.price, orders: orders}
}
