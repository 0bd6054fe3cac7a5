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

// Package client defines the adapter contracts between the kernel and
// venue integrations: a data plane of subscription entry points and an
// execution plane of order commands, plus a reconnecting base adapters
// embed.
package client

import (
	"context"

	"code.stratatrade.io/strata/messages"
	"code.stratatrade.io/strata/types"
)

// DataClient is the inbound data plane an adapter implements. Subscription
// entry points are idempotent: re-subscribing to an active stream is a
// no-op.
type DataClient interface {
	Venue() types.Venue
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	SubscribeQuotes(id types.InstrumentID) error
	UnsubscribeQuotes(id types.InstrumentID) error
	SubscribeTrades(id types.InstrumentID) error
	UnsubscribeTrades(id types.InstrumentID) error
	SubscribeBook(id types.InstrumentID, bookType types.BookType, depth int) error
	UnsubscribeBook(id types.InstrumentID) error
	SubscribeBars(barType types.BarType) error
	UnsubscribeBars(barType types.BarType) error
	SubscribeMarkPrices(id types.InstrumentID) error
	UnsubscribeMarkPrices(id types.InstrumentID) error
	SubscribeIndexPrices(id types.InstrumentID) error
	UnsubscribeIndexPrices(id types.InstrumentID) error
	SubscribeFundingRates(id types.InstrumentID) error
	UnsubscribeFundingRates(id types.InstrumentID) error
	SubscribeInstruments() error
	UnsubscribeInstruments() error
	SubscribeInstrumentStatus(id types.InstrumentID) error
	UnsubscribeInstrumentStatus(id types.InstrumentID) error
}

// ExecutionClient is the inbound execution plane an adapter implements.
// Each command resolves through the bus as a response event correlated to
// the command ID.
type ExecutionClient interface {
	Venue() types.Venue
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	SubmitOrder(ctx context.Context, cmd *messages.Request) error
	ModifyOrder(ctx context.Context, cmd *messages.Request) error
	CancelOrder(ctx context.Context, cmd *messages.Request) error
	CancelAllOrders(ctx context.Context, cmd *messages.Request) error
	QueryOrder(ctx context.Context, cmd *messages.Request) error
	QueryAccount(ctx context.Context, cmd *messages.Request) error
}
