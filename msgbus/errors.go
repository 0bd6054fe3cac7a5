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

package msgbus

import "github.com/pkg/errors"

var (
	// ErrInvalidTopic signals a topic containing wildcards, whitespace or
	// control characters.
	ErrInvalidTopic = errors.New("invalid topic")
	// ErrInvalidPattern signals a pattern containing whitespace or control
	// characters.
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrEndpointExists signals a register for an endpoint already bound.
	ErrEndpointExists = errors.New("endpoint already registered")
	// ErrEndpointNotRegistered signals a send to an unbound endpoint.
	ErrEndpointNotRegistered = errors.New("endpoint not registered")
	// ErrSubscriptionNotFound signals an unsubscribe for an unknown token.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrDuplicateCorrelationID signals a request reusing a pending
	// correlation ID.
	ErrDuplicateCorrelationID = errors.New("duplicate correlation ID")
	// ErrUnknownCorrelationID signals a response with no pending request.
	ErrUnknownCorrelationID = errors.New("unknown correlation ID")
	// ErrNilHandler signals a registration without a handler.
	ErrNilHandler = errors.New("handler is nil")
)
