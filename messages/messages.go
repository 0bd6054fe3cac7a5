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

// Package messages defines the command and response envelopes exchanged
// between strategies and adapters over the message bus. Every command
// carries a command ID; the matching response carries that ID back as its
// correlation ID.
package messages

import (
	"fmt"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"code.stratatrade.io/strata/types"
)

var (
	// ErrNoClientIDOrVenue signals a command naming neither a client ID nor
	// a venue.
	ErrNoClientIDOrVenue = errors.New("command requires a client ID or a venue")
	// ErrUnknownDataKind signals a data kind outside the enumeration.
	ErrUnknownDataKind = errors.New("unknown data kind")
	// ErrBarTypeRequired signals a bar command without a bar type.
	ErrBarTypeRequired = errors.New("bar commands require a bar type")
)

// DataKind enumerates the data streams commands can address.
type DataKind uint8

const (
	KindUnspecified DataKind = iota
	KindInstrument
	KindInstruments
	KindBookDeltas
	KindBookDepth10
	KindBookSnapshots
	KindQuotes
	KindTrades
	KindBars
	KindMarkPrices
	KindIndexPrices
	KindFundingRates
	KindInstrumentStatus
	KindInstrumentClose
	// KindData is an arbitrary user payload identified by a type tag.
	KindData
)

var dataKindNames = [...]string{
	KindUnspecified:      "unspecified",
	KindInstrument:       "instrument",
	KindInstruments:      "instruments",
	KindBookDeltas:       "deltas",
	KindBookDepth10:      "depth10",
	KindBookSnapshots:    "snapshots",
	KindQuotes:           "quotes",
	KindTrades:           "trades",
	KindBars:             "bars",
	KindMarkPrices:       "mark_prices",
	KindIndexPrices:      "index_prices",
	KindFundingRates:     "funding_rates",
	KindInstrumentStatus: "status",
	KindInstrumentClose:  "close",
	KindData:             "data",
}

func (k DataKind) String() string {
	if int(k) < len(dataKindNames) {
		return dataKindNames[k]
	}
	return fmt.Sprintf("DataKind(%d)", uint8(k))
}

// ParseDataKind resolves a data kind from its topic segment.
func ParseDataKind(s string) (DataKind, error) {
	for k, name := range dataKindNames {
		if k > 0 && name == s {
			return DataKind(k), nil
		}
	}
	return KindUnspecified, ErrUnknownDataKind
}

// Command is the envelope surface shared by the command union.
type Command interface {
	ID() uuid.UUID
	InitTime() int64
}

// envelope carries the fields common to every command.
type envelope struct {
	CommandID uuid.UUID
	ClientID  types.ClientID
	Venue     types.Venue
	TsInit    int64
}

func (e envelope) ID() uuid.UUID   { return e.CommandID }
func (e envelope) InitTime() int64 { return e.TsInit }

func newEnvelope(clientID types.ClientID, venue types.Venue, tsInit int64) (envelope, error) {
	if clientID == "" && venue == "" {
		return envelope{}, ErrNoClientIDOrVenue
	}
	return envelope{
		CommandID: uuid.NewV4(),
		ClientID:  clientID,
		Venue:     venue,
		TsInit:    tsInit,
	}, nil
}

// Subscribe asks an adapter to start a data stream.
type Subscribe struct {
	envelope
	Kind         DataKind
	InstrumentID types.InstrumentID
	BarType      *types.BarType
	// DataType tags the payload for KindData subscriptions.
	DataType string
	Params   map[string]string
}

// NewSubscribe builds a subscribe command, validating the target.
func NewSubscribe(kind DataKind, instrument types.InstrumentID, clientID types.ClientID, venue types.Venue, tsInit int64) (*Subscribe, error) {
	env, err := newEnvelope(clientID, venue, tsInit)
	if err != nil {
		return nil, err
	}
	return &Subscribe{envelope: env, Kind: kind, InstrumentID: instrument}, nil
}

// NewSubscribeBars builds a subscribe command for a bar stream.
func NewSubscribeBars(barType types.BarType, clientID types.ClientID, venue types.Venue, tsInit int64) (*Subscribe, error) {
	env, err := newEnvelope(clientID, venue, tsInit)
	if err != nil {
		return nil, err
	}
	return &Subscribe{
		envelope:     env,
		Kind:         KindBars,
		InstrumentID: barType.InstrumentID,
		BarType:      &barType,
	}, nil
}

// Unsubscribe asks an adapter to stop a data stream.
type Unsubscribe struct {
	envelope
	Kind         DataKind
	InstrumentID types.InstrumentID
	BarType      *types.BarType
	DataType     string
}

// NewUnsubscribe builds an unsubscribe command, validating the target.
func NewUnsubscribe(kind DataKind, instrument types.InstrumentID, clientID types.ClientID, venue types.Venue, tsInit int64) (*Unsubscribe, error) {
	env, err := newEnvelope(clientID, venue, tsInit)
	if err != nil {
		return nil, err
	}
	return &Unsubscribe{envelope: env, Kind: kind, InstrumentID: instrument}, nil
}

// Request asks an adapter for a bounded historical range of data.
type Request struct {
	envelope
	Kind         DataKind
	InstrumentID types.InstrumentID
	BarType      *types.BarType
	StartNs      int64
	EndNs        int64
	Limit        int
	Params       map[string]string
}

// NewRequest builds a historical data request, validating the target.
func NewRequest(kind DataKind, instrument types.InstrumentID, clientID types.ClientID, venue types.Venue, startNs, endNs int64, limit int, tsInit int64) (*Request, error) {
	env, err := newEnvelope(clientID, venue, tsInit)
	if err != nil {
		return nil, err
	}
	return &Request{
		envelope:     env,
		Kind:         kind,
		InstrumentID: instrument,
		StartNs:      startNs,
		EndNs:        endNs,
		Limit:        limit,
	}, nil
}

// Response is the event resolving a command. Timeout responses carry no
// payload.
type Response struct {
	CorrelationID uuid.UUID
	Kind          DataKind
	Payload       any
	Timeout       bool
	TsInit        int64
}

// NewResponse builds a response correlated to the originating command.
func NewResponse(correlationID uuid.UUID, kind DataKind, payload any, tsInit int64) Response {
	return Response{
		CorrelationID: correlationID,
		Kind:          kind,
		Payload:       payload,
		TsInit:        tsInit,
	}
}

// NewTimeoutResponse builds the response delivered when a request's
// deadline elapses before the adapter resolves it.
func NewTimeoutResponse(correlationID uuid.UUID, tsInit int64) Response {
	return Response{
		CorrelationID: correlationID,
		Timeout:       true,
		TsInit:        tsInit,
	}
}
