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

// Package broker streams kernel bus traffic to an external consumer over
// a socket, msgpack-encoded one frame per message.
package broker

import (
	"github.com/vmihailenco/msgpack/v5"

	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/msgbus"
)

// Envelope is the frame streamed for every forwarded message, tagged with
// the pattern that matched it.
type Envelope struct {
	Pattern string `msgpack:"pattern"`
	Payload any    `msgpack:"payload"`
}

// Sender is the outbound transport. *SocketSender implements it.
type Sender interface {
	Send(buf []byte) error
	Close() error
}

// Broker subscribes to the configured bus patterns and forwards every
// matching message to the sender. Encoding failures are logged and the
// message is skipped; the stream is best-effort.
type Broker struct {
	log    *logging.Logger
	cfg    Config
	sender Sender
	subs   []*msgbus.Subscription
	bus    *msgbus.MessageBus

	forwarded uint64
	failed    uint64
}

// New creates a broker and binds it to the bus. A nil sender disables
// forwarding regardless of the enabled flag.
func New(log *logging.Logger, cfg Config, bus *msgbus.MessageBus, sender Sender) (*Broker, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	b := &Broker{
		log:    log,
		cfg:    cfg,
		sender: sender,
		bus:    bus,
	}
	if !bool(cfg.Enabled) || sender == nil {
		return b, nil
	}
	for _, pattern := range cfg.Patterns {
		pattern := pattern
		sub, err := bus.Subscribe(pattern, func(msg any) { b.forward(pattern, msg) }, brokerPriority)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.subs = append(b.subs, sub)
	}
	return b, nil
}

// brokerPriority trails every in-process subscriber so streaming never
// delays the kernel hot path handlers.
const brokerPriority = -100

// Stats returns the forwarded and failed frame counts.
func (b *Broker) Stats() (forwarded, failed uint64) {
	return b.forwarded, b.failed
}

// Close unsubscribes from the bus and closes the sender.
func (b *Broker) Close() {
	for _, sub := range b.subs {
		_ = b.bus.Unsubscribe(sub)
	}
	b.subs = nil
	if b.sender != nil {
		_ = b.sender.Close()
	}
}

func (b *Broker) forward(pattern string, msg any) {
	buf, err := msgpack.Marshal(Envelope{Pattern: pattern, Payload: msg})
	if err != nil {
		b.failed++
		b.log.Error("failed to encode frame",
			logging.String("pattern", pattern),
			logging.Error(err),
		)
		return
	}
	if err := b.sender.Send(buf); err != nil {
		b.failed++
		b.log.Error("failed to stream frame",
			logging.String("pattern", pattern),
			logging.Error(err),
		)
		return
	}
	b.forwarded++
}
