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

package client

import (
	"context"
	"sort"
	"sync"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"

	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/types"
)

var (
	// ErrNotConnected signals an operation requiring an active connection.
	ErrNotConnected = errors.New("client not connected")
	// ErrAlreadyConnected signals a connect on an active client.
	ErrAlreadyConnected = errors.New("client already connected")
)

// Base carries the connection state and subscription bookkeeping venue
// adapters embed. Dialing retries with exponential backoff; subscription
// entry points use Track/Untrack to stay idempotent.
type Base struct {
	log   *logging.Logger
	cfg   Config
	venue types.Venue

	mu        sync.Mutex
	connected bool
	subs      map[string]struct{}
}

// NewBase creates the embedded adapter base.
func NewBase(log *logging.Logger, cfg Config, venue types.Venue) *Base {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())
	return &Base{
		log:   log,
		cfg:   cfg,
		venue: venue,
		subs:  map[string]struct{}{},
	}
}

// Venue returns the venue the adapter integrates.
func (b *Base) Venue() types.Venue { return b.venue }

// IsConnected reports whether the adapter holds an active connection.
func (b *Base) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// Connect dials with exponential backoff until success, the attempt budget
// is spent, or the context is cancelled.
func (b *Base) Connect(ctx context.Context, dial func(context.Context) error) error {
	b.mu.Lock()
	if b.connected {
		b.mu.Unlock()
		return ErrAlreadyConnected
	}
	b.mu.Unlock()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = b.cfg.RetryBase.Duration
	policy.MaxInterval = b.cfg.RetryMax.Duration
	// retry until cancelled unless an attempt budget is configured
	policy.MaxElapsedTime = 0

	var wrapped backoff.BackOff = backoff.WithContext(policy, ctx)
	if b.cfg.MaxAttempts > 0 {
		wrapped = backoff.WithMaxRetries(wrapped, uint64(b.cfg.MaxAttempts))
	}

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		if err := dial(ctx); err != nil {
			b.log.Warn("connect attempt failed",
				logging.String("venue", string(b.venue)),
				logging.Int("attempt", attempt),
				logging.Error(err),
			)
			return err
		}
		return nil
	}, wrapped)
	if err != nil {
		// a spent retry budget or cancelled context is a deadline elapsing
		return types.NewKernelError(types.KindTimeout, errors.Wrapf(err, "connecting to %s", b.venue))
	}

	b.mu.Lock()
	b.connected = true
	b.mu.Unlock()
	b.log.Info("connected", logging.String("venue", string(b.venue)))
	return nil
}

// Disconnect hangs up and clears the connection state. Subscriptions are
// kept so a reconnect can replay them.
func (b *Base) Disconnect(ctx context.Context, hangup func(context.Context) error) error {
	b.mu.Lock()
	if !b.connected {
		b.mu.Unlock()
		return ErrNotConnected
	}
	b.connected = false
	b.mu.Unlock()

	if hangup != nil {
		if err := hangup(ctx); err != nil {
			return errors.Wrapf(err, "disconnecting from %s", b.venue)
		}
	}
	b.log.Info("disconnected", logging.String("venue", string(b.venue)))
	return nil
}

// Track records a subscription key, reporting false when it was already
// active so the caller can treat the re-subscribe as a no-op.
func (b *Base) Track(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[key]; ok {
		return false
	}
	b.subs[key] = struct{}{}
	return true
}

// Untrack removes a subscription key, reporting false when it was not
// active.
func (b *Base) Untrack(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[key]; !ok {
		return false
	}
	delete(b.subs, key)
	return true
}

// Subscriptions returns the active subscription keys, sorted.
func (b *Base) Subscriptions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.subs))
	for k := range b.subs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
