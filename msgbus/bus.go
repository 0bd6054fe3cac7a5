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

// Package msgbus routes typed messages between loosely coupled components:
// point-to-point endpoints, pattern subscriptions with priorities, and
// correlated request/response with optional timeouts. A bus is owned by a
// single runtime task and is not safe for concurrent use.
package msgbus

import (
	"fmt"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru"
	uuid "github.com/satori/go.uuid"

	"code.stratatrade.io/strata/clock"
	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/messages"
	"code.stratatrade.io/strata/metrics"
)

// Handler consumes a published or sent message.
type Handler func(msg any)

// ResponseHandler consumes the response resolving a request.
type ResponseHandler func(resp messages.Response)

// Subscription is the token identifying one pattern subscription.
type Subscription struct {
	id      uint64
	pattern string
}

// Pattern returns the pattern the subscription binds.
func (s *Subscription) Pattern() string { return s.pattern }

type subscription struct {
	id       uint64
	pattern  string
	handler  Handler
	priority int
}

// MessageBus delivers messages synchronously: when Publish returns, every
// matching handler has been invoked exactly once, in descending priority
// order with ties broken by registration order. Handler mutations of the
// subscription set during a publication are deferred until it completes.
type MessageBus struct {
	log *logging.Logger
	cfg Config
	clk clock.Clock

	endpoints map[string]Handler
	subs      []*subscription
	nextSubID uint64

	// cache maps topic to its matching subscriptions; purged whenever the
	// subscription set changes
	cache *lru.Cache

	pending map[uuid.UUID]ResponseHandler

	depth    int
	deferred []func()

	published uint64
	sent      uint64
	dropped   uint64
}

// New creates a message bus. The clock drives request timeouts and may be
// nil when timeouts are not used.
func New(log *logging.Logger, cfg Config, clk clock.Clock) *MessageBus {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	size := cfg.MatchCacheSize
	if size <= 0 {
		size = NewDefaultConfig().MatchCacheSize
	}
	cache, _ := lru.New(size)
	return &MessageBus{
		log:       log,
		cfg:       cfg,
		clk:       clk,
		endpoints: map[string]Handler{},
		cache:     cache,
		pending:   map[uuid.UUID]ResponseHandler{},
	}
}

// RegisterEndpoint binds a point-to-point endpoint to a handler.
func (b *MessageBus) RegisterEndpoint(endpoint string, handler Handler) error {
	if err := ValidateTopic(endpoint); err != nil {
		return err
	}
	if handler == nil {
		return ErrNilHandler
	}
	if _, ok := b.endpoints[endpoint]; ok {
		return ErrEndpointExists
	}
	b.endpoints[endpoint] = handler
	return nil
}

// DeregisterEndpoint removes an endpoint binding.
func (b *MessageBus) DeregisterEndpoint(endpoint string) error {
	if _, ok := b.endpoints[endpoint]; !ok {
		return ErrEndpointNotRegistered
	}
	delete(b.endpoints, endpoint)
	return nil
}

// Send delivers a message synchronously to the endpoint's handler.
func (b *MessageBus) Send(endpoint string, msg any) error {
	handler, ok := b.endpoints[endpoint]
	if !ok {
		return ErrEndpointNotRegistered
	}
	b.sent++
	b.invoke(endpoint, handler, msg)
	return nil
}

// Subscribe binds a pattern to a handler with the given priority. Higher
// priorities are delivered first. Mid-publication subscribes take effect
// once the publication completes.
func (b *MessageBus) Subscribe(pattern string, handler Handler, priority int) (*Subscription, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	b.nextSubID++
	sub := &subscription{
		id:       b.nextSubID,
		pattern:  pattern,
		handler:  handler,
		priority: priority,
	}
	b.mutate(func() {
		b.subs = append(b.subs, sub)
		sort.SliceStable(b.subs, func(i, j int) bool {
			if b.subs[i].priority != b.subs[j].priority {
				return b.subs[i].priority > b.subs[j].priority
			}
			return b.subs[i].id < b.subs[j].id
		})
		b.cache.Purge()
	})
	return &Subscription{id: sub.id, pattern: pattern}, nil
}

// Unsubscribe removes a subscription by token. Removal is visible to the
// next publication. Mid-publication the token may belong to a subscribe
// whose registration is itself still deferred, so the lookup is deferred
// with the removal instead of failing.
func (b *MessageBus) Unsubscribe(token *Subscription) error {
	if token == nil {
		return ErrSubscriptionNotFound
	}
	if !b.hasSubscription(token.id) && b.depth == 0 {
		return ErrSubscriptionNotFound
	}
	b.mutate(func() {
		b.removeSubscription(token.id)
	})
	return nil
}

func (b *MessageBus) hasSubscription(id uint64) bool {
	for _, s := range b.subs {
		if s.id == id {
			return true
		}
	}
	return false
}

func (b *MessageBus) removeSubscription(id uint64) {
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			b.cache.Purge()
			return
		}
	}
}

// Publish matches the topic against every subscription pattern and invokes
// the matching handlers in priority order.
func (b *MessageBus) Publish(topic string, msg any) error {
	if err := ValidateTopic(topic); err != nil {
		return err
	}
	b.published++
	metrics.BusPublishedInc()
	matched := b.matches(topic)

	b.depth++
	for _, s := range matched {
		b.invoke(topic, s.handler, msg)
	}
	b.depth--
	b.runDeferred()
	return nil
}

// HasSubscriber reports whether any subscription matches the topic.
func (b *MessageBus) HasSubscriber(topic string) bool {
	return len(b.matches(topic)) > 0
}

// Request sends a command to an endpoint and registers its response
// handler under the command ID. With a positive timeout the clock delivers
// a timeout response when the deadline elapses first.
func (b *MessageBus) Request(endpoint string, req messages.Command, onResponse ResponseHandler, timeoutNs int64) error {
	if onResponse == nil {
		return ErrNilHandler
	}
	if _, ok := b.pending[req.ID()]; ok {
		return ErrDuplicateCorrelationID
	}
	if _, ok := b.endpoints[endpoint]; !ok {
		return ErrEndpointNotRegistered
	}
	b.pending[req.ID()] = onResponse

	if timeoutNs > 0 && b.clk != nil {
		corrID := req.ID()
		err := b.clk.SetTimeAlert(requestTimerName(corrID), b.clk.NowNs()+timeoutNs,
			func(ev clock.TimeEvent) { b.timeout(corrID, ev.TsEvent) }, true)
		if err != nil {
			delete(b.pending, corrID)
			return err
		}
	}
	return b.Send(endpoint, req)
}

// Respond resolves a pending request by correlation ID and fans the
// response out on the reserved response topic.
func (b *MessageBus) Respond(resp messages.Response) error {
	handler, ok := b.pending[resp.CorrelationID]
	if !ok {
		return ErrUnknownCorrelationID
	}
	delete(b.pending, resp.CorrelationID)
	if b.clk != nil {
		_ = b.clk.Cancel(requestTimerName(resp.CorrelationID))
	}
	_ = b.Publish(ResponseTopic(resp.CorrelationID), resp)
	handler(resp)
	return nil
}

// PendingRequests returns the number of unresolved requests.
func (b *MessageBus) PendingRequests() int { return len(b.pending) }

// Stats returns the published, sent and dropped message counts.
func (b *MessageBus) Stats() (published, sent, dropped uint64) {
	return b.published, b.sent, b.dropped
}

func (b *MessageBus) timeout(corrID uuid.UUID, tsNs int64) {
	handler, ok := b.pending[corrID]
	if !ok {
		return
	}
	delete(b.pending, corrID)
	b.log.Warn("request timed out",
		logging.String("correlation-id", corrID.String()),
	)
	handler(messages.NewTimeoutResponse(corrID, tsNs))
}

func (b *MessageBus) matches(topic string) []*subscription {
	if cached, ok := b.cache.Get(topic); ok {
		return cached.([]*subscription)
	}
	var matched []*subscription
	for _, s := range b.subs {
		if IsMatching(topic, s.pattern) {
			matched = append(matched, s)
		}
	}
	b.cache.Add(topic, matched)
	return matched
}

// invoke runs a handler, catching panics so one handler cannot abort the
// publication.
func (b *MessageBus) invoke(topic string, handler Handler, msg any) {
	defer func() {
		if r := recover(); r != nil {
			b.dropped++
			metrics.BusDroppedInc()
			b.log.Error("handler panicked",
				logging.String("topic", topic),
				logging.String("panic", fmt.Sprintf("%v", r)),
			)
		}
	}()
	if budget := b.cfg.SlowHandlerThreshold.Get(); budget > 0 {
		start := time.Now()
		defer func() {
			if elapsed := time.Since(start); elapsed > budget {
				b.log.Warn("slow handler",
					logging.String("topic", topic),
					logging.Duration("elapsed", elapsed),
				)
			}
		}()
	}
	handler(msg)
}

func (b *MessageBus) mutate(fn func()) {
	if b.depth > 0 {
		b.deferred = append(b.deferred, fn)
		return
	}
	fn()
}

func (b *MessageBus) runDeferred() {
	if b.depth > 0 || len(b.deferred) == 0 {
		return
	}
	pending := b.deferred
	b.deferred = nil
	for _, fn := range pending {
		fn()
	}
}

func requestTimerName(corrID uuid.UUID) string {
	return "msgbus.request." + corrID.String()
}

// ResponseTopic returns the reserved topic responses fan out on.
func ResponseTopic(corrID uuid.UUID) string {
	return "system.response." + corrID.String()
}
