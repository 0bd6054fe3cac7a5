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

// Package kernel wires the clock, message bus, book engine and throttlers
// into one runtime and exposes the ingestion surface adapters feed.
package kernel

import (
	"time"

	"github.com/pkg/errors"

	"code.stratatrade.io/strata/book"
	"code.stratatrade.io/strata/client"
	"code.stratatrade.io/strata/clock"
	"code.stratatrade.io/strata/codec"
	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/messages"
	"code.stratatrade.io/strata/metrics"
	"code.stratatrade.io/strata/msgbus"
	"code.stratatrade.io/strata/throttler"
	"code.stratatrade.io/strata/types"
)

var (
	// ErrPricePrecisionExceedsCap signals an ingested price finer than the
	// configured cap.
	ErrPricePrecisionExceedsCap = errors.New("price precision exceeds configured cap")
	// ErrSizePrecisionExceedsCap signals an ingested size finer than the
	// configured cap.
	ErrSizePrecisionExceedsCap = errors.New("size precision exceeds configured cap")
	// ErrThrottlerExists signals a second throttler registered under a name.
	ErrThrottlerExists = errors.New("throttler already registered")
	// ErrNotRunning signals ingestion before Start or after Stop.
	ErrNotRunning = errors.New("kernel is not running")
)

// Kernel owns the runtime: one clock, one message bus, the per-instrument
// books, the data cache and the named throttlers. All ingestion happens on
// the caller's goroutine; the kernel is not safe for concurrent use.
type Kernel struct {
	log *logging.Logger
	cfg Config

	bus *msgbus.MessageBus
	clk clock.Clock

	bookCfg book.Config
	books   map[types.InstrumentID]*book.OrderBook

	cache      *DataCache
	throttlers map[string]*throttler.Throttler

	running bool
	startNs int64
}

// New creates a kernel around an existing bus and clock. Currencies listed
// in the config are registered before any data flows.
func New(log *logging.Logger, cfg Config, bookCfg book.Config, bus *msgbus.MessageBus, clk clock.Clock) *Kernel {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	for _, code := range cfg.RegisteredCurrencies {
		if _, err := types.CurrencyFromCode(code); err == nil {
			continue
		}
		types.RegisterCurrency(types.Currency{Code: code, Precision: 8, Kind: types.CurrencyCrypto})
		log.Debug("registered currency", logging.String("code", code))
	}

	return &Kernel{
		log:        log,
		cfg:        cfg,
		bus:        bus,
		clk:        clk,
		bookCfg:    bookCfg,
		books:      map[types.InstrumentID]*book.OrderBook{},
		cache:      NewDataCache(cfg.TradeCacheSize),
		throttlers: map[string]*throttler.Throttler{},
	}
}

// InstanceID returns the runtime instance identifier.
func (k *Kernel) InstanceID() string { return k.cfg.InstanceID }

// TraderID returns the trader identity of this runtime.
func (k *Kernel) TraderID() types.TraderID { return types.TraderID(k.cfg.TraderID) }

// Bus returns the message bus of the runtime.
func (k *Kernel) Bus() *msgbus.MessageBus { return k.bus }

// Clock returns the clock of the runtime.
func (k *Kernel) Clock() clock.Clock { return k.clk }

// Cache returns the data cache of the runtime.
func (k *Kernel) Cache() *DataCache { return k.cache }

// Codec returns the row codec matching the configured wire encoding.
func (k *Kernel) Codec() (codec.Codec, error) {
	c, err := codec.ForEncoding(k.cfg.Serialization)
	if err != nil {
		return nil, boundary(types.KindSerialization, err)
	}
	return c, nil
}

// IsRunning reports whether the kernel is between Start and Stop.
func (k *Kernel) IsRunning() bool { return k.running }

// Start opens the runtime for ingestion.
func (k *Kernel) Start() {
	if k.running {
		return
	}
	k.running = true
	k.startNs = k.clk.NowNs()
	k.log.Info("kernel started",
		logging.String("instance-id", k.cfg.InstanceID),
		logging.String("trader-id", k.cfg.TraderID),
		logging.Int64("start-ns", k.startNs),
	)
}

// Stop closes the runtime and cancels every pending timer.
func (k *Kernel) Stop() {
	if !k.running {
		return
	}
	k.running = false
	k.clk.CancelAll()
	k.log.Info("kernel stopped",
		logging.String("instance-id", k.cfg.InstanceID),
		logging.Int64("uptime-ns", k.clk.NowNs()-k.startNs),
	)
}

// Book returns the book for the instrument, if one exists.
func (k *Kernel) Book(id types.InstrumentID) (*book.OrderBook, bool) {
	b, ok := k.books[id]
	return b, ok
}

// EnsureBook returns the book for the instrument, creating it at the
// configured default granularity when absent.
func (k *Kernel) EnsureBook(id types.InstrumentID) *book.OrderBook {
	if b, ok := k.books[id]; ok {
		return b
	}
	b := book.New(k.log, k.bookCfg, id, k.cfg.BookTypeDefault)
	k.books[id] = b
	k.log.Debug("book created",
		logging.Stringer("instrument", id),
		logging.Stringer("book-type", k.cfg.BookTypeDefault),
	)
	return b
}

// CreateBook creates a book at an explicit granularity, replacing any
// existing book for the instrument.
func (k *Kernel) CreateBook(id types.InstrumentID, bookType types.BookType) *book.OrderBook {
	b := book.New(k.log, k.bookCfg, id, bookType)
	k.books[id] = b
	return b
}

// NewThrottler creates a named throttler with the runtime defaults and
// registers it for stats.
func (k *Kernel) NewThrottler(name string, output throttler.Output, dropped throttler.Dropped) (*throttler.Throttler, error) {
	if _, ok := k.throttlers[name]; ok {
		return nil, boundary(types.KindConstruction, errors.Wrap(ErrThrottlerExists, name))
	}
	t, err := throttler.New(k.log, k.cfg.ThrottlerDefaults, name, k.clk, output, dropped)
	if err != nil {
		return nil, boundary(types.KindConstruction, err)
	}
	k.throttlers[name] = t
	return t, nil
}

// SetTimeAlert arms a one-shot timer whose event is also published on the
// reserved time topic.
func (k *Kernel) SetTimeAlert(name string, atNs int64, handler clock.TimeEventHandler, allowPast bool) error {
	return boundary(types.KindScheduling, k.clk.SetTimeAlert(name, atNs, k.publishTimeEvent(name, handler), allowPast))
}

// SetTimer arms a repeating timer whose events are also published on the
// reserved time topic.
func (k *Kernel) SetTimer(name string, intervalNs, startNs, stopNs int64, handler clock.TimeEventHandler, allowPast, fireImmediately bool) error {
	return boundary(types.KindScheduling, k.clk.SetTimer(name, intervalNs, startNs, stopNs, k.publishTimeEvent(name, handler), allowPast, fireImmediately))
}

func (k *Kernel) publishTimeEvent(name string, handler clock.TimeEventHandler) clock.TimeEventHandler {
	topic := client.TimeTopic(name)
	return func(ev clock.TimeEvent) {
		metrics.TimerFiringInc()
		if err := k.bus.Publish(topic, ev); err != nil {
			k.log.Error("time event publish failed", logging.String("timer", name), logging.Error(err))
		}
		if handler != nil {
			handler(ev)
		}
	}
}

// PushTrade ingests a trade tick: cached, counted and published on its
// reserved data topic.
func (k *Kernel) PushTrade(t types.Trade) error {
	if !k.running {
		return ErrNotRunning
	}
	if err := k.checkPrecision(t.Price.Precision(), t.Size.Precision()); err != nil {
		return boundary(types.KindConstruction, errors.Wrap(err, t.InstrumentID.String()))
	}
	k.cache.AddTrade(t)
	metrics.DataInc(t.InstrumentID.Venue.String(), messages.KindTrades.String())
	return boundary(types.KindRouting, k.bus.Publish(client.DataTopic(messages.KindTrades, t.InstrumentID), t))
}

// PushQuote ingests a top-of-book quote tick.
func (k *Kernel) PushQuote(q types.Quote) error {
	if !k.running {
		return ErrNotRunning
	}
	if err := k.checkPrecision(q.BidPrice.Precision(), q.BidSize.Precision()); err != nil {
		return boundary(types.KindConstruction, errors.Wrap(err, q.InstrumentID.String()))
	}
	k.cache.AddQuote(q)
	metrics.DataInc(q.InstrumentID.Venue.String(), messages.KindQuotes.String())
	return boundary(types.KindRouting, k.bus.Publish(client.DataTopic(messages.KindQuotes, q.InstrumentID), q))
}

// PushBookDeltas ingests a delta packet: applied to the instrument's book,
// published raw, and followed by a derived quote and depth update whenever
// the top of the book moved. A rejected packet leaves the book untouched;
// the warning is counted, logged, and published on system.log.book.
func (k *Kernel) PushBookDeltas(id types.InstrumentID, deltas []types.BookDelta) error {
	if !k.running {
		return ErrNotRunning
	}
	if len(deltas) == 0 {
		return nil
	}
	b := k.EnsureBook(id)

	start := time.Now()
	tc, err := b.ApplyBatch(deltas)
	metrics.BookApplyObserve(id.Venue.String(), time.Since(start).Seconds())
	if err != nil {
		metrics.BookWarnInc(id.Venue.String(), id.Symbol.String())
		k.log.Warn("delta packet rejected",
			logging.Stringer("instrument", id),
			logging.Error(err),
		)
		var warn *book.Warning
		if errors.As(err, &warn) {
			_ = k.bus.Publish(client.LogTopic("book"), warn)
		}
		return boundary(types.KindProtocol, err)
	}
	metrics.BookApplyInc(id.Venue.String(), id.Symbol.String())
	metrics.DataInc(id.Venue.String(), messages.KindBookDeltas.String())

	if err := k.bus.Publish(client.DataTopic(messages.KindBookDeltas, id), deltas); err != nil {
		return boundary(types.KindRouting, err)
	}

	bidLevels, askLevels := b.Levels()
	metrics.BookDepthSet(id.Venue.String(), id.Symbol.String(), types.SideBuy.String(), float64(bidLevels))
	metrics.BookDepthSet(id.Venue.String(), id.Symbol.String(), types.SideSell.String(), float64(askLevels))

	if !tc.Changed {
		return nil
	}
	tsEvent := deltas[len(deltas)-1].TsEvent
	tsInit := k.nowAfter(tsEvent)
	if q, ok := b.Quote(tsEvent, tsInit); ok {
		k.cache.AddQuote(q)
		if err := k.bus.Publish(client.DataTopic(messages.KindQuotes, id), q); err != nil {
			return boundary(types.KindRouting, err)
		}
	}
	return boundary(types.KindRouting, k.bus.Publish(client.DataTopic(messages.KindBookDepth10, id), b.Depth10(tsEvent, tsInit)))
}

// PushBar ingests a completed bar.
func (k *Kernel) PushBar(b types.Bar) error {
	if !k.running {
		return ErrNotRunning
	}
	if err := k.checkPrecision(b.Close.Precision(), b.Volume.Precision()); err != nil {
		return boundary(types.KindConstruction, errors.Wrap(err, b.BarType.String()))
	}
	k.cache.AddBar(b)
	metrics.DataInc(b.BarType.InstrumentID.Venue.String(), messages.KindBars.String())
	return boundary(types.KindRouting, k.bus.Publish(client.BarTopic(b.BarType), b))
}

// PushMarkPrice ingests a mark price update.
func (k *Kernel) PushMarkPrice(m types.MarkPrice) error {
	if !k.running {
		return ErrNotRunning
	}
	if err := k.checkPrecision(m.Value.Precision(), 0); err != nil {
		return boundary(types.KindConstruction, errors.Wrap(err, m.InstrumentID.String()))
	}
	k.cache.AddMarkPrice(m)
	metrics.DataInc(m.InstrumentID.Venue.String(), messages.KindMarkPrices.String())
	return boundary(types.KindRouting, k.bus.Publish(client.DataTopic(messages.KindMarkPrices, m.InstrumentID), m))
}

// PushIndexPrice ingests an index price update.
func (k *Kernel) PushIndexPrice(i types.IndexPrice) error {
	if !k.running {
		return ErrNotRunning
	}
	if err := k.checkPrecision(i.Value.Precision(), 0); err != nil {
		return boundary(types.KindConstruction, errors.Wrap(err, i.InstrumentID.String()))
	}
	k.cache.AddIndexPrice(i)
	metrics.DataInc(i.InstrumentID.Venue.String(), messages.KindIndexPrices.String())
	return boundary(types.KindRouting, k.bus.Publish(client.DataTopic(messages.KindIndexPrices, i.InstrumentID), i))
}

// PushFundingRate ingests a funding rate update. Stale sequence numbers are
// dropped silently.
func (k *Kernel) PushFundingRate(f types.FundingRate) error {
	if !k.running {
		return ErrNotRunning
	}
	if !k.cache.AddFundingRate(f) {
		k.log.Debug("stale funding rate dropped",
			logging.Stringer("instrument", f.InstrumentID),
			logging.Uint64("sequence", f.Sequence),
		)
		return nil
	}
	metrics.DataInc(f.InstrumentID.Venue.String(), messages.KindFundingRates.String())
	return boundary(types.KindRouting, k.bus.Publish(client.DataTopic(messages.KindFundingRates, f.InstrumentID), f))
}

// PushInstrumentStatus ingests a trading status change.
func (k *Kernel) PushInstrumentStatus(s types.InstrumentStatus) error {
	if !k.running {
		return ErrNotRunning
	}
	k.cache.SetStatus(s)
	metrics.DataInc(s.InstrumentID.Venue.String(), messages.KindInstrumentStatus.String())
	return boundary(types.KindRouting, k.bus.Publish(client.DataTopic(messages.KindInstrumentStatus, s.InstrumentID), s))
}

// PushInstrumentClose ingests a closing price.
func (k *Kernel) PushInstrumentClose(c types.InstrumentClose) error {
	if !k.running {
		return ErrNotRunning
	}
	if err := k.checkPrecision(c.Price.Precision(), 0); err != nil {
		return boundary(types.KindConstruction, errors.Wrap(err, c.InstrumentID.String()))
	}
	k.cache.AddInstrumentClose(c)
	metrics.DataInc(c.InstrumentID.Venue.String(), messages.KindInstrumentClose.String())
	return boundary(types.KindRouting, k.bus.Publish(client.DataTopic(messages.KindInstrumentClose, c.InstrumentID), c))
}

// boundary tags an error leaving the kernel API with its stable kind so
// consumers can classify it without matching sentinel values.
func boundary(kind types.ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return types.NewKernelError(kind, err)
}

func (k *Kernel) checkPrecision(pricePrecision, sizePrecision uint8) error {
	if pricePrecision > k.cfg.PricePrecisionMax {
		return ErrPricePrecisionExceedsCap
	}
	if sizePrecision > k.cfg.SizePrecisionMax {
		return ErrSizePrecisionExceedsCap
	}
	return nil
}

// nowAfter returns the clock time, clamped so derived data never carries
// ts_init earlier than its ts_event.
func (k *Kernel) nowAfter(tsEvent int64) int64 {
	if now := k.clk.NowNs(); now > tsEvent {
		return now
	}
	return tsEvent
}
