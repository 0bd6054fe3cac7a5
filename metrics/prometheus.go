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

// Package metrics collects the kernel's prometheus instruments: ingestion
// counts, book applies, bus traffic, timer firings and throttle drops.
package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"code.stratatrade.io/strata/logging"
)

const namespace = "strata"

var (
	setupOnce sync.Once

	dataCounter       *prometheus.CounterVec
	bookApplyCounter  *prometheus.CounterVec
	bookApplyDuration *prometheus.HistogramVec
	bookWarnCounter   *prometheus.CounterVec
	busPublished      prometheus.Counter
	busDropped        prometheus.Counter
	timerFirings      prometheus.Counter
	throttleDrops     *prometheus.CounterVec
	bookDepthGauge    *prometheus.GaugeVec
)

func setupMetrics() {
	dataCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "kernel",
		Name:      "data_total",
		Help:      "Number of data points ingested, by venue and kind",
	}, []string{"venue", "kind"})
	bookApplyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "book",
		Name:      "apply_total",
		Help:      "Number of delta packets applied, by venue and symbol",
	}, []string{"venue", "symbol"})
	bookApplyDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "book",
		Name:      "apply_seconds",
		Help:      "Time spent applying delta packets",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	}, []string{"venue"})
	bookWarnCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "book",
		Name:      "warnings_total",
		Help:      "Number of rejected deltas, by venue and symbol",
	}, []string{"venue", "symbol"})
	busPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bus",
		Name:      "published_total",
		Help:      "Number of messages published on the bus",
	})
	busDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bus",
		Name:      "dropped_total",
		Help:      "Number of handler invocations lost to panics",
	})
	timerFirings = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "clock",
		Name:      "timer_firings_total",
		Help:      "Number of time events dispatched",
	})
	throttleDrops = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "throttler",
		Name:      "dropped_total",
		Help:      "Number of messages dropped over the rate cap",
	}, []string{"name"})
	bookDepthGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "book",
		Name:      "levels",
		Help:      "Resting price levels per side",
	}, []string{"venue", "symbol", "side"})

	prometheus.MustRegister(
		dataCounter,
		bookApplyCounter,
		bookApplyDuration,
		bookWarnCounter,
		busPublished,
		busDropped,
		timerFirings,
		throttleDrops,
		bookDepthGauge,
	)
}

// Start registers the collectors and, when enabled, serves them over HTTP.
func Start(log *logging.Logger, cfg Config) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	setupOnce.Do(setupMetrics)
	if !bool(cfg.Enabled) {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle(cfg.Path, promhttp.Handler())
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped", logging.Error(err))
		}
	}()
}

// DataInc counts one ingested data point.
func DataInc(venue, kind string) {
	if dataCounter == nil {
		return
	}
	dataCounter.WithLabelValues(venue, kind).Inc()
}

// BookApplyInc counts one applied delta packet.
func BookApplyInc(venue, symbol string) {
	if bookApplyCounter == nil {
		return
	}
	bookApplyCounter.WithLabelValues(venue, symbol).Inc()
}

// BookApplyObserve records the duration of one apply.
func BookApplyObserve(venue string, seconds float64) {
	if bookApplyDuration == nil {
		return
	}
	bookApplyDuration.WithLabelValues(venue).Observe(seconds)
}

// BookWarnInc counts one rejected delta.
func BookWarnInc(venue, symbol string) {
	if bookWarnCounter == nil {
		return
	}
	bookWarnCounter.WithLabelValues(venue, symbol).Inc()
}

// BusPublishedInc counts one bus publication.
func BusPublishedInc() {
	if busPublished == nil {
		return
	}
	busPublished.Inc()
}

// BusDroppedInc counts one handler invocation lost to a panic.
func BusDroppedInc() {
	if busDropped == nil {
		return
	}
	busDropped.Inc()
}

// TimerFiringInc counts one dispatched time event.
func TimerFiringInc() {
	if timerFirings == nil {
		return
	}
	timerFirings.Inc()
}

// ThrottleDropInc counts one message dropped by a throttler.
func ThrottleDropInc(name string) {
	if throttleDrops == nil {
		return
	}
	throttleDrops.WithLabelValues(name).Inc()
}

// BookDepthSet records the resting level count of one book side.
func BookDepthSet(venue, symbol, side string, levels float64) {
	if bookDepthGauge == nil {
		return
	}
	bookDepthGauge.WithLabelValues(venue, symbol, side).Set(levels)
}
