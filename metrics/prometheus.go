// Copyright (C) 2023 Tickmarket Labs Limited
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

package metrics

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"code.tickmarket.io/optix/logging"
)

// ErrAlreadySetup is returned when Setup is called more than once.
var ErrAlreadySetup = errors.New("metrics already set up")

// package-level instruments, nil until Setup ran. Every update helper
// nil-checks so an unconfigured process pays a branch, nothing more.
var (
	orderCounter     *prometheus.CounterVec
	tradeCounter     *prometheus.CounterVec
	tradeVolume      *prometheus.CounterVec
	cycleCounter     prometheus.Counter
	liquidationCount prometheus.Counter
	settledTraders   prometheus.Counter
	badDebtGauge     prometheus.Gauge
	feeSinkGauge     prometheus.Gauge
)

// Setup registers the engine's instruments on the default registry.
func Setup() error {
	if orderCounter != nil {
		return ErrAlreadySetup
	}
	orderCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "optix",
		Subsystem: "execution",
		Name:      "orders_total",
		Help:      "Number of orders processed, by side and outcome",
	}, []string{"side", "outcome"})
	tradeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "optix",
		Subsystem: "execution",
		Name:      "trades_total",
		Help:      "Number of fills, by taker side",
	}, []string{"side"})
	tradeVolume = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "optix",
		Subsystem: "execution",
		Name:      "trade_volume_total",
		Help:      "Filled contracts, by taker side",
	}, []string{"side"})
	cycleCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "optix",
		Subsystem: "execution",
		Name:      "cycles_total",
		Help:      "Number of cycles started",
	})
	liquidationCount = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "optix",
		Subsystem: "execution",
		Name:      "liquidations_total",
		Help:      "Number of accounts force closed",
	})
	settledTraders = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "optix",
		Subsystem: "settlement",
		Name:      "settled_traders_total",
		Help:      "Number of trader settlement steps processed",
	})
	badDebtGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "optix",
		Subsystem: "collateral",
		Name:      "bad_debt",
		Help:      "Bad debt accumulated in the active cycle",
	})
	feeSinkGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "optix",
		Subsystem: "collateral",
		Name:      "fee_sink",
		Help:      "Fees accumulated and not yet withdrawn",
	})
	for _, c := range []prometheus.Collector{
		orderCounter, tradeCounter, tradeVolume, cycleCounter,
		liquidationCount, settledTraders, badDebtGauge, feeSinkGauge,
	} {
		if err := prometheus.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Start configures the instruments and serves them over HTTP when the
// config enables them.
func Start(log *logging.Logger, cfg Config) error {
	if !bool(cfg.Enabled) {
		return nil
	}
	if err := Setup(); err != nil {
		return err
	}
	log = log.Named("metrics")
	log.SetLevel(cfg.Level.Get())
	http.Handle(cfg.Path, promhttp.Handler())
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info("metrics endpoint up",
			logging.String("addr", addr),
			logging.String("path", cfg.Path),
		)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Error("metrics endpoint failed", logging.Error(err))
		}
	}()
	return nil
}

// OrderCounterInc counts one order attempt outcome.
func OrderCounterInc(side, outcome string) {
	if orderCounter == nil {
		return
	}
	orderCounter.WithLabelValues(side, outcome).Inc()
}

// TradeCounterAdd counts one fill of the given size.
func TradeCounterAdd(side string, size uint64) {
	if tradeCounter == nil {
		return
	}
	tradeCounter.WithLabelValues(side).Inc()
	tradeVolume.WithLabelValues(side).Add(float64(size))
}

// CycleCounterInc counts one cycle start.
func CycleCounterInc() {
	if cycleCounter == nil {
		return
	}
	cycleCounter.Inc()
}

// LiquidationCounterInc counts one forced close-out.
func LiquidationCounterInc() {
	if liquidationCount == nil {
		return
	}
	liquidationCount.Inc()
}

// SettledTraderInc counts one trader settlement step.
func SettledTraderInc() {
	if settledTraders == nil {
		return
	}
	settledTraders.Inc()
}

// BadDebtSet tracks the cycle's accumulated bad debt.
func BadDebtSet(v float64) {
	if badDebtGauge == nil {
		return
	}
	badDebtGauge.Set(v)
}

// FeeSinkSet tracks the accumulated fee sink.
func FeeSinkSet(v float64) {
	if feeSinkGauge == nil {
		return
	}
	feeSinkGauge.Set(v)
}
