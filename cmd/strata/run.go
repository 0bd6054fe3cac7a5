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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"code.stratatrade.io/strata/broker"
	"code.stratatrade.io/strata/clock"
	"code.stratatrade.io/strata/config"
	"code.stratatrade.io/strata/kernel"
	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/metrics"
	"code.stratatrade.io/strata/msgbus"
)

// cfgWatcherTimer drives the config watcher's listener notifications.
const cfgWatcherTimer = "cfgwatcher"

type RunCmd struct {
	config.HomeFlag

	ctx context.Context
}

var runCmd RunCmd

func (opts *RunCmd) Execute(_ []string) error {
	cfgWatchCtx, cancelWatch := context.WithCancel(opts.ctx)
	defer cancelWatch()

	cfg, err := config.Read(opts.Home)
	if err != nil {
		return configErr(err)
	}

	log := logging.NewLoggerFromConfig(cfg.Logging)
	defer log.AtExit()

	// reloads only adjust log levels; structural settings need a restart
	watcher, err := config.NewFromFile(cfgWatchCtx, log, opts.Home)
	if err != nil {
		watcher = nil
		log.Warn("config watcher not started", logging.Error(err))
	} else {
		watcher.OnConfigUpdate(func(c config.Config) {
			log.Info("configuration reloaded")
			log.SetLevel(c.Logging.Level.Level)
		})
	}

	var clk clock.Clock
	var liveClk *clock.LiveClock
	switch cfg.Clock.Mode {
	case clock.ModeTest:
		clk = clock.NewTestClock(0)
	default:
		liveClk = clock.NewLiveClock(log, cfg.Clock)
		clk = liveClk
	}

	bus := msgbus.New(log, cfg.Bus, clk)
	k := kernel.New(log, cfg.Kernel, cfg.Book, bus, clk)

	metrics.Start(log, cfg.Metrics)

	var brk *broker.Broker
	if bool(cfg.Broker.Enabled) {
		sender, err := broker.NewSocketSender(log, cfg.Broker.SocketConfig)
		if err != nil {
			return runtimeErr(err)
		}
		brk, err = broker.New(log, cfg.Broker, bus, sender)
		if err != nil {
			return runtimeErr(err)
		}
	}

	k.Start()

	// the watcher only flags changes; the runtime's cadence drains them
	if watcher != nil {
		err := k.SetTimer(cfgWatcherTimer, int64(time.Second), clk.NowNs(), 0, func(ev clock.TimeEvent) {
			watcher.OnTimeUpdate(opts.ctx, time.Unix(0, ev.TsEvent))
		}, true, false)
		if err != nil {
			log.Warn("config reload timer not armed", logging.Error(err))
		}
	}

	log.Info("strata runtime ready",
		logging.String("instance-id", k.InstanceID()),
		logging.String("version", CLIVersion),
		logging.String("version-hash", CLIVersionHash),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	interrupted := false
	select {
	case s := <-sig:
		log.Info("shutdown signal received", logging.String("signal", s.String()))
		interrupted = s == syscall.SIGINT
	case <-opts.ctx.Done():
	}

	k.Stop()
	if brk != nil {
		brk.Close()
	}
	if liveClk != nil {
		liveClk.Stop()
	}

	if interrupted {
		return &exitError{code: exitInterrupted, err: context.Canceled}
	}
	return nil
}

func Run(ctx context.Context, parser *flags.Parser) error {
	runCmd = RunCmd{ctx: ctx}

	short := "Runs a strata runtime"
	long := "Load the configuration and run the kernel until interrupted"

	_, err := parser.AddCommand("run", short, long, &runCmd)
	return err
}
