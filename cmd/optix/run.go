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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"code.tickmarket.io/optix/broker"
	"code.tickmarket.io/optix/collateral"
	"code.tickmarket.io/optix/config"
	"code.tickmarket.io/optix/execution"
	"code.tickmarket.io/optix/logging"
	"code.tickmarket.io/optix/metrics"
	"code.tickmarket.io/optix/oracle"
	"code.tickmarket.io/optix/types/num"
)

type wallClock struct{}

func (wallClock) GetTimeNow() time.Time {
	return time.Now()
}

func init() {
	var (
		home  string
		env   string
		price string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the optix node",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.NewLoggerFromEnv(env)
			defer log.AtExit()

			cfg, err := config.Read(home)
			if err != nil {
				return err
			}
			if err := metrics.Start(log, cfg.Metrics); err != nil {
				return err
			}

			initial, overflow := num.UintFromString(price, 10)
			if overflow {
				return errors.Errorf("invalid initial price %q", price)
			}
			bkr := broker.New(log, cfg.Broker)
			col := collateral.New(log, cfg.Collateral, collateral.NewBuiltinCustody(), collateral.NewOpenGate(), bkr)
			eng, err := execution.New(log, cfg.Execution, wallClock{}, oracle.NewStaticSource(initial), col, bkr, cfg.Owner)
			if err != nil {
				return err
			}

			ctx := context.Background()
			if _, err := eng.StartCycle(ctx); err != nil {
				return err
			}
			log.Info("optix node ready",
				logging.String("home", home),
				logging.String("version", cliVersion),
			)

			ch := make(chan os.Signal, 1)
			signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case sig := <-ch:
					log.Info("shutting down", logging.String("signal", sig.String()))
					return nil
				case <-ticker.C:
					cycle := eng.ActiveCycle()
					if cycle == nil {
						if _, err := eng.StartCycle(ctx); err != nil {
							log.Error("cannot start cycle", logging.Error(err))
						}
						continue
					}
					if cycle.IsLive(time.Now()) {
						continue
					}
					// drive expired cycles through settlement one
					// batch per tick, then roll into the next cycle.
					if _, err := eng.SettleCycle(ctx, 0); err != nil {
						log.Error("settlement failed", logging.Error(err))
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&home, "home", defaultHome(), "node home directory")
	cmd.Flags().StringVar(&env, "env", "prod", "logging environment (dev or prod)")
	cmd.Flags().StringVar(&price, "price", "1000000000", "initial underlying price, collateral minor units")
	rootCmd.AddCommand(cmd)
}
