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

package execution

import (
	"time"

	"code.tickmarket.io/optix/config/encoding"
	"code.tickmarket.io/optix/logging"
	"code.tickmarket.io/optix/matching"
	"code.tickmarket.io/optix/settlement"
)

const namedLogger = "execution"

// Config represents the configuration of the execution engine and the
// market parameters it trades under.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	// TickSize is the smallest price increment, in collateral minor
	// units. Limit prices are floor-divided by it, sub-tick precision
	// is deliberately discarded.
	TickSize uint64 `long:"tick-size"`
	// ContractSize scales notional per contract.
	ContractSize uint64 `long:"contract-size"`
	// MakerFeeBps is the maker fee in basis points of notional. A
	// negative value is a rebate.
	MakerFeeBps int64 `long:"maker-fee-bps"`
	// TakerFeeBps is the taker fee in basis points of notional.
	TakerFeeBps int64 `long:"taker-fee-bps"`
	// LiquidationFeeBps is assessed on net short notional when an
	// account is force closed.
	LiquidationFeeBps uint64 `long:"liquidation-fee-bps"`
	// MaintenanceMarginBps sets required margin as basis points of
	// net short notional.
	MaintenanceMarginBps uint64 `long:"maintenance-margin-bps"`
	// CycleDuration is the trading window of each cycle.
	CycleDuration encoding.Duration `long:"cycle-duration"`

	Matching   matching.Config   `group:"Matching" namespace:"matching"`
	Settlement settlement.Config `group:"Settlement" namespace:"settlement"`
}

// NewDefaultConfig creates an instance of config with default values.
func NewDefaultConfig() Config {
	return Config{
		Level:                encoding.LogLevel{Level: logging.InfoLevel},
		TickSize:             1_000,
		ContractSize:         1_000_000,
		MakerFeeBps:          -2,
		TakerFeeBps:          7,
		LiquidationFeeBps:    50,
		MaintenanceMarginBps: 1_000,
		CycleDuration:        encoding.Duration{Duration: time.Hour},
		Matching:             matching.NewDefaultConfig(),
		Settlement:           settlement.NewDefaultConfig(),
	}
}
