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

package matching

import (
	"code.tickmarket.io/optix/config/encoding"
	"code.tickmarket.io/optix/logging"
)

// namedLogger is the identifier for package and should ideally match the package name
// this is simply emitted as a hierarchical label e.g. 'execution.matching'.
const namedLogger = "matching"

// Config represents the configuration of the order book.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	// MaxOpenOrders caps simultaneously resting maker orders per
	// party, bounding the work a force-cancel-all has to do.
	MaxOpenOrders uint64 `long:"max-open-orders"`

	LogRemovedOrdersDebug encoding.Bool `long:"log-removed-orders-debug"`
}

// NewDefaultConfig creates an instance of config with default values.
func NewDefaultConfig() Config {
	return Config{
		Level:                 encoding.LogLevel{Level: logging.InfoLevel},
		MaxOpenOrders:         16,
		LogRemovedOrdersDebug: false,
	}
}
