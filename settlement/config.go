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

package settlement

import (
	"code.tickmarket.io/optix/config/encoding"
	"code.tickmarket.io/optix/logging"
)

const namedLogger = "settlement"

// Config represents the configuration of the settlement engine.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	// DefaultBatchSize bounds how many traders one settlement call
	// processes when the caller does not pick a size itself.
	DefaultBatchSize int `long:"default-batch-size"`
}

// NewDefaultConfig creates an instance of config with default values.
func NewDefaultConfig() Config {
	return Config{
		Level:            encoding.LogLevel{Level: logging.InfoLevel},
		DefaultBatchSize: 100,
	}
}
