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

package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"code.tickmarket.io/optix/broker"
	"code.tickmarket.io/optix/collateral"
	"code.tickmarket.io/optix/execution"
	"code.tickmarket.io/optix/metrics"
)

// DefaultFileName is the config file name inside the node home.
const DefaultFileName = "config.toml"

// Config ties together all other application configuration types.
type Config struct {
	// Owner is the party allowed to pause the market and move fees.
	Owner string `long:"owner"`

	Execution  execution.Config  `group:"Execution" namespace:"execution"`
	Collateral collateral.Config `group:"Collateral" namespace:"collateral"`
	Broker     broker.Config     `group:"Broker" namespace:"broker"`
	Metrics    metrics.Config    `group:"Metrics" namespace:"metrics"`
}

// NewDefaultConfig returns the default configs of every package.
func NewDefaultConfig() Config {
	return Config{
		Execution:  execution.NewDefaultConfig(),
		Collateral: collateral.NewDefaultConfig(),
		Broker:     broker.NewDefaultConfig(),
		Metrics:    metrics.NewDefaultConfig(),
	}
}

// Read loads a config file from the given home directory, or returns
// the defaults when none exists yet.
func Read(home string) (*Config, error) {
	cfg := NewDefaultConfig()
	path := filepath.Join(home, DefaultFileName)
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, err
	}
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write serialises the config into the given home directory.
func Write(home string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(home, DefaultFileName), buf.Bytes(), 0o600)
}
