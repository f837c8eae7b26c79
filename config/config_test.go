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

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.tickmarket.io/optix/config"
	"code.tickmarket.io/optix/logging"
)

func TestReadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Read(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, config.NewDefaultConfig(), *cfg)
}

func TestWriteReadRoundTrip(t *testing.T) {
	home := t.TempDir()

	cfg := config.NewDefaultConfig()
	cfg.Owner = "treasury"
	cfg.Execution.TickSize = 250
	cfg.Execution.CycleDuration.Duration = 15 * time.Minute
	cfg.Execution.Matching.MaxOpenOrders = 3
	cfg.Collateral.Level.Level = logging.DebugLevel
	require.NoError(t, config.Write(home, &cfg))

	got, err := config.Read(home)
	require.NoError(t, err)
	assert.Equal(t, cfg, *got)
}

func TestReadRejectsBrokenToml(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, config.DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("Owner = [unclosed"), 0o600))

	_, err := config.Read(home)
	assert.Error(t, err)
}
