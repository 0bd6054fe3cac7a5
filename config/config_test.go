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

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.stratatrade.io/strata/config"
	"code.stratatrade.io/strata/config/encoding"
	"code.stratatrade.io/strata/logging"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := config.NewDefaultConfig()
	cfg.Kernel.InstanceID = "strata-rt-7"
	cfg.Kernel.Level = encoding.LogLevel{Level: logging.DebugLevel}
	cfg.Bus.MatchCacheSize = 123
	cfg.Bus.SlowHandlerThreshold = encoding.Duration{Duration: 250 * time.Millisecond}
	cfg.Broker.Enabled = true

	require.NoError(t, config.Write(dir, cfg))

	got, err := config.Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "strata-rt-7", got.Kernel.InstanceID)
	assert.Equal(t, logging.DebugLevel, got.Kernel.Level.Get())
	assert.Equal(t, 123, got.Bus.MatchCacheSize)
	assert.Equal(t, 250*time.Millisecond, got.Bus.SlowHandlerThreshold.Get())
	assert.True(t, bool(got.Broker.Enabled))

	// untouched sections keep their defaults
	assert.Equal(t, config.NewDefaultConfig().Throttler, got.Throttler)
}

func TestReadMissingFile(t *testing.T) {
	_, err := config.Read(t.TempDir())
	require.Error(t, err)
}
