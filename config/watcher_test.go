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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.stratatrade.io/strata/config"
	"code.stratatrade.io/strata/logging"
)

func TestWatcherNotifiesListenersOnRewrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	cfg := config.NewDefaultConfig()
	require.NoError(t, config.Write(dir, cfg))

	w, err := config.NewFromFile(ctx, logging.NewTestLogger(), dir)
	require.NoError(t, err)

	var got []config.Config
	w.OnConfigUpdate(func(c config.Config) { got = append(got, c) })

	// nothing changed yet, a tick must not notify
	w.OnTimeUpdate(ctx, time.Now())
	assert.Empty(t, got)

	cfg.Bus.MatchCacheSize = 999
	require.NoError(t, config.Write(dir, cfg))

	// the file watcher flags the change asynchronously; ticks drain it
	deadline := time.Now().Add(5 * time.Second)
	for len(got) == 0 && time.Now().Before(deadline) {
		w.OnTimeUpdate(ctx, time.Now())
		time.Sleep(10 * time.Millisecond)
	}

	require.Len(t, got, 1)
	assert.Equal(t, 999, got[0].Bus.MatchCacheSize)
	assert.Equal(t, 999, w.Get().Bus.MatchCacheSize)

	// drained: the next tick stays quiet
	w.OnTimeUpdate(ctx, time.Now())
	assert.Len(t, got, 1)
}

func TestWatcherMissingFile(t *testing.T) {
	_, err := config.NewFromFile(context.Background(), logging.NewTestLogger(), t.TempDir())
	require.Error(t, err)
}
