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

//lint:file-ignore SA5008 duplicated struct tags are ok for config

// Package config ties together all other application configuration types
// and handles loading them from the TOML configuration file.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/zannen/toml"

	"code.stratatrade.io/strata/book"
	"code.stratatrade.io/strata/broker"
	"code.stratatrade.io/strata/client"
	"code.stratatrade.io/strata/clock"
	"code.stratatrade.io/strata/kernel"
	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/metrics"
	"code.stratatrade.io/strata/msgbus"
	"code.stratatrade.io/strata/throttler"
)

const configFileName = "config.toml"

// Config ties together all other application configuration types.
type Config struct {
	Kernel    kernel.Config    `group:"Kernel" namespace:"kernel"`
	Clock     clock.Config     `group:"Clock" namespace:"clock"`
	Bus       msgbus.Config    `group:"Bus" namespace:"bus"`
	Book      book.Config      `group:"Book" namespace:"book"`
	Client    client.Config    `group:"Client" namespace:"client"`
	Throttler throttler.Config `group:"Throttler" namespace:"throttler"`
	Broker    broker.Config    `group:"Broker" namespace:"broker"`
	Metrics   metrics.Config   `group:"Metrics" namespace:"metrics"`
	Logging   logging.Config   `group:"Logging" namespace:"logging"`
}

// NewDefaultConfig returns a set of default configs for all packages, as
// specified at the per package config level.
func NewDefaultConfig() Config {
	return Config{
		Kernel:    kernel.NewDefaultConfig(),
		Clock:     clock.NewDefaultConfig(),
		Bus:       msgbus.NewDefaultConfig(),
		Book:      book.NewDefaultConfig(),
		Client:    client.NewDefaultConfig(),
		Throttler: throttler.NewDefaultConfig(),
		Broker:    broker.NewDefaultConfig(),
		Metrics:   metrics.NewDefaultConfig(),
		Logging:   logging.NewDefaultConfig(),
	}
}

// Read loads the configuration file under rootPath on top of the defaults.
func Read(rootPath string) (*Config, error) {
	path := filepath.Join(rootPath, configFileName)
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write saves the configuration under rootPath.
func Write(rootPath string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(rootPath, configFileName), buf.Bytes(), 0o644)
}
