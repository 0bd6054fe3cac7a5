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

package metrics

import (
	"code.stratatrade.io/strata/config/encoding"
	"code.stratatrade.io/strata/logging"
)

const namedLogger = "metrics"

// Config represents the configuration of the metric collection.
type Config struct {
	Level   encoding.LogLevel `long:"log-level" description:"The metrics log level"`
	Enabled encoding.Bool     `long:"enabled" description:"Expose prometheus metrics"`
	Path    string            `long:"path" description:"HTTP path the metrics are served on"`
	Port    int               `long:"port" description:"HTTP port the metrics are served on"`
}

// NewDefaultConfig creates an instance of the metrics config with default
// values.
func NewDefaultConfig() Config {
	return Config{
		Level:   encoding.LogLevel{Level: logging.InfoLevel},
		Enabled: false,
		Path:    "/metrics",
		Port:    2112,
	}
}
