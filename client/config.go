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

package client

import (
	"time"

	"code.stratatrade.io/strata/config/encoding"
	"code.stratatrade.io/strata/logging"
)

const namedLogger = "client"

// Config represents the configuration shared by venue clients.
type Config struct {
	Level encoding.LogLevel `long:"log-level" description:"The client log level"`

	// RetryBase is the initial reconnect backoff; doubled per attempt up
	// to RetryMax.
	RetryBase   encoding.Duration `long:"retry-base" description:"Initial reconnect backoff"`
	RetryMax    encoding.Duration `long:"retry-max" description:"Backoff ceiling"`
	MaxAttempts int               `long:"max-attempts" description:"Reconnect attempts before giving up (0 for unlimited)"`
}

// NewDefaultConfig creates an instance of the client config with default
// values.
func NewDefaultConfig() Config {
	return Config{
		Level:       encoding.LogLevel{Level: logging.InfoLevel},
		RetryBase:   encoding.Duration{Duration: 500 * time.Millisecond},
		RetryMax:    encoding.Duration{Duration: 30 * time.Second},
		MaxAttempts: 0,
	}
}
