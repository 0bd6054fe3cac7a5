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

package broker

import (
	"code.stratatrade.io/strata/config/encoding"
	"code.stratatrade.io/strata/logging"
)

const namedLogger = "broker"

// Config represents the configuration of the broker.
type Config struct {
	Level        encoding.LogLevel `long:"log-level" description:"The broker log level"`
	Enabled      encoding.Bool     `long:"enabled" description:"Stream kernel events over the socket"`
	SocketConfig SocketConfig      `group:"Socket" namespace:"socket"`

	// Patterns are the bus patterns streamed out.
	Patterns []string `long:"patterns" description:"Bus patterns streamed to the socket"`
}

// SocketConfig holds the transport settings of the outbound socket.
type SocketConfig struct {
	IP            string `long:"ip" description:"Remote address to dial"`
	Port          int    `long:"port" description:"Remote port to dial"`
	TransportType string `long:"transport-type" description:"Socket transport (tcp or ipc)"`
	DialRetries   int    `long:"dial-retries" description:"Dial attempts before giving up"`
}

// NewDefaultConfig creates an instance of the broker config with default
// values.
func NewDefaultConfig() Config {
	return Config{
		Level:   encoding.LogLevel{Level: logging.InfoLevel},
		Enabled: false,
		SocketConfig: SocketConfig{
			IP:            "127.0.0.1",
			Port:          3005,
			TransportType: "tcp",
			DialRetries:   5,
		},
		Patterns: []string{"data.*", "events.*"},
	}
}
