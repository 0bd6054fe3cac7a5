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

package clock

import (
	"code.stratatrade.io/strata/config/encoding"
	"code.stratatrade.io/strata/logging"
)

const namedLogger = "clock"

// Mode selects the time source of a runtime.
type Mode string

const (
	// ModeTest drives time explicitly for deterministic replay.
	ModeTest Mode = "test"
	// ModeLive follows the system clock.
	ModeLive Mode = "live"
)

// UnmarshalText unmarshals a clock mode from bytes.
func (m *Mode) UnmarshalText(text []byte) error {
	switch Mode(text) {
	case ModeTest, ModeLive:
		*m = Mode(text)
		return nil
	}
	return ErrUnknownMode
}

// UnmarshalFlag unmarshals a clock mode from a command line flag.
func (m *Mode) UnmarshalFlag(s string) error {
	return m.UnmarshalText([]byte(s))
}

// MarshalText marshals a clock mode into bytes.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m), nil }

// Config represents the configuration of the clock subsystem.
type Config struct {
	Level encoding.LogLevel `long:"log-level" description:"The clock log level"`
	Mode  Mode              `long:"mode" description:"Time source (test or live)" choice:"test" choice:"live"`
}

// NewDefaultConfig creates an instance of the clock config with default
// values.
func NewDefaultConfig() Config {
	return Config{
		Level: encoding.LogLevel{Level: logging.InfoLevel},
		Mode:  ModeLive,
	}
}
