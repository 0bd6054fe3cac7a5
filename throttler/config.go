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

package throttler

import (
	"time"

	"code.stratatrade.io/strata/config/encoding"
	"code.stratatrade.io/strata/logging"
)

const namedLogger = "throttler"

// Mode selects what happens to messages over the rate cap.
type Mode string

const (
	// ModeBuffer queues excess messages and drains them as the budget
	// replenishes.
	ModeBuffer Mode = "buffer"
	// ModeDrop passes excess messages to a drop callback and discards
	// them.
	ModeDrop Mode = "drop"
)

// UnmarshalText unmarshals a throttle mode from bytes.
func (m *Mode) UnmarshalText(text []byte) error {
	switch Mode(text) {
	case ModeBuffer, ModeDrop:
		*m = Mode(text)
		return nil
	}
	return ErrUnknownMode
}

// UnmarshalFlag unmarshals a throttle mode from a command line flag.
func (m *Mode) UnmarshalFlag(s string) error {
	return m.UnmarshalText([]byte(s))
}

// MarshalText marshals a throttle mode into bytes.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m), nil }

// Config represents the configuration of a throttler.
type Config struct {
	Level encoding.LogLevel `long:"log-level" description:"The throttler log level"`

	// Limit is the number of sends allowed per interval.
	Limit    int               `long:"limit" description:"Sends allowed per interval"`
	Interval encoding.Duration `long:"interval" description:"Replenishment interval"`
	Mode     Mode              `long:"mode" description:"Over-limit behaviour (buffer or drop)" choice:"buffer" choice:"drop"`
}

// NewDefaultConfig creates an instance of the throttler config with
// default values.
func NewDefaultConfig() Config {
	return Config{
		Level:    encoding.LogLevel{Level: logging.InfoLevel},
		Limit:    100,
		Interval: encoding.Duration{Duration: time.Second},
		Mode:     ModeBuffer,
	}
}
