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

// Package encoding holds wrappers over primitive types so they can be
// represented as strings in the TOML configuration and on command line
// flags.
package encoding

import (
	"strconv"
	"time"

	"code.stratatrade.io/strata/logging"
)

// Duration is a wrapper over an actual duration so it can be represented
// as a string in the TOML configuration.
type Duration struct {
	time.Duration
}

// Get returns the stored duration.
func (d *Duration) Get() time.Duration {
	return d.Duration
}

// UnmarshalText unmarshals a duration from bytes.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// UnmarshalFlag unmarshals a duration from a command line flag.
func (d *Duration) UnmarshalFlag(s string) error {
	return d.UnmarshalText([]byte(s))
}

// MarshalText marshals a duration into bytes.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogLevel is a wrapper over the actual log level so it can be specified
// as a string in the TOML configuration.
type LogLevel struct {
	logging.Level
}

// Get returns the stored level.
func (l *LogLevel) Get() logging.Level {
	return l.Level
}

// UnmarshalText unmarshals a log level from bytes.
func (l *LogLevel) UnmarshalText(text []byte) error {
	var err error
	l.Level, err = logging.ParseLevel(string(text))
	return err
}

// UnmarshalFlag unmarshals a log level from a command line flag.
func (l *LogLevel) UnmarshalFlag(s string) error {
	return l.UnmarshalText([]byte(s))
}

// MarshalText marshals a log level into bytes.
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Bool is a wrapper over bool so it can round-trip through TOML and flags
// uniformly.
type Bool bool

// UnmarshalText unmarshals a bool from bytes.
func (b *Bool) UnmarshalText(text []byte) error {
	v, err := strconv.ParseBool(string(text))
	if err != nil {
		return err
	}
	*b = Bool(v)
	return nil
}

// UnmarshalFlag unmarshals a bool from a command line flag.
func (b *Bool) UnmarshalFlag(s string) error {
	return b.UnmarshalText([]byte(s))
}

// MarshalText marshals a bool into bytes.
func (b Bool) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatBool(bool(b))), nil
}
