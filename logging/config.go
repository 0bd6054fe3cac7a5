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

package logging

// CustomLevel wraps a Level so it can be read from TOML configuration and
// command line flags as a string.
type CustomLevel struct {
	Level
}

// UnmarshalText unmarshals a level from bytes.
func (l *CustomLevel) UnmarshalText(text []byte) error {
	var err error
	l.Level, err = ParseLevel(string(text))
	return err
}

// UnmarshalFlag unmarshals a level from a command line flag.
func (l *CustomLevel) UnmarshalFlag(s string) error {
	return l.UnmarshalText([]byte(s))
}

// MarshalText marshals a level into bytes.
func (l CustomLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Config represents the configuration of the logger.
type Config struct {
	Environment string      `long:"env" choice:"dev" choice:"prod" description:"The logging environment to use"`
	Level       CustomLevel `long:"level" description:"The global log level"`
}

// NewDefaultConfig creates an instance of the logging config with default
// values.
func NewDefaultConfig() Config {
	return Config{
		Environment: "prod",
		Level:       CustomLevel{Level: InfoLevel},
	}
}
