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

package book

import (
	"code.stratatrade.io/strata/config/encoding"
	"code.stratatrade.io/strata/logging"
)

const namedLogger = "book"

// Config represents the configuration of the order book engine. Crossed
// book tolerance and L3 update semantics differ between venues, so both
// stay configuration rather than hard-coded policy.
type Config struct {
	Level encoding.LogLevel `long:"log-level" description:"The book engine log level"`

	// AllowCrossed tolerates momentarily crossed books instead of
	// rejecting the offending delta.
	AllowCrossed encoding.Bool `long:"allow-crossed" description:"Tolerate momentarily crossed books"`

	// UpdateIsReorder treats an L3 update at an unchanged price as losing
	// queue position rather than amending in place.
	UpdateIsReorder encoding.Bool `long:"update-is-reorder" description:"L3 updates at unchanged price lose queue position"`

	// TrackSequence enforces monotone delta sequence numbers.
	TrackSequence encoding.Bool `long:"track-sequence" description:"Enforce monotone delta sequences"`
}

// NewDefaultConfig creates an instance of the book engine config with
// default values.
func NewDefaultConfig() Config {
	return Config{
		Level:           encoding.LogLevel{Level: logging.InfoLevel},
		AllowCrossed:    false,
		UpdateIsReorder: false,
		TrackSequence:   true,
	}
}
