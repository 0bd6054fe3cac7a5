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

package msgbus

import (
	"time"

	"code.stratatrade.io/strata/config/encoding"
	"code.stratatrade.io/strata/logging"
)

const namedLogger = "msgbus"

// Config represents the configuration of the message bus.
type Config struct {
	Level encoding.LogLevel `long:"log-level" description:"The message bus log level"`

	// MatchCacheSize bounds the per-topic match set cache.
	MatchCacheSize int `long:"match-cache-size" description:"Number of topic match sets to cache"`

	// SlowHandlerThreshold is the handler duration above which a warning is
	// logged. Zero disables the check.
	SlowHandlerThreshold encoding.Duration `long:"slow-handler-threshold" description:"Handler duration above which a warning is logged"`
}

// NewDefaultConfig creates an instance of the message bus config with
// default values.
func NewDefaultConfig() Config {
	return Config{
		Level:                encoding.LogLevel{Level: logging.InfoLevel},
		MatchCacheSize:       1024,
		SlowHandlerThreshold: encoding.Duration{Duration: 100 * time.Millisecond},
	}
}
