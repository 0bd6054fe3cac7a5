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

package kernel

import (
	"code.stratatrade.io/strata/codec"
	"code.stratatrade.io/strata/config/encoding"
	"code.stratatrade.io/strata/libs/num"
	"code.stratatrade.io/strata/logging"
	"code.stratatrade.io/strata/throttler"
	"code.stratatrade.io/strata/types"
)

const namedLogger = "kernel"

// Config represents the configuration of a kernel runtime instance.
type Config struct {
	Level encoding.LogLevel `long:"log-level" description:"The kernel log level"`

	InstanceID string `long:"instance-id" description:"Unique runtime instance identifier"`
	TraderID   string `long:"trader-id" description:"Trader identity of this runtime"`

	// PricePrecisionMax and SizePrecisionMax cap the precision of ingested
	// data.
	PricePrecisionMax uint8 `long:"price-precision-max" description:"Maximum accepted price precision"`
	SizePrecisionMax  uint8 `long:"size-precision-max" description:"Maximum accepted size precision"`

	// BookTypeDefault is used when deltas arrive for an instrument with no
	// book yet.
	BookTypeDefault types.BookType `long:"book-type-default" description:"Granularity of books created on demand"`

	Serialization codec.Encoding `long:"serialization" description:"Wire encoding (json, msgpack or columnar)" choice:"json" choice:"msgpack" choice:"columnar"`

	// RegisteredCurrencies are added to the currency registry at startup.
	RegisteredCurrencies []string `long:"registered-currencies" description:"Extra currency codes to register"`

	// ThrottlerDefaults applies to throttlers created by the runtime.
	ThrottlerDefaults throttler.Config `group:"ThrottlerDefaults" namespace:"throttlerdefaults"`

	// TradeCacheSize bounds the per-instrument recent trade buffer.
	TradeCacheSize int `long:"trade-cache-size" description:"Recent trades kept per instrument"`
}

// NewDefaultConfig creates an instance of the kernel config with default
// values.
func NewDefaultConfig() Config {
	return Config{
		Level:             encoding.LogLevel{Level: logging.InfoLevel},
		InstanceID:        "strata-001",
		TraderID:          "TRADER-001",
		PricePrecisionMax: num.FixedPrecision,
		SizePrecisionMax:  num.FixedPrecision,
		BookTypeDefault:   types.BookTypeL2MBP,
		Serialization:     codec.EncodingMsgPack,
		ThrottlerDefaults: throttler.NewDefaultConfig(),
		TradeCacheSize:    1024,
	}
}
