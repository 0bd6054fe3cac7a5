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
	"fmt"

	"code.stratatrade.io/strata/messages"
	"code.stratatrade.io/strata/types"
)

// Reserved topic spaces. Everything outside these prefixes is user topic
// space.
const (
	TopicPrefixData     = "data"
	TopicPrefixOrders   = "events.order"
	TopicPrefixPosition = "events.position"
	TopicPrefixAccount  = "events.account"
	TopicPrefixTime     = "system.time"
	TopicPrefixLog      = "system.log"
)

// DataTopic returns the reserved topic a datum of the given kind is
// published under: data.{kind}.{venue}.{symbol}.
func DataTopic(kind messages.DataKind, id types.InstrumentID) string {
	return fmt.Sprintf("%s.%s.%s.%s", TopicPrefixData, kind, id.Venue, id.Symbol)
}

// DataPattern returns the subscription pattern covering every instrument
// of a venue for the given kind.
func DataPattern(kind messages.DataKind, venue types.Venue) string {
	return fmt.Sprintf("%s.%s.%s.*", TopicPrefixData, kind, venue)
}

// BarTopic returns the reserved topic bars of the given type are published
// under.
func BarTopic(barType types.BarType) string {
	return fmt.Sprintf("%s.%s.%s.%s", TopicPrefixData, messages.KindBars, barType.InstrumentID.Venue, barType)
}

// TimeTopic returns the reserved topic a named timer publishes under.
func TimeTopic(timerName string) string {
	return TopicPrefixTime + "." + timerName
}

// LogTopic returns the reserved topic runtime warnings of the given
// component are published under.
func LogTopic(component string) string {
	return TopicPrefixLog + "." + component
}

// OrderEventTopic returns the reserved topic order events for an
// instrument are published under.
func OrderEventTopic(id types.InstrumentID) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefixOrders, id.Venue, id.Symbol)
}
