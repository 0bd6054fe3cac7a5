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

import "github.com/pkg/errors"

var (
	// ErrTimerExists signals a timer name already scheduled. Replacement is
	// explicit: cancel first, then set.
	ErrTimerExists = errors.New("timer name already exists")
	// ErrTimerNotFound signals a cancel for an unknown timer name.
	ErrTimerNotFound = errors.New("timer not found")
	// ErrTimeInPast signals an alert or start time before now without
	// allow-past.
	ErrTimeInPast = errors.New("time is in the past")
	// ErrStopBeforeStart signals stop <= start on an interval timer.
	ErrStopBeforeStart = errors.New("stop time not after start time")
	// ErrZeroInterval signals an interval timer with a non-positive
	// interval.
	ErrZeroInterval = errors.New("timer interval must be positive")
	// ErrEmptyName signals a timer registered without a name.
	ErrEmptyName = errors.New("timer name is empty")
	// ErrNilHandler signals a timer registered without a handler.
	ErrNilHandler = errors.New("timer handler is nil")
	// ErrUnknownMode signals a clock mode outside the enumeration.
	ErrUnknownMode = errors.New("unknown clock mode")
)
