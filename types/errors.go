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

package types

import "fmt"

// ErrorKind is the stable classification of a kernel error. Kind codes are
// part of the boundary contract and serialisable; none of them carries a
// stack trace across the boundary.
type ErrorKind uint8

const (
	// KindConstruction covers invalid precisions, out-of-range numerics,
	// malformed identifiers and unknown currencies.
	KindConstruction ErrorKind = 1
	// KindProtocol covers out-of-order sequences, duplicate order IDs,
	// deletes of absent keys outside snapshots and crossed books.
	KindProtocol ErrorKind = 2
	// KindRouting covers unregistered endpoints, duplicate correlation IDs
	// and pattern parse failures.
	KindRouting ErrorKind = 3
	// KindScheduling covers duplicate timer names, past times without
	// allow_past and inverted stop/start.
	KindScheduling ErrorKind = 4
	// KindResource covers full bounded channels and throttler drops.
	KindResource ErrorKind = 5
	// KindSerialization covers missing metadata, type mismatches and
	// truncation.
	KindSerialization ErrorKind = 6
	// KindTimeout covers elapsed request/response deadlines.
	KindTimeout ErrorKind = 7
)

func (k ErrorKind) String() string {
	switch k {
	case KindConstruction:
		return "construction"
	case KindProtocol:
		return "protocol"
	case KindRouting:
		return "routing"
	case KindScheduling:
		return "scheduling"
	case KindResource:
		return "resource"
	case KindSerialization:
		return "serialization"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// KernelError is an error crossing the kernel boundary, carrying a stable
// kind code and a human message.
type KernelError struct {
	Kind    ErrorKind `json:"kind" msgpack:"kind"`
	Message string    `json:"message" msgpack:"message"`
	cause   error
}

// NewKernelError wraps a cause with a kind code for the boundary.
func NewKernelError(kind ErrorKind, cause error) *KernelError {
	return &KernelError{Kind: kind, Message: cause.Error(), cause: cause}
}

// KernelErrorf builds a kernel error from a format string.
func KernelErrorf(kind ErrorKind, format string, args ...interface{}) *KernelError {
	return &KernelError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause for errors.Is/As within the process.
func (e *KernelError) Unwrap() error { return e.cause }
