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

// Package codec serializes data primitives. Numeric fields travel as exact
// decimal strings under JSON and MsgPack; the columnar format in the
// colfmt subpackage carries raw fixed-point integers instead.
package codec

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Encoding enumerates the supported wire encodings.
type Encoding string

const (
	EncodingJSON     Encoding = "json"
	EncodingMsgPack  Encoding = "msgpack"
	EncodingColumnar Encoding = "columnar"
)

// ErrUnknownEncoding signals an encoding outside the enumeration.
var ErrUnknownEncoding = errors.New("unknown encoding")

// UnmarshalText unmarshals an encoding from bytes.
func (e *Encoding) UnmarshalText(text []byte) error {
	switch Encoding(text) {
	case EncodingJSON, EncodingMsgPack, EncodingColumnar:
		*e = Encoding(text)
		return nil
	}
	return ErrUnknownEncoding
}

// UnmarshalFlag unmarshals an encoding from a command line flag.
func (e *Encoding) UnmarshalFlag(s string) error {
	return e.UnmarshalText([]byte(s))
}

// MarshalText marshals an encoding into bytes.
func (e Encoding) MarshalText() ([]byte, error) { return []byte(e), nil }

// Codec round-trips values through one wire encoding.
type Codec interface {
	Name() Encoding
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// ForEncoding returns the codec for row-oriented encodings. The columnar
// encoding is batch-oriented and lives in the colfmt subpackage.
func ForEncoding(enc Encoding) (Codec, error) {
	switch enc {
	case EncodingJSON:
		return jsonCodec{}, nil
	case EncodingMsgPack:
		return msgpackCodec{}, nil
	}
	return nil, ErrUnknownEncoding
}

type jsonCodec struct{}

func (jsonCodec) Name() Encoding { return EncodingJSON }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	buf, err := json.Marshal(v)
	return buf, errors.Wrap(err, "json marshal")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return errors.Wrap(json.Unmarshal(data, v), "json unmarshal")
}

type msgpackCodec struct{}

func (msgpackCodec) Name() Encoding { return EncodingMsgPack }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	buf, err := msgpack.Marshal(v)
	return buf, errors.Wrap(err, "msgpack marshal")
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return errors.Wrap(msgpack.Unmarshal(data, v), "msgpack unmarshal")
}
