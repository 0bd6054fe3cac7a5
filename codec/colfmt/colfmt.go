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

// Package colfmt maps data primitives to columnar record batches. Numeric
// fields travel as fixed-width integer columns carrying the raw
// fixed-point value; the instrument and its precisions live in the table
// metadata, so decode(encode(x)) reconstructs x exactly.
package colfmt

import (
	"fmt"
	"strconv"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/pkg/errors"

	"code.stratatrade.io/strata/libs/num"
	"code.stratatrade.io/strata/types"
)

// Metadata keys every batch carries.
const (
	MetaInstrumentID   = "instrument_id"
	MetaPricePrecision = "price_precision"
	MetaSizePrecision  = "size_precision"
	MetaBarType        = "bar_type"
)

// MetadataError names the metadata field a decode could not use.
type MetadataError struct {
	Field  string
	Reason string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("columnar metadata %q %s", e.Field, e.Reason)
}

// ColumnError names the column a decode could not find or read.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("columnar batch missing column %q", e.Column)
}

// BatchMeta is the decoded table metadata shared by every batch.
type BatchMeta struct {
	InstrumentID   types.InstrumentID
	PricePrecision uint8
	SizePrecision  uint8
}

func buildMetadata(meta BatchMeta, extra ...string) arrow.Metadata {
	keys := []string{MetaInstrumentID, MetaPricePrecision, MetaSizePrecision}
	vals := []string{
		meta.InstrumentID.String(),
		strconv.Itoa(int(meta.PricePrecision)),
		strconv.Itoa(int(meta.SizePrecision)),
	}
	for i := 0; i+1 < len(extra); i += 2 {
		keys = append(keys, extra[i])
		vals = append(vals, extra[i+1])
	}
	return arrow.NewMetadata(keys, vals)
}

func metaValue(md arrow.Metadata, key string) (string, error) {
	i := md.FindKey(key)
	if i < 0 {
		return "", &MetadataError{Field: key, Reason: "is missing"}
	}
	return md.Values()[i], nil
}

func metaPrecision(md arrow.Metadata, key string) (uint8, error) {
	s, err := metaValue(md, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, &MetadataError{Field: key, Reason: "is malformed"}
	}
	if err := num.CheckPrecision(uint8(v)); err != nil {
		return 0, &MetadataError{Field: key, Reason: "is out of range"}
	}
	return uint8(v), nil
}

// DecodeMeta extracts the mandatory table metadata from a batch schema.
func DecodeMeta(schema *arrow.Schema) (BatchMeta, error) {
	md := schema.Metadata()
	rawID, err := metaValue(md, MetaInstrumentID)
	if err != nil {
		return BatchMeta{}, err
	}
	id, err := types.ParseInstrumentID(rawID)
	if err != nil {
		return BatchMeta{}, &MetadataError{Field: MetaInstrumentID, Reason: "is malformed"}
	}
	pricePrec, err := metaPrecision(md, MetaPricePrecision)
	if err != nil {
		return BatchMeta{}, err
	}
	sizePrec, err := metaPrecision(md, MetaSizePrecision)
	if err != nil {
		return BatchMeta{}, err
	}
	return BatchMeta{
		InstrumentID:   id,
		PricePrecision: pricePrec,
		SizePrecision:  sizePrec,
	}, nil
}

// column resolvers, typed per arrow primitive

func int64Column(rec arrow.Record, name string) (*array.Int64, error) {
	idx := rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return nil, &ColumnError{Column: name}
	}
	col, ok := rec.Column(idx[0]).(*array.Int64)
	if !ok {
		return nil, &ColumnError{Column: name}
	}
	return col, nil
}

func uint64Column(rec arrow.Record, name string) (*array.Uint64, error) {
	idx := rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return nil, &ColumnError{Column: name}
	}
	col, ok := rec.Column(idx[0]).(*array.Uint64)
	if !ok {
		return nil, &ColumnError{Column: name}
	}
	return col, nil
}

func uint8Column(rec arrow.Record, name string) (*array.Uint8, error) {
	idx := rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return nil, &ColumnError{Column: name}
	}
	col, ok := rec.Column(idx[0]).(*array.Uint8)
	if !ok {
		return nil, &ColumnError{Column: name}
	}
	return col, nil
}

func stringColumn(rec arrow.Record, name string) (*array.String, error) {
	idx := rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return nil, &ColumnError{Column: name}
	}
	col, ok := rec.Column(idx[0]).(*array.String)
	if !ok {
		return nil, &ColumnError{Column: name}
	}
	return col, nil
}

func decodePrice(raw int64, precision uint8) (num.Price, error) {
	p, err := num.NewPriceFromRaw(raw, precision)
	return p, errors.Wrap(err, "price column")
}

func decodeQuantity(raw uint64, precision uint8) (num.Quantity, error) {
	q, err := num.NewQuantityFromRaw(raw, precision)
	return q, errors.Wrap(err, "size column")
}

var alloc = memory.DefaultAllocator
