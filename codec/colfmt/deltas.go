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

package colfmt

import (
	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"

	"code.stratatrade.io/strata/types"
)

// DeltaSchema returns the columnar schema for book deltas.
func DeltaSchema(meta BatchMeta) *arrow.Schema {
	md := buildMetadata(meta)
	return arrow.NewSchema([]arrow.Field{
		{Name: "action", Type: arrow.PrimitiveTypes.Uint8},
		{Name: "side", Type: arrow.PrimitiveTypes.Uint8},
		{Name: "price", Type: arrow.PrimitiveTypes.Int64},
		{Name: "size", Type: arrow.PrimitiveTypes.Uint64},
		{Name: "order_id", Type: arrow.PrimitiveTypes.Uint64},
		{Name: "flags", Type: arrow.PrimitiveTypes.Uint8},
		{Name: "sequence", Type: arrow.PrimitiveTypes.Uint64},
		{Name: "ts_event", Type: arrow.PrimitiveTypes.Int64},
		{Name: "ts_init", Type: arrow.PrimitiveTypes.Int64},
	}, &md)
}

// EncodeDeltas produces a record batch from a slice of book deltas. The
// caller releases the returned record.
func EncodeDeltas(meta BatchMeta, deltas []types.BookDelta) (arrow.Record, error) {
	b := array.NewRecordBuilder(alloc, DeltaSchema(meta))
	defer b.Release()

	for _, d := range deltas {
		b.Field(0).(*array.Uint8Builder).Append(uint8(d.Action))
		b.Field(1).(*array.Uint8Builder).Append(uint8(d.Order.Side))
		b.Field(2).(*array.Int64Builder).Append(d.Order.Price.Raw())
		b.Field(3).(*array.Uint64Builder).Append(d.Order.Size.Raw())
		b.Field(4).(*array.Uint64Builder).Append(d.Order.OrderID)
		b.Field(5).(*array.Uint8Builder).Append(uint8(d.Flags))
		b.Field(6).(*array.Uint64Builder).Append(d.Sequence)
		b.Field(7).(*array.Int64Builder).Append(d.TsEvent)
		b.Field(8).(*array.Int64Builder).Append(d.TsInit)
	}
	return b.NewRecord(), nil
}

// DecodeDeltas reconstructs book deltas from a batch and its metadata.
func DecodeDeltas(rec arrow.Record) ([]types.BookDelta, error) {
	meta, err := DecodeMeta(rec.Schema())
	if err != nil {
		return nil, err
	}
	action, err := uint8Column(rec, "action")
	if err != nil {
		return nil, err
	}
	side, err := uint8Column(rec, "side")
	if err != nil {
		return nil, err
	}
	price, err := int64Column(rec, "price")
	if err != nil {
		return nil, err
	}
	size, err := uint64Column(rec, "size")
	if err != nil {
		return nil, err
	}
	orderID, err := uint64Column(rec, "order_id")
	if err != nil {
		return nil, err
	}
	flags, err := uint8Column(rec, "flags")
	if err != nil {
		return nil, err
	}
	sequence, err := uint64Column(rec, "sequence")
	if err != nil {
		return nil, err
	}
	tsEvent, err := int64Column(rec, "ts_event")
	if err != nil {
		return nil, err
	}
	tsInit, err := int64Column(rec, "ts_init")
	if err != nil {
		return nil, err
	}

	out := make([]types.BookDelta, 0, rec.NumRows())
	for i := 0; i < int(rec.NumRows()); i++ {
		px, err := decodePrice(price.Value(i), meta.PricePrecision)
		if err != nil {
			return nil, err
		}
		sz, err := decodeQuantity(size.Value(i), meta.SizePrecision)
		if err != nil {
			return nil, err
		}
		out = append(out, types.BookDelta{
			InstrumentID: meta.InstrumentID,
			Action:       types.BookAction(action.Value(i)),
			Order: types.BookOrder{
				Side:    types.Side(side.Value(i)),
				Price:   px,
				Size:    sz,
				OrderID: orderID.Value(i),
			},
			Flags:    types.RecordFlags(flags.Value(i)),
			Sequence: sequence.Value(i),
			TsEvent:  tsEvent.Value(i),
			TsInit:   tsInit.Value(i),
		})
	}
	return out, nil
}
