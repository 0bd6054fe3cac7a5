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

// TradeSchema returns the columnar schema for trade ticks.
func TradeSchema(meta BatchMeta) *arrow.Schema {
	md := buildMetadata(meta)
	return arrow.NewSchema([]arrow.Field{
		{Name: "price", Type: arrow.PrimitiveTypes.Int64},
		{Name: "size", Type: arrow.PrimitiveTypes.Uint64},
		{Name: "aggressor_side", Type: arrow.PrimitiveTypes.Uint8},
		{Name: "trade_id", Type: arrow.BinaryTypes.String},
		{Name: "ts_event", Type: arrow.PrimitiveTypes.Int64},
		{Name: "ts_init", Type: arrow.PrimitiveTypes.Int64},
	}, &md)
}

// EncodeTrades produces a record batch from a slice of trades. The caller
// releases the returned record.
func EncodeTrades(meta BatchMeta, trades []types.Trade) (arrow.Record, error) {
	b := array.NewRecordBuilder(alloc, TradeSchema(meta))
	defer b.Release()

	for _, t := range trades {
		b.Field(0).(*array.Int64Builder).Append(t.Price.Raw())
		b.Field(1).(*array.Uint64Builder).Append(t.Size.Raw())
		b.Field(2).(*array.Uint8Builder).Append(uint8(t.Aggressor))
		b.Field(3).(*array.StringBuilder).Append(string(t.TradeID))
		b.Field(4).(*array.Int64Builder).Append(t.TsEvent)
		b.Field(5).(*array.Int64Builder).Append(t.TsInit)
	}
	return b.NewRecord(), nil
}

// DecodeTrades reconstructs trades from a batch and its metadata.
func DecodeTrades(rec arrow.Record) ([]types.Trade, error) {
	meta, err := DecodeMeta(rec.Schema())
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
	aggressor, err := uint8Column(rec, "aggressor_side")
	if err != nil {
		return nil, err
	}
	tradeID, err := stringColumn(rec, "trade_id")
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

	out := make([]types.Trade, 0, rec.NumRows())
	for i := 0; i < int(rec.NumRows()); i++ {
		px, err := decodePrice(price.Value(i), meta.PricePrecision)
		if err != nil {
			return nil, err
		}
		sz, err := decodeQuantity(size.Value(i), meta.SizePrecision)
		if err != nil {
			return nil, err
		}
		out = append(out, types.Trade{
			InstrumentID: meta.InstrumentID,
			Price:        px,
			Size:         sz,
			Aggressor:    types.AggressorSide(aggressor.Value(i)),
			TradeID:      types.TradeID(tradeID.Value(i)),
			TsEvent:      tsEvent.Value(i),
			TsInit:       tsInit.Value(i),
		})
	}
	return out, nil
}
