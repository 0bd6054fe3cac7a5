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

// QuoteSchema returns the columnar schema for quote ticks.
func QuoteSchema(meta BatchMeta) *arrow.Schema {
	md := buildMetadata(meta)
	return arrow.NewSchema([]arrow.Field{
		{Name: "bid_price", Type: arrow.PrimitiveTypes.Int64},
		{Name: "ask_price", Type: arrow.PrimitiveTypes.Int64},
		{Name: "bid_size", Type: arrow.PrimitiveTypes.Uint64},
		{Name: "ask_size", Type: arrow.PrimitiveTypes.Uint64},
		{Name: "ts_event", Type: arrow.PrimitiveTypes.Int64},
		{Name: "ts_init", Type: arrow.PrimitiveTypes.Int64},
	}, &md)
}

// EncodeQuotes produces a record batch from a slice of quotes. The caller
// releases the returned record.
func EncodeQuotes(meta BatchMeta, quotes []types.Quote) (arrow.Record, error) {
	b := array.NewRecordBuilder(alloc, QuoteSchema(meta))
	defer b.Release()

	for _, q := range quotes {
		b.Field(0).(*array.Int64Builder).Append(q.BidPrice.Raw())
		b.Field(1).(*array.Int64Builder).Append(q.AskPrice.Raw())
		b.Field(2).(*array.Uint64Builder).Append(q.BidSize.Raw())
		b.Field(3).(*array.Uint64Builder).Append(q.AskSize.Raw())
		b.Field(4).(*array.Int64Builder).Append(q.TsEvent)
		b.Field(5).(*array.Int64Builder).Append(q.TsInit)
	}
	return b.NewRecord(), nil
}

// DecodeQuotes reconstructs quotes from a batch and its metadata.
func DecodeQuotes(rec arrow.Record) ([]types.Quote, error) {
	meta, err := DecodeMeta(rec.Schema())
	if err != nil {
		return nil, err
	}
	cols := make(map[string]*array.Int64, 4)
	for _, name := range []string{"bid_price", "ask_price", "ts_event", "ts_init"} {
		col, err := int64Column(rec, name)
		if err != nil {
			return nil, err
		}
		cols[name] = col
	}
	sizes := make(map[string]*array.Uint64, 2)
	for _, name := range []string{"bid_size", "ask_size"} {
		col, err := uint64Column(rec, name)
		if err != nil {
			return nil, err
		}
		sizes[name] = col
	}

	out := make([]types.Quote, 0, rec.NumRows())
	for i := 0; i < int(rec.NumRows()); i++ {
		bid, err := decodePrice(cols["bid_price"].Value(i), meta.PricePrecision)
		if err != nil {
			return nil, err
		}
		ask, err := decodePrice(cols["ask_price"].Value(i), meta.PricePrecision)
		if err != nil {
			return nil, err
		}
		bidSz, err := decodeQuantity(sizes["bid_size"].Value(i), meta.SizePrecision)
		if err != nil {
			return nil, err
		}
		askSz, err := decodeQuantity(sizes["ask_size"].Value(i), meta.SizePrecision)
		if err != nil {
			return nil, err
		}
		out = append(out, types.Quote{
			InstrumentID: meta.InstrumentID,
			BidPrice:     bid,
			AskPrice:     ask,
			BidSize:      bidSz,
			AskSize:      askSz,
			TsEvent:      cols["ts_event"].Value(i),
			TsInit:       cols["ts_init"].Value(i),
		})
	}
	return out, nil
}
