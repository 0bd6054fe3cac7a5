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

// BarSchema returns the columnar schema for bars. The bar type rides in
// the metadata alongside the instrument.
func BarSchema(meta BatchMeta, barType types.BarType) *arrow.Schema {
	md := buildMetadata(meta, MetaBarType, barType.String())
	return arrow.NewSchema([]arrow.Field{
		{Name: "open", Type: arrow.PrimitiveTypes.Int64},
		{Name: "high", Type: arrow.PrimitiveTypes.Int64},
		{Name: "low", Type: arrow.PrimitiveTypes.Int64},
		{Name: "close", Type: arrow.PrimitiveTypes.Int64},
		{Name: "volume", Type: arrow.PrimitiveTypes.Uint64},
		{Name: "ts_event", Type: arrow.PrimitiveTypes.Int64},
		{Name: "ts_init", Type: arrow.PrimitiveTypes.Int64},
	}, &md)
}

// EncodeBars produces a record batch from a slice of bars sharing one bar
// type. The caller releases the returned record.
func EncodeBars(meta BatchMeta, barType types.BarType, bars []types.Bar) (arrow.Record, error) {
	b := array.NewRecordBuilder(alloc, BarSchema(meta, barType))
	defer b.Release()

	for _, bar := range bars {
		b.Field(0).(*array.Int64Builder).Append(bar.Open.Raw())
		b.Field(1).(*array.Int64Builder).Append(bar.High.Raw())
		b.Field(2).(*array.Int64Builder).Append(bar.Low.Raw())
		b.Field(3).(*array.Int64Builder).Append(bar.Close.Raw())
		b.Field(4).(*array.Uint64Builder).Append(bar.Volume.Raw())
		b.Field(5).(*array.Int64Builder).Append(bar.TsEvent)
		b.Field(6).(*array.Int64Builder).Append(bar.TsInit)
	}
	return b.NewRecord(), nil
}

// DecodeBars reconstructs bars from a batch and its metadata.
func DecodeBars(rec arrow.Record) ([]types.Bar, error) {
	meta, err := DecodeMeta(rec.Schema())
	if err != nil {
		return nil, err
	}
	rawBarType, err := metaValue(rec.Schema().Metadata(), MetaBarType)
	if err != nil {
		return nil, err
	}
	barType, err := types.ParseBarType(rawBarType)
	if err != nil {
		return nil, &MetadataError{Field: MetaBarType, Reason: "is malformed"}
	}

	cols := make(map[string]*array.Int64, 6)
	for _, name := range []string{"open", "high", "low", "close", "ts_event", "ts_init"} {
		col, err := int64Column(rec, name)
		if err != nil {
			return nil, err
		}
		cols[name] = col
	}
	volume, err := uint64Column(rec, "volume")
	if err != nil {
		return nil, err
	}

	out := make([]types.Bar, 0, rec.NumRows())
	for i := 0; i < int(rec.NumRows()); i++ {
		open, err := decodePrice(cols["open"].Value(i), meta.PricePrecision)
		if err != nil {
			return nil, err
		}
		high, err := decodePrice(cols["high"].Value(i), meta.PricePrecision)
		if err != nil {
			return nil, err
		}
		low, err := decodePrice(cols["low"].Value(i), meta.PricePrecision)
		if err != nil {
			return nil, err
		}
		closep, err := decodePrice(cols["close"].Value(i), meta.PricePrecision)
		if err != nil {
			return nil, err
		}
		vol, err := decodeQuantity(volume.Value(i), meta.SizePrecision)
		if err != nil {
			return nil, err
		}
		out = append(out, types.Bar{
			BarType: barType,
			Open:    open,
			High:    high,
			Low:     low,
			Close:   closep,
			Volume:  vol,
			TsEvent: cols["ts_event"].Value(i),
			TsInit:  cols["ts_init"].Value(i),
		})
	}
	return out, nil
}
