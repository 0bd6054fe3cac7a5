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

package colfmt_test

import (
	"testing"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.stratatrade.io/strata/codec/colfmt"
	"code.stratatrade.io/strata/libs/num"
	"code.stratatrade.io/strata/types"
)

func batchMeta(t *testing.T) colfmt.BatchMeta {
	t.Helper()
	return colfmt.BatchMeta{
		InstrumentID:   types.MustInstrumentID("ETHUSDT-PERP.BINANCE"),
		PricePrecision: 2,
		SizePrecision:  3,
	}
}

func mustPrice(t *testing.T, s string) num.Price {
	t.Helper()
	p, err := num.NewPriceFromString(s)
	require.NoError(t, err)
	return p
}

func mustQty(t *testing.T, s string) num.Quantity {
	t.Helper()
	q, err := num.NewQuantityFromString(s)
	require.NoError(t, err)
	return q
}

func TestTradesRoundTrip(t *testing.T) {
	meta := batchMeta(t)
	in := []types.Trade{
		{
			InstrumentID: meta.InstrumentID,
			Price:        mustPrice(t, "1987.55"),
			Size:         mustQty(t, "0.025"),
			Aggressor:    types.AggressorBuyer,
			TradeID:      "T-1",
			TsEvent:      100,
			TsInit:       150,
		},
		{
			InstrumentID: meta.InstrumentID,
			Price:        mustPrice(t, "1987.60"),
			Size:         mustQty(t, "1.500"),
			Aggressor:    types.AggressorSeller,
			TradeID:      "T-2",
			TsEvent:      200,
			TsInit:       250,
		},
	}

	rec, err := colfmt.EncodeTrades(meta, in)
	require.NoError(t, err)
	defer rec.Release()
	require.EqualValues(t, 2, rec.NumRows())

	out, err := colfmt.DecodeTrades(rec)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestQuotesRoundTrip(t *testing.T) {
	meta := batchMeta(t)
	in := []types.Quote{{
		InstrumentID: meta.InstrumentID,
		BidPrice:     mustPrice(t, "100.10"),
		AskPrice:     mustPrice(t, "100.20"),
		BidSize:      mustQty(t, "3.500"),
		AskSize:      mustQty(t, "0.010"),
		TsEvent:      10,
		TsInit:       20,
	}}

	rec, err := colfmt.EncodeQuotes(meta, in)
	require.NoError(t, err)
	defer rec.Release()

	out, err := colfmt.DecodeQuotes(rec)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDeltasRoundTrip(t *testing.T) {
	meta := batchMeta(t)
	in := []types.BookDelta{{
		InstrumentID: meta.InstrumentID,
		Action:       types.BookActionAdd,
		Order: types.BookOrder{
			Side:    types.SideBuy,
			Price:   mustPrice(t, "100.50"),
			Size:    mustQty(t, "2.000"),
			OrderID: 42,
		},
		Flags:    types.FlagSnapshot | types.FlagLast,
		Sequence: 7,
		TsEvent:  100,
		TsInit:   120,
	}}

	rec, err := colfmt.EncodeDeltas(meta, in)
	require.NoError(t, err)
	defer rec.Release()

	out, err := colfmt.DecodeDeltas(rec)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestBarsRoundTrip(t *testing.T) {
	meta := batchMeta(t)
	barType, err := types.ParseBarType("ETHUSDT-PERP.BINANCE-1-MINUTE-EXTERNAL")
	require.NoError(t, err)

	in := []types.Bar{{
		BarType: barType,
		Open:    mustPrice(t, "100.00"),
		High:    mustPrice(t, "101.00"),
		Low:     mustPrice(t, "99.50"),
		Close:   mustPrice(t, "100.50"),
		Volume:  mustQty(t, "12.345"),
		TsEvent: 60_000,
		TsInit:  60_100,
	}}

	rec, err := colfmt.EncodeBars(meta, barType, in)
	require.NoError(t, err)
	defer rec.Release()

	out, err := colfmt.DecodeBars(rec)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeMissingMetadata(t *testing.T) {
	// a schema without table metadata must fail naming the field
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "price", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	rec := b.NewRecord()
	defer rec.Release()

	_, err := colfmt.DecodeTrades(rec)
	require.Error(t, err)
	var metaErr *colfmt.MetadataError
	require.ErrorAs(t, err, &metaErr)
	assert.Equal(t, colfmt.MetaInstrumentID, metaErr.Field)
}

func TestDecodeMalformedPrecision(t *testing.T) {
	md := arrow.NewMetadata(
		[]string{colfmt.MetaInstrumentID, colfmt.MetaPricePrecision, colfmt.MetaSizePrecision},
		[]string{"ETHUSDT-PERP.BINANCE", "not-a-number", "3"},
	)
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "price", Type: arrow.PrimitiveTypes.Int64},
	}, &md)

	_, err := colfmt.DecodeMeta(schema)
	require.Error(t, err)
	var metaErr *colfmt.MetadataError
	require.ErrorAs(t, err, &metaErr)
	assert.Equal(t, colfmt.MetaPricePrecision, metaErr.Field)
}

func TestDecodeMissingColumn(t *testing.T) {
	meta := batchMeta(t)
	// a quote batch is not a trade batch
	rec, err := colfmt.EncodeQuotes(meta, nil)
	require.NoError(t, err)
	defer rec.Release()

	_, err = colfmt.DecodeTrades(rec)
	require.Error(t, err)
	var colErr *colfmt.ColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "price", colErr.Column)
}
