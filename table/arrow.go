// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package table

import (
	"context"
	"fmt"
	"iter"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rowscan/filter"
	"golang.org/x/sync/errgroup"
)

// SchemaFromArrow converts the fields of an arrow schema to columns.
func SchemaFromArrow(sc *arrow.Schema) (*Schema, error) {
	cols := make([]ColumnSpec, sc.NumFields())
	for i, f := range sc.Fields() {
		typ, err := typeFromArrow(f.Type)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", f.Name, err)
		}
		cols[i] = ColumnSpec{Name: f.Name, Type: typ}
	}

	return TryNewSchema(cols...)
}

func typeFromArrow(dt arrow.DataType) (filter.TypeTag, error) {
	switch dt.ID() {
	case arrow.INT32:
		return filter.TypeInt32, nil
	case arrow.INT64:
		return filter.TypeInt64, nil
	case arrow.FLOAT64:
		return filter.TypeFloat64, nil
	case arrow.BOOL:
		return filter.TypeBool, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return filter.TypeText, nil
	}

	return 0, fmt.Errorf("%w: arrow type %s", filter.ErrUnsupportedConversion, dt)
}

// ToArrowSchema returns the arrow schema with a nullable field per column.
func ToArrowSchema(sc *Schema) *arrow.Schema {
	fields := make([]arrow.Field, sc.ColumnCount())
	for i, c := range sc.cols {
		var dt arrow.DataType
		switch c.Type {
		case filter.TypeInt32:
			dt = arrow.PrimitiveTypes.Int32
		case filter.TypeInt64:
			dt = arrow.PrimitiveTypes.Int64
		case filter.TypeFloat64:
			dt = arrow.PrimitiveTypes.Float64
		case filter.TypeBool:
			dt = arrow.FixedWidthTypes.Boolean
		default:
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt, Nullable: true}
	}

	return arrow.NewSchema(fields, nil)
}

// RecordOptions control how the rows of a record are presented to
// predicates.
type RecordOptions struct {
	// RowKeyColumn names the text column holding row keys. If empty, rows
	// are keyed Row<n> with n the global row index.
	RowKeyColumn string
	// FirstRow is the global index of the first row of the record.
	FirstRow int64
	Mem      memory.Allocator
}

type recordRow struct {
	rec    arrow.Record
	keyCol int
	first  int64
	idx    int
}

func (r *recordRow) CellAt(index int) filter.Cell {
	col := r.rec.Column(index)
	if col.IsNull(r.idx) {
		return filter.MissingCell()
	}

	switch col := col.(type) {
	case *array.Int32:
		return filter.Int32Cell(col.Value(r.idx))
	case *array.Int64:
		return filter.Int64Cell(col.Value(r.idx))
	case *array.Float64:
		return filter.Float64Cell(col.Value(r.idx))
	case *array.Boolean:
		return filter.BoolCell(col.Value(r.idx))
	case *array.String:
		return filter.StringCell(col.Value(r.idx))
	case *array.LargeString:
		return filter.StringCell(col.Value(r.idx))
	}
	panic(fmt.Errorf("%w: cannot read arrow column of type %s",
		filter.ErrUnsupportedConversion, col.DataType()))
}

func (r *recordRow) RowKey() string {
	if r.keyCol < 0 {
		return "Row" + strconv.FormatInt(r.first+int64(r.idx), 10)
	}

	return r.CellAt(r.keyCol).String()
}

func rowKeyIndex(rec arrow.Record, name string) (int, error) {
	if name == "" {
		return -1, nil
	}

	indices := rec.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return -1, fmt.Errorf("%w: row key column '%s' not found",
			filter.ErrInvalidArgument, name)
	}

	if id := rec.Column(indices[0]).DataType().ID(); id != arrow.STRING && id != arrow.LARGE_STRING {
		return -1, fmt.Errorf("%w: row key column '%s' is not a string column",
			filter.ErrTypeMismatch, name)
	}

	return indices[0], nil
}

// RecordRows presents each row of rec as a filter.Row. The record must stay
// alive while the rows are used.
func RecordRows(rec arrow.Record, opts RecordOptions) (iter.Seq[filter.Row], error) {
	keyCol, err := rowKeyIndex(rec, opts.RowKeyColumn)
	if err != nil {
		return nil, err
	}

	return func(yield func(filter.Row) bool) {
		for i := range int(rec.NumRows()) {
			row := &recordRow{rec: rec, keyCol: keyCol, first: opts.FirstRow, idx: i}
			if !yield(row) {
				return
			}
		}
	}, nil
}

// FilterRecord returns a new record holding the rows of rec kept by f and
// the columns f materializes. The filter must have been validated against
// the schema of rec.
func FilterRecord(ctx context.Context, rec arrow.Record, f *Filter, opts RecordOptions) (arrow.Record, error) {
	keyCol, err := rowKeyIndex(rec, opts.RowKeyColumn)
	if err != nil {
		return nil, err
	}

	mem := opts.Mem
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	keep := f.evaluator()
	bldr := array.NewBooleanBuilder(mem)
	defer bldr.Release()

	n := int(rec.NumRows())
	bldr.Reserve(n)
	row := &recordRow{rec: rec, keyCol: keyCol, first: opts.FirstRow}
	for i := range n {
		row.idx = i
		bldr.UnsafeAppend(f.inRange(opts.FirstRow+int64(i)) && keep(row))
	}

	mask := bldr.NewBooleanArray()
	defer mask.Release()

	ctx = compute.WithAllocator(ctx, mem)
	filtered, err := compute.FilterRecordBatch(ctx, rec, mask, compute.DefaultFilterOptions())
	if err != nil {
		return nil, err
	}

	if f.materialized == nil {
		return filtered, nil
	}
	defer filtered.Release()

	fields := make([]arrow.Field, len(f.materialized))
	cols := make([]arrow.Array, len(f.materialized))
	for i, idx := range f.materialized {
		fields[i], cols[i] = filtered.Schema().Field(idx), filtered.Column(idx)
	}

	return array.NewRecord(arrow.NewSchema(fields, nil), cols, filtered.NumRows()), nil
}

// FilterRecords applies f to consecutive record batches of one table,
// running at most maxWorkers batches concurrently. Row indices continue
// across batches. The output holds one record per input batch, in order.
func FilterRecords(ctx context.Context, recs []arrow.Record, f *Filter, opts RecordOptions, maxWorkers int) ([]arrow.Record, error) {
	out := make([]arrow.Record, len(recs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(maxWorkers, 1))

	first := opts.FirstRow
	for i, rec := range recs {
		batchOpts := opts
		batchOpts.FirstRow = first
		first += rec.NumRows()

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := FilterRecord(ctx, rec, f, batchOpts)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			out[i] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, r := range out {
			if r != nil {
				r.Release()
			}
		}

		return nil, err
	}

	return out, nil
}
