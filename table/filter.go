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
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/rowscan/filter"
)

// Filter selects the rows a table scan returns: rows whose index lies in
// the inclusive range [FromRow, ToRow] and for which the predicate holds.
// Materialized lists the columns the scan needs to read, nil meaning all.
type Filter struct {
	predicate    filter.FilterPredicate
	fromRow      int64
	toRow        int64
	materialized []int
}

type FilterOption func(*Filter)

// WithPredicate sets the row predicate. A nil predicate keeps every row.
func WithPredicate(p filter.FilterPredicate) FilterOption {
	return func(f *Filter) { f.predicate = p }
}

// WithRowRange restricts the scan to the rows with an index in [from, to].
// A negative to leaves the range open ended.
func WithRowRange(from, to int64) FilterOption {
	return func(f *Filter) {
		f.fromRow, f.toRow = from, to
	}
}

// WithMaterializedColumns limits the columns a scan reads.
func WithMaterializedColumns(indices ...int) FilterOption {
	return func(f *Filter) { f.materialized = slices.Clone(indices) }
}

func NewFilter(opts ...FilterOption) *Filter {
	f := &Filter{toRow: -1}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

func (f *Filter) Predicate() filter.FilterPredicate { return f.predicate }
func (f *Filter) FromRow() int64                    { return f.fromRow }

// ToRow is the last row index included by the filter, or -1 for no limit.
func (f *Filter) ToRow() int64 { return f.toRow }

// MaterializedColumns returns the columns to read, nil meaning all columns.
func (f *Filter) MaterializedColumns() []int { return slices.Clone(f.materialized) }

// Validate checks the filter against the schema it is applied to. It must
// be called before the filter is used to scan rows of that schema.
func (f *Filter) Validate(schema filter.Schema) error {
	if f.fromRow < 0 {
		return fmt.Errorf("%w: row range cannot start at %d",
			filter.ErrInvalidArgument, f.fromRow)
	}
	if f.toRow >= 0 && f.toRow < f.fromRow {
		return fmt.Errorf("%w: row range [%d, %d] is empty",
			filter.ErrInvalidArgument, f.fromRow, f.toRow)
	}

	for _, idx := range f.materialized {
		if idx < 0 || idx >= schema.ColumnCount() {
			return fmt.Errorf("%w: materialized column %d of %d columns",
				filter.ErrIndexOutOfRange, idx, schema.ColumnCount())
		}
	}

	if f.predicate == nil {
		return nil
	}

	return filter.Validate(f.predicate, schema)
}

func (f *Filter) inRange(idx int64) bool {
	return idx >= f.fromRow && (f.toRow < 0 || idx <= f.toRow)
}

func (f *Filter) evaluator() func(filter.Row) bool {
	if f.predicate == nil {
		return func(filter.Row) bool { return true }
	}

	return filter.Evaluator(f.predicate)
}

// Rows yields the index and row of every row of rows kept by the filter.
// Iteration of rows stops as soon as the end of the row range is passed.
func (f *Filter) Rows(rows iter.Seq[filter.Row]) iter.Seq2[int64, filter.Row] {
	keep := f.evaluator()

	return func(yield func(int64, filter.Row) bool) {
		var idx int64 = -1
		for r := range rows {
			idx++
			if idx < f.fromRow {
				continue
			}
			if f.toRow >= 0 && idx > f.toRow {
				return
			}

			if keep(r) && !yield(idx, r) {
				return
			}
		}
	}
}

// Rearranged returns the filter for a table whose columns were reordered,
// column i moving to perm[i]. The result is validated against newSchema.
func (f *Filter) Rearranged(perm []int, newSchema filter.Schema) (*Filter, error) {
	out := f.clone()
	if f.predicate != nil {
		p, err := filter.MapIndices(f.predicate, perm)
		if err != nil {
			return nil, err
		}
		out.predicate = p
	}

	for i, idx := range out.materialized {
		if idx < 0 || idx >= len(perm) {
			return nil, fmt.Errorf("%w: no mapping for materialized column %d",
				filter.ErrIndexOutOfRange, idx)
		}
		out.materialized[i] = perm[idx]
	}
	slices.Sort(out.materialized)

	if err := out.Validate(newSchema); err != nil {
		return nil, err
	}

	return out, nil
}

// WithSpec returns the filter for a table whose column types changed to
// those of newSchema. The result is validated against newSchema.
func (f *Filter) WithSpec(newSchema filter.Schema) (*Filter, error) {
	out := f.clone()
	if f.predicate != nil {
		p, err := filter.ReplaceSpec(f.predicate, newSchema)
		if err != nil {
			return nil, err
		}
		out.predicate = p
	}

	if err := out.Validate(newSchema); err != nil {
		return nil, err
	}

	return out, nil
}

func (f *Filter) clone() *Filter {
	out := *f
	out.materialized = slices.Clone(f.materialized)

	return &out
}

func (f *Filter) String() string {
	var b strings.Builder
	b.WriteString("Filter(rows=[")
	b.WriteString(strconv.FormatInt(f.fromRow, 10))
	b.WriteString(", ")
	if f.toRow < 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strconv.FormatInt(f.toRow, 10))
	}
	b.WriteString("]")
	if f.materialized != nil {
		fmt.Fprintf(&b, ", columns=%v", f.materialized)
	}
	if f.predicate != nil {
		b.WriteString(", predicate=")
		b.WriteString(f.predicate.String())
	}
	b.WriteString(")")

	return b.String()
}
