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

package table_test

import (
	"slices"
	"testing"

	"github.com/rowscan/filter"
	"github.com/rowscan/filter/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func people() []filter.Row {
	mk := func(key string, age filter.Cell, name string, score float64) filter.Row {
		return filter.SliceRow{Key: key, Cells: []filter.Cell{
			age, filter.StringCell(name), filter.Float64Cell(score),
		}}
	}

	return []filter.Row{
		mk("r0", filter.Int32Cell(30), "Ann", 1.5),
		mk("r1", filter.MissingCell(), "Ann", 2.5),
		mk("r2", filter.Int32Cell(20), "Bob", 3.5),
		mk("r3", filter.Int32Cell(40), "Ann", 4.5),
		mk("r4", filter.Int32Cell(50), "Cid", 5.5),
	}
}

func keys(seq func(func(int64, filter.Row) bool)) []string {
	var out []string
	for _, r := range seq {
		out = append(out, r.RowKey())
	}

	return out
}

func TestFilterRows(t *testing.T) {
	f := table.NewFilter(table.WithPredicate(
		filter.Greater(filter.IntCol(0), 25).And(filter.Equal(filter.StringCol(1), "Ann"))))
	require.NoError(t, f.Validate(peopleSchema))

	assert.Equal(t, []string{"r0", "r3"}, keys(f.Rows(slices.Values(people()))))

	all := table.NewFilter()
	assert.Len(t, keys(all.Rows(slices.Values(people()))), 5)
	assert.Nil(t, all.Predicate())
	assert.EqualValues(t, -1, all.ToRow())
}

func TestFilterRowRange(t *testing.T) {
	scanned := 0
	rows := func(yield func(filter.Row) bool) {
		for _, r := range people() {
			scanned++
			if !yield(r) {
				return
			}
		}
	}

	f := table.NewFilter(table.WithRowRange(1, 3),
		table.WithPredicate(filter.NotEqual(filter.StringCol(1), "Bob")))
	require.NoError(t, f.Validate(peopleSchema))

	var idx []int64
	for i, r := range f.Rows(rows) {
		idx = append(idx, i)
		assert.NotEqual(t, "r2", r.RowKey())
	}
	assert.Equal(t, []int64{1, 3}, idx)
	// the scan stops at the first row past the range
	assert.Equal(t, 5, scanned)

	scanned = 0
	for range table.NewFilter(table.WithRowRange(0, 1)).Rows(rows) {
	}
	assert.Equal(t, 3, scanned)
}

func TestFilterValidate(t *testing.T) {
	tests := []struct {
		name string
		f    *table.Filter
		err  error
	}{
		{"bad start", table.NewFilter(table.WithRowRange(-1, 3)), filter.ErrInvalidArgument},
		{"empty range", table.NewFilter(table.WithRowRange(4, 3)), filter.ErrInvalidArgument},
		{"materialized", table.NewFilter(table.WithMaterializedColumns(0, 3)), filter.ErrIndexOutOfRange},
		{"predicate", table.NewFilter(table.WithPredicate(filter.Equal(filter.LongCol(0), 1))), filter.ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.f.Validate(peopleSchema), tt.err)
		})
	}
}

func TestFilterRearranged(t *testing.T) {
	f := table.NewFilter(
		table.WithPredicate(filter.Greater(filter.IntCol(0), 25).And(filter.Equal(filter.StringCol(1), "Ann"))),
		table.WithMaterializedColumns(0, 2))

	perm := []int{2, 0, 1}
	newSchema, err := peopleSchema.Rearrange(perm)
	require.NoError(t, err)

	out, err := f.Rearranged(perm, newSchema)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, out.MaterializedColumns())
	assert.Equal(t, "And(left=GreaterThan(column=IntColumn(index=2), value=25), right=EqualTo(column=StringColumn(index=0), value=\"Ann\"))",
		out.Predicate().String())

	// the original filter is unchanged
	assert.Equal(t, []int{0, 2}, f.MaterializedColumns())

	_, err = f.Rearranged(perm, peopleSchema)
	assert.ErrorIs(t, err, filter.ErrTypeMismatch)
}

func TestFilterRearrangedBadMaterialized(t *testing.T) {
	for _, cols := range [][]int{{-1}, {3}} {
		f := table.NewFilter(table.WithMaterializedColumns(cols...))
		assert.NotPanics(t, func() {
			_, err := f.Rearranged([]int{2, 0, 1}, peopleSchema)
			assert.ErrorIs(t, err, filter.ErrIndexOutOfRange)
		})
	}
}

func TestFilterWithSpec(t *testing.T) {
	f := table.NewFilter(table.WithPredicate(filter.Greater(filter.IntCol(0), 25)))

	longAges, err := peopleSchema.Replace(0, filter.TypeInt64)
	require.NoError(t, err)

	out, err := f.WithSpec(longAges)
	require.NoError(t, err)
	assert.True(t, out.Predicate().Equals(filter.Greater(filter.LongCol(0), int64(25))))

	textAges, err := peopleSchema.Replace(0, filter.TypeText)
	require.NoError(t, err)
	_, err = f.WithSpec(textAges)
	assert.ErrorIs(t, err, filter.ErrUnsupportedConversion)

	assert.Equal(t, "Filter(rows=[0, *], predicate=GreaterThan(column=IntColumn(index=0), value=25))", f.String())
}
