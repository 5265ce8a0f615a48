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

package filter_test

import (
	"testing"

	"github.com/rowscan/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapIndicesIdentity(t *testing.T) {
	preds := []filter.FilterPredicate{
		filter.Greater(filter.IntCol(0), 25).And(filter.Equal(filter.StringCol(1), "Ann")),
		filter.IsMissing(filter.IntCol(0)).Or(filter.RowKeyEqual("r2")),
		filter.Custom(filter.StringCol(1), func(s string) bool { return len(s) == 3 }).Negate(),
	}

	identity := []int{0, 1}
	for _, p := range preds {
		mapped, err := filter.MapIndices(p, identity)
		require.NoError(t, err)
		assert.Equal(t, p.String(), mapped.String())

		for _, r := range []filter.Row{ann, unknown, bob} {
			assert.Equal(t, filter.Evaluate(p, r), filter.Evaluate(mapped, r))
		}
	}
}

func TestMapIndicesPermutation(t *testing.T) {
	p := filter.NewAnd(
		filter.Greater(filter.IntCol(0), 25),
		filter.Equal(filter.StringCol(1), "Ann").Negate(),
		filter.IsMissing(filter.DoubleCol(2)).Or(filter.RowKeyEqual("k")),
	)

	mapped, err := filter.MapIndices(p, []int{2, 0, 1})
	require.NoError(t, err)

	exp := filter.NewAnd(
		filter.Greater(filter.IntCol(2), 25),
		filter.Equal(filter.StringCol(0), "Ann").Negate(),
		filter.IsMissing(filter.DoubleCol(1)).Or(filter.RowKeyEqual("k")),
	)
	assert.True(t, exp.Equals(mapped), "got %s", mapped)

	// the original tree is untouched
	assert.Equal(t, "GreaterThan(column=IntColumn(index=0), value=25)",
		p.(filter.AndPredicate).Left().(filter.AndPredicate).Left().String())
}

func TestMapIndicesCustom(t *testing.T) {
	calls := 0
	p := filter.Custom(filter.IntCol(0), func(v int32) bool {
		calls++
		return v > 10
	})

	mapped, err := filter.MapIndices(p, []int{1})
	require.NoError(t, err)
	assert.Equal(t, "Custom(column=IntColumn(index=1))", mapped.String())

	r := row("k", filter.StringCell("x"), filter.Int32Cell(11))
	assert.True(t, filter.Evaluate(mapped, r))
	assert.Equal(t, 1, calls)
}

func TestMapIndicesOutOfRange(t *testing.T) {
	_, err := filter.MapIndices(filter.Equal(filter.IntCol(3), 1), []int{0, 1})
	assert.ErrorIs(t, err, filter.ErrIndexOutOfRange)

	_, err = filter.MapIndices(filter.IsMissing(filter.IntCol(0)), []int{-1})
	assert.ErrorIs(t, err, filter.ErrIndexOutOfRange)

	// row key leaves need no mapping
	p, err := filter.MapIndices(filter.RowKeyEqual("a"), nil)
	require.NoError(t, err)
	assert.True(t, p.Equals(filter.RowKeyEqual("a")))
}
