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
	"math"
	"testing"

	"github.com/rowscan/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(key string, cells ...filter.Cell) filter.SliceRow {
	return filter.SliceRow{Key: key, Cells: cells}
}

var (
	ann     = row("r0", filter.Int32Cell(30), filter.StringCell("Ann"))
	unknown = row("r1", filter.MissingCell(), filter.StringCell("Ann"))
	bob     = row("r2", filter.Int32Cell(20), filter.StringCell("Bob"))
	people  = filter.Types{filter.TypeInt32, filter.TypeText}
)

func TestEvaluateScenario(t *testing.T) {
	p := filter.Greater(filter.IntCol(0), 25).And(filter.Equal(filter.StringCol(1), "Ann"))
	require.NoError(t, filter.Validate(p, people))

	assert.True(t, filter.Evaluate(p, ann))
	assert.False(t, filter.Evaluate(p, unknown))
	assert.False(t, filter.Evaluate(p, bob))

	eval := filter.Evaluator(p)
	assert.True(t, eval(ann))
	assert.False(t, eval(unknown))
	assert.False(t, eval(bob))
}

func TestEvaluateLeaves(t *testing.T) {
	r := row("key-7",
		filter.Int32Cell(3), filter.Int64Cell(-4), filter.Float64Cell(2.5),
		filter.BoolCell(true), filter.StringCell("m"), filter.MissingCell())

	tests := []struct {
		name string
		p    filter.FilterPredicate
		exp  bool
	}{
		{"eq int", filter.Equal(filter.IntCol(0), 3), true},
		{"neq int", filter.NotEqual(filter.IntCol(0), 3), false},
		{"lt long", filter.Lesser(filter.LongCol(1), int64(-3)), true},
		{"lteq long", filter.LesserOrEqual(filter.LongCol(1), int64(-4)), true},
		{"gt double", filter.Greater(filter.DoubleCol(2), 2.5), false},
		{"gteq double", filter.GreaterOrEqual(filter.DoubleCol(2), 2.5), true},
		{"eq bool", filter.Equal(filter.BoolCol(3), true), true},
		{"neq bool", filter.NotEqual(filter.BoolCol(3), true), false},
		{"lt string", filter.Lesser(filter.StringCol(4), "n"), true},
		{"gt string", filter.Greater(filter.StringCol(4), "n"), false},
		{"missing present", filter.IsMissing(filter.StringCol(4)), false},
		{"missing", filter.IsMissing(filter.StringCol(5)), true},
		{"eq missing", filter.Equal(filter.StringCol(5), "m"), false},
		{"neq missing", filter.NotEqual(filter.StringCol(5), "m"), false},
		{"gt missing", filter.Greater(filter.StringCol(5), ""), false},
		{"custom", filter.Custom(filter.LongCol(1), func(v int64) bool { return v%2 == 0 }), true},
		{"custom missing", filter.Custom(filter.StringCol(5), func(string) bool { return true }), false},
		{"row key eq", filter.RowKeyEqual("key-7"), true},
		{"row key neq", filter.RowKeyNotEqual("key-7"), false},
		{"or", filter.Equal(filter.IntCol(0), 1).Or(filter.RowKeyEqual("key-7")), true},
		{"not", filter.IsMissing(filter.StringCol(5)).Negate(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, filter.Evaluate(tt.p, r))
			assert.Equal(t, tt.exp, filter.Evaluator(tt.p)(r))
		})
	}
}

func TestEvaluateNaN(t *testing.T) {
	r := row("n", filter.Float64Cell(math.NaN()))

	assert.True(t, filter.Evaluate(filter.Equal(filter.DoubleCol(0), math.NaN()), r))
	assert.True(t, filter.Evaluate(filter.Lesser(filter.DoubleCol(0), math.Inf(-1)), r))
	assert.False(t, filter.Evaluate(filter.Equal(filter.DoubleCol(0), 0), r))
}

func TestEvaluateDoubleNegation(t *testing.T) {
	preds := []filter.FilterPredicate{
		filter.Greater(filter.IntCol(0), 25),
		filter.IsMissing(filter.IntCol(0)),
		filter.Equal(filter.StringCol(1), "Bob").Or(filter.RowKeyEqual("r1")),
	}

	for _, p := range preds {
		for _, r := range []filter.Row{ann, unknown, bob} {
			assert.Equal(t, filter.Evaluate(p, r), filter.Evaluate(p.Negate().Negate(), r),
				"%s on %s", p, r)
		}
	}
}

func TestEvaluateShortCircuit(t *testing.T) {
	// column 9 does not exist, reading it would panic
	beyond := filter.Equal(filter.IntCol(9), 1)

	falseLeaf := filter.IsMissing(filter.IntCol(0))
	trueLeaf := filter.Equal(filter.StringCol(1), "Ann")

	assert.False(t, filter.Evaluate(falseLeaf.And(beyond), ann))
	assert.True(t, filter.Evaluate(trueLeaf.Or(beyond), ann))
	assert.False(t, filter.Evaluator(falseLeaf.And(beyond))(ann))
	assert.True(t, filter.Evaluator(trueLeaf.Or(beyond))(ann))

	assert.Panics(t, func() { filter.Evaluate(trueLeaf.And(beyond), ann) })
}

func TestEvaluateUnvalidatedTypeMismatch(t *testing.T) {
	p := filter.Equal(filter.LongCol(0), 30)
	require.ErrorIs(t, filter.Validate(p, people), filter.ErrTypeMismatch)

	assert.Panics(t, func() { filter.Evaluate(p, ann) })
}

func TestValidate(t *testing.T) {
	err := filter.Validate(filter.Equal(filter.IntCol(5), 3),
		filter.Types{filter.TypeInt32, filter.TypeInt32, filter.TypeInt32})
	assert.ErrorIs(t, err, filter.ErrIndexOutOfRange)
	assert.EqualError(t, err, "column index out of range: EqualTo(column=IntColumn(index=5), value=3) references column 5 but schema has 3 columns")

	tests := []struct {
		name string
		p    filter.FilterPredicate
		err  error
	}{
		{"ok", filter.Greater(filter.IntCol(0), 1).And(filter.IsMissing(filter.StringCol(1))), nil},
		{"row key", filter.RowKeyEqual("x").Negate(), nil},
		{"row key without columns", filter.RowKeyNotEqual("x"), nil},
		{"custom", filter.Custom(filter.StringCol(1), func(string) bool { return false }), nil},
		{"exact type", filter.Equal(filter.LongCol(0), 1), filter.ErrTypeMismatch},
		{"missing type", filter.IsMissing(filter.IntCol(1)), filter.ErrTypeMismatch},
		{"nested", filter.RowKeyEqual("x").Or(filter.Equal(filter.IntCol(0), 1).And(filter.Equal(filter.IntCol(2), 1))), filter.ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := filter.Validate(tt.p, people)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestValidateFailFast(t *testing.T) {
	p := filter.Equal(filter.LongCol(0), 1).And(filter.Equal(filter.IntCol(7), 1))

	err := filter.Validate(p, people)
	assert.ErrorIs(t, err, filter.ErrTypeMismatch)
	assert.NotErrorIs(t, err, filter.ErrIndexOutOfRange)
}

func TestColumns(t *testing.T) {
	p := filter.NewAnd(
		filter.Equal(filter.IntCol(2), 1),
		filter.RowKeyEqual("a").Or(filter.IsMissing(filter.IntCol(2))),
		filter.Lesser(filter.StringCol(0), "x").Negate(),
		filter.RowKeyNotEqual("b"),
	)

	cols := filter.Columns(p)
	require.Len(t, cols, 3)
	assert.True(t, cols[0].Equals(filter.IntCol(2)))
	assert.True(t, cols[1].Equals(filter.RowKey()))
	assert.True(t, cols[2].Equals(filter.StringCol(0)))
}

type leafCounter struct{}

func (leafCounter) VisitIsMissing(filter.MissingValuePredicate) (int, error) { return 1, nil }
func (leafCounter) VisitCustom(filter.CustomPredicate) (int, error)          { return 1, nil }
func (leafCounter) VisitEqual(filter.ValuePredicate) (int, error)            { return 1, nil }
func (leafCounter) VisitNotEqual(filter.ValuePredicate) (int, error)         { return 1, nil }
func (leafCounter) VisitLesser(filter.ValuePredicate) (int, error)           { return 1, nil }
func (leafCounter) VisitLesserOrEqual(filter.ValuePredicate) (int, error)    { return 1, nil }
func (leafCounter) VisitGreater(filter.ValuePredicate) (int, error)          { return 1, nil }
func (leafCounter) VisitGreaterOrEqual(filter.ValuePredicate) (int, error)   { return 1, nil }
func (leafCounter) VisitNot(child int) (int, error)                          { return child, nil }
func (leafCounter) VisitAnd(left, right int) (int, error)                    { return left + right, nil }
func (leafCounter) VisitOr(left, right int) (int, error)                     { return left + right, nil }

func TestVisitFilter(t *testing.T) {
	p := filter.NewOr(
		filter.Equal(filter.IntCol(0), 1),
		filter.NotEqual(filter.IntCol(0), 1).Negate(),
		filter.LesserOrEqual(filter.IntCol(0), 1).And(filter.GreaterOrEqual(filter.IntCol(0), 1)),
		filter.Custom(filter.BoolCol(1), func(b bool) bool { return b }),
	)

	n, err := filter.VisitFilter[int](p, leafCounter{})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = filter.VisitFilter[int](nil, leafCounter{})
	assert.ErrorIs(t, err, filter.ErrInvalidArgument)
}
