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

func TestLiteralConversions(t *testing.T) {
	tests := []struct {
		from filter.Literal
		to   filter.TypeTag
		exp  filter.Literal
	}{
		{filter.Int32Literal(5), filter.TypeInt32, filter.Int32Literal(5)},
		{filter.Int32Literal(5), filter.TypeInt64, filter.Int64Literal(5)},
		{filter.Int32Literal(-5), filter.TypeFloat64, filter.Float64Literal(-5)},
		{filter.Int64Literal(math.MaxInt32 + 1), filter.TypeFloat64, filter.Float64Literal(math.MaxInt32 + 1)},
		{filter.BoolLiteral(true), filter.TypeInt32, filter.Int32Literal(1)},
		{filter.BoolLiteral(false), filter.TypeInt64, filter.Int64Literal(0)},
		{filter.BoolLiteral(true), filter.TypeFloat64, filter.Float64Literal(1)},
		{filter.BoolLiteral(true), filter.TypeBool, filter.BoolLiteral(true)},
		{filter.StringLiteral("a"), filter.TypeText, filter.StringLiteral("a")},
	}

	for _, tt := range tests {
		t.Run(tt.from.Type().String()+"->"+tt.to.String(), func(t *testing.T) {
			got, err := tt.from.To(tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Type())
			assert.True(t, tt.exp.Equals(got), "expected %s, got %s", tt.exp, got)
		})
	}
}

func TestLiteralUnsupportedConversions(t *testing.T) {
	tests := []struct {
		from filter.Literal
		to   filter.TypeTag
	}{
		{filter.Int64Literal(1), filter.TypeInt32},
		{filter.Float64Literal(1), filter.TypeInt64},
		{filter.Int32Literal(1), filter.TypeBool},
		{filter.Int32Literal(1), filter.TypeText},
		{filter.StringLiteral("1"), filter.TypeInt32},
		{filter.BoolLiteral(true), filter.TypeText},
	}

	for _, tt := range tests {
		_, err := tt.from.To(tt.to)
		assert.ErrorIs(t, err, filter.ErrUnsupportedConversion)
	}

	_, err := filter.StringLiteral("abc").To(filter.TypeFloat64)
	assert.EqualError(t, err, `unsupported conversion: cannot convert string literal "abc" to double`)
}

func TestLiteralEquality(t *testing.T) {
	assert.True(t, filter.NewLiteral(int32(3)).Equals(filter.Int32Literal(3)))
	assert.False(t, filter.Int32Literal(3).Equals(filter.Int64Literal(3)))
	assert.True(t, filter.Float64Literal(math.NaN()).Equals(filter.Float64Literal(math.NaN())))
	assert.False(t, filter.StringLiteral("a").Equals(filter.StringLiteral("b")))

	nan := filter.NewLiteral(math.NaN())
	assert.Negative(t, nan.Comparator()(nan.Value(), math.Inf(-1)))
	assert.Equal(t, "hello", filter.NewLiteral("hello").Value())
	assert.Equal(t, `"hello"`, filter.NewLiteral("hello").String())
	assert.Equal(t, "2.5", filter.NewLiteral(2.5).String())
	assert.Equal(t, "true", filter.NewLiteral(true).String())
}
