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

func TestTypeTagNames(t *testing.T) {
	tests := []struct {
		tag     filter.TypeTag
		name    string
		ordered bool
	}{
		{filter.TypeInt32, "int", true},
		{filter.TypeInt64, "long", true},
		{filter.TypeFloat64, "double", true},
		{filter.TypeBool, "boolean", false},
		{filter.TypeText, "string", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.tag.String())
			assert.Equal(t, tt.ordered, tt.tag.Ordered())

			parsed, err := filter.ParseTypeTag(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.tag, parsed)

			txt, err := tt.tag.MarshalText()
			require.NoError(t, err)
			var out filter.TypeTag
			require.NoError(t, out.UnmarshalText(txt))
			assert.Equal(t, tt.tag, out)
		})
	}
}

func TestParseTypeTagAliases(t *testing.T) {
	for alias, exp := range map[string]filter.TypeTag{
		"int32":   filter.TypeInt32,
		"Integer": filter.TypeInt32,
		"int64":   filter.TypeInt64,
		"float64": filter.TypeFloat64,
		"bool":    filter.TypeBool,
		" TEXT ":  filter.TypeText,
	} {
		tag, err := filter.ParseTypeTag(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, exp, tag, alias)
	}

	_, err := filter.ParseTypeTag("decimal")
	assert.ErrorIs(t, err, filter.ErrInvalidArgument)

	_, err = filter.TypeTag(42).MarshalText()
	assert.ErrorIs(t, err, filter.ErrInvalidArgument)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, filter.TypeInt32, filter.TypeOf[int32]())
	assert.Equal(t, filter.TypeInt64, filter.TypeOf[int64]())
	assert.Equal(t, filter.TypeFloat64, filter.TypeOf[float64]())
	assert.Equal(t, filter.TypeBool, filter.TypeOf[bool]())
	assert.Equal(t, filter.TypeText, filter.TypeOf[string]())
}

func TestCells(t *testing.T) {
	var zero filter.Cell
	assert.True(t, zero.IsMissing())
	assert.True(t, filter.MissingCell().IsMissing())
	assert.Equal(t, "?", zero.String())
	_, ok := zero.Type()
	assert.False(t, ok)

	tests := []struct {
		cell filter.Cell
		typ  filter.TypeTag
		val  any
	}{
		{filter.Int32Cell(1), filter.TypeInt32, int32(1)},
		{filter.Int64Cell(2), filter.TypeInt64, int64(2)},
		{filter.Float64Cell(2.5), filter.TypeFloat64, 2.5},
		{filter.BoolCell(true), filter.TypeBool, true},
		{filter.StringCell("x"), filter.TypeText, "x"},
		{filter.NewCell[int64](7), filter.TypeInt64, int64(7)},
	}

	for _, tt := range tests {
		assert.False(t, tt.cell.IsMissing())
		typ, ok := tt.cell.Type()
		assert.True(t, ok)
		assert.Equal(t, tt.typ, typ)
		assert.Equal(t, tt.val, tt.cell.Any())
	}

	row := filter.SliceRow{Key: "r1", Cells: []filter.Cell{
		filter.Int32Cell(30), filter.MissingCell(), filter.StringCell("Ann"),
	}}
	assert.Equal(t, "r1: [30, ?, Ann]", row.String())
	assert.Equal(t, "r1", row.RowKey())
}
