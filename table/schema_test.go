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
	"testing"

	"github.com/rowscan/filter"
	"github.com/rowscan/filter/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var peopleSchema = table.NewSchema(
	table.ColumnSpec{Name: "age", Type: filter.TypeInt32},
	table.ColumnSpec{Name: "name", Type: filter.TypeText},
	table.ColumnSpec{Name: "score", Type: filter.TypeFloat64},
)

func TestSchema(t *testing.T) {
	assert.Equal(t, 3, peopleSchema.ColumnCount())
	assert.Equal(t, filter.TypeText, peopleSchema.ColumnType(1))
	assert.Equal(t, []string{"age", "name", "score"}, peopleSchema.Names())
	assert.Equal(t, filter.Types{filter.TypeInt32, filter.TypeText, filter.TypeFloat64}, peopleSchema.Types())
	assert.Equal(t, "table.Schema{age: int, name: string, score: double}", peopleSchema.String())

	idx, ok := peopleSchema.IndexOf("score")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
	_, ok = peopleSchema.IndexOf("missing")
	assert.False(t, ok)

	_, err := table.TryNewSchema(table.ColumnSpec{Name: "a"}, table.ColumnSpec{Name: "a"})
	assert.ErrorIs(t, err, table.ErrInvalidSchema)
	_, err = table.TryNewSchema(table.ColumnSpec{Type: filter.TypeBool})
	assert.ErrorIs(t, err, table.ErrInvalidSchema)
	assert.Panics(t, func() { table.NewSchema(table.ColumnSpec{}) })
}

func TestSchemaRearrange(t *testing.T) {
	out, err := peopleSchema.Rearrange([]int{2, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "score", "age"}, out.Names())
	assert.False(t, out.Equals(peopleSchema))

	back, err := out.Rearrange([]int{1, 2, 0})
	require.NoError(t, err)
	assert.True(t, back.Equals(peopleSchema))

	_, err = peopleSchema.Rearrange([]int{0, 0, 1})
	assert.ErrorIs(t, err, filter.ErrInvalidArgument)
	_, err = peopleSchema.Rearrange([]int{0, 1})
	assert.ErrorIs(t, err, filter.ErrInvalidArgument)
}

func TestSchemaReplace(t *testing.T) {
	out, err := peopleSchema.Replace(0, filter.TypeInt64)
	require.NoError(t, err)
	assert.Equal(t, filter.TypeInt64, out.ColumnType(0))
	assert.Equal(t, filter.TypeInt32, peopleSchema.ColumnType(0))

	_, err = peopleSchema.Replace(3, filter.TypeInt64)
	assert.ErrorIs(t, err, filter.ErrIndexOutOfRange)
}
