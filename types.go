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

package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeTag identifies one of the primitive value types a column can hold.
type TypeTag int8

const (
	TypeInt32 TypeTag = iota
	TypeInt64
	TypeFloat64
	TypeBool
	TypeText
)

func (t TypeTag) String() string {
	switch t {
	case TypeInt32:
		return "int"
	case TypeInt64:
		return "long"
	case TypeFloat64:
		return "double"
	case TypeBool:
		return "boolean"
	case TypeText:
		return "string"
	}

	return "TypeTag(" + strconv.Itoa(int(t)) + ")"
}

// Ordered reports whether ordering predicates (<, <=, >, >=) may be built
// over columns of this type. Booleans are comparable but not ordered.
func (t TypeTag) Ordered() bool {
	switch t {
	case TypeInt32, TypeInt64, TypeFloat64, TypeText:
		return true
	}

	return false
}

func (t TypeTag) valid() bool { return t >= TypeInt32 && t <= TypeText }

// ParseTypeTag accepts the names produced by TypeTag.String along with the
// common aliases used in schema definitions.
func ParseTypeTag(s string) (TypeTag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "int32", "integer":
		return TypeInt32, nil
	case "long", "int64":
		return TypeInt64, nil
	case "double", "float64":
		return TypeFloat64, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "string", "text":
		return TypeText, nil
	}

	return 0, fmt.Errorf("%w: unknown column type '%s'", ErrInvalidArgument, s)
}

func (t TypeTag) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("%w: invalid type tag %d", ErrInvalidArgument, t)
	}

	return []byte(t.String()), nil
}

func (t *TypeTag) UnmarshalText(b []byte) error {
	tag, err := ParseTypeTag(string(b))
	if err != nil {
		return err
	}
	*t = tag

	return nil
}

// ValueType is the closed set of Go types a column value can have.
type ValueType interface {
	int32 | int64 | float64 | bool | string
}

// OrderedType is the subset of ValueType which supports ordering predicates.
type OrderedType interface {
	int32 | int64 | float64 | string
}

// TypeOf returns the TypeTag corresponding to the type parameter.
func TypeOf[T ValueType]() TypeTag {
	var z T
	switch any(z).(type) {
	case int32:
		return TypeInt32
	case int64:
		return TypeInt64
	case float64:
		return TypeFloat64
	case bool:
		return TypeBool
	default:
		return TypeText
	}
}

// Cell is a single value of a row. The zero Cell is missing.
type Cell struct {
	val any
}

// MissingCell returns a cell without a value.
func MissingCell() Cell { return Cell{} }

func Int32Cell(v int32) Cell     { return Cell{val: v} }
func Int64Cell(v int64) Cell     { return Cell{val: v} }
func Float64Cell(v float64) Cell { return Cell{val: v} }
func BoolCell(v bool) Cell       { return Cell{val: v} }
func StringCell(v string) Cell   { return Cell{val: v} }

// NewCell wraps a typed value in a Cell.
func NewCell[T ValueType](v T) Cell { return Cell{val: v} }

func (c Cell) IsMissing() bool { return c.val == nil }

// Any returns the wrapped value, or nil if the cell is missing.
func (c Cell) Any() any { return c.val }

// Type returns the type of the wrapped value. It reports false if the cell
// is missing.
func (c Cell) Type() (TypeTag, bool) {
	switch c.val.(type) {
	case int32:
		return TypeInt32, true
	case int64:
		return TypeInt64, true
	case float64:
		return TypeFloat64, true
	case bool:
		return TypeBool, true
	case string:
		return TypeText, true
	}

	return 0, false
}

func (c Cell) String() string {
	if c.val == nil {
		return "?"
	}

	return fmt.Sprint(c.val)
}

// Row is a single row of a table being scanned.
type Row interface {
	// CellAt returns the cell at the given column index. Implementations
	// may panic if the index is out of bounds.
	CellAt(index int) Cell
	// RowKey returns the unique key identifying the row.
	RowKey() string
}

// Schema describes the column layout that predicates are checked against.
type Schema interface {
	ColumnCount() int
	ColumnType(index int) TypeTag
}

// Types is the simplest Schema: the column types in positional order.
type Types []TypeTag

func (t Types) ColumnCount() int             { return len(t) }
func (t Types) ColumnType(index int) TypeTag { return t[index] }

// SliceRow is an in-memory Row backed by a slice of cells.
type SliceRow struct {
	Key   string
	Cells []Cell
}

func (r SliceRow) CellAt(index int) Cell { return r.Cells[index] }
func (r SliceRow) RowKey() string        { return r.Key }

func (r SliceRow) String() string {
	var b strings.Builder
	b.WriteString(r.Key)
	b.WriteString(": [")
	for i, c := range r.Cells {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.String())
	}
	b.WriteByte(']')

	return b.String()
}
