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
)

// TypedColumn identifies the column a predicate leaf reads from: either the
// synthetic row key column or a column at a given index holding values of
// a known type.
//
// The set of implementations is closed: RowKeyColumn and IndexedColumn[T]
// for each ValueType.
type TypedColumn interface {
	fmt.Stringer

	Type() TypeTag
	Equals(TypedColumn) bool

	isColumn()
}

// Indexed is implemented by every column except the row key column.
type Indexed interface {
	TypedColumn

	Index() int
}

// columnRef reads a typed value for a column out of a row.
type columnRef[T ValueType] interface {
	TypedColumn

	extract(Row) Optional[T]
}

// RowKeyColumn is the always present, text valued row identifier.
type RowKeyColumn struct{}

// RowKey returns the row key column.
func RowKey() RowKeyColumn { return RowKeyColumn{} }

func (RowKeyColumn) isColumn()      {}
func (RowKeyColumn) Type() TypeTag  { return TypeText }
func (RowKeyColumn) String() string { return "RowKeyColumn()" }
func (RowKeyColumn) extract(r Row) Optional[string] {
	return Optional[string]{Val: r.RowKey(), Valid: true}
}

func (RowKeyColumn) Equals(other TypedColumn) bool {
	_, ok := other.(RowKeyColumn)

	return ok
}

// IndexedColumn is a column at a fixed position whose cells hold values of
// type T.
type IndexedColumn[T ValueType] struct {
	index int
}

func newIndexedColumn[T ValueType](index int) IndexedColumn[T] {
	if index < 0 {
		panic(fmt.Errorf("%w: column index must be non-negative, got %d",
			ErrInvalidArgument, index))
	}

	return IndexedColumn[T]{index: index}
}

// IntCol returns the int column at the given index. Panics if index is negative.
func IntCol(index int) IndexedColumn[int32] { return newIndexedColumn[int32](index) }

// LongCol returns the long column at the given index. Panics if index is negative.
func LongCol(index int) IndexedColumn[int64] { return newIndexedColumn[int64](index) }

// DoubleCol returns the double column at the given index. Panics if index is negative.
func DoubleCol(index int) IndexedColumn[float64] { return newIndexedColumn[float64](index) }

// BoolCol returns the boolean column at the given index. Panics if index is negative.
func BoolCol(index int) IndexedColumn[bool] { return newIndexedColumn[bool](index) }

// StringCol returns the string column at the given index. Panics if index is negative.
func StringCol(index int) IndexedColumn[string] { return newIndexedColumn[string](index) }

// ColumnOf returns the indexed column of the requested type.
func ColumnOf(t TypeTag, index int) (Indexed, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: column index must be non-negative, got %d",
			ErrInvalidArgument, index)
	}

	switch t {
	case TypeInt32:
		return IndexedColumn[int32]{index: index}, nil
	case TypeInt64:
		return IndexedColumn[int64]{index: index}, nil
	case TypeFloat64:
		return IndexedColumn[float64]{index: index}, nil
	case TypeBool:
		return IndexedColumn[bool]{index: index}, nil
	case TypeText:
		return IndexedColumn[string]{index: index}, nil
	}

	return nil, fmt.Errorf("%w: unknown column type %s", ErrInvalidArgument, t)
}

func (IndexedColumn[T]) isColumn()       {}
func (c IndexedColumn[T]) Index() int    { return c.index }
func (c IndexedColumn[T]) Type() TypeTag { return TypeOf[T]() }

// WithIndex returns a column of the same type at another index.
func (c IndexedColumn[T]) WithIndex(index int) IndexedColumn[T] {
	return newIndexedColumn[T](index)
}

func (c IndexedColumn[T]) String() string {
	var name string
	switch c.Type() {
	case TypeInt32:
		name = "IntColumn"
	case TypeInt64:
		name = "LongColumn"
	case TypeFloat64:
		name = "DoubleColumn"
	case TypeBool:
		name = "BooleanColumn"
	case TypeText:
		name = "StringColumn"
	}

	return name + "(index=" + strconv.Itoa(c.index) + ")"
}

func (c IndexedColumn[T]) Equals(other TypedColumn) bool {
	rhs, ok := other.(IndexedColumn[T])

	return ok && rhs.index == c.index
}

// Value extracts the typed value of a cell of this column. Panics with
// ErrTypeMismatch if the cell holds a value of another type, which can
// only happen if the predicate was not validated against the row's schema.
func (c IndexedColumn[T]) Value(cell Cell) Optional[T] {
	switch v := cell.val.(type) {
	case nil:
		return Optional[T]{}
	case T:
		return Optional[T]{Val: v, Valid: true}
	default:
		panic(fmt.Errorf("%w: %s cannot read value '%v' of type %T",
			ErrTypeMismatch, c, v, v))
	}
}

func (c IndexedColumn[T]) extract(r Row) Optional[T] {
	return c.Value(r.CellAt(c.index))
}

// ColumnVisitor dispatches on the concrete kind of a TypedColumn.
type ColumnVisitor[R any] interface {
	VisitRowKey(RowKeyColumn) R
	VisitInt(IndexedColumn[int32]) R
	VisitLong(IndexedColumn[int64]) R
	VisitDouble(IndexedColumn[float64]) R
	VisitBool(IndexedColumn[bool]) R
	VisitString(IndexedColumn[string]) R
}

// VisitColumn calls the visitor method matching the column's kind.
func VisitColumn[R any](col TypedColumn, visitor ColumnVisitor[R]) R {
	switch c := col.(type) {
	case RowKeyColumn:
		return visitor.VisitRowKey(c)
	case IndexedColumn[int32]:
		return visitor.VisitInt(c)
	case IndexedColumn[int64]:
		return visitor.VisitLong(c)
	case IndexedColumn[float64]:
		return visitor.VisitDouble(c)
	case IndexedColumn[bool]:
		return visitor.VisitBool(c)
	case IndexedColumn[string]:
		return visitor.VisitString(c)
	}
	panic(fmt.Errorf("%w: unhandled column %s", ErrNotImplemented, col))
}
