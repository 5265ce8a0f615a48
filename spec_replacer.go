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
)

// ReplaceSpec retargets p to a table whose column types changed. For every
// indexed column whose type in schema differs from the type p expects:
//
//   - IsMissing is rebuilt over the new type.
//   - A value predicate is rebuilt natively if its literal widens to the new
//     type (int -> long -> double, boolean -> any numeric type).
//   - Otherwise, if values of the new type widen to the old type, the
//     comparison is wrapped in a custom predicate which widens each cell
//     before comparing. Custom predicates are retargeted the same way.
//   - Any other change, including every change to or from string, fails
//     with ErrUnsupportedConversion.
//
// Columns whose type did not change and row key leaves are kept as they
// are. A column index beyond the schema fails with ErrIndexOutOfRange.
func ReplaceSpec(p FilterPredicate, schema Schema) (FilterPredicate, error) {
	return VisitFilter[FilterPredicate](p, specReplacer{schema: schema})
}

// widens reports whether every value of type from is exactly representable
// as a value of type to.
func widens(from, to TypeTag) bool {
	switch from {
	case TypeBool:
		return to == TypeInt32 || to == TypeInt64 || to == TypeFloat64
	case TypeInt32:
		return to == TypeInt64 || to == TypeFloat64
	case TypeInt64:
		return to == TypeFloat64
	}

	return false
}

type specReplacer struct {
	schema Schema
}

// newType returns the type of col's index in the new schema.
func (s specReplacer) newType(col Indexed) (TypeTag, error) {
	if idx, count := col.Index(), s.schema.ColumnCount(); idx >= count {
		return 0, fmt.Errorf("%w: column index %d is beyond the %d columns of the new schema",
			ErrIndexOutOfRange, idx, count)
	}

	return s.schema.ColumnType(col.Index()), nil
}

func (s specReplacer) VisitIsMissing(p MissingValuePredicate) (FilterPredicate, error) {
	col := p.Column().(Indexed)
	to, err := s.newType(col)
	if err != nil || to == col.Type() {
		return p, err
	}

	newCol, err := ColumnOf(to, col.Index())
	if err != nil {
		return nil, err
	}

	return NewMissingPredicate(newCol)
}

func (s specReplacer) VisitCustom(p CustomPredicate) (FilterPredicate, error) {
	to, err := s.newType(p.Column().(Indexed))
	if err != nil {
		return nil, err
	}

	return p.retarget(to)
}

func (s specReplacer) value(p ValuePredicate) (FilterPredicate, error) {
	col, ok := p.Column().(Indexed)
	if !ok {
		return p, nil
	}

	to, err := s.newType(col)
	switch {
	case err != nil:
		return nil, err
	case to == col.Type():
		return p, nil
	case widens(col.Type(), to):
		lit, err := p.Literal().To(to)
		if err != nil {
			return nil, err
		}
		newCol, err := ColumnOf(to, col.Index())
		if err != nil {
			return nil, err
		}

		return NewValuePredicate(p.Op(), newCol, lit)
	case widens(to, col.Type()):
		return p.asCustom(to)
	}

	return nil, fmt.Errorf("%w: cannot retarget %s from %s to %s",
		ErrUnsupportedConversion, p, col.Type(), to)
}

func (s specReplacer) VisitEqual(p ValuePredicate) (FilterPredicate, error)          { return s.value(p) }
func (s specReplacer) VisitNotEqual(p ValuePredicate) (FilterPredicate, error)       { return s.value(p) }
func (s specReplacer) VisitLesser(p ValuePredicate) (FilterPredicate, error)         { return s.value(p) }
func (s specReplacer) VisitLesserOrEqual(p ValuePredicate) (FilterPredicate, error)  { return s.value(p) }
func (s specReplacer) VisitGreater(p ValuePredicate) (FilterPredicate, error)        { return s.value(p) }
func (s specReplacer) VisitGreaterOrEqual(p ValuePredicate) (FilterPredicate, error) { return s.value(p) }

func (specReplacer) VisitNot(child FilterPredicate) (FilterPredicate, error) {
	return child.Negate(), nil
}

func (specReplacer) VisitAnd(left, right FilterPredicate) (FilterPredicate, error) {
	return left.And(right), nil
}

func (specReplacer) VisitOr(left, right FilterPredicate) (FilterPredicate, error) {
	return left.Or(right), nil
}

type numericType interface {
	int32 | int64 | float64
}

// customOver builds a custom predicate over the column at index holding
// values of type to. fn must be a func(T) bool for the numeric type from,
// it is called with each value widened to T.
func customOver(index int, from, to TypeTag, fn any) (FilterPredicate, error) {
	if !widens(to, from) {
		return nil, fmt.Errorf("%w: cannot call a custom %s function with %s values",
			ErrUnsupportedConversion, from, to)
	}

	switch fn := fn.(type) {
	case func(int32) bool:
		return widenInto(index, to, fn)
	case func(int64) bool:
		return widenInto(index, to, fn)
	case func(float64) bool:
		return widenInto(index, to, fn)
	}

	return nil, fmt.Errorf("%w: cannot retarget custom %s function to %s",
		ErrUnsupportedConversion, from, to)
}

func widenInto[P numericType](index int, to TypeTag, fn func(P) bool) (FilterPredicate, error) {
	switch to {
	case TypeBool:
		return widened(index, fn, func(v bool) P {
			if v {
				return P(1)
			}
			return P(0)
		}), nil
	case TypeInt32:
		return widened(index, fn, func(v int32) P { return P(v) }), nil
	case TypeInt64:
		return widened(index, fn, func(v int64) P { return P(v) }), nil
	}

	return nil, fmt.Errorf("%w: cannot retarget custom predicate to %s",
		ErrUnsupportedConversion, to)
}

func widened[N ValueType, P numericType](index int, fn func(P) bool, widen func(N) P) FilterPredicate {
	return &customPredicate[N]{
		col: IndexedColumn[N]{index: index},
		fn:  func(v N) bool { return fn(widen(v)) },
	}
}
