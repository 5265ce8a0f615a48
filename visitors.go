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

// FilterVisitor is an interpretation of a predicate tree. VisitFilter calls
// the leaf methods for column predicates and the combinator methods with the
// already computed results of their operands.
type FilterVisitor[R any] interface {
	VisitIsMissing(MissingValuePredicate) (R, error)
	VisitCustom(CustomPredicate) (R, error)
	VisitEqual(ValuePredicate) (R, error)
	VisitNotEqual(ValuePredicate) (R, error)
	VisitLesser(ValuePredicate) (R, error)
	VisitLesserOrEqual(ValuePredicate) (R, error)
	VisitGreater(ValuePredicate) (R, error)
	VisitGreaterOrEqual(ValuePredicate) (R, error)

	VisitNot(childResult R) (R, error)
	VisitAnd(left, right R) (R, error)
	VisitOr(left, right R) (R, error)
}

// VisitFilter walks the tree post-order, left operand first, and stops at
// the first error returned by the visitor.
func VisitFilter[R any](p FilterPredicate, visitor FilterVisitor[R]) (res R, err error) {
	switch p := p.(type) {
	case NotPredicate:
		child, err := VisitFilter(p.child, visitor)
		if err != nil {
			return res, err
		}

		return visitor.VisitNot(child)
	case AndPredicate:
		left, err := VisitFilter(p.left, visitor)
		if err != nil {
			return res, err
		}
		right, err := VisitFilter(p.right, visitor)
		if err != nil {
			return res, err
		}

		return visitor.VisitAnd(left, right)
	case OrPredicate:
		left, err := VisitFilter(p.left, visitor)
		if err != nil {
			return res, err
		}
		right, err := VisitFilter(p.right, visitor)
		if err != nil {
			return res, err
		}

		return visitor.VisitOr(left, right)
	case MissingValuePredicate:
		return visitor.VisitIsMissing(p)
	case CustomPredicate:
		return visitor.VisitCustom(p)
	case ValuePredicate:
		return visitValuePredicate(p, visitor)
	case nil:
		return res, fmt.Errorf("%w: cannot visit nil predicate", ErrInvalidArgument)
	}

	return res, fmt.Errorf("%w: VisitFilter type %s", ErrNotImplemented, p)
}

func visitValuePredicate[R any](p ValuePredicate, visitor FilterVisitor[R]) (R, error) {
	switch p.Op() {
	case OpEQ:
		return visitor.VisitEqual(p)
	case OpNEQ:
		return visitor.VisitNotEqual(p)
	case OpLT:
		return visitor.VisitLesser(p)
	case OpLTEQ:
		return visitor.VisitLesserOrEqual(p)
	case OpGT:
		return visitor.VisitGreater(p)
	case OpGTEQ:
		return visitor.VisitGreaterOrEqual(p)
	}

	var zero R
	return zero, fmt.Errorf("%w: unhandled value predicate: %s", ErrNotImplemented, p)
}

// Evaluate reports whether row is kept by p. And and Or short-circuit, so
// the right operand is only looked at when it decides the result.
//
// p must have been validated against the row's schema: a cell holding a
// value of another type than its column panics with ErrTypeMismatch.
func Evaluate(p FilterPredicate, row Row) bool {
	switch p := p.(type) {
	case ColumnPredicate:
		return p.eval(row)
	case NotPredicate:
		return !Evaluate(p.child, row)
	case AndPredicate:
		return Evaluate(p.left, row) && Evaluate(p.right, row)
	case OrPredicate:
		return Evaluate(p.left, row) || Evaluate(p.right, row)
	}
	panic(fmt.Errorf("%w: cannot evaluate %v", ErrNotImplemented, p))
}

// Evaluator compiles p once into a row function equivalent to calling
// Evaluate(p, row). The result is safe for concurrent use.
func Evaluator(p FilterPredicate) func(Row) bool {
	switch p := p.(type) {
	case ColumnPredicate:
		return p.eval
	case NotPredicate:
		child := Evaluator(p.child)
		return func(r Row) bool { return !child(r) }
	case AndPredicate:
		left, right := Evaluator(p.left), Evaluator(p.right)
		return func(r Row) bool { return left(r) && right(r) }
	case OrPredicate:
		left, right := Evaluator(p.left), Evaluator(p.right)
		return func(r Row) bool { return left(r) || right(r) }
	}
	panic(fmt.Errorf("%w: cannot evaluate %v", ErrNotImplemented, p))
}

// Validate checks that every column p reads exists in schema with exactly
// the type p expects. The first problem found is returned, wrapping
// ErrIndexOutOfRange or ErrTypeMismatch.
func Validate(p FilterPredicate, schema Schema) error {
	_, err := VisitFilter[struct{}](p, validator{schema: schema})
	return err
}

type validator struct {
	schema Schema
}

func (v validator) check(p ColumnPredicate) (struct{}, error) {
	col, ok := p.Column().(Indexed)
	if !ok {
		// the row key is always present
		return struct{}{}, nil
	}

	idx, count := col.Index(), v.schema.ColumnCount()
	if idx >= count {
		return struct{}{}, fmt.Errorf("%w: %s references column %d but schema has %d columns",
			ErrIndexOutOfRange, p, idx, count)
	}

	if actual := v.schema.ColumnType(idx); actual != col.Type() {
		return struct{}{}, fmt.Errorf("%w: %s expects %s but column %d is %s",
			ErrTypeMismatch, p, col.Type(), idx, actual)
	}

	return struct{}{}, nil
}

func (v validator) VisitIsMissing(p MissingValuePredicate) (struct{}, error) { return v.check(p) }
func (v validator) VisitCustom(p CustomPredicate) (struct{}, error)          { return v.check(p) }
func (v validator) VisitEqual(p ValuePredicate) (struct{}, error)            { return v.check(p) }
func (v validator) VisitNotEqual(p ValuePredicate) (struct{}, error)         { return v.check(p) }
func (v validator) VisitLesser(p ValuePredicate) (struct{}, error)           { return v.check(p) }
func (v validator) VisitLesserOrEqual(p ValuePredicate) (struct{}, error)    { return v.check(p) }
func (v validator) VisitGreater(p ValuePredicate) (struct{}, error)          { return v.check(p) }
func (v validator) VisitGreaterOrEqual(p ValuePredicate) (struct{}, error)   { return v.check(p) }
func (validator) VisitNot(struct{}) (struct{}, error)                        { return struct{}{}, nil }
func (validator) VisitAnd(_, _ struct{}) (struct{}, error)                   { return struct{}{}, nil }
func (validator) VisitOr(_, _ struct{}) (struct{}, error)                    { return struct{}{}, nil }

// Columns returns the distinct columns p reads, in the order they are first
// encountered left to right.
func Columns(p FilterPredicate) []TypedColumn {
	cols, err := VisitFilter[[]TypedColumn](p, columnCollector{})
	if err != nil {
		panic(err)
	}

	return cols
}

type columnCollector struct{}

func (columnCollector) leaf(p ColumnPredicate) ([]TypedColumn, error) {
	return []TypedColumn{p.Column()}, nil
}

func (c columnCollector) VisitIsMissing(p MissingValuePredicate) ([]TypedColumn, error) {
	return c.leaf(p)
}

func (c columnCollector) VisitCustom(p CustomPredicate) ([]TypedColumn, error) { return c.leaf(p) }
func (c columnCollector) VisitEqual(p ValuePredicate) ([]TypedColumn, error)   { return c.leaf(p) }
func (c columnCollector) VisitNotEqual(p ValuePredicate) ([]TypedColumn, error) {
	return c.leaf(p)
}
func (c columnCollector) VisitLesser(p ValuePredicate) ([]TypedColumn, error) { return c.leaf(p) }
func (c columnCollector) VisitLesserOrEqual(p ValuePredicate) ([]TypedColumn, error) {
	return c.leaf(p)
}
func (c columnCollector) VisitGreater(p ValuePredicate) ([]TypedColumn, error) { return c.leaf(p) }
func (c columnCollector) VisitGreaterOrEqual(p ValuePredicate) ([]TypedColumn, error) {
	return c.leaf(p)
}

func (columnCollector) VisitNot(child []TypedColumn) ([]TypedColumn, error) { return child, nil }
func (c columnCollector) VisitAnd(left, right []TypedColumn) ([]TypedColumn, error) {
	return c.merge(left, right), nil
}

func (c columnCollector) VisitOr(left, right []TypedColumn) ([]TypedColumn, error) {
	return c.merge(left, right), nil
}

func (columnCollector) merge(left, right []TypedColumn) []TypedColumn {
	out := left
outer:
	for _, r := range right {
		for _, l := range out {
			if l.Equals(r) {
				continue outer
			}
		}
		out = append(out, r)
	}

	return out
}
