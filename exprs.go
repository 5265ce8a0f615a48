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

// Operation identifies the kind of a FilterPredicate node.
type Operation int

const (
	// do not change the order of these enum constants.
	// they are grouped for quick validation of operation type by
	// using <= and >= of the first/last operation in a group

	OpIsMissing Operation = iota // IsMissing
	OpCustom                     // Custom
	// value ops
	OpEQ   // EqualTo
	OpNEQ  // NotEqualTo
	OpLT   // LesserThan
	OpLTEQ // LesserThanOrEqualTo
	OpGT   // GreaterThan
	OpGTEQ // GreaterThanOrEqualTo
	// logical ops
	OpNot // Not
	OpAnd // And
	OpOr  // Or
)

var opNames = [...]string{
	OpIsMissing: "IsMissing",
	OpCustom:    "Custom",
	OpEQ:        "EqualTo",
	OpNEQ:       "NotEqualTo",
	OpLT:        "LesserThan",
	OpLTEQ:      "LesserThanOrEqualTo",
	OpGT:        "GreaterThan",
	OpGTEQ:      "GreaterThanOrEqualTo",
	OpNot:       "Not",
	OpAnd:       "And",
	OpOr:        "Or",
}

func (op Operation) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return fmt.Sprintf("Operation(%d)", int(op))
	}

	return opNames[op]
}

// IsOrdering reports whether op is one of <, <=, > or >=.
func (op Operation) IsOrdering() bool { return op >= OpLT && op <= OpGTEQ }

func (op Operation) isValue() bool { return op >= OpEQ && op <= OpGTEQ }

// FilterPredicate is an immutable boolean expression deciding whether a row
// is kept. Leaves test a single column, inner nodes combine other
// predicates. Combinators always build new nodes and never modify their
// operands, so a predicate can be shared freely between goroutines.
type FilterPredicate interface {
	fmt.Stringer

	Op() Operation
	Equals(FilterPredicate) bool

	// And returns a new predicate which holds if both this and other hold.
	And(other FilterPredicate) FilterPredicate
	// Or returns a new predicate which holds if this or other holds.
	Or(other FilterPredicate) FilterPredicate
	// Negate wraps this predicate in a new Not node.
	Negate() FilterPredicate
}

// ColumnPredicate is a leaf testing a single column.
type ColumnPredicate interface {
	FilterPredicate

	Column() TypedColumn
	eval(Row) bool
}

// MissingValuePredicate holds for rows whose cell in the column is missing.
type MissingValuePredicate interface {
	ColumnPredicate

	isMissingPredicate()
}

// CustomPredicate holds for rows whose cell is present and accepted by a
// user supplied function. The function's argument type is the Go type of
// the column.
type CustomPredicate interface {
	ColumnPredicate

	// Func returns the wrapped function, a func(T) bool for the column's
	// value type T.
	Func() any

	withIndex(index int) FilterPredicate
	retarget(to TypeTag) (FilterPredicate, error)
}

// ValuePredicate compares a column's value against a literal of the same
// type using Op: EqualTo, NotEqualTo or one of the ordering operations.
type ValuePredicate interface {
	ColumnPredicate

	Literal() Literal

	asCustom(to TypeTag) (FilterPredicate, error)
}

func checkOperand(kind string, p FilterPredicate) {
	if p == nil {
		panic(fmt.Errorf("%w: cannot construct %s with nil arguments",
			ErrInvalidArgument, kind))
	}
}

// NewNot creates a Not node for the given predicate.
//
// Will panic if child is nil
func NewNot(child FilterPredicate) FilterPredicate {
	checkOperand("Not", child)

	return NotPredicate{child: child}
}

// NewAnd folds its arguments into a left-deep tree of And nodes, i.e.
// NewAnd(a, b, c) becomes And(And(a, b), c) so that evaluation visits the
// arguments in the order given.
//
// Will panic if any argument is nil
func NewAnd(left, right FilterPredicate, addl ...FilterPredicate) FilterPredicate {
	checkOperand("And", left)
	checkOperand("And", right)
	folded := FilterPredicate(AndPredicate{left: left, right: right})
	for _, a := range addl {
		checkOperand("And", a)
		folded = AndPredicate{left: folded, right: a}
	}

	return folded
}

// NewOr folds its arguments into a left-deep tree of Or nodes, i.e.
// NewOr(a, b, c) becomes Or(Or(a, b), c).
//
// Will panic if any argument is nil
func NewOr(left, right FilterPredicate, addl ...FilterPredicate) FilterPredicate {
	checkOperand("Or", left)
	checkOperand("Or", right)
	folded := FilterPredicate(OrPredicate{left: left, right: right})
	for _, a := range addl {
		checkOperand("Or", a)
		folded = OrPredicate{left: folded, right: a}
	}

	return folded
}

type NotPredicate struct {
	child FilterPredicate
}

func (n NotPredicate) Child() FilterPredicate                { return n.child }
func (NotPredicate) Op() Operation                           { return OpNot }
func (n NotPredicate) String() string                        { return "Not(predicate=" + n.child.String() + ")" }
func (n NotPredicate) And(o FilterPredicate) FilterPredicate { return NewAnd(n, o) }
func (n NotPredicate) Or(o FilterPredicate) FilterPredicate  { return NewOr(n, o) }
func (n NotPredicate) Negate() FilterPredicate               { return NewNot(n) }

func (n NotPredicate) Equals(other FilterPredicate) bool {
	rhs, ok := other.(NotPredicate)

	return ok && n.child.Equals(rhs.child)
}

type AndPredicate struct {
	left, right FilterPredicate
}

func (a AndPredicate) Left() FilterPredicate                 { return a.left }
func (a AndPredicate) Right() FilterPredicate                { return a.right }
func (AndPredicate) Op() Operation                           { return OpAnd }
func (a AndPredicate) And(o FilterPredicate) FilterPredicate { return NewAnd(a, o) }
func (a AndPredicate) Or(o FilterPredicate) FilterPredicate  { return NewOr(a, o) }
func (a AndPredicate) Negate() FilterPredicate               { return NewNot(a) }

func (a AndPredicate) String() string {
	return "And(left=" + a.left.String() + ", right=" + a.right.String() + ")"
}

// Equals compares operands in order: And(a, b) and And(b, a) are not equal
// since the evaluation order differs.
func (a AndPredicate) Equals(other FilterPredicate) bool {
	rhs, ok := other.(AndPredicate)

	return ok && a.left.Equals(rhs.left) && a.right.Equals(rhs.right)
}

type OrPredicate struct {
	left, right FilterPredicate
}

func (o OrPredicate) Left() FilterPredicate                 { return o.left }
func (o OrPredicate) Right() FilterPredicate                { return o.right }
func (OrPredicate) Op() Operation                           { return OpOr }
func (o OrPredicate) And(p FilterPredicate) FilterPredicate { return NewAnd(o, p) }
func (o OrPredicate) Or(p FilterPredicate) FilterPredicate  { return NewOr(o, p) }
func (o OrPredicate) Negate() FilterPredicate               { return NewNot(o) }

func (o OrPredicate) String() string {
	return "Or(left=" + o.left.String() + ", right=" + o.right.String() + ")"
}

func (o OrPredicate) Equals(other FilterPredicate) bool {
	rhs, ok := other.(OrPredicate)

	return ok && o.left.Equals(rhs.left) && o.right.Equals(rhs.right)
}

type missingPredicate[T ValueType] struct {
	col IndexedColumn[T]
}

func (*missingPredicate[T]) isMissingPredicate()                     {}
func (*missingPredicate[T]) Op() Operation                           { return OpIsMissing }
func (m *missingPredicate[T]) Column() TypedColumn                   { return m.col }
func (m *missingPredicate[T]) And(o FilterPredicate) FilterPredicate { return NewAnd(m, o) }
func (m *missingPredicate[T]) Or(o FilterPredicate) FilterPredicate  { return NewOr(m, o) }
func (m *missingPredicate[T]) Negate() FilterPredicate               { return NewNot(m) }
func (m *missingPredicate[T]) String() string {
	return "IsMissing(column=" + m.col.String() + ")"
}

func (m *missingPredicate[T]) Equals(other FilterPredicate) bool {
	rhs, ok := other.(*missingPredicate[T])

	return ok && m.col.Equals(rhs.col)
}

func (m *missingPredicate[T]) eval(r Row) bool {
	return !m.col.extract(r).Valid
}

// NewMissingPredicate builds an IsMissing predicate over a type-erased
// column. The row key column is never missing and is rejected with
// ErrUnsupportedOperation.
func NewMissingPredicate(col TypedColumn) (FilterPredicate, error) {
	switch c := col.(type) {
	case IndexedColumn[int32]:
		return IsMissing(c), nil
	case IndexedColumn[int64]:
		return IsMissing(c), nil
	case IndexedColumn[float64]:
		return IsMissing(c), nil
	case IndexedColumn[bool]:
		return IsMissing(c), nil
	case IndexedColumn[string]:
		return IsMissing(c), nil
	case RowKeyColumn:
		return nil, fmt.Errorf("%w: missing value predicates are not allowed on row keys",
			ErrUnsupportedOperation)
	}

	return nil, fmt.Errorf("%w: cannot build IsMissing over column %v",
		ErrInvalidArgument, col)
}

type customPredicate[T ValueType] struct {
	col IndexedColumn[T]
	fn  func(T) bool
}

func (*customPredicate[T]) Op() Operation                           { return OpCustom }
func (c *customPredicate[T]) Column() TypedColumn                   { return c.col }
func (c *customPredicate[T]) Func() any                             { return c.fn }
func (c *customPredicate[T]) And(o FilterPredicate) FilterPredicate { return NewAnd(c, o) }
func (c *customPredicate[T]) Or(o FilterPredicate) FilterPredicate  { return NewOr(c, o) }
func (c *customPredicate[T]) Negate() FilterPredicate               { return NewNot(c) }
func (c *customPredicate[T]) String() string {
	return "Custom(column=" + c.col.String() + ")"
}

// Equals reports whether other is the very same custom predicate. Functions
// are not comparable, so two separately built custom predicates are never
// equal.
func (c *customPredicate[T]) Equals(other FilterPredicate) bool {
	rhs, ok := other.(*customPredicate[T])

	return ok && c == rhs
}

func (c *customPredicate[T]) eval(r Row) bool {
	v := c.col.extract(r)
	if !v.Valid {
		return false
	}

	return c.fn(v.Val)
}

func (c *customPredicate[T]) withIndex(index int) FilterPredicate {
	return &customPredicate[T]{col: c.col.WithIndex(index), fn: c.fn}
}

func (c *customPredicate[T]) retarget(to TypeTag) (FilterPredicate, error) {
	if to == c.col.Type() {
		return c, nil
	}

	return customOver(c.col.index, c.col.Type(), to, c.fn)
}

type valuePredicate[T ValueType] struct {
	op    Operation
	col   columnRef[T]
	lit   TypedLiteral[T]
	cmpFn Comparator[T]
}

func newValuePredicate[T ValueType](op Operation, col columnRef[T], lit TypedLiteral[T]) *valuePredicate[T] {
	return &valuePredicate[T]{op: op, col: col, lit: lit, cmpFn: comparatorFor[T]()}
}

func (v *valuePredicate[T]) Op() Operation                         { return v.op }
func (v *valuePredicate[T]) Column() TypedColumn                   { return v.col }
func (v *valuePredicate[T]) Literal() Literal                      { return v.lit }
func (v *valuePredicate[T]) And(o FilterPredicate) FilterPredicate { return NewAnd(v, o) }
func (v *valuePredicate[T]) Or(o FilterPredicate) FilterPredicate  { return NewOr(v, o) }
func (v *valuePredicate[T]) Negate() FilterPredicate               { return NewNot(v) }

func (v *valuePredicate[T]) String() string {
	return fmt.Sprintf("%s(column=%s, value=%s)", v.op, v.col, v.lit)
}

func (v *valuePredicate[T]) Equals(other FilterPredicate) bool {
	rhs, ok := other.(*valuePredicate[T])

	return ok && v.op == rhs.op && v.col.Equals(rhs.col) && v.lit.Equals(rhs.lit)
}

func (v *valuePredicate[T]) eval(r Row) bool {
	val := v.col.extract(r)
	if !val.Valid {
		return false
	}

	return testOp(v.op, v.cmpFn, val.Val, v.lit.Value())
}

// asCustom re-expresses the comparison as a custom predicate over a column
// of another type whose values widen into T.
func (v *valuePredicate[T]) asCustom(to TypeTag) (FilterPredicate, error) {
	col, ok := v.col.(IndexedColumn[T])
	if !ok {
		return nil, fmt.Errorf("%w: cannot convert %s to type %s",
			ErrUnsupportedConversion, v, to)
	}

	op, cmpFn, lit := v.op, v.cmpFn, v.lit.Value()
	test := func(val T) bool { return testOp(op, cmpFn, val, lit) }

	return customOver(col.index, col.Type(), to, test)
}

// NewValuePredicate builds a value predicate over a type-erased column and
// literal. It returns ErrTypeMismatch if the literal's type differs from the
// column's, and ErrUnsupportedOperation for ordering operations over boolean
// columns or the row key column.
func NewValuePredicate(op Operation, col TypedColumn, lit Literal) (FilterPredicate, error) {
	switch {
	case !op.isValue():
		return nil, fmt.Errorf("%w: invalid operation for value predicate: %s",
			ErrInvalidArgument, op)
	case col == nil || lit == nil:
		return nil, fmt.Errorf("%w: cannot create value predicate with nil column or literal",
			ErrInvalidArgument)
	case col.Type() != lit.Type():
		return nil, fmt.Errorf("%w: literal %s of type %s for %s",
			ErrTypeMismatch, lit, lit.Type(), col)
	}

	if op.IsOrdering() {
		if _, isKey := col.(RowKeyColumn); isKey || !col.Type().Ordered() {
			return nil, fmt.Errorf("%w: %s is not supported on %s",
				ErrUnsupportedOperation, op, col)
		}
	}

	switch c := col.(type) {
	case RowKeyColumn:
		return newValuePredicate[string](op, c, lit.(TypedLiteral[string])), nil
	case IndexedColumn[int32]:
		return newValuePredicate[int32](op, c, lit.(TypedLiteral[int32])), nil
	case IndexedColumn[int64]:
		return newValuePredicate[int64](op, c, lit.(TypedLiteral[int64])), nil
	case IndexedColumn[float64]:
		return newValuePredicate[float64](op, c, lit.(TypedLiteral[float64])), nil
	case IndexedColumn[bool]:
		return newValuePredicate[bool](op, c, lit.(TypedLiteral[bool])), nil
	case IndexedColumn[string]:
		return newValuePredicate[string](op, c, lit.(TypedLiteral[string])), nil
	}

	return nil, fmt.Errorf("%w: unhandled column %s", ErrNotImplemented, col)
}
