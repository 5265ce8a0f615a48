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
	"cmp"
	"fmt"
	"strconv"
)

// Literal is a typed constant embedded in a value predicate.
type Literal interface {
	fmt.Stringer

	Type() TypeTag
	Any() any
	Equals(Literal) bool
	// To converts the literal to the requested type following the
	// value-preserving coercion matrix:
	//
	//	int -> long -> double
	//	boolean -> int | long | double (false -> 0, true -> 1)
	//
	// Every other conversion between distinct types, including any
	// conversion into or out of string, fails with ErrUnsupportedConversion.
	To(TypeTag) (Literal, error)
}

// TypedLiteral is a Literal whose Go value type is known statically.
type TypedLiteral[T ValueType] interface {
	Literal

	Value() T
	Comparator() Comparator[T]
}

// NewLiteral wraps the value into the Literal of the matching type.
func NewLiteral[T ValueType](val T) TypedLiteral[T] {
	var lit Literal
	switch v := any(val).(type) {
	case int32:
		lit = Int32Literal(v)
	case int64:
		lit = Int64Literal(v)
	case float64:
		lit = Float64Literal(v)
	case bool:
		lit = BoolLiteral(v)
	case string:
		lit = StringLiteral(v)
	}

	return lit.(TypedLiteral[T])
}

func literalEq[L interface {
	comparable
	Literal
}](lhs L, other Literal) bool {
	rhs, ok := other.(L)
	if !ok {
		return false
	}

	return lhs == rhs
}

func badCast(from Literal, to TypeTag) error {
	return fmt.Errorf("%w: cannot convert %s literal %s to %s",
		ErrUnsupportedConversion, from.Type(), from, to)
}

type BoolLiteral bool

func (BoolLiteral) Comparator() Comparator[bool] { return compareBool }
func (b BoolLiteral) Type() TypeTag              { return TypeBool }
func (b BoolLiteral) Value() bool                { return bool(b) }
func (b BoolLiteral) Any() any                   { return b.Value() }
func (b BoolLiteral) String() string             { return strconv.FormatBool(bool(b)) }
func (b BoolLiteral) Equals(l Literal) bool      { return literalEq(b, l) }

func (b BoolLiteral) To(t TypeTag) (Literal, error) {
	var n int32
	if b {
		n = 1
	}

	switch t {
	case TypeBool:
		return b, nil
	case TypeInt32:
		return Int32Literal(n), nil
	case TypeInt64:
		return Int64Literal(n), nil
	case TypeFloat64:
		return Float64Literal(n), nil
	}

	return nil, badCast(b, t)
}

type Int32Literal int32

func (Int32Literal) Comparator() Comparator[int32] { return cmp.Compare[int32] }
func (i Int32Literal) Type() TypeTag               { return TypeInt32 }
func (i Int32Literal) Value() int32                { return int32(i) }
func (i Int32Literal) Any() any                    { return i.Value() }
func (i Int32Literal) String() string              { return strconv.FormatInt(int64(i), 10) }
func (i Int32Literal) Equals(l Literal) bool       { return literalEq(i, l) }

func (i Int32Literal) To(t TypeTag) (Literal, error) {
	switch t {
	case TypeInt32:
		return i, nil
	case TypeInt64:
		return Int64Literal(i), nil
	case TypeFloat64:
		return Float64Literal(i), nil
	}

	return nil, badCast(i, t)
}

type Int64Literal int64

func (Int64Literal) Comparator() Comparator[int64] { return cmp.Compare[int64] }
func (i Int64Literal) Type() TypeTag               { return TypeInt64 }
func (i Int64Literal) Value() int64                { return int64(i) }
func (i Int64Literal) Any() any                    { return i.Value() }
func (i Int64Literal) String() string              { return strconv.FormatInt(int64(i), 10) }
func (i Int64Literal) Equals(l Literal) bool       { return literalEq(i, l) }

func (i Int64Literal) To(t TypeTag) (Literal, error) {
	switch t {
	case TypeInt64:
		return i, nil
	case TypeFloat64:
		return Float64Literal(i), nil
	}

	return nil, badCast(i, t)
}

type Float64Literal float64

func (Float64Literal) Comparator() Comparator[float64] { return cmp.Compare[float64] }
func (f Float64Literal) Type() TypeTag                 { return TypeFloat64 }
func (f Float64Literal) Value() float64                { return float64(f) }
func (f Float64Literal) Any() any                      { return f.Value() }
func (f Float64Literal) String() string                { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

func (f Float64Literal) Equals(l Literal) bool {
	rhs, ok := l.(Float64Literal)
	if !ok {
		return false
	}

	return cmp.Compare(f, rhs) == 0
}

func (f Float64Literal) To(t TypeTag) (Literal, error) {
	if t == TypeFloat64 {
		return f, nil
	}

	return nil, badCast(f, t)
}

type StringLiteral string

func (StringLiteral) Comparator() Comparator[string] { return cmp.Compare[string] }
func (s StringLiteral) Type() TypeTag                { return TypeText }
func (s StringLiteral) Value() string                { return string(s) }
func (s StringLiteral) Any() any                     { return s.Value() }
func (s StringLiteral) String() string               { return strconv.Quote(string(s)) }
func (s StringLiteral) Equals(l Literal) bool        { return literalEq(s, l) }

func (s StringLiteral) To(t TypeTag) (Literal, error) {
	if t == TypeText {
		return s, nil
	}

	return nil, badCast(s, t)
}
