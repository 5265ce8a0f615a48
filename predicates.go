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

import "fmt"

// Equal builds an EqualTo predicate, holding for rows whose value in col is
// present and equal to v.
func Equal[T ValueType](col IndexedColumn[T], v T) FilterPredicate {
	return newValuePredicate[T](OpEQ, col, NewLiteral(v))
}

// NotEqual builds a NotEqualTo predicate, holding for rows whose value in col
// is present and differs from v. Rows with a missing value are dropped.
func NotEqual[T ValueType](col IndexedColumn[T], v T) FilterPredicate {
	return newValuePredicate[T](OpNEQ, col, NewLiteral(v))
}

// Lesser builds a LesserThan predicate. Boolean columns do not satisfy
// OrderedType, so ordering over them cannot be expressed.
func Lesser[T OrderedType](col IndexedColumn[T], v T) FilterPredicate {
	return newValuePredicate[T](OpLT, col, NewLiteral(v))
}

// LesserOrEqual builds a LesserThanOrEqualTo predicate.
func LesserOrEqual[T OrderedType](col IndexedColumn[T], v T) FilterPredicate {
	return newValuePredicate[T](OpLTEQ, col, NewLiteral(v))
}

// Greater builds a GreaterThan predicate.
func Greater[T OrderedType](col IndexedColumn[T], v T) FilterPredicate {
	return newValuePredicate[T](OpGT, col, NewLiteral(v))
}

// GreaterOrEqual builds a GreaterThanOrEqualTo predicate.
func GreaterOrEqual[T OrderedType](col IndexedColumn[T], v T) FilterPredicate {
	return newValuePredicate[T](OpGTEQ, col, NewLiteral(v))
}

// IsMissing builds a predicate holding for rows whose cell in col is missing.
func IsMissing[T ValueType](col IndexedColumn[T]) FilterPredicate {
	return &missingPredicate[T]{col: col}
}

// Custom wraps fn as a predicate over col. fn is only called with present
// values; rows with a missing value are dropped.
//
// Will panic if fn is nil
func Custom[T ValueType](col IndexedColumn[T], fn func(T) bool) FilterPredicate {
	if fn == nil {
		panic(fmt.Errorf("%w: custom predicate function must not be nil", ErrInvalidArgument))
	}

	return &customPredicate[T]{col: col, fn: fn}
}

// RowKeyEqual holds for rows whose key equals key.
func RowKeyEqual(key string) FilterPredicate {
	return newValuePredicate[string](OpEQ, RowKeyColumn{}, StringLiteral(key))
}

// RowKeyNotEqual holds for rows whose key differs from key.
func RowKeyNotEqual(key string) FilterPredicate {
	return newValuePredicate[string](OpNEQ, RowKeyColumn{}, StringLiteral(key))
}
