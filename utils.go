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
	"runtime/debug"
	"strings"
)

var version string

func init() {
	version = "(unknown version)"
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if strings.HasPrefix(dep.Path, "github.com/rowscan/filter") {
				version = dep.Version
				break
			}
		}
	}
}

func Version() string { return version }

// Optional represents a typed value that could be missing
type Optional[T any] struct {
	Val   T
	Valid bool
}

// Comparator is a comparison function for column values:
//
//	if v1 < v2 -> returns negative
//	if v1 == v2 -> returns 0
//	if v1 > v2 -> returns positive
//
// Floating point values use cmp.Compare, so NaN equals NaN and sorts
// before every other value.
type Comparator[T ValueType] func(v1, v2 T) int

func compareBool(v1, v2 bool) int {
	switch {
	case v1 == v2:
		return 0
	case v1:
		return 1
	default:
		return -1
	}
}

func comparatorFor[T ValueType]() Comparator[T] {
	var z T
	switch any(z).(type) {
	case int32:
		return any(Comparator[int32](cmp.Compare[int32])).(Comparator[T])
	case int64:
		return any(Comparator[int64](cmp.Compare[int64])).(Comparator[T])
	case float64:
		return any(Comparator[float64](cmp.Compare[float64])).(Comparator[T])
	case bool:
		return any(Comparator[bool](compareBool)).(Comparator[T])
	default:
		return any(Comparator[string](cmp.Compare[string])).(Comparator[T])
	}
}

// testOp applies a comparison operation to a present value.
func testOp[T ValueType](op Operation, cmpFn Comparator[T], v, lit T) bool {
	c := cmpFn(v, lit)
	switch op {
	case OpEQ:
		return c == 0
	case OpNEQ:
		return c != 0
	case OpLT:
		return c < 0
	case OpLTEQ:
		return c <= 0
	case OpGT:
		return c > 0
	case OpGTEQ:
		return c >= 0
	}
	panic("invalid comparison operation: " + op.String())
}
