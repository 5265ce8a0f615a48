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

package definition

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/rowscan/filter"
)

func badValue(t filter.TypeTag, v any) error {
	return fmt.Errorf("%w: %v (%T) is not a valid %s value", ErrInvalidDefinition, v, v, t)
}

// literalOf converts a decoded document value into a literal of type t.
// Integral values are range checked and doubles accept any number plus
// the strings NaN, Infinity and -Infinity.
func literalOf(t filter.TypeTag, v any) (filter.Literal, error) {
	switch t {
	case filter.TypeInt32:
		n, err := integerOf(v, math.MinInt32, math.MaxInt32)
		if err != nil {
			return nil, badValue(t, v)
		}

		return filter.Int32Literal(n), nil
	case filter.TypeInt64:
		n, err := integerOf(v, math.MinInt64, math.MaxInt64)
		if err != nil {
			return nil, badValue(t, v)
		}

		return filter.Int64Literal(n), nil
	case filter.TypeFloat64:
		f, err := doubleOf(v)
		if err != nil {
			return nil, badValue(t, v)
		}

		return filter.Float64Literal(f), nil
	case filter.TypeBool:
		if b, ok := v.(bool); ok {
			return filter.BoolLiteral(b), nil
		}
	case filter.TypeText:
		if s, ok := v.(string); ok {
			return filter.StringLiteral(s), nil
		}
	}

	return nil, badValue(t, v)
}

func integerOf(v any, lo, hi int64) (int64, error) {
	var n int64
	switch v := v.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case uint64:
		if v > math.MaxInt64 {
			return 0, strconv.ErrRange
		}
		n = int64(v)
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, strconv.ErrRange
		}
		n = int64(v)
	case json.Number:
		var err error
		if n, err = strconv.ParseInt(string(v), 10, 64); err != nil {
			return 0, err
		}
	default:
		return 0, strconv.ErrSyntax
	}

	if n < lo || n > hi {
		return 0, strconv.ErrRange
	}

	return n, nil
}

func doubleOf(v any) (float64, error) {
	switch v := v.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		return v, nil
	case json.Number:
		return v.Float64()
	case string:
		switch v {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
	}

	return 0, strconv.ErrSyntax
}
