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

// MapIndices returns a predicate of the same shape as p in which every
// indexed column reads from mapping[oldIndex] instead. Row key leaves,
// literals and custom functions are carried over unchanged. It is used when
// the columns of a table are physically reordered.
//
// An index without an entry in mapping, or mapped to a negative index,
// fails with ErrIndexOutOfRange.
func MapIndices(p FilterPredicate, mapping []int) (FilterPredicate, error) {
	return VisitFilter[FilterPredicate](p, indexMapper{mapping: mapping})
}

type indexMapper struct {
	mapping []int
}

func (m indexMapper) target(col Indexed) (Indexed, error) {
	idx := col.Index()
	if idx >= len(m.mapping) {
		return nil, fmt.Errorf("%w: no mapping for column index %d (mapping has %d entries)",
			ErrIndexOutOfRange, idx, len(m.mapping))
	}

	to := m.mapping[idx]
	if to < 0 {
		return nil, fmt.Errorf("%w: column index %d mapped to %d",
			ErrIndexOutOfRange, idx, to)
	}

	return ColumnOf(col.Type(), to)
}

func (m indexMapper) VisitIsMissing(p MissingValuePredicate) (FilterPredicate, error) {
	col, err := m.target(p.Column().(Indexed))
	if err != nil {
		return nil, err
	}

	return NewMissingPredicate(col)
}

func (m indexMapper) VisitCustom(p CustomPredicate) (FilterPredicate, error) {
	col, err := m.target(p.Column().(Indexed))
	if err != nil {
		return nil, err
	}

	return p.withIndex(col.Index()), nil
}

func (m indexMapper) value(p ValuePredicate) (FilterPredicate, error) {
	orig, ok := p.Column().(Indexed)
	if !ok {
		return p, nil
	}

	col, err := m.target(orig)
	if err != nil {
		return nil, err
	}

	return NewValuePredicate(p.Op(), col, p.Literal())
}

func (m indexMapper) VisitEqual(p ValuePredicate) (FilterPredicate, error)          { return m.value(p) }
func (m indexMapper) VisitNotEqual(p ValuePredicate) (FilterPredicate, error)       { return m.value(p) }
func (m indexMapper) VisitLesser(p ValuePredicate) (FilterPredicate, error)         { return m.value(p) }
func (m indexMapper) VisitLesserOrEqual(p ValuePredicate) (FilterPredicate, error)  { return m.value(p) }
func (m indexMapper) VisitGreater(p ValuePredicate) (FilterPredicate, error)        { return m.value(p) }
func (m indexMapper) VisitGreaterOrEqual(p ValuePredicate) (FilterPredicate, error) { return m.value(p) }

func (indexMapper) VisitNot(child FilterPredicate) (FilterPredicate, error) {
	return child.Negate(), nil
}

func (indexMapper) VisitAnd(left, right FilterPredicate) (FilterPredicate, error) {
	return left.And(right), nil
}

func (indexMapper) VisitOr(left, right FilterPredicate) (FilterPredicate, error) {
	return left.Or(right), nil
}
