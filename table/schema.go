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

// Package table is the table layer owning row filters: named schemas,
// row range filters and their application to rows and arrow records.
package table

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rowscan/filter"
)

var ErrInvalidSchema = errors.New("invalid schema")

// ColumnSpec is the name and type of a single column.
type ColumnSpec struct {
	Name string         `json:"name" yaml:"name"`
	Type filter.TypeTag `json:"type" yaml:"type"`
}

func (c ColumnSpec) String() string { return c.Name + ": " + c.Type.String() }

// Schema is an ordered list of uniquely named columns. It implements
// filter.Schema and is immutable: Rearrange and Replace return new schemas.
type Schema struct {
	cols []ColumnSpec
	idx  map[string]int
}

// NewSchema returns a schema with the given columns. Panics if a name is
// empty or used twice, use TryNewSchema to get an error instead.
func NewSchema(cols ...ColumnSpec) *Schema {
	sc, err := TryNewSchema(cols...)
	if err != nil {
		panic(err)
	}

	return sc
}

func TryNewSchema(cols ...ColumnSpec) (*Schema, error) {
	sc := &Schema{cols: slices.Clone(cols), idx: make(map[string]int, len(cols))}
	for i, c := range sc.cols {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: column %d has no name", ErrInvalidSchema, i)
		}
		if _, dup := sc.idx[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column name '%s'", ErrInvalidSchema, c.Name)
		}
		sc.idx[c.Name] = i
	}

	return sc, nil
}

func (s *Schema) ColumnCount() int                    { return len(s.cols) }
func (s *Schema) ColumnType(index int) filter.TypeTag { return s.cols[index].Type }
func (s *Schema) Column(index int) ColumnSpec         { return s.cols[index] }
func (s *Schema) Columns() []ColumnSpec               { return slices.Clone(s.cols) }

// IndexOf returns the index of the column with the given name.
func (s *Schema) IndexOf(name string) (int, bool) {
	i, ok := s.idx[name]

	return i, ok
}

// Names returns the column names in order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.cols))
	for i, c := range s.cols {
		out[i] = c.Name
	}

	return out
}

// Types returns the column types in order.
func (s *Schema) Types() filter.Types {
	out := make(filter.Types, len(s.cols))
	for i, c := range s.cols {
		out[i] = c.Type
	}

	return out
}

// Rearrange moves column i to position perm[i]. perm must be a permutation
// of the column indices.
func (s *Schema) Rearrange(perm []int) (*Schema, error) {
	if err := checkPermutation(perm, len(s.cols)); err != nil {
		return nil, err
	}

	out := make([]ColumnSpec, len(s.cols))
	for from, to := range perm {
		out[to] = s.cols[from]
	}

	return TryNewSchema(out...)
}

// Replace returns a copy of the schema with the column at index holding
// values of type typ.
func (s *Schema) Replace(index int, typ filter.TypeTag) (*Schema, error) {
	if index < 0 || index >= len(s.cols) {
		return nil, fmt.Errorf("%w: cannot replace column %d of %d",
			filter.ErrIndexOutOfRange, index, len(s.cols))
	}

	out := slices.Clone(s.cols)
	out[index].Type = typ

	return TryNewSchema(out...)
}

func (s *Schema) Equals(other *Schema) bool {
	return other != nil && slices.Equal(s.cols, other.cols)
}

func (s *Schema) String() string {
	var b strings.Builder
	b.WriteString("table.Schema{")
	for i, c := range s.cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.String())
	}
	b.WriteByte('}')

	return b.String()
}

func checkPermutation(perm []int, n int) error {
	if len(perm) != n {
		return fmt.Errorf("%w: permutation of %d entries for %d columns",
			filter.ErrInvalidArgument, len(perm), n)
	}

	seen := make([]bool, n)
	for from, to := range perm {
		if to < 0 || to >= n || seen[to] {
			return fmt.Errorf("%w: invalid permutation target %d for column %d",
				filter.ErrInvalidArgument, to, from)
		}
		seen[to] = true
	}

	return nil
}
