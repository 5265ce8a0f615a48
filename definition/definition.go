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

// Package definition reads and writes row predicates, schemas and table
// filters as YAML or JSON documents.
//
// A predicate is a tree of nodes:
//
//	op: and
//	args:
//	  - {op: gt, name: age, value: 25}
//	  - {op: eq, column: 1, type: string, value: Ann}
//	  - {op: not, args: [{op: missing, column: 2, type: double}]}
//	  - {op: neq, row-key: true, value: r7}
//
// Leaves address a column by index or, when parsed against a named
// schema, by name. The value type comes from the node or the schema.
package definition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rowscan/filter"
	"github.com/rowscan/filter/table"
	"gopkg.in/yaml.v3"
)

var ErrInvalidDefinition = errors.New("invalid definition")

type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// FormatOf returns the format implied by a file name extension, YAML
// unless the name ends in .json.
func FormatOf(name string) Format {
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		return JSON
	}

	return YAML
}

const (
	opEQ      = "eq"
	opNEQ     = "neq"
	opLT      = "lt"
	opLTEQ    = "lteq"
	opGT      = "gt"
	opGTEQ    = "gteq"
	opMissing = "missing"
	opNot     = "not"
	opAnd     = "and"
	opOr      = "or"
)

var valueOps = map[string]filter.Operation{
	opEQ:   filter.OpEQ,
	opNEQ:  filter.OpNEQ,
	opLT:   filter.OpLT,
	opLTEQ: filter.OpLTEQ,
	opGT:   filter.OpGT,
	opGTEQ: filter.OpGTEQ,
}

var opKeys = map[filter.Operation]string{
	filter.OpEQ:   opEQ,
	filter.OpNEQ:  opNEQ,
	filter.OpLT:   opLT,
	filter.OpLTEQ: opLTEQ,
	filter.OpGT:   opGT,
	filter.OpGTEQ: opGTEQ,
}

// Node is one predicate node of a definition document.
type Node struct {
	Op     string          `json:"op" yaml:"op"`
	Column *int            `json:"column,omitempty" yaml:"column,omitempty"`
	Name   string          `json:"name,omitempty" yaml:"name,omitempty"`
	RowKey bool            `json:"row-key,omitempty" yaml:"row-key,omitempty"`
	Type   *filter.TypeTag `json:"type,omitempty" yaml:"type,omitempty"`
	Value  *Scalar         `json:"value,omitempty" yaml:"value,omitempty"`
	Args   []Node          `json:"args,omitempty" yaml:"args,omitempty"`
}

// Scalar holds a literal value as decoded from the document. Non finite
// doubles are written as the strings NaN, Infinity and -Infinity in JSON.
type Scalar struct {
	V any
}

func (s Scalar) MarshalYAML() (any, error) { return s.V, nil }

func (s *Scalar) UnmarshalYAML(value *yaml.Node) error {
	return value.Decode(&s.V)
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if f, ok := s.V.(float64); ok {
		switch {
		case math.IsNaN(f):
			return []byte(`"NaN"`), nil
		case math.IsInf(f, 1):
			return []byte(`"Infinity"`), nil
		case math.IsInf(f, -1):
			return []byte(`"-Infinity"`), nil
		}
	}

	return json.Marshal(s.V)
}

func (s *Scalar) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	return dec.Decode(&s.V)
}

// Document is a complete table filter definition.
type Document struct {
	Schema      []table.ColumnSpec `json:"schema,omitempty" yaml:"schema,omitempty"`
	Predicate   *Node              `json:"predicate,omitempty" yaml:"predicate,omitempty"`
	FromRow     int64              `json:"from-row,omitempty" yaml:"from-row,omitempty"`
	ToRow       *int64             `json:"to-row,omitempty" yaml:"to-row,omitempty"`
	Materialize []string           `json:"materialize,omitempty" yaml:"materialize,omitempty"`
}

func unmarshal(data []byte, format Format, out any) error {
	var err error
	if format == JSON {
		err = json.Unmarshal(data, out)
	} else {
		err = yaml.Unmarshal(data, out)
	}

	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDefinition, err)
	}

	return nil
}

func marshal(v any, format Format) ([]byte, error) {
	if format == JSON {
		return json.MarshalIndent(v, "", "  ")
	}

	return yaml.Marshal(v)
}

// Parse decodes a predicate definition. sc resolves column names and
// missing value types, it may be nil when every leaf carries a column
// index and a type.
func Parse(data []byte, format Format, sc *table.Schema) (filter.FilterPredicate, error) {
	var n Node
	if err := unmarshal(data, format, &n); err != nil {
		return nil, err
	}

	return n.Predicate(sc)
}

// Marshal encodes p as a predicate definition. Custom predicates cannot
// be encoded and fail with filter.ErrUnsupportedOperation.
func Marshal(p filter.FilterPredicate, format Format) ([]byte, error) {
	n, err := NodeOf(p)
	if err != nil {
		return nil, err
	}

	return marshal(n, format)
}

// ParseSchema decodes a list of {name, type} columns.
func ParseSchema(data []byte, format Format) (*table.Schema, error) {
	var cols []table.ColumnSpec
	if err := unmarshal(data, format, &cols); err != nil {
		return nil, err
	}

	return table.TryNewSchema(cols...)
}

// ParseDocument decodes a table filter definition. The document schema
// is used when present, otherwise sc.
func ParseDocument(data []byte, format Format, sc *table.Schema) (*table.Schema, *table.Filter, error) {
	var doc Document
	if err := unmarshal(data, format, &doc); err != nil {
		return nil, nil, err
	}

	return doc.Resolve(sc)
}

// Resolve builds and validates the schema and filter described by the
// document.
func (d *Document) Resolve(sc *table.Schema) (*table.Schema, *table.Filter, error) {
	if len(d.Schema) > 0 {
		var err error
		if sc, err = table.TryNewSchema(d.Schema...); err != nil {
			return nil, nil, err
		}
	}

	if sc == nil {
		return nil, nil, fmt.Errorf("%w: document has no schema", ErrInvalidDefinition)
	}

	var opts []table.FilterOption
	if d.Predicate != nil {
		p, err := d.Predicate.Predicate(sc)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, table.WithPredicate(p))
	}

	to := int64(-1)
	if d.ToRow != nil {
		to = *d.ToRow
	}
	opts = append(opts, table.WithRowRange(d.FromRow, to))

	if d.Materialize != nil {
		cols := make([]int, len(d.Materialize))
		for i, name := range d.Materialize {
			idx, ok := sc.IndexOf(name)
			if !ok {
				return nil, nil, fmt.Errorf("%w: unknown materialized column '%s'",
					ErrInvalidDefinition, name)
			}
			cols[i] = idx
		}
		opts = append(opts, table.WithMaterializedColumns(cols...))
	}

	f := table.NewFilter(opts...)
	if err := f.Validate(sc); err != nil {
		return nil, nil, err
	}

	return sc, f, nil
}

// Predicate builds the predicate described by the node.
func (n *Node) Predicate(sc *table.Schema) (filter.FilterPredicate, error) {
	op := strings.ToLower(n.Op)
	switch op {
	case opNot:
		if len(n.Args) != 1 {
			return nil, fmt.Errorf("%w: not takes exactly one argument, got %d",
				ErrInvalidDefinition, len(n.Args))
		}

		child, err := n.Args[0].Predicate(sc)
		if err != nil {
			return nil, err
		}

		return filter.NewNot(child), nil
	case opAnd, opOr:
		if len(n.Args) < 2 {
			return nil, fmt.Errorf("%w: %s takes at least two arguments, got %d",
				ErrInvalidDefinition, op, len(n.Args))
		}

		args := make([]filter.FilterPredicate, len(n.Args))
		for i := range n.Args {
			p, err := n.Args[i].Predicate(sc)
			if err != nil {
				return nil, err
			}
			args[i] = p
		}

		if op == opAnd {
			return filter.NewAnd(args[0], args[1], args[2:]...), nil
		}

		return filter.NewOr(args[0], args[1], args[2:]...), nil
	case opMissing:
		col, err := n.column(sc)
		if err != nil {
			return nil, err
		}

		return filter.NewMissingPredicate(col)
	}

	valOp, ok := valueOps[op]
	if !ok {
		return nil, fmt.Errorf("%w: unknown operation '%s'", ErrInvalidDefinition, n.Op)
	}

	col, err := n.column(sc)
	if err != nil {
		return nil, err
	}

	if n.Value == nil {
		return nil, fmt.Errorf("%w: %s on %s has no value", ErrInvalidDefinition, op, col)
	}

	lit, err := literalOf(col.Type(), n.Value.V)
	if err != nil {
		return nil, err
	}

	return filter.NewValuePredicate(valOp, col, lit)
}

func (n *Node) column(sc *table.Schema) (filter.TypedColumn, error) {
	if n.RowKey {
		return filter.RowKey(), nil
	}

	var idx int
	switch {
	case n.Column != nil:
		idx = *n.Column
	case n.Name != "":
		if sc == nil {
			return nil, fmt.Errorf("%w: column '%s' referenced by name without a schema",
				ErrInvalidDefinition, n.Name)
		}

		var ok bool
		if idx, ok = sc.IndexOf(n.Name); !ok {
			return nil, fmt.Errorf("%w: unknown column '%s'", ErrInvalidDefinition, n.Name)
		}
	default:
		return nil, fmt.Errorf("%w: %s node has no column", ErrInvalidDefinition, n.Op)
	}

	var typ filter.TypeTag
	switch {
	case n.Type != nil:
		typ = *n.Type
	case sc != nil && idx >= 0 && idx < sc.ColumnCount():
		typ = sc.ColumnType(idx)
	default:
		return nil, fmt.Errorf("%w: no type for column %d", ErrInvalidDefinition, idx)
	}

	col, err := filter.ColumnOf(typ, idx)
	if err != nil {
		return nil, err
	}

	return col, nil
}
