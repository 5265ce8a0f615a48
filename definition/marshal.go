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
	"fmt"

	"github.com/rowscan/filter"
	"github.com/rowscan/filter/table"
)

// NodeOf returns the definition node describing p.
func NodeOf(p filter.FilterPredicate) (*Node, error) {
	n, err := filter.VisitFilter[Node](p, toNode{})
	if err != nil {
		return nil, err
	}

	return &n, nil
}

// DocumentOf returns the document describing f over sc.
func DocumentOf(sc *table.Schema, f *table.Filter) (*Document, error) {
	doc := &Document{Schema: sc.Columns(), FromRow: f.FromRow()}
	if to := f.ToRow(); to >= 0 {
		doc.ToRow = &to
	}

	if p := f.Predicate(); p != nil {
		n, err := NodeOf(p)
		if err != nil {
			return nil, err
		}
		doc.Predicate = n
	}

	if cols := f.MaterializedColumns(); cols != nil {
		doc.Materialize = make([]string, len(cols))
		for i, c := range cols {
			doc.Materialize[i] = sc.Column(c).Name
		}
	}

	return doc, nil
}

// MarshalDocument encodes f over sc as a document.
func MarshalDocument(sc *table.Schema, f *table.Filter, format Format) ([]byte, error) {
	doc, err := DocumentOf(sc, f)
	if err != nil {
		return nil, err
	}

	return marshal(doc, format)
}

type toNode struct{}

func leaf(op string, col filter.TypedColumn) Node {
	n := Node{Op: op}
	switch col := col.(type) {
	case filter.Indexed:
		idx, typ := col.Index(), col.Type()
		n.Column, n.Type = &idx, &typ
	default:
		n.RowKey = true
	}

	return n
}

func (toNode) value(p filter.ValuePredicate) (Node, error) {
	n := leaf(opKeys[p.Op()], p.Column())
	n.Value = &Scalar{V: p.Literal().Any()}

	return n, nil
}

func (toNode) VisitIsMissing(p filter.MissingValuePredicate) (Node, error) {
	return leaf(opMissing, p.Column()), nil
}

func (toNode) VisitCustom(p filter.CustomPredicate) (Node, error) {
	return Node{}, fmt.Errorf("%w: %s has no definition form", filter.ErrUnsupportedOperation, p)
}

func (t toNode) VisitEqual(p filter.ValuePredicate) (Node, error)          { return t.value(p) }
func (t toNode) VisitNotEqual(p filter.ValuePredicate) (Node, error)       { return t.value(p) }
func (t toNode) VisitLesser(p filter.ValuePredicate) (Node, error)         { return t.value(p) }
func (t toNode) VisitLesserOrEqual(p filter.ValuePredicate) (Node, error)  { return t.value(p) }
func (t toNode) VisitGreater(p filter.ValuePredicate) (Node, error)        { return t.value(p) }
func (t toNode) VisitGreaterOrEqual(p filter.ValuePredicate) (Node, error) { return t.value(p) }

func (toNode) VisitNot(child Node) (Node, error) {
	return Node{Op: opNot, Args: []Node{child}}, nil
}

func (toNode) VisitAnd(left, right Node) (Node, error) { return Node{Op: opAnd, Args: []Node{left, right}}, nil }
func (toNode) VisitOr(left, right Node) (Node, error)  { return Node{Op: opOr, Args: []Node{left, right}}, nil }
