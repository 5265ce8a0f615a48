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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/pterm/pterm"
	"github.com/rowscan/filter"
	"github.com/rowscan/filter/definition"
	"github.com/rowscan/filter/table"
)

type Output interface {
	Document(*table.Schema, *table.Filter)
	Records([]arrow.Record)
	Keys([]string)
	Text(string)
	Error(error)
}

type textOutput struct{}

func (t textOutput) Document(sc *table.Schema, f *table.Filter) {
	materialized := map[int]bool{}
	for _, idx := range f.MaterializedColumns() {
		materialized[idx] = true
	}

	data := pterm.TableData{{"#", "Column", "Type", "Read"}}
	for i, c := range sc.Columns() {
		read := f.MaterializedColumns() == nil || materialized[i]
		data = append(data, []string{strconv.Itoa(i), c.Name, c.Type.String(), strconv.FormatBool(read)})
	}

	pterm.DefaultTable.
		WithBoxed(true).
		WithHasHeader(true).
		WithHeaderRowSeparator("-").
		WithData(data).Render()

	to := "*"
	if f.ToRow() >= 0 {
		to = strconv.FormatInt(f.ToRow(), 10)
	}
	pterm.Printfln("Rows: [%d, %s]", f.FromRow(), to)

	p := f.Predicate()
	if p == nil {
		pterm.Println("Predicate: none")
		return
	}

	root, err := filter.VisitFilter[pterm.TreeNode](p, treeBuilder{names: sc.Names()})
	if err != nil {
		t.Error(err)
		return
	}

	pterm.DefaultTree.WithRoot(pterm.TreeNode{Text: "Predicate", Children: []pterm.TreeNode{root}}).Render()
}

func (textOutput) Records(recs []arrow.Record) {
	var data pterm.TableData
	for _, rec := range recs {
		if data == nil {
			header := make([]string, rec.NumCols())
			for i, f := range rec.Schema().Fields() {
				header[i] = f.Name
			}
			data = append(data, header)
		}

		for r := range int(rec.NumRows()) {
			row := make([]string, rec.NumCols())
			for c, col := range rec.Columns() {
				row[c] = col.ValueStr(r)
			}
			data = append(data, row)
		}
	}

	if len(data) <= 1 {
		pterm.Println("No matching rows")
		return
	}

	pterm.DefaultTable.
		WithBoxed(true).
		WithHasHeader(true).
		WithHeaderRowSeparator("-").
		WithData(data).Render()
}

func (textOutput) Keys(keys []string) {
	data := pterm.TableData{{"Row keys"}}
	for _, k := range keys {
		data = append(data, []string{k})
	}

	pterm.DefaultTable.
		WithBoxed(true).
		WithHasHeader(true).
		WithHeaderRowSeparator("-").
		WithData(data).Render()
}

func (textOutput) Text(val string) {
	pterm.Println(val)
}

func (textOutput) Error(err error) {
	pterm.Error.Println(err)
}

// treeBuilder renders a predicate as a pterm tree with column names in
// place of column indices.
type treeBuilder struct {
	names []string
}

func (t treeBuilder) column(col filter.TypedColumn) string {
	if col, ok := col.(filter.Indexed); ok && col.Index() < len(t.names) {
		return t.names[col.Index()]
	}

	return col.String()
}

func (t treeBuilder) leaf(p filter.ColumnPredicate, suffix string) (pterm.TreeNode, error) {
	return pterm.TreeNode{Text: fmt.Sprintf("%s %s%s", p.Op(), t.column(p.Column()), suffix)}, nil
}

func (t treeBuilder) value(p filter.ValuePredicate) (pterm.TreeNode, error) {
	return t.leaf(p, " "+p.Literal().String())
}

func (t treeBuilder) VisitIsMissing(p filter.MissingValuePredicate) (pterm.TreeNode, error) {
	return t.leaf(p, "")
}

func (t treeBuilder) VisitCustom(p filter.CustomPredicate) (pterm.TreeNode, error) {
	return t.leaf(p, "")
}

func (t treeBuilder) VisitEqual(p filter.ValuePredicate) (pterm.TreeNode, error)    { return t.value(p) }
func (t treeBuilder) VisitNotEqual(p filter.ValuePredicate) (pterm.TreeNode, error) { return t.value(p) }
func (t treeBuilder) VisitLesser(p filter.ValuePredicate) (pterm.TreeNode, error)   { return t.value(p) }
func (t treeBuilder) VisitLesserOrEqual(p filter.ValuePredicate) (pterm.TreeNode, error) {
	return t.value(p)
}
func (t treeBuilder) VisitGreater(p filter.ValuePredicate) (pterm.TreeNode, error) { return t.value(p) }
func (t treeBuilder) VisitGreaterOrEqual(p filter.ValuePredicate) (pterm.TreeNode, error) {
	return t.value(p)
}

func (treeBuilder) VisitNot(child pterm.TreeNode) (pterm.TreeNode, error) {
	return pterm.TreeNode{Text: "Not", Children: []pterm.TreeNode{child}}, nil
}

func (treeBuilder) VisitAnd(left, right pterm.TreeNode) (pterm.TreeNode, error) {
	return pterm.TreeNode{Text: "And", Children: []pterm.TreeNode{left, right}}, nil
}

func (treeBuilder) VisitOr(left, right pterm.TreeNode) (pterm.TreeNode, error) {
	return pterm.TreeNode{Text: "Or", Children: []pterm.TreeNode{left, right}}, nil
}

type jsonOutput struct {
	w io.Writer
}

func (j jsonOutput) writer() io.Writer {
	if j.w == nil {
		return os.Stdout
	}

	return j.w
}

func (j jsonOutput) encode(v any) {
	enc := json.NewEncoder(j.writer())
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		j.Error(err)
	}
}

func (j jsonOutput) Document(sc *table.Schema, f *table.Filter) {
	doc, err := definition.DocumentOf(sc, f)
	if err != nil {
		j.Error(err)
		return
	}

	j.encode(doc)
}

// Records writes one JSON object per line for every row.
func (j jsonOutput) Records(recs []arrow.Record) {
	for _, rec := range recs {
		if err := array.RecordToJSON(rec, j.writer()); err != nil {
			j.Error(err)
			return
		}
	}
}

func (j jsonOutput) Keys(keys []string) {
	if keys == nil {
		keys = []string{}
	}
	j.encode(keys)
}

func (j jsonOutput) Text(val string) {
	j.encode(val)
}

func (j jsonOutput) Error(err error) {
	_ = json.NewEncoder(j.writer()).Encode(map[string]string{"error": err.Error()})
}
