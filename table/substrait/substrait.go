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

// Package substrait translates row predicates into substrait expressions
// so that a storage engine can evaluate them natively.
package substrait

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/compute/exprs"
	"github.com/rowscan/filter"
	"github.com/rowscan/filter/table"
	"github.com/substrait-io/substrait-go/v4/expr"
	"github.com/substrait-io/substrait-go/v4/extensions"
	"github.com/substrait-io/substrait-go/v4/types"
)

var collection = extensions.GetDefaultCollectionWithNoError()

// ConvertSchema converts a table schema to a substrait NamedStruct with
// nullable fields. If rowKeyField is not empty, a required string field of
// that name holding the row keys is appended after the columns.
func ConvertSchema(schema *table.Schema, rowKeyField string) (res types.NamedStruct, err error) {
	n := schema.ColumnCount()
	res.Names = schema.Names()
	res.Struct = types.StructType{
		Nullability: types.NullabilityRequired,
		Types:       make([]types.Type, n, n+1),
	}

	for i := range n {
		res.Struct.Types[i] = toSubstraitType(schema.ColumnType(i)).
			WithNullability(types.NullabilityNullable)
	}

	if rowKeyField != "" {
		if _, dup := schema.IndexOf(rowKeyField); dup {
			return res, fmt.Errorf("%w: row key field '%s' collides with a column",
				filter.ErrInvalidArgument, rowKeyField)
		}

		res.Names = append(res.Names, rowKeyField)
		res.Struct.Types = append(res.Struct.Types,
			(&types.StringType{}).WithNullability(types.NullabilityRequired))
	}

	return res, nil
}

func toSubstraitType(t filter.TypeTag) types.Type {
	switch t {
	case filter.TypeInt32:
		return &types.Int32Type{}
	case filter.TypeInt64:
		return &types.Int64Type{}
	case filter.TypeFloat64:
		return &types.Float64Type{}
	case filter.TypeBool:
		return &types.BooleanType{}
	}

	return &types.StringType{}
}

// ConvertPredicate converts p, which must be valid for schema, into a
// substrait boolean expression over the struct returned by ConvertSchema
// with the same arguments.
//
// Comparisons are guarded with is_not_null so that the expression keeps
// rows exactly like filter.Evaluate does, including below a negation.
// Custom predicates cannot be expressed and fail with
// filter.ErrUnsupportedOperation, as do row key predicates when
// rowKeyField is empty.
func ConvertPredicate(schema *table.Schema, p filter.FilterPredicate, rowKeyField string) (*expr.ExtensionRegistry, expr.Expression, error) {
	if err := filter.Validate(p, schema); err != nil {
		return nil, nil, err
	}

	base, err := ConvertSchema(schema, rowKeyField)
	if err != nil {
		return nil, nil, err
	}

	reg := expr.NewEmptyExtensionRegistry(collection)
	bldr := expr.ExprBuilder{Reg: reg, BaseSchema: types.NewRecordTypeFromStruct(base.Struct)}

	b, err := filter.VisitFilter[expr.Builder](p, &toSubstraitExpr{
		bldr:     bldr,
		keyField: rowKeyField,
		keyIndex: int32(schema.ColumnCount()),
	})
	if err != nil {
		return nil, nil, err
	}

	out, err := b.BuildExpr()

	return &reg, out, err
}

var (
	boolURI    = extensions.SubstraitDefaultURIPrefix + "functions_boolean.yaml"
	compareURI = extensions.SubstraitDefaultURIPrefix + "functions_comparison.yaml"

	notID          = extensions.ID{URI: boolURI, Name: "not"}
	andID          = extensions.ID{URI: boolURI, Name: "and"}
	orID           = extensions.ID{URI: boolURI, Name: "or"}
	isNullID       = extensions.ID{URI: compareURI, Name: "is_null"}
	isNotNullID    = extensions.ID{URI: compareURI, Name: "is_not_null"}
	equalID        = extensions.ID{URI: compareURI, Name: "equal"}
	notEqualID     = extensions.ID{URI: compareURI, Name: "not_equal"}
	greaterEqualID = extensions.ID{URI: compareURI, Name: "gte"}
	greaterID      = extensions.ID{URI: compareURI, Name: "gt"}
	lessEqualID    = extensions.ID{URI: compareURI, Name: "lte"}
	lessID         = extensions.ID{URI: compareURI, Name: "lt"}
)

type toSubstraitExpr struct {
	bldr     expr.ExprBuilder
	keyField string
	keyIndex int32
}

func (t *toSubstraitExpr) VisitNot(child expr.Builder) (expr.Builder, error) {
	return t.bldr.ScalarFunc(notID).Args(child.(expr.FuncArgBuilder)), nil
}

func (t *toSubstraitExpr) VisitAnd(left, right expr.Builder) (expr.Builder, error) {
	return t.bldr.ScalarFunc(andID).Args(left.(expr.FuncArgBuilder),
		right.(expr.FuncArgBuilder)), nil
}

func (t *toSubstraitExpr) VisitOr(left, right expr.Builder) (expr.Builder, error) {
	return t.bldr.ScalarFunc(orID).Args(left.(expr.FuncArgBuilder),
		right.(expr.FuncArgBuilder)), nil
}

func (t *toSubstraitExpr) VisitCustom(p filter.CustomPredicate) (expr.Builder, error) {
	return nil, fmt.Errorf("%w: %s cannot be pushed down", filter.ErrUnsupportedOperation, p)
}

func (t *toSubstraitExpr) VisitIsMissing(p filter.MissingValuePredicate) (expr.Builder, error) {
	ref, err := t.getRef(p.Column())
	if err != nil {
		return nil, err
	}

	return t.bldr.ScalarFunc(isNullID).Args(ref), nil
}

func (t *toSubstraitExpr) getRef(col filter.TypedColumn) (expr.FuncArgBuilder, error) {
	idx := t.keyIndex
	switch col := col.(type) {
	case filter.Indexed:
		idx = int32(col.Index())
	case filter.RowKeyColumn:
		if t.keyField == "" {
			return nil, fmt.Errorf("%w: no row key field to push %s down to",
				filter.ErrUnsupportedOperation, col)
		}
	}

	return t.bldr.RootRef(expr.NewStructFieldRef(idx)), nil
}

func toSubstraitLiteral(lit filter.Literal) expr.Literal {
	switch lit := lit.(type) {
	case filter.BoolLiteral:
		return expr.NewPrimitiveLiteral(bool(lit), false)
	case filter.Int32Literal:
		return expr.NewPrimitiveLiteral(int32(lit), false)
	case filter.Int64Literal:
		return expr.NewPrimitiveLiteral(int64(lit), false)
	case filter.Float64Literal:
		return expr.NewPrimitiveLiteral(float64(lit), false)
	case filter.StringLiteral:
		return expr.NewPrimitiveLiteral(string(lit), false)
	}
	panic(fmt.Errorf("invalid literal type: %s", lit.Type()))
}

func (t *toSubstraitExpr) makeLitFunc(id extensions.ID, p filter.ValuePredicate) (expr.Builder, error) {
	ref, err := t.getRef(p.Column())
	if err != nil {
		return nil, err
	}

	cmp := t.bldr.ScalarFunc(id).Args(ref, t.bldr.Literal(toSubstraitLiteral(p.Literal())))
	if _, isKey := p.Column().(filter.RowKeyColumn); isKey {
		return cmp, nil
	}

	return t.bldr.ScalarFunc(andID).Args(t.bldr.ScalarFunc(isNotNullID).Args(ref), cmp), nil
}

func (t *toSubstraitExpr) VisitEqual(p filter.ValuePredicate) (expr.Builder, error) {
	return t.makeLitFunc(equalID, p)
}

func (t *toSubstraitExpr) VisitNotEqual(p filter.ValuePredicate) (expr.Builder, error) {
	return t.makeLitFunc(notEqualID, p)
}

func (t *toSubstraitExpr) VisitLesser(p filter.ValuePredicate) (expr.Builder, error) {
	return t.makeLitFunc(lessID, p)
}

func (t *toSubstraitExpr) VisitLesserOrEqual(p filter.ValuePredicate) (expr.Builder, error) {
	return t.makeLitFunc(lessEqualID, p)
}

func (t *toSubstraitExpr) VisitGreater(p filter.ValuePredicate) (expr.Builder, error) {
	return t.makeLitFunc(greaterID, p)
}

func (t *toSubstraitExpr) VisitGreaterOrEqual(p filter.ValuePredicate) (expr.Builder, error) {
	return t.makeLitFunc(greaterEqualID, p)
}

// FilterRecord evaluates a converted predicate with the arrow compute
// engine and returns the rows of rec for which it is true.
func FilterRecord(ctx context.Context, reg *expr.ExtensionRegistry, recordFilter expr.Expression, rec arrow.Record) (arrow.Record, error) {
	ctx = exprs.WithExtensionIDSet(ctx, exprs.NewExtensionSetDefault(*reg))

	input := compute.NewDatumWithoutOwning(rec)
	mask, err := exprs.ExecuteScalarExpression(ctx, rec.Schema(), recordFilter, input)
	if err != nil {
		return nil, err
	}
	defer mask.Release()

	result, err := compute.Filter(ctx, input, mask, *compute.DefaultFilterOptions())
	if err != nil {
		return nil, err
	}

	return result.(*compute.RecordDatum).Value, nil
}
