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

// Package sqlfilter translates row predicates into SQL WHERE clauses for
// tables stored in a relational database.
package sqlfilter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/rowscan/filter"
	"github.com/rowscan/filter/table"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mssqldialect"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/oracledialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

type SupportedDialect string

const (
	Postgres SupportedDialect = "postgres"
	MySQL    SupportedDialect = "mysql"
	SQLite   SupportedDialect = "sqlite"
	MSSQL    SupportedDialect = "mssql"
	Oracle   SupportedDialect = "oracle"
)

var (
	dialects  = map[SupportedDialect]schema.Dialect{}
	dialectMx sync.Mutex
)

func createDialect(d SupportedDialect) (schema.Dialect, error) {
	switch d {
	case Postgres:
		return pgdialect.New(), nil
	case MySQL:
		return mysqldialect.New(), nil
	case SQLite:
		return sqlitedialect.New(), nil
	case MSSQL:
		return mssqldialect.New(), nil
	case Oracle:
		return oracledialect.New(), nil
	}

	return nil, fmt.Errorf("%w: unsupported sql dialect '%s'", filter.ErrInvalidArgument, d)
}

// Dialect returns the shared bun dialect for name. Names are case
// insensitive.
func Dialect(name string) (schema.Dialect, error) {
	d := SupportedDialect(strings.ToLower(name))

	dialectMx.Lock()
	defer dialectMx.Unlock()
	ret, ok := dialects[d]
	if !ok {
		var err error
		if ret, err = createDialect(d); err != nil {
			return nil, err
		}
		dialects[d] = ret
	}

	return ret, nil
}

// Open opens a database with the given driver and wraps it for the
// dialect.
//
// The environment variable ROWFILTER_SQL_DEBUG can be set to log queries:
// - ROWFILTER_SQL_DEBUG=1 logs only failed queries
// - ROWFILTER_SQL_DEBUG=2 logs all queries
func Open(driver, dsn, dialect string) (*bun.DB, error) {
	d, err := Dialect(dialect)
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, d)
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(false),
		bundebug.FromEnv("ROWFILTER_SQL_DEBUG")))

	return db, nil
}

// Clause is a boolean SQL expression with ? placeholders. It implements
// schema.QueryAppender so it can be passed as a query argument.
type Clause struct {
	Query string
	Args  []any
}

func (c Clause) AppendQuery(fmter schema.Formatter, b []byte) ([]byte, error) {
	return fmter.AppendQuery(b, c.Query, c.Args...), nil
}

// Format renders the clause with its arguments inlined for dialect d.
func (c Clause) Format(d schema.Dialect) string {
	return schema.NewFormatter(d).FormatQuery(c.Query, c.Args...)
}

// Compile translates p, which must be valid for sc, into a WHERE clause
// over the columns of sc named as in the schema. Row key predicates
// compare against rowKeyColumn.
//
// Comparisons are guarded with IS NOT NULL so the clause keeps rows
// exactly like filter.Evaluate does, including below NOT. Custom
// predicates cannot be expressed in SQL and fail with
// filter.ErrUnsupportedOperation, as do row key predicates when
// rowKeyColumn is empty.
func Compile(sc *table.Schema, p filter.FilterPredicate, rowKeyColumn string) (Clause, error) {
	if err := filter.Validate(p, sc); err != nil {
		return Clause{}, err
	}

	return filter.VisitFilter[Clause](p, toSQL{names: sc.Names(), rowKey: rowKeyColumn})
}

// Apply adds the compiled predicate to the WHERE clause of q.
func Apply(q *bun.SelectQuery, sc *table.Schema, p filter.FilterPredicate, rowKeyColumn string) (*bun.SelectQuery, error) {
	c, err := Compile(sc, p, rowKeyColumn)
	if err != nil {
		return nil, err
	}

	return q.Where(c.Query, c.Args...), nil
}

// SelectKeys returns the row keys of the rows of tbl matching p, in key
// order.
func SelectKeys(ctx context.Context, db bun.IDB, tbl string, sc *table.Schema, p filter.FilterPredicate, rowKeyColumn string) ([]string, error) {
	q, err := Apply(db.NewSelect().Table(tbl).Column(rowKeyColumn), sc, p, rowKeyColumn)
	if err != nil {
		return nil, err
	}

	var keys []string
	if err := q.OrderExpr("?", bun.Ident(rowKeyColumn)).Scan(ctx, &keys); err != nil {
		return nil, err
	}

	return keys, nil
}

type toSQL struct {
	names  []string
	rowKey string
}

func (t toSQL) ident(col filter.TypedColumn) (bun.Ident, error) {
	if col, ok := col.(filter.Indexed); ok {
		return bun.Ident(t.names[col.Index()]), nil
	}

	if t.rowKey == "" {
		return "", fmt.Errorf("%w: no row key column to compare %s with",
			filter.ErrUnsupportedOperation, col)
	}

	return bun.Ident(t.rowKey), nil
}

func (toSQL) VisitNot(child Clause) (Clause, error) {
	return Clause{Query: "NOT " + child.Query, Args: child.Args}, nil
}

func (toSQL) VisitAnd(left, right Clause) (Clause, error) {
	return combine("AND", left, right), nil
}

func (toSQL) VisitOr(left, right Clause) (Clause, error) {
	return combine("OR", left, right), nil
}

func combine(op string, left, right Clause) Clause {
	args := make([]any, 0, len(left.Args)+len(right.Args))
	args = append(append(args, left.Args...), right.Args...)

	return Clause{Query: "(" + left.Query + " " + op + " " + right.Query + ")", Args: args}
}

func (toSQL) VisitCustom(p filter.CustomPredicate) (Clause, error) {
	return Clause{}, fmt.Errorf("%w: %s cannot be expressed in SQL",
		filter.ErrUnsupportedOperation, p)
}

func (t toSQL) VisitIsMissing(p filter.MissingValuePredicate) (Clause, error) {
	id, err := t.ident(p.Column())
	if err != nil {
		return Clause{}, err
	}

	return Clause{Query: "(? IS NULL)", Args: []any{id}}, nil
}

func (t toSQL) compare(sqlOp string, p filter.ValuePredicate) (Clause, error) {
	id, err := t.ident(p.Column())
	if err != nil {
		return Clause{}, err
	}

	val := p.Literal().Any()
	if _, isKey := p.Column().(filter.RowKeyColumn); isKey {
		return Clause{Query: "(? " + sqlOp + " ?)", Args: []any{id, val}}, nil
	}

	return Clause{
		Query: "(? IS NOT NULL AND ? " + sqlOp + " ?)",
		Args:  []any{id, id, val},
	}, nil
}

func (t toSQL) VisitEqual(p filter.ValuePredicate) (Clause, error)    { return t.compare("=", p) }
func (t toSQL) VisitNotEqual(p filter.ValuePredicate) (Clause, error) { return t.compare("<>", p) }
func (t toSQL) VisitLesser(p filter.ValuePredicate) (Clause, error)   { return t.compare("<", p) }
func (t toSQL) VisitLesserOrEqual(p filter.ValuePredicate) (Clause, error) {
	return t.compare("<=", p)
}
func (t toSQL) VisitGreater(p filter.ValuePredicate) (Clause, error) { return t.compare(">", p) }
func (t toSQL) VisitGreaterOrEqual(p filter.ValuePredicate) (Clause, error) {
	return t.compare(">=", p)
}
