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

package sqlfilter_test

import (
	"context"
	"testing"

	"github.com/rowscan/filter"
	"github.com/rowscan/filter/table"
	"github.com/rowscan/filter/table/sqlfilter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var people = table.NewSchema(
	table.ColumnSpec{Name: "age", Type: filter.TypeInt32},
	table.ColumnSpec{Name: "name", Type: filter.TypeText},
	table.ColumnSpec{Name: "score", Type: filter.TypeFloat64},
	table.ColumnSpec{Name: "flag", Type: filter.TypeBool},
)

func TestDialect(t *testing.T) {
	for _, name := range []string{"postgres", "MySQL", "sqlite", "mssql", "oracle"} {
		d, err := sqlfilter.Dialect(name)
		require.NoError(t, err, name)
		again, err := sqlfilter.Dialect(name)
		require.NoError(t, err)
		assert.Same(t, d, again)
	}

	_, err := sqlfilter.Dialect("foobar")
	assert.ErrorIs(t, err, filter.ErrInvalidArgument)
}

func TestCompile(t *testing.T) {
	pg, err := sqlfilter.Dialect("postgres")
	require.NoError(t, err)
	my, err := sqlfilter.Dialect("mysql")
	require.NoError(t, err)

	tests := []struct {
		name  string
		p     filter.FilterPredicate
		pg    string
		mysql string
	}{
		{
			"equal", filter.Equal(filter.IntCol(0), 30),
			`("age" IS NOT NULL AND "age" = 30)`,
			"(`age` IS NOT NULL AND `age` = 30)",
		},
		{
			"text", filter.NotEqual(filter.StringCol(1), "Bob"),
			`("name" IS NOT NULL AND "name" <> 'Bob')`,
			"(`name` IS NOT NULL AND `name` <> 'Bob')",
		},
		{
			"missing", filter.IsMissing(filter.DoubleCol(2)),
			`("score" IS NULL)`,
			"(`score` IS NULL)",
		},
		{
			"row key", filter.RowKeyEqual("r1"),
			`("row_key" = 'r1')`,
			"(`row_key` = 'r1')",
		},
		{
			"combinators",
			filter.NewNot(filter.Lesser(filter.IntCol(0), 18).Or(filter.GreaterOrEqual(filter.DoubleCol(2), 2.5))),
			`NOT (("age" IS NOT NULL AND "age" < 18) OR ("score" IS NOT NULL AND "score" >= 2.5))`,
			"NOT ((`age` IS NOT NULL AND `age` < 18) OR (`score` IS NOT NULL AND `score` >= 2.5))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := sqlfilter.Compile(people, tt.p, "row_key")
			require.NoError(t, err)
			assert.Equal(t, tt.pg, c.Format(pg))
			assert.Equal(t, tt.mysql, c.Format(my))
		})
	}
}

func TestCompileLiterals(t *testing.T) {
	pg, err := sqlfilter.Dialect("postgres")
	require.NoError(t, err)

	c, err := sqlfilter.Compile(people, filter.Equal(filter.StringCol(1), "O'Neil").
		And(filter.NotEqual(filter.BoolCol(3), false)), "")
	require.NoError(t, err)
	assert.Equal(t, `(("name" IS NOT NULL AND "name" = 'O''Neil') AND ("flag" IS NOT NULL AND "flag" <> FALSE))`,
		c.Format(pg))
	assert.Len(t, c.Args, 6)
}

func TestCompileErrors(t *testing.T) {
	_, err := sqlfilter.Compile(people, filter.Custom(filter.IntCol(0), func(int32) bool { return true }), "row_key")
	assert.ErrorIs(t, err, filter.ErrUnsupportedOperation)

	_, err = sqlfilter.Compile(people, filter.RowKeyEqual("r1"), "")
	assert.ErrorIs(t, err, filter.ErrUnsupportedOperation)

	_, err = sqlfilter.Compile(people, filter.Equal(filter.IntCol(7), 1), "row_key")
	assert.ErrorIs(t, err, filter.ErrIndexOutOfRange)

	_, err = sqlfilter.Compile(people, filter.Equal(filter.LongCol(0), int64(1)), "row_key")
	assert.ErrorIs(t, err, filter.ErrTypeMismatch)
}

type SqliteFilterTestSuite struct {
	suite.Suite

	db   *bun.DB
	rows []filter.SliceRow
}

func TestSqliteFilter(t *testing.T) {
	suite.Run(t, new(SqliteFilterTestSuite))
}

func (s *SqliteFilterTestSuite) SetupTest() {
	var err error
	s.db, err = sqlfilter.Open(sqliteshim.ShimName, "file::memory:", "sqlite")
	s.Require().NoError(err)
	s.db.SetMaxOpenConns(1)

	ctx := context.Background()
	_, err = s.db.ExecContext(ctx, `CREATE TABLE people (
		row_key TEXT NOT NULL PRIMARY KEY,
		age INTEGER,
		name TEXT,
		score REAL,
		flag BOOLEAN
	)`)
	s.Require().NoError(err)

	type person struct {
		key   string
		age   any
		name  any
		score any
		flag  any
	}
	people := []person{
		{"r0", 30, "Ann", 1.5, true},
		{"r1", nil, "Ann", 2.5, false},
		{"r2", 20, "Bob", nil, true},
		{"r3", 41, nil, -1.0, nil},
		{"r4", 18, "Cid", 0.0, false},
	}

	cell := func(v any) filter.Cell {
		switch v := v.(type) {
		case int:
			return filter.Int32Cell(int32(v))
		case string:
			return filter.StringCell(v)
		case float64:
			return filter.Float64Cell(v)
		case bool:
			return filter.BoolCell(v)
		}
		return filter.MissingCell()
	}

	s.rows = s.rows[:0]
	for _, p := range people {
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO people (row_key, age, name, score, flag) VALUES (?, ?, ?, ?, ?)",
			p.key, p.age, p.name, p.score, p.flag)
		s.Require().NoError(err)

		s.rows = append(s.rows, filter.SliceRow{Key: p.key,
			Cells: []filter.Cell{cell(p.age), cell(p.name), cell(p.score), cell(p.flag)}})
	}
}

func (s *SqliteFilterTestSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *SqliteFilterTestSuite) localKeys(p filter.FilterPredicate) []string {
	keys := []string{}
	eval := filter.Evaluator(p)
	for _, r := range s.rows {
		if eval(r) {
			keys = append(keys, r.Key)
		}
	}

	return keys
}

func (s *SqliteFilterTestSuite) TestScenario() {
	p := filter.Greater(filter.IntCol(0), 25).And(filter.Equal(filter.StringCol(1), "Ann"))

	keys, err := sqlfilter.SelectKeys(context.Background(), s.db, "people", people, p, "row_key")
	s.Require().NoError(err)
	s.Equal([]string{"r0"}, keys)
}

func (s *SqliteFilterTestSuite) TestMatchesEvaluate() {
	preds := []filter.FilterPredicate{
		filter.IsMissing(filter.IntCol(0)),
		filter.NotEqual(filter.StringCol(1), "Ann"),
		filter.NewNot(filter.NotEqual(filter.StringCol(1), "Ann")),
		filter.LesserOrEqual(filter.DoubleCol(2), 1.5),
		filter.NewNot(filter.Greater(filter.IntCol(0), 19)),
		filter.Equal(filter.BoolCol(3), true).Or(filter.IsMissing(filter.BoolCol(3))),
		filter.RowKeyNotEqual("r2").And(filter.GreaterOrEqual(filter.IntCol(0), 18)),
		filter.NewOr(filter.RowKeyEqual("r1"), filter.RowKeyEqual("r3"), filter.Lesser(filter.DoubleCol(2), 0.0)),
	}

	for _, p := range preds {
		keys, err := sqlfilter.SelectKeys(context.Background(), s.db, "people", people, p, "row_key")
		s.Require().NoError(err, p.String())
		s.Equal(s.localKeys(p), append([]string{}, keys...), p.String())
	}
}

func (s *SqliteFilterTestSuite) TestApply() {
	q, err := sqlfilter.Apply(s.db.NewSelect().Table("people").ColumnExpr("count(*)"),
		people, filter.IsMissing(filter.DoubleCol(2)), "row_key")
	s.Require().NoError(err)

	var n int
	s.Require().NoError(q.Scan(context.Background(), &n))
	s.Equal(1, n)

	_, err = sqlfilter.Apply(s.db.NewSelect().Table("people"), people,
		filter.Custom(filter.StringCol(1), func(string) bool { return true }), "row_key")
	s.ErrorIs(err, filter.ErrUnsupportedOperation)
}
