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
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rowscan/filter"
	"github.com/rowscan/filter/definition"
	"github.com/rowscan/filter/io"
	"github.com/rowscan/filter/table"
	"github.com/rowscan/filter/table/sqlfilter"
	"github.com/rowscan/filter/table/substrait"
	"go.uber.org/zap"
)

var errNoPredicate = errors.New("definition has no predicate")

func run(ctx context.Context, cfg Config, out Output, logger *zap.Logger) error {
	sc, f, err := loadDefinition(ctx, cfg, logger)
	if err != nil {
		return err
	}

	switch {
	case cfg.Validate:
		out.Document(sc, f)
	case cfg.Eval:
		return eval(ctx, cfg, out, logger, sc, f)
	case cfg.Remap:
		perm, err := parsePermutation(cfg.Permutation)
		if err != nil {
			return err
		}

		return remap(out, sc, f, perm)
	case cfg.Retarget:
		return retarget(out, sc, f, cfg.Column, cfg.Type)
	case cfg.SQL:
		return toSQL(ctx, cfg, out, logger, sc, f)
	case cfg.Substrait:
		if f.Predicate() == nil {
			return errNoPredicate
		}

		_, expr, err := substrait.ConvertPredicate(sc, f.Predicate(), cfg.RowKey)
		if err != nil {
			return err
		}
		out.Text(expr.String())
	}

	return nil
}

func loadDefinition(ctx context.Context, cfg Config, logger *zap.Logger) (*table.Schema, *table.Filter, error) {
	var sc *table.Schema
	if cfg.Schema != "" {
		data, err := io.ReadFile(ctx, nil, cfg.Schema)
		if err != nil {
			return nil, nil, err
		}

		if sc, err = definition.ParseSchema(data, definition.FormatOf(cfg.Schema)); err != nil {
			return nil, nil, fmt.Errorf("schema %s: %w", cfg.Schema, err)
		}
	}

	data, err := io.ReadFile(ctx, nil, cfg.Definition)
	if err != nil {
		return nil, nil, err
	}

	sc, f, err := definition.ParseDocument(data, definition.FormatOf(cfg.Definition), sc)
	if err != nil {
		return nil, nil, fmt.Errorf("definition %s: %w", cfg.Definition, err)
	}

	logger.Debug("loaded definition",
		zap.String("location", cfg.Definition),
		zap.Stringer("schema", sc),
		zap.Stringer("filter", f))

	return sc, f, nil
}

func eval(ctx context.Context, cfg Config, out Output, logger *zap.Logger, sc *table.Schema, f *table.Filter) error {
	data, err := io.ReadFile(ctx, nil, cfg.Data)
	if err != nil {
		return err
	}

	recs, err := table.ReadCSV(ctx, bytes.NewReader(data), sc, table.CSVOptions{})
	if err != nil {
		return err
	}
	defer func() {
		for _, r := range recs {
			r.Release()
		}
	}()

	filtered, err := table.FilterRecords(ctx, recs, f,
		table.RecordOptions{RowKeyColumn: cfg.RowKey}, cfg.maxWorkers)
	if err != nil {
		return err
	}
	defer func() {
		for _, r := range filtered {
			r.Release()
		}
	}()

	var scanned, kept int64
	for i := range recs {
		scanned += recs[i].NumRows()
		kept += filtered[i].NumRows()
	}
	logger.Debug("filtered records",
		zap.Int("batches", len(recs)),
		zap.Int64("scanned", scanned),
		zap.Int64("kept", kept),
		zap.Int("workers", cfg.maxWorkers))

	out.Records(filtered)

	return nil
}

func parsePermutation(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	perm := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid permutation '%s'", filter.ErrInvalidArgument, s)
		}
		perm[i] = n
	}

	return perm, nil
}

func remap(out Output, sc *table.Schema, f *table.Filter, perm []int) error {
	newSchema, err := sc.Rearrange(perm)
	if err != nil {
		return err
	}

	remapped, err := f.Rearranged(perm, newSchema)
	if err != nil {
		return err
	}

	out.Document(newSchema, remapped)

	return nil
}

func retarget(out Output, sc *table.Schema, f *table.Filter, column, typ string) error {
	idx, ok := sc.IndexOf(column)
	if !ok {
		return fmt.Errorf("%w: unknown column '%s'", filter.ErrInvalidArgument, column)
	}

	tag, err := filter.ParseTypeTag(typ)
	if err != nil {
		return err
	}

	newSchema, err := sc.Replace(idx, tag)
	if err != nil {
		return err
	}

	retargeted, err := f.WithSpec(newSchema)
	if err != nil {
		return err
	}

	out.Document(newSchema, retargeted)

	return nil
}

func toSQL(ctx context.Context, cfg Config, out Output, logger *zap.Logger, sc *table.Schema, f *table.Filter) error {
	if f.Predicate() == nil {
		return errNoPredicate
	}

	if !cfg.Execute {
		if cfg.Dialect == "" {
			return errors.New("no sql dialect, use --dialect or a configuration profile")
		}

		d, err := sqlfilter.Dialect(cfg.Dialect)
		if err != nil {
			return err
		}

		clause, err := sqlfilter.Compile(sc, f.Predicate(), cfg.RowKey)
		if err != nil {
			return err
		}
		out.Text(clause.Format(d))

		return nil
	}

	p := cfg.profile
	if p.Driver == "" || p.Table == "" {
		return errors.New("--execute needs a configuration profile with a driver and a table")
	}

	db, err := sqlfilter.Open(p.Driver, p.DSN, cfg.Dialect)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Debug("querying", zap.String("driver", p.Driver), zap.String("table", p.Table))
	keys, err := sqlfilter.SelectKeys(ctx, db, p.Table, sc, f.Predicate(), cfg.RowKey)
	if err != nil {
		return err
	}
	out.Keys(keys)

	return nil
}
