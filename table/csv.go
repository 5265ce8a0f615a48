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

package table

import (
	"context"
	"errors"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

const defaultCSVChunk = 1024

// CSVOptions configure ReadCSV.
type CSVOptions struct {
	// Chunk is the number of rows per record batch.
	Chunk int
	// NullValues are the cell contents read as missing values. Defaults to
	// the empty string and "?".
	NullValues []string
	Mem        memory.Allocator
}

// ReadCSV reads a CSV file with a header line into record batches of the
// given schema. The caller owns the returned records.
func ReadCSV(ctx context.Context, r io.Reader, sc *Schema, opts CSVOptions) ([]arrow.Record, error) {
	chunk := opts.Chunk
	if chunk <= 0 {
		chunk = defaultCSVChunk
	}
	nulls := opts.NullValues
	if nulls == nil {
		nulls = []string{"", "?"}
	}
	mem := opts.Mem
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	rdr := csv.NewReader(r, ToArrowSchema(sc),
		csv.WithHeader(true),
		csv.WithChunk(chunk),
		csv.WithNullReader(true, nulls...),
		csv.WithAllocator(mem))
	defer rdr.Release()

	var out []arrow.Record
	release := func() {
		for _, rec := range out {
			rec.Release()
		}
	}

	for rdr.Next() {
		if err := ctx.Err(); err != nil {
			release()
			return nil, err
		}

		rec := rdr.Record()
		rec.Retain()
		out = append(out, rec)
	}

	if err := rdr.Err(); err != nil && !errors.Is(err, io.EOF) {
		release()
		return nil, err
	}

	return out, nil
}
