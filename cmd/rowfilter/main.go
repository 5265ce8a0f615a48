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
	"cmp"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/rowscan/filter"
	"github.com/rowscan/filter/config"
	_ "github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"
)

const usage = `rowfilter.

Usage:
  rowfilter validate [options] DEFINITION
  rowfilter eval [options] DEFINITION DATA
  rowfilter remap [options] DEFINITION PERMUTATION
  rowfilter retarget [options] DEFINITION COLUMN TYPE
  rowfilter sql [options] DEFINITION [--execute]
  rowfilter substrait [options] DEFINITION
  rowfilter -h | --help | --version

Commands:
  validate   Check a filter definition against its schema.
  eval       Filter the rows of a CSV file.
  remap      Reorder the schema columns and remap the filter.
  retarget   Change the type of a column and retarget the filter.
  sql        Translate the predicate into a SQL WHERE clause.
  substrait  Translate the predicate into a substrait expression.

Arguments:
  DEFINITION   location of a YAML or JSON filter definition
  DATA         location of a CSV file with a header line
  PERMUTATION  comma separated new position of each column, e.g. 2,0,1
  COLUMN       name of the column to retarget
  TYPE         new column type (int, long, double, boolean, string)

Options:
  -h --help          show this help message and exit
  --schema LOCATION  schema definition used when DEFINITION has none
  --config PATH      path to the configuration file
  --profile NAME     SQL profile of the configuration file
  --output TYPE      output type (json/text)
  --dialect NAME     SQL dialect (postgres/mysql/sqlite/mssql/oracle)
  --row-key COLUMN   text column holding the row keys
  --workers N        number of record batches filtered concurrently
  --execute          run the query against the profile database
  --debug            enable debug logging`

type Config struct {
	Validate  bool `docopt:"validate"`
	Eval      bool `docopt:"eval"`
	Remap     bool `docopt:"remap"`
	Retarget  bool `docopt:"retarget"`
	SQL       bool `docopt:"sql"`
	Substrait bool `docopt:"substrait"`

	Definition  string `docopt:"DEFINITION"`
	Data        string `docopt:"DATA"`
	Permutation string `docopt:"PERMUTATION"`
	Column      string `docopt:"COLUMN"`
	Type        string `docopt:"TYPE"`

	Schema  string `docopt:"--schema"`
	Config  string `docopt:"--config"`
	Profile string `docopt:"--profile"`
	Output  string `docopt:"--output"`
	Dialect string `docopt:"--dialect"`
	RowKey  string `docopt:"--row-key"`
	Workers string `docopt:"--workers"`
	Execute bool   `docopt:"--execute"`
	Debug   bool   `docopt:"--debug"`

	profile    config.ProfileConfig
	maxWorkers int
}

// mergeConf fills the options not given on the command line from the
// configuration file.
func mergeConf(fileCfg config.Config, cfg *Config) error {
	if p, ok := fileCfg.Profile(cfg.Profile); ok {
		cfg.profile = p
	} else if cfg.Profile != "" {
		return fmt.Errorf("profile '%s' not found in configuration", cfg.Profile)
	}

	cfg.Output = cmp.Or(cfg.Output, cfg.profile.Output, fileCfg.Output)
	cfg.RowKey = cmp.Or(cfg.RowKey, fileCfg.RowKeyColumn)
	cfg.Dialect = cmp.Or(cfg.Dialect, cfg.profile.Dialect)

	cfg.maxWorkers = fileCfg.MaxWorkers
	if cfg.Workers != "" {
		n, err := strconv.Atoi(cfg.Workers)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid --workers value '%s'", cfg.Workers)
		}
		cfg.maxWorkers = n
	}

	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

func main() {
	ctx := context.Background()
	args, err := docopt.ParseArgs(usage, os.Args[1:], filter.Version())
	if err != nil {
		zap.L().Fatal("invalid arguments", zap.Error(err))
	}

	cfg := Config{}
	if err := args.Bind(&cfg); err != nil {
		zap.L().Fatal("invalid arguments", zap.Error(err))
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		zap.L().Fatal("cannot create logger", zap.Error(err))
	}
	defer logger.Sync()

	fileCfg := config.EnvConfig
	if cfg.Config != "" {
		fileCfg = config.Parse(config.LoadConfig(cfg.Config))
	}
	if err := mergeConf(fileCfg, &cfg); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	var output Output
	switch strings.ToLower(cfg.Output) {
	case "text", "":
		output = textOutput{}
	case "json":
		output = jsonOutput{}
	default:
		logger.Fatal("unimplemented output type", zap.String("output", cfg.Output))
	}

	if err := run(ctx, cfg, output, logger); err != nil {
		output.Error(err)
		os.Exit(1)
	}
}
