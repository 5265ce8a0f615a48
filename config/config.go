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

package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	cfgFile             = ".rowfilter.yaml"
	defaultMaxWorkers   = 4
	defaultOutput       = "text"
	defaultRowKeyColumn = ""
)

// Config is the content of the .rowfilter.yaml file.
type Config struct {
	DefaultProfile string                   `yaml:"default-profile"`
	Profiles       map[string]ProfileConfig `yaml:"profile"`
	Output         string                   `yaml:"output"`
	MaxWorkers     int                      `yaml:"max-workers"`
	RowKeyColumn   string                   `yaml:"row-key-column"`
}

// ProfileConfig describes a SQL store predicates can be pushed down to.
type ProfileConfig struct {
	Dialect string `yaml:"dialect"`
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Table   string `yaml:"table"`
	Output  string `yaml:"output"`
}

func LoadConfig(configPath string) []byte {
	var path string
	if len(configPath) > 0 {
		path = configPath
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(homeDir, cfgFile)
	}
	file, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	return file
}

func ParseConfig(file []byte, profile string) *ProfileConfig {
	var config Config
	err := yaml.Unmarshal(file, &config)
	if err != nil {
		return nil
	}
	res, ok := config.Profiles[profile]
	if !ok {
		return nil
	}

	return &res
}

// Parse decodes a configuration file and fills in defaults. An invalid or
// empty file yields the default configuration.
func Parse(file []byte) Config { return parse(file) }

func parse(file []byte) Config {
	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		cfg = Config{}
	}

	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = "default"
	}
	if cfg.Output == "" {
		cfg.Output = defaultOutput
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultMaxWorkers
	}
	if cfg.RowKeyColumn == "" {
		cfg.RowKeyColumn = defaultRowKeyColumn
	}

	return cfg
}

// Profile returns the named SQL profile, or the default profile when name
// is empty.
func (c Config) Profile(name string) (ProfileConfig, bool) {
	if name == "" {
		name = c.DefaultProfile
	}
	p, ok := c.Profiles[name]

	return p, ok
}

func fromConfigFiles() Config {
	dir := os.Getenv("ROWFILTER_HOME")
	if dir != "" {
		dir = filepath.Join(dir, cfgFile)
	}

	return parse(LoadConfig(dir))
}

var EnvConfig = fromConfigFiles()
