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

// Package io resolves data locations such as file paths, s3://, gs://,
// azblob:// or mem:// URLs to a bucket backed IO implementation.
package io

import (
	"context"
	"errors"
	"io"
)

var (
	ErrIONotFound      = errors.New("io scheme not registered")
	ErrInvalidProperty = errors.New("invalid io property")
)

// IO reads and writes whole objects addressed by their full location.
type IO interface {
	// Open returns a reader for the object at location.
	Open(ctx context.Context, location string) (io.ReadCloser, error)
	ReadFile(ctx context.Context, location string) ([]byte, error)
	WriteFile(ctx context.Context, location string, content []byte) error
	Exists(ctx context.Context, location string) (bool, error)
	Remove(ctx context.Context, location string) error
	Close() error
}

// LoadFS returns the IO registered for the scheme of location. A location
// without a scheme is a local path.
func LoadFS(ctx context.Context, props map[string]string, location string) (IO, error) {
	parsed, factory, err := factoryFor(location)
	if err != nil {
		return nil, err
	}

	return factory(ctx, parsed, props)
}

// ReadFile is a shortcut to load the IO for location and read it fully.
func ReadFile(ctx context.Context, props map[string]string, location string) ([]byte, error) {
	fs, err := LoadFS(ctx, props, location)
	if err != nil {
		return nil, err
	}
	defer fs.Close()

	return fs.ReadFile(ctx, location)
}
