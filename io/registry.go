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

package io

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"sync"
)

// SchemeFactory opens the IO serving the locations of one URL scheme.
// parsed is the location being loaded, props the caller's io properties.
type SchemeFactory func(ctx context.Context, parsed *url.URL, props map[string]string) (IO, error)

var schemes = struct {
	mx        sync.RWMutex
	factories map[string]SchemeFactory
}{factories: make(map[string]SchemeFactory)}

// Register makes factory serve locations with the given scheme, replacing
// any factory already registered for it. The empty scheme serves plain
// local paths.
func Register(scheme string, factory SchemeFactory) {
	if factory == nil {
		panic("io: nil factory for scheme " + scheme)
	}

	schemes.mx.Lock()
	defer schemes.mx.Unlock()
	schemes.factories[scheme] = factory
}

func Unregister(scheme string) {
	schemes.mx.Lock()
	defer schemes.mx.Unlock()
	delete(schemes.factories, scheme)
}

// Schemes lists the registered schemes in sorted order.
func Schemes() []string {
	schemes.mx.RLock()
	defer schemes.mx.RUnlock()

	return slices.Sorted(maps.Keys(schemes.factories))
}

func factoryFor(location string) (*url.URL, SchemeFactory, error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return nil, nil, err
	}

	schemes.mx.RLock()
	defer schemes.mx.RUnlock()
	factory, ok := schemes.factories[parsed.Scheme]
	if !ok {
		return nil, nil, fmt.Errorf("%w: '%s' in %s", ErrIONotFound, parsed.Scheme, location)
	}

	return parsed, factory, nil
}

func init() {
	for scheme, factory := range map[string]SchemeFactory{
		"":       localFactory,
		"file":   localFactory,
		"mem":    memFactory,
		"s3":     bucketFactory(createS3Bucket),
		"s3a":    bucketFactory(createS3Bucket),
		"gs":     bucketFactory(createGCSBucket),
		"azblob": bucketFactory(createAzureBucket),
		"wasbs":  bucketFactory(createAzureBucket),
	} {
		Register(scheme, factory)
	}
}
