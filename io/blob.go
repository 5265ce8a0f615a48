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
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

// keyExtractor turns a full location into the key of an object inside the
// bucket.
type keyExtractor func(location string) (string, error)

func defaultKeyExtractor(bucketName string) keyExtractor {
	return func(location string) (string, error) {
		parsed, err := url.Parse(location)
		if err != nil {
			return "", err
		}
		if parsed.Host != bucketName {
			return "", fmt.Errorf("location %s is outside of bucket %s", location, bucketName)
		}

		return strings.TrimPrefix(parsed.Path, "/"), nil
	}
}

func localKeyExtractor(location string) (string, error) {
	path := strings.TrimPrefix(location, "file://")
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return strings.TrimPrefix(filepath.ToSlash(abs), "/"), nil
}

type blobIO struct {
	bucket *blob.Bucket
	key    keyExtractor
	shared bool
}

func (b *blobIO) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	key, err := b.key(location)
	if err != nil {
		return nil, err
	}

	return b.bucket.NewReader(ctx, key, nil)
}

func (b *blobIO) ReadFile(ctx context.Context, location string) ([]byte, error) {
	key, err := b.key(location)
	if err != nil {
		return nil, err
	}

	return b.bucket.ReadAll(ctx, key)
}

func (b *blobIO) WriteFile(ctx context.Context, location string, content []byte) error {
	key, err := b.key(location)
	if err != nil {
		return err
	}

	return b.bucket.WriteAll(ctx, key, content, nil)
}

func (b *blobIO) Exists(ctx context.Context, location string) (bool, error) {
	key, err := b.key(location)
	if err != nil {
		return false, err
	}

	return b.bucket.Exists(ctx, key)
}

func (b *blobIO) Remove(ctx context.Context, location string) error {
	key, err := b.key(location)
	if err != nil {
		return err
	}

	err = b.bucket.Delete(ctx, key)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}

	return err
}

func (b *blobIO) Close() error {
	if b.shared {
		return nil
	}

	return b.bucket.Close()
}

func bucketFactory(open func(context.Context, *url.URL, map[string]string) (*blob.Bucket, error)) SchemeFactory {
	return func(ctx context.Context, parsed *url.URL, props map[string]string) (IO, error) {
		bucket, err := open(ctx, parsed, props)
		if err != nil {
			return nil, err
		}

		return &blobIO{bucket: bucket, key: defaultKeyExtractor(parsed.Host)}, nil
	}
}

func localFactory(_ context.Context, _ *url.URL, _ map[string]string) (IO, error) {
	bucket, err := fileblob.OpenBucket("/", &fileblob.Options{CreateDir: true})
	if err != nil {
		return nil, err
	}

	return &blobIO{bucket: bucket, key: localKeyExtractor}, nil
}

var memBuckets sync.Map

// memFactory serves mem://<name>/ locations from an in-process bucket that
// lives as long as the process, so that data written under a name can be
// read back by a later LoadFS call.
func memFactory(_ context.Context, parsed *url.URL, _ map[string]string) (IO, error) {
	bucket, ok := memBuckets.Load(parsed.Host)
	if !ok {
		bucket, _ = memBuckets.LoadOrStore(parsed.Host, memblob.OpenBucket(nil))
	}

	return &blobIO{
		bucket: bucket.(*blob.Bucket),
		key:    defaultKeyExtractor(parsed.Host),
		shared: true,
	}, nil
}
