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
	"net/url"

	"cloud.google.com/go/storage"
	"gocloud.dev/blob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/gcp"
	"google.golang.org/api/option"
)

// ParseGCSConfig builds the gcsblob options from the gcs.* properties.
// At most one of gcs.jsonkey and gcs.keypath may be set.
func ParseGCSConfig(props map[string]string) (*gcsblob.Options, error) {
	var opts []option.ClientOption
	if endpoint := props[GCSEndpoint]; endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	key, keyPath := props[GCSJSONKey], props[GCSKeyPath]
	if key != "" && keyPath != "" {
		return nil, fmt.Errorf("%w: both %s and %s are set", ErrInvalidProperty, GCSJSONKey, GCSKeyPath)
	}
	switch {
	case key != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(key)))
	case keyPath != "":
		opts = append(opts, option.WithCredentialsFile(keyPath))
	}

	jsonReads, err := boolProp(props, GCSUseJSONAPI)
	if err != nil {
		return nil, err
	}
	if jsonReads {
		opts = append(opts, storage.WithJSONReads())
	}

	return &gcsblob.Options{ClientOptions: opts}, nil
}

// gcsClient returns an unauthenticated client when gcs.anonymous is set,
// otherwise one using the application default credentials.
func gcsClient(ctx context.Context, props map[string]string) (*gcp.HTTPClient, error) {
	anonymous, err := boolProp(props, GCSAnonymous)
	if err != nil {
		return nil, err
	}
	if anonymous {
		return gcp.NewAnonymousHTTPClient(gcp.DefaultTransport()), nil
	}

	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs default credentials (set %s to read public buckets): %w", GCSAnonymous, err)
	}

	return gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
}

func createGCSBucket(ctx context.Context, parsed *url.URL, props map[string]string) (*blob.Bucket, error) {
	opts, err := ParseGCSConfig(props)
	if err != nil {
		return nil, err
	}

	client, err := gcsClient(ctx, props)
	if err != nil {
		return nil, err
	}

	return gcsblob.OpenBucket(ctx, client, parsed.Host, opts)
}
