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
	"net/url"

	"gocloud.dev/blob"
	"gocloud.dev/blob/azureblob"
)

func parseAzureOptions(props map[string]string) *azureblob.ServiceURLOptions {
	opts := azureblob.NewDefaultServiceURLOptions()
	if account := props[AzureAccountName]; account != "" {
		opts.AccountName = account
	}
	if token := props[AzureSasToken]; token != "" {
		opts.SASToken = token
	}
	if domain := props[AzureStorageDomain]; domain != "" {
		opts.StorageDomain = domain
	}
	if protocol := props[AzureProtocol]; protocol != "" {
		opts.Protocol = protocol
	}

	return opts
}

// createAzureBucket opens the container named by the host of the location.
func createAzureBucket(ctx context.Context, parsed *url.URL, props map[string]string) (*blob.Bucket, error) {
	serviceURL, err := azureblob.NewServiceURL(parseAzureOptions(props))
	if err != nil {
		return nil, err
	}

	client, err := azureblob.NewDefaultClient(serviceURL, azureblob.ContainerName(parsed.Host))
	if err != nil {
		return nil, err
	}

	return azureblob.OpenBucket(ctx, client, nil)
}
