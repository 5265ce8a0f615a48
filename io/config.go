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
	"fmt"
	"strconv"
)

// Constants for S3 configuration options
const (
	S3Region          = "s3.region"
	S3SessionToken    = "s3.session-token"
	S3SecretAccessKey = "s3.secret-access-key"
	S3AccessKeyID     = "s3.access-key-id"
	S3EndpointURL     = "s3.endpoint"
	S3ForcePathStyle  = "s3.path-style-access"
)

// Constants for GCS configuration options
const (
	GCSEndpoint   = "gcs.endpoint"
	GCSKeyPath    = "gcs.keypath"
	GCSJSONKey    = "gcs.jsonkey"
	GCSUseJSONAPI = "gcs.use-json-api"
	GCSAnonymous  = "gcs.anonymous"
)

// Constants for Azure configuration options
const (
	AzureAccountName   = "azure.account.name"
	AzureSasToken      = "azure.sas-token"
	AzureStorageDomain = "azure.storage-domain"
	AzureProtocol      = "azure.protocol"
)

// boolProp reads an optional boolean property, false when absent.
func boolProp(props map[string]string, key string) (bool, error) {
	v, ok := props[key]
	if !ok {
		return false, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s '%s'", ErrInvalidProperty, key, v)
	}

	return b, nil
}
