/*
 * Copyright (C) 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not
 * use this file except in compliance with the License. You may obtain a copy of
 * the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
 * WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
 * License for the specific language governing permissions and limitations under
 * the License.
 */

package hiveddl

import (
	"context"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
)

// Catalog answers questions about which databases and tables exist
type Catalog interface {
	DatabaseExists(ctx context.Context, name string) (bool, error)
	ListTables(ctx context.Context, database string) ([]types.TableDescriptor, error)
}

// QueryExecutor runs a single SQL statement and returns its fully materialized result
type QueryExecutor interface {
	Query(ctx context.Context, statement string) (*types.ResultSet, error)
}

// ObjectWriter writes content to bucket/path, replacing any existing object
type ObjectWriter interface {
	WriteObject(ctx context.Context, bucket string, path string, content string) error
}

// TableWriter appends manifest records to dataset.table. stagingBucket holds any transient load files.
type TableWriter interface {
	AppendManifest(ctx context.Context, dataset string, table string, stagingBucket string, records []types.ManifestRecord) error
}
