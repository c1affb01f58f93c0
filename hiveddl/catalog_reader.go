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
	"fmt"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	"go.uber.org/zap"
)

// CatalogReader enumerates the tables of one database
type CatalogReader struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewCatalogReader(catalog Catalog, logger *zap.Logger) *CatalogReader {
	return &CatalogReader{catalog: catalog, logger: logger}
}

// Tables returns the tables of database in catalog order. A database that doesn't exist has no tables and is not
// an error.
func (r *CatalogReader) Tables(ctx context.Context, database string) ([]types.TableDescriptor, error) {
	r.logger.Info("Connecting to Hive Database: " + database)
	exists, err := r.catalog.DatabaseExists(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("failed to check if database %s exists: %w", database, err)
	}
	if !exists {
		r.logger.Warn("database not found, nothing to export", zap.String("database", database))
		return nil, nil
	}

	tables, err := r.catalog.ListTables(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables of database %s: %w", database, err)
	}
	return tables, nil
}
