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
	"strings"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	"go.uber.org/zap"
)

const extendedInfoColumn = "information"

// TableMetadata is the raw text the engine returns for one table
type TableMetadata struct {
	DescribeRows    []types.DescribeRow
	CreateStatement string
	ExtendedInfo    string
}

func ShowCreateTableQuery(t types.TableDescriptor) string {
	return fmt.Sprintf("SHOW CREATE TABLE %s.%s", t.Database, t.Name)
}

func DescribeFormattedQuery(t types.TableDescriptor) string {
	return fmt.Sprintf("DESCRIBE FORMATTED %s.%s", t.Database, t.Name)
}

func ShowTableExtendedQuery(t types.TableDescriptor) string {
	return fmt.Sprintf("SHOW TABLE EXTENDED FROM `%s` LIKE '%s'", t.Database, t.Name)
}

// Extractor turns one table's catalog output into a rewritten DDL and manifest record
type Extractor struct {
	executor      QueryExecutor
	stagingPrefix string
	logger        *zap.Logger
}

func NewExtractor(executor QueryExecutor, bucket string, logger *zap.Logger) *Extractor {
	return &Extractor{
		executor:      executor,
		stagingPrefix: StagingPrefix(bucket),
		logger:        logger,
	}
}

// ExtractTable queries the engine for the table's metadata and parses it
func (e *Extractor) ExtractTable(ctx context.Context, table types.TableDescriptor) (*types.TableExport, error) {
	e.logger.Info("Extracting DDL for the Hive Table: " + table.String())
	md, err := e.FetchMetadata(ctx, table)
	if err != nil {
		return nil, err
	}
	export, err := Extract(table, md, e.stagingPrefix)
	if err != nil {
		return nil, err
	}
	e.logger.Info(export.Location.SourcePath,
		zap.String("table", table.String()),
		zap.String("destination", export.Location.DestinationPath),
		zap.String("format", export.Manifest.Format),
		zap.Bool("partitioned", export.Partitions.IsPartitioned()))
	return export, nil
}

// FetchMetadata issues the create statement, describe and extended show queries, in that order
func (e *Extractor) FetchMetadata(ctx context.Context, table types.TableDescriptor) (*TableMetadata, error) {
	create, err := e.executor.Query(ctx, ShowCreateTableQuery(table))
	if err != nil {
		return nil, fmt.Errorf("failed to show create table %s: %w", table, err)
	}
	createStmt, err := StatementText(create)
	if err != nil {
		return nil, fmt.Errorf("failed to read create statement of %s: %w", table, err)
	}

	describe, err := e.executor.Query(ctx, DescribeFormattedQuery(table))
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	rows, err := DescribeRowsFromResult(describe)
	if err != nil {
		return nil, fmt.Errorf("failed to read description of %s: %w", table, err)
	}

	extended, err := e.executor.Query(ctx, ShowTableExtendedQuery(table))
	if err != nil {
		return nil, fmt.Errorf("failed to show extended info of %s: %w", table, err)
	}
	info, err := extended.FirstValue(extendedInfoColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to read extended info of %s: %w", table, err)
	}

	return &TableMetadata{
		DescribeRows:    rows,
		CreateStatement: createStmt,
		ExtendedInfo:    info,
	}, nil
}

// Extract derives the export of one table from its metadata. It doesn't touch the engine and always returns the
// same result for the same input.
func Extract(table types.TableDescriptor, md *TableMetadata, stagingPrefix string) (*types.TableExport, error) {
	export, err := extract(table, md, stagingPrefix)
	if err != nil {
		return nil, withTable(err, table.String())
	}
	return export, nil
}

func extract(table types.TableDescriptor, md *TableMetadata, stagingPrefix string) (*types.TableExport, error) {
	var partitions types.PartitionSpec
	if HasPartitions(md.CreateStatement) {
		names, err := ParsePartitionColumnNames(md.CreateStatement)
		if err != nil {
			return nil, err
		}
		partitions, err = BuildPartitionSpec(names, md.DescribeRows)
		if err != nil {
			return nil, err
		}
	}

	columns, err := ParseColumnsClause(md.CreateStatement, table.Name, partitions)
	if err != nil {
		return nil, err
	}

	dbName, err := LookupDescribeValue(md.DescribeRows, describeDatabase)
	if err != nil {
		return nil, err
	}
	tableName, err := LookupDescribeValue(md.DescribeRows, describeTable)
	if err != nil {
		return nil, err
	}

	sourcePath, err := ParseLocation(md.ExtendedInfo)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(md.CreateStatement)
	if err != nil {
		return nil, err
	}

	destinationPath, err := RewriteLocation(sourcePath, table.Database, dbName, stagingPrefix)
	if err != nil {
		return nil, err
	}

	return &types.TableExport{
		Table:      table,
		DDL:        BuildDDL(table.Name, columns, partitions),
		Partitions: partitions,
		Location: types.LocationInfo{
			SourcePath:      sourcePath,
			DestinationPath: destinationPath,
		},
		Manifest: types.ManifestRecord{
			Database:        dbName,
			Table:           tableName,
			PartitionString: strings.TrimSpace(partitions.ColumnList()),
			Format:          format,
			HdfsPath:        sourcePath,
			GcsRawZonePath:  destinationPath,
		},
	}, nil
}
