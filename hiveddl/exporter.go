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
	"time"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/constants"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	otelgo "github.com/GoogleCloudPlatform/dataproc-templates/go/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	collectSpan        = "hiveddl.collect"
	extractTableSpan   = "hiveddl.extract_table"
	commitManifestSpan = "hiveddl.commit_manifest"
	commitDDLSpan      = "hiveddl.commit_ddl"

	tablesListedEvent   = "Tables listed"
	tableExtractedEvent = "Table extracted"
)

// Options names the source database and every destination the export writes to
type Options struct {
	Database string
	Bucket   string
	Dataset  string
	Table    string
}

// Exporter runs the export in two phases. Collect reads and parses every table without writing anything, Commit
// then performs the manifest append and the DDL object write. When no table was extracted the manifest append is
// skipped, so Commit makes a single write and the manifest table is not created for an empty or missing database.
type Exporter struct {
	catalog  Catalog
	executor QueryExecutor
	objects  ObjectWriter
	tables   TableWriter
	otelInst *otelgo.OpenTelemetry
	logger   *zap.Logger
}

func NewExporter(catalog Catalog, executor QueryExecutor, objects ObjectWriter, tables TableWriter, otelInst *otelgo.OpenTelemetry, logger *zap.Logger) *Exporter {
	return &Exporter{
		catalog:  catalog,
		executor: executor,
		objects:  objects,
		tables:   tables,
		otelInst: otelInst,
		logger:   logger,
	}
}

func (e *Exporter) Run(ctx context.Context, opts Options) (*Batch, error) {
	batch, err := e.Collect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := e.Commit(ctx, opts, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Collect extracts every table of the database, one at a time, in catalog order. The first failure aborts the run.
func (e *Exporter) Collect(ctx context.Context, opts Options) (*Batch, error) {
	ctx, span := e.otelInst.StartSpan(ctx, collectSpan, []attribute.KeyValue{
		attribute.String("database", opts.Database),
	})
	defer e.otelInst.EndSpan(span)

	tables, err := NewCatalogReader(e.catalog, e.logger).Tables(ctx, opts.Database)
	if err != nil {
		e.otelInst.RecordError(span, err)
		return nil, err
	}
	otelgo.AddAnnotation(ctx, tablesListedEvent)

	extractor := NewExtractor(e.executor, opts.Bucket, e.logger)
	assembler := NewAssembler()
	for _, table := range tables {
		export, err := e.extractTable(ctx, extractor, table)
		if err != nil {
			e.otelInst.RecordError(span, err)
			return nil, err
		}
		assembler.Add(*export)
	}
	return assembler.Batch(), nil
}

func (e *Exporter) extractTable(ctx context.Context, extractor *Extractor, table types.TableDescriptor) (export *types.TableExport, err error) {
	startTime := time.Now()
	ctx, span := e.otelInst.StartSpan(ctx, extractTableSpan, []attribute.KeyValue{otelgo.TargetAttribute(table.String())})
	defer e.otelInst.EndSpan(span)
	defer func() {
		e.otelInst.RecordMetrics(ctx, extractTableSpan, startTime, constants.TemplateHiveSparkDDLToBigQuery, table.String(), err)
	}()

	export, err = extractor.ExtractTable(ctx, table)
	if err != nil {
		e.otelInst.RecordError(span, err)
		return nil, err
	}
	otelgo.AddAnnotation(ctx, tableExtractedEvent)
	return export, nil
}

// Commit appends the manifest to the warehouse and writes the DDL text object. An empty batch still writes the
// (empty) DDL object but skips the warehouse load.
func (e *Exporter) Commit(ctx context.Context, opts Options, batch *Batch) error {
	manifest := batch.Manifest()
	if len(manifest) > 0 {
		err := e.commit(ctx, commitManifestSpan, opts.Dataset+"."+opts.Table, func(ctx context.Context) error {
			return e.tables.AppendManifest(ctx, opts.Dataset, opts.Table, opts.Bucket, manifest)
		})
		if err != nil {
			return fmt.Errorf("failed to append manifest to %s.%s: %w", opts.Dataset, opts.Table, err)
		}
		e.logger.Info("manifest appended", zap.Int("rows", len(manifest)),
			zap.String("table", opts.Dataset+"."+opts.Table))
	} else {
		e.logger.Info("no tables extracted, skipping manifest load", zap.String("database", opts.Database))
	}

	target := "gs://" + opts.Bucket + "/" + constants.DDLObjectPath
	err := e.commit(ctx, commitDDLSpan, target, func(ctx context.Context) error {
		return e.objects.WriteObject(ctx, opts.Bucket, constants.DDLObjectPath, batch.DDL())
	})
	if err != nil {
		return fmt.Errorf("failed to write DDL to %s: %w", target, err)
	}
	e.logger.Info("DDL written", zap.String("path", target), zap.Int("tables", batch.Len()))
	return nil
}

func (e *Exporter) commit(ctx context.Context, spanName string, target string, write func(ctx context.Context) error) error {
	startTime := time.Now()
	ctx, span := e.otelInst.StartSpan(ctx, spanName, []attribute.KeyValue{otelgo.TargetAttribute(target)})
	defer e.otelInst.EndSpan(span)

	err := write(ctx)
	e.otelInst.RecordMetrics(ctx, spanName, startTime, constants.TemplateHiveSparkDDLToBigQuery, target, err)
	if err != nil {
		e.otelInst.RecordError(span, err)
	}
	return err
}
