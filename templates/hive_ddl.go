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


package templates

import (
	"context"
	"errors"
	"time"

	bigqueryclient "github.com/GoogleCloudPlatform/dataproc-templates/go/bigquery"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/gcs"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/constants"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/hive"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/hiveddl"
	otelgo "github.com/GoogleCloudPlatform/dataproc-templates/go/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// hiveDDLClients are the collaborators of one export run. close releases every connection that was opened.
type hiveDDLClients struct {
	catalog  hiveddl.Catalog
	executor hiveddl.QueryExecutor
	objects  hiveddl.ObjectWriter
	tables   hiveddl.TableWriter
	close    func() error
}

type HiveSparkDDLToBigQuery struct {
	connect func(ctx context.Context, cfg *types.TemplateConfig) (*hiveDDLClients, error)
}

func NewHiveSparkDDLToBigQuery() *HiveSparkDDLToBigQuery {
	return &HiveSparkDDLToBigQuery{connect: connectHiveDDLClients}
}

func (t *HiveSparkDDLToBigQuery) Name() string {
	return constants.TemplateHiveSparkDDLToBigQuery
}

func (t *HiveSparkDDLToBigQuery) Run(ctx context.Context, cfg *types.TemplateConfig, otelInst *otelgo.OpenTelemetry) (err error) {
	args := cfg.CliArgs.HiveDDL
	logger := cfg.Logger
	logger.Info("Starting template", zap.String("template", t.Name()), zap.Any("parameters", args))

	startTime := time.Now()
	ctx, span := otelInst.StartSpan(ctx, t.Name(), []attribute.KeyValue{
		otelgo.TemplateAttribute(t.Name()),
		otelgo.TargetAttribute(args.Database),
	})
	defer func() {
		if err != nil {
			otelInst.RecordError(span, err)
		}
		otelInst.RecordMetrics(ctx, "run", startTime, t.Name(), args.Database, err)
		otelInst.EndSpan(span)
	}()

	clients, err := t.connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := clients.close(); closeErr != nil {
			logger.Warn("failed to close clients", zap.Error(closeErr))
		}
	}()

	exporter := hiveddl.NewExporter(clients.catalog, clients.executor, clients.objects, clients.tables, otelInst, logger)
	batch, err := exporter.Run(ctx, hiveddl.Options{
		Database: args.Database,
		Bucket:   args.OutputBucket,
		Dataset:  args.OutputDataset,
		Table:    args.OutputTable,
	})
	if err != nil {
		return err
	}

	logger.Info("Hive DDL export finished",
		zap.String("database", args.Database),
		zap.Int("tables", batch.Len()),
		zap.String("ddl", gcs.ObjectURI(args.OutputBucket, constants.DDLObjectPath)),
		zap.String("manifest", args.OutputDataset+"."+args.OutputTable))
	return nil
}

func connectHiveDDLClients(ctx context.Context, cfg *types.TemplateConfig) (*hiveDDLClients, error) {
	logger := cfg.Logger
	userAgent := cfg.CliArgs.UserAgent

	session, err := hive.NewSession(cfg.Hive, logger)
	if err != nil {
		return nil, err
	}

	storageClient, err := gcs.NewClient(ctx, userAgent, logger)
	if err != nil {
		_ = session.Close()
		return nil, err
	}

	manifestWriter, err := bigqueryclient.NewManifestWriter(ctx, cfg.ProjectID, userAgent, storageClient, logger)
	if err != nil {
		_ = storageClient.Close()
		_ = session.Close()
		return nil, err
	}

	return &hiveDDLClients{
		catalog:  session,
		executor: session,
		objects:  storageClient,
		tables:   manifestWriter,
		close: func() error {
			return errors.Join(manifestWriter.Close(), storageClient.Close(), session.Close())
		},
	}, nil
}
