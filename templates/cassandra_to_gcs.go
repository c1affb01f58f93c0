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
	"fmt"
	"io"
	"time"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/cassandra"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/encoders"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/gcs"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/constants"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	otelgo "github.com/GoogleCloudPlatform/dataproc-templates/go/otel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrOutputExists is returned in errorifexists mode when the output path already holds objects
var ErrOutputExists = errors.New("output path already exists")

// RowSource streams the rows of one table
type RowSource interface {
	Columns() []types.ExportColumn
	Next() (types.ExportRow, bool)
	Err() error
	Close() error
}

// ExportStore is the object storage side of an export
type ExportStore interface {
	ObjectsExist(ctx context.Context, bucket string, prefix string) (bool, error)
	DeletePrefix(ctx context.Context, bucket string, prefix string) (int, error)
	NewWriter(ctx context.Context, bucket string, path string, contentType string) io.WriteCloser
}

type cassandraClients struct {
	open  func(ctx context.Context, keyspace string, table string) (RowSource, error)
	store ExportStore
	close func() error
}

type CassandraToGCS struct {
	connect func(ctx context.Context, cfg *types.TemplateConfig) (*cassandraClients, error)
	newID   func() string
}

func NewCassandraToGCS() *CassandraToGCS {
	return &CassandraToGCS{connect: connectCassandraClients, newID: uuid.NewString}
}

func (t *CassandraToGCS) Name() string {
	return constants.TemplateCassandraToGCS
}

func (t *CassandraToGCS) Run(ctx context.Context, cfg *types.TemplateConfig, otelInst *otelgo.OpenTelemetry) (err error) {
	args := cfg.CliArgs.CassandraToGCS
	logger := cfg.Logger
	logger.Info("Starting template", zap.String("template", t.Name()), zap.Any("parameters", args))

	source := args.Keyspace + "." + args.Table
	startTime := time.Now()
	ctx, span := otelInst.StartSpan(ctx, t.Name(), []attribute.KeyValue{
		otelgo.TemplateAttribute(t.Name()),
		otelgo.TargetAttribute(source),
	})
	defer func() {
		if err != nil {
			otelInst.RecordError(span, err)
		}
		otelInst.RecordMetrics(ctx, "run", startTime, t.Name(), source, err)
		otelInst.EndSpan(span)
	}()

	bucket, prefix, err := gcs.ParseGCSPath(args.OutputPath)
	if err != nil {
		return err
	}
	// a bare prefix would also match sibling paths sharing its name
	dir := prefix
	if dir != "" {
		dir = gcs.JoinPrefix(prefix, "")
	}

	clients, err := t.connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := clients.close(); closeErr != nil {
			logger.Warn("failed to close clients", zap.Error(closeErr))
		}
	}()

	proceed, err := prepareOutput(ctx, clients.store, args.SaveMode, bucket, dir, logger)
	if err != nil || !proceed {
		return err
	}

	rows, err := clients.open(ctx, args.Keyspace, args.Table)
	if err != nil {
		return err
	}
	defer rows.Close()

	if args.SaveMode == constants.OutputModeOverwrite {
		if _, err := clients.store.DeletePrefix(ctx, bucket, dir); err != nil {
			return fmt.Errorf("failed to clear %s: %w", args.OutputPath, err)
		}
	}

	path := gcs.JoinPrefix(dir, "part-"+t.newID()+"."+encoders.FileExtension(args.OutputFormat))
	count, err := writeRows(ctx, clients.store, bucket, path, args.OutputFormat, rows)
	if err != nil {
		return err
	}
	logger.Info("Cassandra export finished",
		zap.String("table", source),
		zap.String("object", gcs.ObjectURI(bucket, path)),
		zap.Int("rows", count))
	return nil
}

// prepareOutput applies the checks of the ignore and errorifexists modes. It reports whether the export should go
// ahead.
func prepareOutput(ctx context.Context, store ExportStore, saveMode string, bucket string, dir string, logger *zap.Logger) (bool, error) {
	if saveMode != constants.OutputModeIgnore && saveMode != constants.OutputModeErrorIfExists {
		return true, nil
	}
	exists, err := store.ObjectsExist(ctx, bucket, dir)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	if saveMode == constants.OutputModeIgnore {
		logger.Info("output path already exists, skipping export", zap.String("path", gcs.ObjectURI(bucket, dir)))
		return false, nil
	}
	return false, fmt.Errorf("%w: %s", ErrOutputExists, gcs.ObjectURI(bucket, dir))
}

// writeRows streams every row into a single object. On error the upload is cancelled and no object is created.
func writeRows(ctx context.Context, store ExportStore, bucket string, path string, format string, rows RowSource) (int, error) {
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	uri := gcs.ObjectURI(bucket, path)
	w := store.NewWriter(writeCtx, bucket, path, encoders.ContentType(format))
	enc, err := encoders.NewRowEncoder(format, w, rows.Columns())
	if err != nil {
		return 0, err
	}

	count := 0
	for {
		row, ok := rows.Next()
		if !ok {
			break
		}
		if err := enc.WriteRow(row); err != nil {
			return 0, fmt.Errorf("failed to encode row %d: %w", count+1, err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("failed to finish %s: %w", uri, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("failed to upload %s: %w", uri, err)
	}
	return count, nil
}

func connectCassandraClients(ctx context.Context, cfg *types.TemplateConfig) (*cassandraClients, error) {
	reader, err := cassandra.NewReader(cfg.CliArgs.CassandraToGCS.Host, cfg.Cassandra, cfg.Logger)
	if err != nil {
		return nil, err
	}
	storageClient, err := gcs.NewClient(ctx, cfg.CliArgs.UserAgent, cfg.Logger)
	if err != nil {
		reader.Close()
		return nil, err
	}
	return &cassandraClients{
		open: func(ctx context.Context, keyspace string, table string) (RowSource, error) {
			return reader.ReadTable(ctx, keyspace, table)
		},
		store: storageClient,
		close: func() error {
			reader.Close()
			return storageClient.Close()
		},
	}, nil
}
