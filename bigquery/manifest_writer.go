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

package bigqueryclient

import (
	"context"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/constants"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const stagingObjectName = "manifest.json"

// StagingStore holds the newline delimited JSON file a load job reads from
type StagingStore interface {
	WriteObject(ctx context.Context, bucket string, path string, content string) error
	DeleteObject(ctx context.Context, bucket string, path string) error
}

// ManifestWriter appends manifest records to a BigQuery table through a GCS load job
type ManifestWriter struct {
	client  *bigquery.Client
	staging StagingStore
	logger  *zap.Logger
}

func NewManifestWriter(ctx context.Context, projectID string, userAgent string, staging StagingStore, logger *zap.Logger, opts ...option.ClientOption) (*ManifestWriter, error) {
	if projectID == "" {
		projectID = bigquery.DetectProjectID
	}
	opts = append(opts, option.WithUserAgent(userAgent))
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}
	return &ManifestWriter{client: client, staging: staging, logger: logger}, nil
}

func (w *ManifestWriter) Close() error {
	return w.client.Close()
}

// AppendManifest stages the records under stagingBucket, loads them into dataset.table in append mode and removes
// the staged file. The table is created with the manifest schema if it doesn't exist.
func (w *ManifestWriter) AppendManifest(ctx context.Context, dataset string, table string, stagingBucket string, records []types.ManifestRecord) error {
	if len(records) == 0 {
		return nil
	}

	content, err := EncodeManifest(records)
	if err != nil {
		return err
	}

	objectPath := StagingObjectPath(uuid.NewString())
	if err := w.staging.WriteObject(ctx, stagingBucket, objectPath, content); err != nil {
		return fmt.Errorf("staging manifest: %w", err)
	}
	defer func() {
		if err := w.staging.DeleteObject(context.WithoutCancel(ctx), stagingBucket, objectPath); err != nil {
			w.logger.Warn("failed to delete staged manifest", zap.String("path", objectPath), zap.Error(err))
		}
	}()

	gcsRef := bigquery.NewGCSReference("gs://" + stagingBucket + "/" + objectPath)
	gcsRef.SourceFormat = bigquery.JSON
	gcsRef.Schema = ManifestSchema()
	gcsRef.MaxBadRecords = 0
	gcsRef.IgnoreUnknownValues = false

	loader := w.client.Dataset(dataset).Table(table).LoaderFrom(gcsRef)
	loader.WriteDisposition = bigquery.WriteAppend
	loader.CreateDisposition = bigquery.CreateIfNeeded

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("starting manifest load: %w", err)
	}
	w.logger.Debug("waiting for manifest load job", zap.String("jobID", job.ID()))
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for manifest load job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("manifest load job %s: %w", job.ID(), err)
	}

	w.logger.Info("manifest loaded",
		zap.String("table", dataset+"."+table),
		zap.Int("rows", len(records)),
		zap.String("jobID", job.ID()))
	return nil
}

// ManifestSchema is six nullable STRING columns in manifest column order
func ManifestSchema() bigquery.Schema {
	return lo.Map(constants.ManifestColumns, func(name string, _ int) *bigquery.FieldSchema {
		return &bigquery.FieldSchema{Name: name, Type: bigquery.StringFieldType}
	})
}

// EncodeManifest renders one JSON object per line
func EncodeManifest(records []types.ManifestRecord) (string, error) {
	var sb strings.Builder
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("encoding manifest record for %s.%s: %w", r.Database, r.Table, err)
		}
		sb.Write(b)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func StagingObjectPath(id string) string {
	return path.Join(constants.BigQueryStagingDir, id, stagingObjectName)
}
