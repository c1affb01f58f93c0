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

package encoders

import (
	"fmt"
	"io"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/linkedin/goavro/v2"
)

const avroRecordName = "topLevelRecord"

type avroEncoder struct {
	writer  *goavro.OCFWriter
	columns []types.ExportColumn
	// union branch name for each column, e.g. "long" or "long.timestamp-micros"
	branches []string
}

func newAvroEncoder(w io.Writer, columns []types.ExportColumn) (*avroEncoder, error) {
	schema, err := AvroSchema(columns)
	if err != nil {
		return nil, err
	}
	writer, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Schema:          schema,
		CompressionName: goavro.CompressionSnappyLabel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create avro writer: %w", err)
	}
	branches := make([]string, len(columns))
	for i, c := range columns {
		branches[i] = avroBranch(c.Kind)
	}
	return &avroEncoder{writer: writer, columns: columns, branches: branches}, nil
}

func avroType(kind types.ColumnKind) interface{} {
	switch kind {
	case types.KindLong:
		return "long"
	case types.KindDouble:
		return "double"
	case types.KindBoolean:
		return "boolean"
	case types.KindTimestamp:
		return map[string]string{"type": "long", "logicalType": "timestamp-micros"}
	default:
		return "string"
	}
}

func avroBranch(kind types.ColumnKind) string {
	if kind == types.KindTimestamp {
		return "long.timestamp-micros"
	}
	return avroType(kind).(string)
}

// AvroSchema builds a record schema with every column nullable
func AvroSchema(columns []types.ExportColumn) (string, error) {
	fields := make([]map[string]interface{}, 0, len(columns))
	for _, c := range columns {
		fields = append(fields, map[string]interface{}{
			"name":    c.Name,
			"type":    []interface{}{"null", avroType(c.Kind)},
			"default": nil,
		})
	}
	schema, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(map[string]interface{}{
		"type":   "record",
		"name":   avroRecordName,
		"fields": fields,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build avro schema: %w", err)
	}
	return schema, nil
}

func (e *avroEncoder) WriteRow(row types.ExportRow) error {
	if err := checkWidth(row, e.columns); err != nil {
		return err
	}
	record := make(map[string]interface{}, len(row))
	for i, v := range row {
		if v == nil {
			record[e.columns[i].Name] = nil
			continue
		}
		record[e.columns[i].Name] = goavro.Union(e.branches[i], v)
	}
	return e.writer.Append([]interface{}{record})
}

// Close is a no-op, every Append already wrote a complete block
func (e *avroEncoder) Close() error {
	return nil
}
