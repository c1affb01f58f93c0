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
	"time"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	parquettypes "github.com/xitongsys/parquet-go/types"
	"github.com/xitongsys/parquet-go/writer"
)

const (
	parquetInt64           = "type=INT64, repetitiontype=OPTIONAL"
	parquetBoolean         = "type=BOOLEAN, repetitiontype=OPTIONAL"
	parquetDouble          = "type=DOUBLE, repetitiontype=OPTIONAL"
	parquetString          = "type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"
	parquetTimestampMicros = "type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"

	parquetParallelWriters = 4
)

type parquetEncoder struct {
	writer  *writer.CSVWriter
	columns []types.ExportColumn
}

func newParquetEncoder(w io.Writer, columns []types.ExportColumn) (*parquetEncoder, error) {
	pw, err := writer.NewCSVWriterFromWriter(ParquetSchema(columns), w, parquetParallelWriters)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	return &parquetEncoder{writer: pw, columns: columns}, nil
}

func parquetType(kind types.ColumnKind) string {
	switch kind {
	case types.KindLong:
		return parquetInt64
	case types.KindDouble:
		return parquetDouble
	case types.KindBoolean:
		return parquetBoolean
	case types.KindTimestamp:
		return parquetTimestampMicros
	default:
		return parquetString
	}
}

func ParquetSchema(columns []types.ExportColumn) []string {
	schema := make([]string, 0, len(columns))
	for _, c := range columns {
		schema = append(schema, fmt.Sprintf("name=%s, %s", c.Name, parquetType(c.Kind)))
	}
	return schema
}

func (e *parquetEncoder) WriteRow(row types.ExportRow) error {
	if err := checkWidth(row, e.columns); err != nil {
		return err
	}
	values := make([]interface{}, len(row))
	for i, v := range row {
		if t, ok := v.(time.Time); ok {
			values[i] = parquettypes.TimeToTIMESTAMP_MICROS(t, false)
			continue
		}
		values[i] = v
	}
	return e.writer.Write(values)
}

// Close writes the footer
func (e *parquetEncoder) Close() error {
	return e.writer.WriteStop()
}
