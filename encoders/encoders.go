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
	"strconv"
	"time"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/constants"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
)

// RowEncoder writes rows in one file format. Close flushes any buffered data and trailer but leaves the
// underlying writer open.
type RowEncoder interface {
	WriteRow(row types.ExportRow) error
	Close() error
}

func NewRowEncoder(format string, w io.Writer, columns []types.ExportColumn) (RowEncoder, error) {
	switch format {
	case constants.FormatCSV:
		return newCSVEncoder(w, columns)
	case constants.FormatJSON:
		return newJSONEncoder(w, columns), nil
	case constants.FormatAvro:
		return newAvroEncoder(w, columns)
	case constants.FormatParquet:
		return newParquetEncoder(w, columns)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func FileExtension(format string) string {
	switch format {
	case constants.FormatJSON:
		return "json"
	case constants.FormatCSV:
		return "csv"
	case constants.FormatAvro:
		return "avro"
	case constants.FormatParquet:
		return "parquet"
	default:
		return format
	}
}

func ContentType(format string) string {
	switch format {
	case constants.FormatJSON:
		return "application/x-ndjson"
	case constants.FormatCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

func checkWidth(row types.ExportRow, columns []types.ExportColumn) error {
	if len(row) != len(columns) {
		return fmt.Errorf("row has %d values, expected %d", len(row), len(columns))
	}
	return nil
}

// formatText renders a value the way the text formats write it. NULL is an empty string.
func formatText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return formatTimestamp(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
