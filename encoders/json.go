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
	"io"
	"time"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	jsoniter "github.com/json-iterator/go"
)

// jsonEncoder writes one object per line with fields in column order. NULL columns are left out.
type jsonEncoder struct {
	stream  *jsoniter.Stream
	columns []types.ExportColumn
}

func newJSONEncoder(w io.Writer, columns []types.ExportColumn) *jsonEncoder {
	return &jsonEncoder{
		stream:  jsoniter.NewStream(jsoniter.ConfigCompatibleWithStandardLibrary, w, 4096),
		columns: columns,
	}
}

func (e *jsonEncoder) WriteRow(row types.ExportRow) error {
	if err := checkWidth(row, e.columns); err != nil {
		return err
	}
	e.stream.WriteObjectStart()
	first := true
	for i, v := range row {
		if v == nil {
			continue
		}
		if !first {
			e.stream.WriteMore()
		}
		first = false
		e.stream.WriteObjectField(e.columns[i].Name)
		if t, ok := v.(time.Time); ok {
			e.stream.WriteString(formatTimestamp(t))
		} else {
			e.stream.WriteVal(v)
		}
	}
	e.stream.WriteObjectEnd()
	e.stream.WriteRaw("\n")
	if e.stream.Error != nil {
		return e.stream.Error
	}
	if e.stream.Buffered() > 64*1024 {
		return e.stream.Flush()
	}
	return nil
}

func (e *jsonEncoder) Close() error {
	return e.stream.Flush()
}
