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
	"encoding/csv"
	"io"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
)

type csvEncoder struct {
	writer  *csv.Writer
	columns []types.ExportColumn
	record  []string
}

// newCSVEncoder writes the header row straight away
func newCSVEncoder(w io.Writer, columns []types.ExportColumn) (*csvEncoder, error) {
	e := &csvEncoder{
		writer:  csv.NewWriter(w),
		columns: columns,
		record:  make([]string, len(columns)),
	}
	for i, c := range columns {
		e.record[i] = c.Name
	}
	if err := e.writer.Write(e.record); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *csvEncoder) WriteRow(row types.ExportRow) error {
	if err := checkWidth(row, e.columns); err != nil {
		return err
	}
	for i, v := range row {
		e.record[i] = formatText(v)
	}
	return e.writer.Write(e.record)
}

func (e *csvEncoder) Close() error {
	e.writer.Flush()
	return e.writer.Error()
}
