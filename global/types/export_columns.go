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

package types

// ColumnKind is the storage type an exported column is written with
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindLong
	KindDouble
	KindBoolean
	KindTimestamp
)

func (k ColumnKind) String() string {
	switch k {
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	default:
		return "string"
	}
}

// ExportColumn is one column of a table being exported to files
type ExportColumn struct {
	Name string
	Kind ColumnKind
}

// ExportRow holds one value per ExportColumn: nil, int64, float64, bool, time.Time or string depending on the kind
type ExportRow []interface{}
