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

import "strings"

// TableDescriptor identifies one catalog table
type TableDescriptor struct {
	Database string
	Name     string
}

func (t TableDescriptor) String() string {
	return t.Database + "." + t.Name
}

// DescribeRow is one (col_name, data_type) pair of a formatted table description. Pseudo rows such as
// "Database" and "Table" carry catalog metadata in the data_type field.
type DescribeRow struct {
	ColName  string
	DataType string
}

// PartitionColumn is a partition column as named in the create statement, paired with its described type
type PartitionColumn struct {
	Name string
	Type string
}

// PartitionSpec is empty for unpartitioned tables
type PartitionSpec []PartitionColumn

func (p PartitionSpec) IsPartitioned() bool {
	return len(p) > 0
}

// ColumnList renders the partition columns as " a t,  b t", the text placed inside PARTITIONED BY ( ... ). The
// spacing reproduces Spark's "a, b" column list with a space added before every entry.
func (p PartitionSpec) ColumnList() string {
	parts := make([]string, 0, len(p))
	for _, col := range p {
		parts = append(parts, " "+col.Name+" "+col.Type)
	}
	return strings.Join(parts, ", ")
}

// LocationInfo pairs a table's storage location with the object storage path it is staged under
type LocationInfo struct {
	SourcePath      string
	DestinationPath string
}

// RewrittenDDL is a portable CREATE TABLE statement, always terminated by ";\n"
type RewrittenDDL string

// ManifestRecord is one row of the table manifest loaded into the warehouse
type ManifestRecord struct {
	Database        string `json:"database"`
	Table           string `json:"table"`
	PartitionString string `json:"partition_string"`
	Format          string `json:"format"`
	HdfsPath        string `json:"hdfs_path"`
	GcsRawZonePath  string `json:"gcs_raw_zone_path"`
}

// Values returns the record's fields in manifest column order
func (m ManifestRecord) Values() []string {
	return []string{m.Database, m.Table, m.PartitionString, m.Format, m.HdfsPath, m.GcsRawZonePath}
}

// TableExport is everything extracted for a single table
type TableExport struct {
	Table      TableDescriptor
	DDL        RewrittenDDL
	Partitions PartitionSpec
	Location   LocationInfo
	Manifest   ManifestRecord
}
