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

package hiveddl

import (
	"fmt"
	"strings"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/constants"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
)

const (
	partitionedMarker   = "PARTITIONED"
	partitionedByMarker = "PARTITIONED BY ("
	usingMarker         = "USING "
	locationMarker      = "Location: "

	describeColName  = "col_name"
	describeDataType = "data_type"
	describeDatabase = "Database"
	describeTable    = "Table"

	// length of the ",\n  `" that separates the last data column from the first partition column
	partitionSeparatorLen = 5
)

// HasPartitions reports whether the create statement declares partition columns
func HasPartitions(createStmt string) bool {
	return strings.Contains(createStmt, partitionedMarker)
}

// ParsePartitionColumnNames returns the comma separated names inside PARTITIONED BY ( ... ). Names are returned
// verbatim, so every name after the first usually carries a leading space.
func ParsePartitionColumnNames(createStmt string) ([]string, error) {
	_, after, found := strings.Cut(createStmt, partitionedByMarker)
	if !found {
		return nil, markerNotFound("partition columns", partitionedByMarker)
	}
	list, _, found := strings.Cut(after, ")")
	if !found {
		return nil, markerNotFound("partition columns", ")")
	}
	return strings.Split(list, ","), nil
}

// LookupDescribeValue returns the data_type of the first row whose col_name equals colName
func LookupDescribeValue(rows []types.DescribeRow, colName string) (string, error) {
	for _, row := range rows {
		if row.ColName == colName {
			return row.DataType, nil
		}
	}
	return "", describeRowNotFound("describe rows", colName)
}

// BuildPartitionSpec pairs each partition column name, trimmed, with the type recorded for it in the describe rows
func BuildPartitionSpec(names []string, rows []types.DescribeRow) (types.PartitionSpec, error) {
	spec := make(types.PartitionSpec, 0, len(names))
	for _, name := range names {
		dataType, err := LookupDescribeValue(rows, strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		spec = append(spec, types.PartitionColumn{Name: strings.TrimSpace(name), Type: dataType})
	}
	return spec, nil
}

// ParseColumnsClause returns the column definitions that follow the table name in the create statement, with the
// closing parenthesis and a newline. Partition columns are cut off when the spec is non-empty.
func ParseColumnsClause(createStmt string, tableName string, partitions types.PartitionSpec) (string, error) {
	if partitions.IsPartitioned() {
		return parsePartitionedColumnsClause(createStmt, tableName, partitions[0].Name)
	}
	return parseColumnsClause(createStmt, tableName)
}

func parseColumnsClause(createStmt string, tableName string) (string, error) {
	after, err := afterTableName(createStmt, tableName)
	if err != nil {
		return "", err
	}

	open := strings.Index(after, "(")
	if open < 0 {
		return "", markerNotFound("columns", "(")
	}
	depth := 0
	for i := open; i < len(after); i++ {
		switch after[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return after[:i+1] + "\n", nil
			}
		}
	}
	return "", markerNotFound("columns", ")")
}

func parsePartitionedColumnsClause(createStmt string, tableName string, firstPartition string) (string, error) {
	before, _, found := strings.Cut(createStmt, firstPartition)
	if !found {
		return "", markerNotFound("columns", firstPartition)
	}
	if len(before) < partitionSeparatorLen {
		return "", markerNotFound("columns", firstPartition)
	}
	before = before[:len(before)-partitionSeparatorLen]

	after, err := afterTableName(before, tableName)
	if err != nil {
		return "", err
	}
	return after + ")\n", nil
}

// afterTableName returns the text following the table's quoted name. The qualified form `db`.`name` is matched
// first so a database named like the table, or ending in its name, is never taken for it.
func afterTableName(createStmt string, tableName string) (string, error) {
	if _, after, found := strings.Cut(createStmt, "`.`"+tableName+"`"); found {
		return after, nil
	}
	marker := "`" + tableName + "`"
	_, after, found := strings.Cut(createStmt, marker)
	if !found {
		return "", markerNotFound("columns", marker)
	}
	return after, nil
}

// ParseFormat returns the data source named after USING, up to the end of that line
func ParseFormat(createStmt string) (string, error) {
	return lineAfter(createStmt, usingMarker, "format")
}

// ParseLocation returns the storage location reported by the extended table information
func ParseLocation(extendedInfo string) (string, error) {
	return lineAfter(extendedInfo, locationMarker, "location")
}

func lineAfter(text, marker, field string) (string, error) {
	_, after, found := strings.Cut(text, marker)
	if !found {
		return "", markerNotFound(field, marker)
	}
	line, _, _ := strings.Cut(after, "\n")
	return line, nil
}

// StagingPrefix is the root every rewritten table location is placed under
func StagingPrefix(bucket string) string {
	return "gs://" + bucket + "/" + constants.RawZoneDir + "/"
}

// RewriteLocation maps a source location into the staging prefix. Tables of the default database keep the part of
// the path after the warehouse root, all others keep the part after the database name. Both splits use the first
// occurrence of the marker, so a path repeating the database name keeps everything after its first appearance.
func RewriteLocation(sourcePath string, database string, resolvedDatabase string, stagingPrefix string) (string, error) {
	marker := resolvedDatabase
	if database == constants.DefaultDatabase {
		marker = constants.WarehouseMarker
	}
	if marker == "" {
		return "", markerNotFound("destination path", marker)
	}
	_, suffix, found := strings.Cut(sourcePath, marker)
	if !found {
		return "", markerNotFound("destination path", marker)
	}
	return stagingPrefix + resolvedDatabase + suffix, nil
}

// PartitionClause renders PARTITIONED BY ( ... ) followed by a newline, or nothing for unpartitioned tables
func PartitionClause(partitions types.PartitionSpec) string {
	if !partitions.IsPartitioned() {
		return ""
	}
	return partitionedByMarker + partitions.ColumnList() + ")\n"
}

func BuildDDL(tableName string, columnsClause string, partitions types.PartitionSpec) types.RewrittenDDL {
	return types.RewrittenDDL("CREATE TABLE IF NOT EXISTS " + tableName + columnsClause + PartitionClause(partitions) + ";\n")
}

// DescribeRowsFromResult converts a DESCRIBE FORMATTED result into describe rows, keeping their order
func DescribeRowsFromResult(rs *types.ResultSet) ([]types.DescribeRow, error) {
	nameIdx := rs.ColumnIndex(describeColName)
	typeIdx := rs.ColumnIndex(describeDataType)
	if nameIdx < 0 || typeIdx < 0 {
		return nil, fmt.Errorf("describe result is missing '%s' or '%s' column (columns: %v)", describeColName, describeDataType, rs.Columns)
	}
	rows := make([]types.DescribeRow, 0, len(rs.Rows))
	for _, r := range rs.Rows {
		if nameIdx >= len(r) || typeIdx >= len(r) {
			continue
		}
		// hive pads both columns to a fixed width
		rows = append(rows, types.DescribeRow{
			ColName:  strings.TrimSpace(r[nameIdx]),
			DataType: strings.TrimSpace(r[typeIdx]),
		})
	}
	return rows, nil
}

// StatementText joins the first column of every row. Spark returns a create statement as a single row while
// HiveServer2 returns one row per line.
func StatementText(rs *types.ResultSet) (string, error) {
	if len(rs.Rows) == 0 {
		return "", types.ErrEmptyResult
	}
	lines := make([]string, 0, len(rs.Rows))
	for _, r := range rs.Rows {
		if len(r) == 0 {
			continue
		}
		lines = append(lines, r[0])
	}
	return strings.Join(lines, "\n"), nil
}
