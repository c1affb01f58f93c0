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

package constants

const TemplatesReleaseVersion = "v0.1.0"

// template names, as accepted on the command line
const (
	TemplateHiveSparkDDLToBigQuery = "hivesparkddl-to-bigquery"
	TemplateCassandraToGCS         = "cassandra-to-gcs"
)

// Hive DDL to BigQuery flags
const (
	HiveSparkDDLBQInputDatabase = "hivesparkddl.bigquery.input.database"
	HiveSparkDDLBQOutputBucket  = "hivesparkddl.bigquery.output.bucket"
	HiveSparkDDLBQOutputDataset = "hivesparkddl.bigquery.output.dataset"
	HiveSparkDDLBQOutputTable   = "hivesparkddl.bigquery.output.table"
	HiveBQSQLQuery              = "hive.bigquery.sql.query"
	HiveBQTempViewName          = "hive.bigquery.temp.view.name"
)

// Cassandra to GCS flags
const (
	CassandraToGCSInputKeyspace  = "cassandratogcs.input.keyspace"
	CassandraToGCSInputTable     = "cassandratogcs.input.table"
	CassandraToGCSInputHost      = "cassandratogcs.input.host"
	CassandraToGCSOutputFormat   = "cassandratogcs.output.format"
	CassandraToGCSOutputPath     = "cassandratogcs.output.path"
	CassandraToGCSOutputSaveMode = "cassandratogcs.output.savemode"
)

// output formats
const (
	FormatAvro    = "avro"
	FormatParquet = "parquet"
	FormatCSV     = "csv"
	FormatJSON    = "json"
)

// output save modes
const (
	OutputModeOverwrite     = "overwrite"
	OutputModeAppend        = "append"
	OutputModeIgnore        = "ignore"
	OutputModeErrorIfExists = "errorifexists"
)

const (
	// DDLObjectPath is where the concatenated DDL text is written, relative to the output bucket.
	DDLObjectPath = "SparkDDL/DDL.txt"
	// RawZoneDir is the staging directory rewritten table locations are rooted under.
	RawZoneDir = "RawZone"
	// DefaultDatabase is the catalog's reserved database, whose tables live directly under the warehouse root.
	DefaultDatabase = "default"
	// WarehouseMarker separates the warehouse root from table paths of the default database.
	WarehouseMarker = "warehouse"
	// BigQueryStagingDir holds transient manifest files while they are loaded.
	BigQueryStagingDir = ".bigquery-staging"
)

// manifest columns, in load order
const (
	ManifestColDatabase        = "database"
	ManifestColTable           = "table"
	ManifestColPartitionString = "partition_string"
	ManifestColFormat          = "format"
	ManifestColHdfsPath        = "hdfs_path"
	ManifestColGcsRawZonePath  = "gcs_raw_zone_path"
)

var ManifestColumns = []string{
	ManifestColDatabase,
	ManifestColTable,
	ManifestColPartitionString,
	ManifestColFormat,
	ManifestColHdfsPath,
	ManifestColGcsRawZonePath,
}
