package config

import (
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseCliArgs(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("could not get current working directory: %v", err)
	}

	hiveArgs := []string{
		"hivesparkddl-to-bigquery",
		"--hivesparkddl.bigquery.input.database", "sales",
		"--hivesparkddl.bigquery.output.bucket", "migration-bucket",
		"--hivesparkddl.bigquery.output.dataset", "migration",
		"--hivesparkddl.bigquery.output.table", "manifest",
	}

	tests := []struct {
		name    string
		args    []string
		want    *types.CliArgs
		wantErr string
	}{
		{
			name: "hive ddl export with config file",
			args: append([]string{"-f", "testdata/valid_config.yaml"}, hiveArgs...),
			want: &types.CliArgs{
				Template:       "hivesparkddl-to-bigquery",
				ConfigFilePath: wd + "/testdata/valid_config.yaml",
				LogLevel:       "info",
				UserAgent:      "dataproc-templates/v0.1.0",
				HiveDDL: &types.HiveDDLArgs{
					Database:      "sales",
					OutputBucket:  "migration-bucket",
					OutputDataset: "migration",
					OutputTable:   "manifest",
				},
			},
		},
		{
			name: "hive ddl export with host override and query",
			args: append(append([]string{"--project-id", "my-project", "-u", "custom-agent"}, hiveArgs...),
				"--hive-host", "thrift.example.com",
				"--hive-port", "10005",
				"--hive.bigquery.sql.query", "select * from v",
				"--hive.bigquery.temp.view.name", "v",
			),
			want: &types.CliArgs{
				Template:  "hivesparkddl-to-bigquery",
				LogLevel:  "info",
				ProjectId: "my-project",
				UserAgent: "custom-agent",
				HiveDDL: &types.HiveDDLArgs{
					Database:      "sales",
					OutputBucket:  "migration-bucket",
					OutputDataset: "migration",
					OutputTable:   "manifest",
					SQLQuery:      "select * from v",
					TempViewName:  "v",
					HiveHost:      "thrift.example.com",
					HivePort:      10005,
				},
			},
		},
		{
			name: "cassandra to gcs",
			args: []string{
				"cassandra-to-gcs",
				"--cassandratogcs.input.keyspace", "shop",
				"--cassandratogcs.input.table", "orders",
				"--cassandratogcs.input.host", "10.0.0.12",
				"--cassandratogcs.output.format", "parquet",
				"--cassandratogcs.output.path", "gs://exports/orders",
			},
			want: &types.CliArgs{
				Template:  "cassandra-to-gcs",
				LogLevel:  "info",
				UserAgent: "dataproc-templates/v0.1.0",
				CassandraToGCS: &types.CassandraToGCSArgs{
					Keyspace:     "shop",
					Table:        "orders",
					Host:         "10.0.0.12",
					OutputFormat: "parquet",
					OutputPath:   "gs://exports/orders",
					SaveMode:     "append",
				},
			},
		},
		{
			name: "version",
			args: []string{"version"},
			want: &types.CliArgs{
				Version:   true,
				LogLevel:  "info",
				UserAgent: "dataproc-templates/v0.1.0",
			},
		},
		{
			name:    "unrecognized flag",
			args:    []string{"version", "--blah"},
			wantErr: "unknown flag --blah",
		},
		{
			name:    "missing required flag",
			args:    []string{"hivesparkddl-to-bigquery", "--hivesparkddl.bigquery.input.database", "sales"},
			wantErr: "missing flags",
		},
		{
			name:    "query without temp view",
			args:    append(append([]string{}, hiveArgs...), "--hive.bigquery.sql.query", "select 1"),
			wantErr: "Temp view name cannot be null",
		},
		{
			name: "bucket given as url",
			args: []string{
				"hivesparkddl-to-bigquery",
				"--hivesparkddl.bigquery.input.database", "sales",
				"--hivesparkddl.bigquery.output.bucket", "gs://migration-bucket",
				"--hivesparkddl.bigquery.output.dataset", "migration",
				"--hivesparkddl.bigquery.output.table", "manifest",
			},
			wantErr: "takes a bucket name",
		},
		{
			name: "invalid output format",
			args: []string{
				"cassandra-to-gcs",
				"--cassandratogcs.input.keyspace", "shop",
				"--cassandratogcs.input.table", "orders",
				"--cassandratogcs.input.host", "10.0.0.12",
				"--cassandratogcs.output.format", "orc",
				"--cassandratogcs.output.path", "gs://exports/orders",
			},
			wantErr: "invalid choice for --cassandratogcs.output.format: 'orc'",
		},
		{
			name: "invalid save mode",
			args: []string{
				"cassandra-to-gcs",
				"--cassandratogcs.input.keyspace", "shop",
				"--cassandratogcs.input.table", "orders",
				"--cassandratogcs.input.host", "10.0.0.12",
				"--cassandratogcs.output.format", "csv",
				"--cassandratogcs.output.path", "gs://exports/orders",
				"--cassandratogcs.output.savemode", "replace",
			},
			wantErr: "invalid choice for --cassandratogcs.output.savemode: 'replace'",
		},
		{
			name: "output path not in gcs",
			args: []string{
				"cassandra-to-gcs",
				"--cassandratogcs.input.keyspace", "shop",
				"--cassandratogcs.input.table", "orders",
				"--cassandratogcs.input.host", "10.0.0.12",
				"--cassandratogcs.output.format", "csv",
				"--cassandratogcs.output.path", "/tmp/orders",
			},
			wantErr: "must be a gs:// location",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCliArgs(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryWithoutTempViewIsSentinel(t *testing.T) {
	err := validateHiveDDLArgs(&types.HiveDDLArgs{SQLQuery: "select 1"})
	assert.True(t, errors.Is(err, ErrMissingTempViewName))
}

func TestParseTemplateConfig(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("could not get current working directory: %v", err)
	}
	logger := zap.NewNop()

	tests := []struct {
		name          string
		args          *types.CliArgs
		wantProject   string
		wantHive      *types.HiveConfig
		wantCassandra *types.CassandraConfig
		wantErr       string
	}{
		{
			name: "valid config file",
			args: &types.CliArgs{
				ConfigFilePath: wd + "/testdata/valid_config.yaml",
				HiveDDL:        &types.HiveDDLArgs{Database: "sales"},
			},
			wantProject: "analytics-prod-123",
			wantHive: &types.HiveConfig{
				Host:          "spark-thrift.internal",
				Port:          10001,
				Auth:          "NOSASL",
				TransportMode: "binary",
				FetchSize:     500,
				Timeout:       2 * time.Minute,
			},
			wantCassandra: &types.CassandraConfig{
				Port:        9142,
				Username:    "reader",
				Password:    "secret",
				Consistency: "ONE",
				Timeout:     10 * time.Second,
				PageSize:    5000,
			},
		},
		{
			name: "cli overrides config file",
			args: &types.CliArgs{
				ConfigFilePath: wd + "/testdata/valid_config.yaml",
				ProjectId:      "override-project",
				HiveDDL:        &types.HiveDDLArgs{Database: "sales", HiveHost: "other-host", HivePort: 9999},
			},
			wantProject: "override-project",
			wantHive: &types.HiveConfig{
				Host:          "other-host",
				Port:          9999,
				Auth:          "NOSASL",
				TransportMode: "binary",
				FetchSize:     500,
				Timeout:       2 * time.Minute,
			},
			wantCassandra: &types.CassandraConfig{
				Port:        9142,
				Username:    "reader",
				Password:    "secret",
				Consistency: "ONE",
				Timeout:     10 * time.Second,
				PageSize:    5000,
			},
		},
		{
			name: "no config file",
			args: &types.CliArgs{},
			wantHive: &types.HiveConfig{
				Host:          "localhost",
				Port:          10000,
				Auth:          "NONE",
				TransportMode: "binary",
				Timeout:       5 * time.Minute,
			},
			wantCassandra: &types.CassandraConfig{
				Port:        9042,
				Consistency: "LOCAL_QUORUM",
				Timeout:     20 * time.Second,
				PageSize:    5000,
			},
		},
		{
			name:    "malformed yaml",
			args:    &types.CliArgs{ConfigFilePath: wd + "/testdata/invalid_config.yaml"},
			wantErr: "failed to unmarshal config",
		},
		{
			name:    "unsupported transport",
			args:    &types.CliArgs{ConfigFilePath: wd + "/testdata/invalid_transport_config.yaml"},
			wantErr: "unsupported hive transport mode 'websocket'",
		},
		{
			name:    "missing file",
			args:    &types.CliArgs{ConfigFilePath: wd + "/testdata/does_not_exist.yaml"},
			wantErr: "failed to read config file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTemplateConfig(tt.args, logger)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProject, got.ProjectID)
			assert.Equal(t, tt.wantHive, got.Hive)
			assert.Equal(t, tt.wantCassandra, got.Cassandra)
			assert.False(t, got.Otel.Enabled)
			assert.Same(t, tt.args, got.CliArgs)
			assert.Same(t, logger, got.Logger)
		})
	}
}

func TestParseLoggerConfig(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("could not get current working directory: %v", err)
	}

	tests := []struct {
		name    string
		args    *types.CliArgs
		wantErr string
	}{
		{
			name: "console",
			args: &types.CliArgs{LogLevel: "debug"},
		},
		{
			name: "console from config file",
			args: &types.CliArgs{LogLevel: "info", ConfigFilePath: wd + "/testdata/valid_config.yaml"},
		},
		{
			name: "file",
			args: &types.CliArgs{LogLevel: "warn", ConfigFilePath: wd + "/testdata/file_logger_config.yaml"},
		},
		{
			name:    "bad level",
			args:    &types.CliArgs{LogLevel: "loud"},
			wantErr: "unrecognized level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLoggerConfig(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestDurationUnmarshal(t *testing.T) {
	readFile = func(string) ([]byte, error) {
		return []byte("hive:\n  timeout: forever\n"), nil
	}
	defer func() { readFile = os.ReadFile }()

	_, err := readTemplateConfig("ignored.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid duration "forever"`)
}
