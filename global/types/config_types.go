package types

import (
	"time"

	"go.uber.org/zap"
)

type CliArgs struct {
	Version        bool
	Template       string
	ConfigFilePath string
	LogLevel       string
	ProjectId      string
	UserAgent      string
	HiveDDL        *HiveDDLArgs
	CassandraToGCS *CassandraToGCSArgs
}

type HiveDDLArgs struct {
	Database      string
	OutputBucket  string
	OutputDataset string
	OutputTable   string
	// accepted for compatibility with the hive to bigquery data template; the DDL export doesn't run it
	SQLQuery     string
	TempViewName string
	HiveHost     string
	HivePort     int
}

type CassandraToGCSArgs struct {
	Keyspace     string
	Table        string
	Host         string
	OutputFormat string
	OutputPath   string
	SaveMode     string
}

type HiveConfig struct {
	Host          string
	Port          int
	Auth          string
	Username      string
	Password      string
	TransportMode string
	HTTPPath      string
	FetchSize     int64
	Timeout       time.Duration
}

type CassandraConfig struct {
	Port        int
	Username    string
	Password    string
	Consistency string
	Timeout     time.Duration
	PageSize    int
}

type OtelConfig struct {
	Enabled     bool
	ServiceName string
	Metrics     struct {
		Endpoint string
	}
	Traces struct {
		Endpoint      string
		SamplingRatio float64
	}
}

// TemplateConfig is everything a template needs to run, resolved from cli args and the optional config file
type TemplateConfig struct {
	CliArgs   *CliArgs
	ProjectID string
	Hive      *HiveConfig
	Cassandra *CassandraConfig
	Otel      *OtelConfig
	Logger    *zap.Logger
}
