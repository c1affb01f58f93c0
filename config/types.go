package config

import (
	"fmt"
	"os"
	"time"
)

type yamlTemplateConfig struct {
	ProjectID    string            `yaml:"projectId"`
	Hive         *yamlHive         `yaml:"hive"`
	Cassandra    *yamlCassandra    `yaml:"cassandra"`
	Otel         *yamlOtelConfig   `yaml:"otel"`
	LoggerConfig *yamlLoggerConfig `yaml:"loggerConfig"`
}

type yamlLoggerConfig struct {
	OutputType string `yaml:"outputType"`
	Filename   string `yaml:"fileName"`
	MaxSize    int    `yaml:"maxSize"`    // megabytes
	MaxBackups int    `yaml:"maxBackups"` // number of rotated files kept
	MaxAge     int    `yaml:"maxAge"`     // days
	Compress   bool   `yaml:"compress"`
}

type yamlOtelConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"serviceName"`
	Metrics     struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"metrics"`
	Traces struct {
		Endpoint      string  `yaml:"endpoint"`
		SamplingRatio float64 `yaml:"samplingRatio"`
	} `yaml:"traces"`
}

// yamlHive describes the HiveServer2 / Spark Thrift Server endpoint the catalog is read from
type yamlHive struct {
	Host          string    `yaml:"host"`
	Port          int       `yaml:"port"`
	Auth          string    `yaml:"auth"`
	Username      string    `yaml:"username"`
	Password      string    `yaml:"password"`
	TransportMode string    `yaml:"transportMode"`
	HTTPPath      string    `yaml:"httpPath"`
	FetchSize     int64     `yaml:"fetchSize"`
	Timeout       *Duration `yaml:"timeout"`
}

type yamlCassandra struct {
	Port        int       `yaml:"port"`
	Username    string    `yaml:"username"`
	Password    string    `yaml:"password"`
	Consistency string    `yaml:"consistency"`
	Timeout     *Duration `yaml:"timeout"`
	PageSize    int       `yaml:"pageSize"`
}

// Duration is a wrapper around time.Duration to support YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(dur)
	return nil
}

type versionCmd struct{}

type rawHiveDDLArgs struct {
	Database      string `name:"hivesparkddl.bigquery.input.database" help:"Hive database for importing data to BigQuery" required:""`
	OutputBucket  string `name:"hivesparkddl.bigquery.output.bucket" help:"GCS bucket the DDL file and rewritten table locations are written under" required:""`
	OutputDataset string `name:"hivesparkddl.bigquery.output.dataset" help:"BigQuery dataset for the output table" required:""`
	OutputTable   string `name:"hivesparkddl.bigquery.output.table" help:"BigQuery output table name" required:""`
	SQLQuery      string `name:"hive.bigquery.sql.query" help:"SQL query for data transformation. This must use the temp view name as the table to query from."`
	TempViewName  string `name:"hive.bigquery.temp.view.name" help:"Temp view name for creating a spark sql view on source data. This name has to match with the table name that will be used in the SQL query"`
	HiveHost      string `name:"hive-host" help:"HiveServer2 or Spark Thrift Server host. Overrides the config file." env:"HIVE_HOST"`
	HivePort      int    `name:"hive-port" help:"HiveServer2 or Spark Thrift Server port. Overrides the config file." env:"HIVE_PORT"`
}

type rawCassandraToGCSArgs struct {
	Keyspace     string `name:"cassandratogcs.input.keyspace" help:"CASSANDRA GCS Input Keyspace" required:""`
	Table        string `name:"cassandratogcs.input.table" help:"CASSANDRA GCS Input Table" required:""`
	Host         string `name:"cassandratogcs.input.host" help:"CASSANDRA GCS Input Host" required:""`
	OutputFormat string `name:"cassandratogcs.output.format" help:"Output file format (one of: avro,parquet,csv,json)" required:""`
	OutputPath   string `name:"cassandratogcs.output.path" help:"GCS location for output files" required:""`
	SaveMode     string `name:"cassandratogcs.output.savemode" help:"Output write mode (one of: append,overwrite,ignore,errorifexists) (Defaults to append)" default:"append"`
}

type rawCliArgs struct {
	Config    *os.File `help:"YAML configuration file" short:"f" env:"CONFIG_FILE"`
	LogLevel  string   `help:"Log level configuration." default:"info" env:"LOG_LEVEL"`
	ProjectId string   `help:"Google Cloud Project Id to use. Overrides the config file." env:"GOOGLE_CLOUD_PROJECT"`
	// hidden because only the dataproc launcher is expected to set this
	UserAgentOverride string `help:"" hidden:"" optional:"" default:"" short:"u"`

	Version                versionCmd            `cmd:"" help:"Show current templates version"`
	HiveSparkDDLToBigQuery rawHiveDDLArgs        `cmd:"" name:"hivesparkddl-to-bigquery" help:"Extract Hive DDLs and a table manifest for import to BigQuery"`
	CassandraToGCS         rawCassandraToGCSArgs `cmd:"" name:"cassandra-to-gcs" help:"Export a Cassandra table to GCS"`
}
