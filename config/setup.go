package config

import (
	"fmt"
	"os"
	"time"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/constants"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	"github.com/alecthomas/kong"
	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

func ParseCliArgs(args []string) (*types.CliArgs, error) {
	var parsed rawCliArgs

	parser, err := kong.New(&parsed,
		kong.Name("dataproc-templates"),
		kong.Description("Dataproc templates for moving data into Google Cloud"),
	)
	if err != nil {
		return nil, err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return nil, fmt.Errorf("error parsing flags: %v", err)
	}

	configFilePath := ""
	if parsed.Config != nil {
		configFilePath = parsed.Config.Name()
		// only the path is needed, the file is re-read by readTemplateConfig
		_ = parsed.Config.Close()
	}

	userAgent := "dataproc-templates/" + constants.TemplatesReleaseVersion
	if parsed.UserAgentOverride != "" {
		userAgent = parsed.UserAgentOverride
	}

	result := types.CliArgs{
		ConfigFilePath: configFilePath,
		LogLevel:       parsed.LogLevel,
		ProjectId:      parsed.ProjectId,
		UserAgent:      userAgent,
	}

	switch kctx.Command() {
	case "version":
		result.Version = true
	case constants.TemplateHiveSparkDDLToBigQuery:
		result.Template = constants.TemplateHiveSparkDDLToBigQuery
		raw := parsed.HiveSparkDDLToBigQuery
		result.HiveDDL = &types.HiveDDLArgs{
			Database:      raw.Database,
			OutputBucket:  raw.OutputBucket,
			OutputDataset: raw.OutputDataset,
			OutputTable:   raw.OutputTable,
			SQLQuery:      raw.SQLQuery,
			TempViewName:  raw.TempViewName,
			HiveHost:      raw.HiveHost,
			HivePort:      raw.HivePort,
		}
	case constants.TemplateCassandraToGCS:
		result.Template = constants.TemplateCassandraToGCS
		raw := parsed.CassandraToGCS
		result.CassandraToGCS = &types.CassandraToGCSArgs{
			Keyspace:     raw.Keyspace,
			Table:        raw.Table,
			Host:         raw.Host,
			OutputFormat: raw.OutputFormat,
			OutputPath:   raw.OutputPath,
			SaveMode:     raw.SaveMode,
		}
	default:
		return nil, fmt.Errorf("unknown template: %s", kctx.Command())
	}

	err = validateCliArgs(&result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// ParseTemplateConfig resolves the connection settings for the selected template. Cli args take precedence over
// values from the config file.
func ParseTemplateConfig(args *types.CliArgs, logger *zap.Logger) (*types.TemplateConfig, error) {
	var config *yamlTemplateConfig
	if args.ConfigFilePath != "" {
		c, err := readTemplateConfig(args.ConfigFilePath)
		if err != nil {
			return nil, err
		}
		config = c
	} else {
		config = &yamlTemplateConfig{}
		if err := validateAndApplyDefaults(config); err != nil {
			return nil, err
		}
	}

	projectId := config.ProjectID
	if args.ProjectId != "" {
		projectId = args.ProjectId
	}

	hive := &types.HiveConfig{
		Host:          config.Hive.Host,
		Port:          config.Hive.Port,
		Auth:          config.Hive.Auth,
		Username:      config.Hive.Username,
		Password:      config.Hive.Password,
		TransportMode: config.Hive.TransportMode,
		HTTPPath:      config.Hive.HTTPPath,
		FetchSize:     config.Hive.FetchSize,
		Timeout:       time.Duration(*config.Hive.Timeout),
	}
	if args.HiveDDL != nil {
		if args.HiveDDL.HiveHost != "" {
			hive.Host = args.HiveDDL.HiveHost
		}
		if args.HiveDDL.HivePort != 0 {
			hive.Port = args.HiveDDL.HivePort
		}
	}

	cassandra := &types.CassandraConfig{
		Port:        config.Cassandra.Port,
		Username:    config.Cassandra.Username,
		Password:    config.Cassandra.Password,
		Consistency: config.Cassandra.Consistency,
		Timeout:     time.Duration(*config.Cassandra.Timeout),
		PageSize:    config.Cassandra.PageSize,
	}

	otel := &types.OtelConfig{
		Enabled:     config.Otel.Enabled,
		ServiceName: config.Otel.ServiceName,
	}
	otel.Metrics.Endpoint = config.Otel.Metrics.Endpoint
	otel.Traces.Endpoint = config.Otel.Traces.Endpoint
	otel.Traces.SamplingRatio = config.Otel.Traces.SamplingRatio

	return &types.TemplateConfig{
		CliArgs:   args,
		ProjectID: projectId,
		Hive:      hive,
		Cassandra: cassandra,
		Otel:      otel,
		Logger:    logger,
	}, nil
}

func ParseLoggerConfig(args *types.CliArgs) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	err := level.UnmarshalText([]byte(args.LogLevel))
	if err != nil {
		return nil, err
	}

	var loggerConfig *yamlLoggerConfig = nil
	if args.ConfigFilePath != "" {
		config, err := readTemplateConfig(args.ConfigFilePath)
		if err != nil {
			return nil, err
		}
		loggerConfig = config.LoggerConfig
	}

	if loggerConfig != nil && loggerConfig.OutputType == "file" {
		return setupFileLogger(level, loggerConfig)
	}

	return setupConsoleLogger(level)
}

// setupFileLogger() configures a zap.Logger for file output using a lumberjack.Logger for log rotation.
func setupFileLogger(level zap.AtomicLevel, loggerConfig *yamlLoggerConfig) (*zap.Logger, error) {
	filename := loggerConfig.Filename
	if filename == "" {
		filename = "/var/log/dataproc-templates/output.log"
	}
	maxAge := loggerConfig.MaxAge
	if maxAge == 0 {
		maxAge = 3 // setting default value to 3 days
	}
	maxBackups := loggerConfig.MaxBackups
	if maxBackups == 0 {
		maxBackups = 10 // setting default max backups to 10 files
	}
	rotationalLogger := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    loggerConfig.MaxSize, // megabytes, default 100MB
		MaxAge:     maxAge,
		MaxBackups: maxBackups,
		Compress:   loggerConfig.Compress,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(rotationalLogger),
		level,
	)
	return zap.New(core), nil
}

// setupConsoleLogger() configures a zap.Logger for console output.
func setupConsoleLogger(level zap.AtomicLevel) (*zap.Logger, error) {
	config := zap.Config{
		Encoding:         "json",
		Level:            level,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			CallerKey:      "caller",
			LevelKey:       "level",
			NameKey:        "logger",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}

	return config.Build()
}

var readFile = os.ReadFile

func readTemplateConfig(path string) (*yamlTemplateConfig, error) {
	fileData, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config yamlTemplateConfig
	if err = yaml.Unmarshal(fileData, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	err = validateAndApplyDefaults(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}
