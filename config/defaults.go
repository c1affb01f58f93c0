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
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/constants"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
)

var (
	DefaultHiveHost          = "localhost"
	DefaultHivePort          = 10000
	DefaultHiveAuth          = "NONE"
	DefaultHiveTransportMode = "binary"
	DefaultHiveTimeout       = 5 * time.Minute
	DefaultCassandraPort     = 9042
	DefaultCassandraTimeout  = 20 * time.Second
	DefaultCassandraPageSize = 5000
	DefaultConsistency       = "LOCAL_QUORUM"
	DefaultServiceName       = "dataproc-templates"
)

var ErrMissingTempViewName = errors.New("ArgumentParser Error: Temp view name cannot be null if you want to do data transformations with query")

var outputFormats = []string{
	constants.FormatAvro,
	constants.FormatParquet,
	constants.FormatCSV,
	constants.FormatJSON,
}

var saveModes = []string{
	constants.OutputModeOverwrite,
	constants.OutputModeAppend,
	constants.OutputModeIgnore,
	constants.OutputModeErrorIfExists,
}

func validateCliArgs(args *types.CliArgs) error {
	if args.HiveDDL != nil {
		if err := validateHiveDDLArgs(args.HiveDDL); err != nil {
			return err
		}
	}
	if args.CassandraToGCS != nil {
		if err := validateCassandraToGCSArgs(args.CassandraToGCS); err != nil {
			return err
		}
	}
	return nil
}

func validateHiveDDLArgs(args *types.HiveDDLArgs) error {
	if args.SQLQuery != "" && args.TempViewName == "" {
		return ErrMissingTempViewName
	}
	if strings.HasPrefix(args.OutputBucket, "gs://") {
		return fmt.Errorf("--%s takes a bucket name, not a gs:// url (provided: %s)", constants.HiveSparkDDLBQOutputBucket, args.OutputBucket)
	}
	if args.HivePort < 0 {
		return fmt.Errorf("invalid hive port: %d", args.HivePort)
	}
	return nil
}

func validateCassandraToGCSArgs(args *types.CassandraToGCSArgs) error {
	if !slices.Contains(outputFormats, args.OutputFormat) {
		return fmt.Errorf("invalid choice for --%s: '%s' (choose from %s)", constants.CassandraToGCSOutputFormat, args.OutputFormat, strings.Join(outputFormats, ", "))
	}
	if !slices.Contains(saveModes, args.SaveMode) {
		return fmt.Errorf("invalid choice for --%s: '%s' (choose from %s)", constants.CassandraToGCSOutputSaveMode, args.SaveMode, strings.Join(saveModes, ", "))
	}
	if !strings.HasPrefix(args.OutputPath, "gs://") {
		return fmt.Errorf("--%s must be a gs:// location (provided: %s)", constants.CassandraToGCSOutputPath, args.OutputPath)
	}
	return nil
}

// validateAndApplyDefaults fills in everything the config file left unset
func validateAndApplyDefaults(cfg *yamlTemplateConfig) error {
	if cfg.Hive == nil {
		cfg.Hive = &yamlHive{}
	}
	if cfg.Hive.Host == "" {
		cfg.Hive.Host = DefaultHiveHost
	}
	if cfg.Hive.Port == 0 {
		cfg.Hive.Port = DefaultHivePort
	}
	if cfg.Hive.Auth == "" {
		cfg.Hive.Auth = DefaultHiveAuth
	}
	if cfg.Hive.TransportMode == "" {
		cfg.Hive.TransportMode = DefaultHiveTransportMode
	}
	if cfg.Hive.TransportMode != "binary" && cfg.Hive.TransportMode != "http" {
		return fmt.Errorf("unsupported hive transport mode '%s', expected 'binary' or 'http'", cfg.Hive.TransportMode)
	}
	if cfg.Hive.Timeout == nil {
		d := Duration(DefaultHiveTimeout)
		cfg.Hive.Timeout = &d
	}

	if cfg.Cassandra == nil {
		cfg.Cassandra = &yamlCassandra{}
	}
	if cfg.Cassandra.Port == 0 {
		cfg.Cassandra.Port = DefaultCassandraPort
	}
	if cfg.Cassandra.Consistency == "" {
		cfg.Cassandra.Consistency = DefaultConsistency
	}
	if cfg.Cassandra.Timeout == nil {
		d := Duration(DefaultCassandraTimeout)
		cfg.Cassandra.Timeout = &d
	}
	if cfg.Cassandra.PageSize == 0 {
		cfg.Cassandra.PageSize = DefaultCassandraPageSize
	}

	if cfg.Otel == nil {
		cfg.Otel = &yamlOtelConfig{
			Enabled: false,
		}
	} else if cfg.Otel.Enabled {
		if cfg.Otel.Traces.SamplingRatio < 0 || cfg.Otel.Traces.SamplingRatio > 1 {
			return errors.New("Sampling Ratio for Otel Traces should be between 0 and 1")
		}
		if cfg.Otel.ServiceName == "" {
			cfg.Otel.ServiceName = DefaultServiceName
		}
	}
	return nil
}
