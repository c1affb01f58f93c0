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


package templates

import (
	"context"
	"fmt"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/config"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/constants"
	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	otelgo "github.com/GoogleCloudPlatform/dataproc-templates/go/otel"
	"go.uber.org/zap"
)

// Run parses the command line and runs the selected template. 'args' shouldn't include the executable (i.e.
// os.Args[1:]).
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, defaultRegistry())
}

func run(ctx context.Context, args []string, templates registry) error {
	cliArgs, err := config.ParseCliArgs(args)
	if err != nil {
		return err
	}

	if cliArgs.Version {
		fmt.Printf("Version - %s\n", constants.TemplatesReleaseVersion)
		return nil
	}

	logger, err := config.ParseLoggerConfig(cliArgs)
	if err != nil {
		return fmt.Errorf("unable to create logger: %w", err)
	}
	defer logger.Sync()

	templateConfig, err := config.ParseTemplateConfig(cliArgs, logger)
	if err != nil {
		return err
	}

	template, err := templates.Lookup(cliArgs.Template)
	if err != nil {
		return err
	}

	logger.Info("Release Version:" + constants.TemplatesReleaseVersion)
	logger.Info("Template:" + template.Name())
	logger.Debug("Configuration - ", zap.Any("CliArgs", cliArgs))

	otelInst, shutdownOTel, err := otelgo.NewOpenTelemetry(ctx, newOTelConfig(templateConfig), logger)
	if err != nil {
		return fmt.Errorf("failed to set up OpenTelemetry: %w", err)
	}
	defer func() {
		if err := shutdownOTel(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to shut down OpenTelemetry", zap.Error(err))
		}
	}()

	err = template.Run(ctx, templateConfig, otelInst)
	if err != nil {
		logger.Error("template failed", zap.String("template", template.Name()), zap.Error(err))
		return err
	}
	return nil
}

func newOTelConfig(cfg *types.TemplateConfig) *otelgo.OTelConfig {
	return &otelgo.OTelConfig{
		TracerEndpoint:   cfg.Otel.Traces.Endpoint,
		MetricEndpoint:   cfg.Otel.Metrics.Endpoint,
		ServiceName:      cfg.Otel.ServiceName,
		ServiceVersion:   constants.TemplatesReleaseVersion,
		ProjectID:        cfg.ProjectID,
		OTELEnabled:      cfg.Otel.Enabled,
		TraceSampleRatio: cfg.Otel.Traces.SamplingRatio,
	}
}
