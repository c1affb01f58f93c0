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

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	otelgo "github.com/GoogleCloudPlatform/dataproc-templates/go/otel"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Template is one runnable data movement job
type Template interface {
	Name() string
	Run(ctx context.Context, cfg *types.TemplateConfig, otelInst *otelgo.OpenTelemetry) error
}

type registry map[string]Template

func newRegistry(templates ...Template) registry {
	r := registry{}
	for _, t := range templates {
		r[t.Name()] = t
	}
	return r
}

func defaultRegistry() registry {
	return newRegistry(
		NewHiveSparkDDLToBigQuery(),
		NewCassandraToGCS(),
	)
}

// Names lists the registered template names, sorted
func (r registry) Names() []string {
	names := maps.Keys(r)
	slices.Sort(names)
	return names
}

func (r registry) Lookup(name string) (Template, error) {
	t, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("unknown template '%s', expected one of %v", name, r.Names())
	}
	return t, nil
}
