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
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	otelgo "github.com/GoogleCloudPlatform/dataproc-templates/go/otel"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeHive serves as both catalog and query executor
type fakeHive struct {
	tables  map[string][]types.TableDescriptor
	results map[string]*types.ResultSet
}

func (f *fakeHive) DatabaseExists(_ context.Context, name string) (bool, error) {
	_, ok := f.tables[name]
	return ok, nil
}

func (f *fakeHive) ListTables(_ context.Context, database string) ([]types.TableDescriptor, error) {
	return f.tables[database], nil
}

func (f *fakeHive) Query(_ context.Context, statement string) (*types.ResultSet, error) {
	rs, ok := f.results[statement]
	if !ok {
		return nil, fmt.Errorf("unexpected statement: %s", statement)
	}
	return rs, nil
}

type fakeObjects struct {
	objects map[string]string
}

func (f *fakeObjects) WriteObject(_ context.Context, bucket string, path string, content string) error {
	f.objects[bucket+"/"+path] = content
	return nil
}

type fakeManifestTable struct {
	records []types.ManifestRecord
}

func (f *fakeManifestTable) AppendManifest(_ context.Context, _ string, _ string, _ string, records []types.ManifestRecord) error {
	f.records = append(f.records, records...)
	return nil
}

// fakeStore keeps objects in memory, keyed by bucket/path. Objects written through NewWriter appear on Close.
type fakeStore struct {
	objects  map[string]string
	existErr error
	deleted  []string
}

func newFakeStore(objects ...string) *fakeStore {
	s := &fakeStore{objects: map[string]string{}}
	for _, o := range objects {
		s.objects[o] = "existing"
	}
	return s
}

func (s *fakeStore) ObjectsExist(_ context.Context, bucket string, prefix string) (bool, error) {
	if s.existErr != nil {
		return false, s.existErr
	}
	return len(s.matching(bucket, prefix)) > 0, nil
}

func (s *fakeStore) DeletePrefix(_ context.Context, bucket string, prefix string) (int, error) {
	names := s.matching(bucket, prefix)
	for _, name := range names {
		delete(s.objects, name)
	}
	s.deleted = append(s.deleted, names...)
	return len(names), nil
}

func (s *fakeStore) NewWriter(ctx context.Context, bucket string, path string, _ string) io.WriteCloser {
	return &fakeObjectWriter{ctx: ctx, store: s, key: bucket + "/" + path}
}

func (s *fakeStore) matching(bucket string, prefix string) []string {
	var names []string
	for name := range s.objects {
		if strings.HasPrefix(name, bucket+"/"+prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (s *fakeStore) keys() []string {
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type fakeObjectWriter struct {
	ctx   context.Context
	store *fakeStore
	key   string
	buf   bytes.Buffer
}

func (w *fakeObjectWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *fakeObjectWriter) Close() error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	w.store.objects[w.key] = w.buf.String()
	return nil
}

type fakeRows struct {
	columns []types.ExportColumn
	rows    []types.ExportRow
	err     error
	closed  bool
}

func (r *fakeRows) Columns() []types.ExportColumn {
	return r.columns
}

func (r *fakeRows) Next() (types.ExportRow, bool) {
	if len(r.rows) == 0 {
		return nil, false
	}
	row := r.rows[0]
	r.rows = r.rows[1:]
	return row, true
}

func (r *fakeRows) Err() error {
	return r.err
}

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

func disabledOtel(t *testing.T) *otelgo.OpenTelemetry {
	t.Helper()
	otelInst, _, err := otelgo.NewOpenTelemetry(context.Background(), &otelgo.OTelConfig{OTELEnabled: false}, zap.NewNop())
	require.NoError(t, err)
	return otelInst
}
