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

package cassandra

import (
	"context"
	"fmt"
	"reflect"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	"github.com/gocql/gocql"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Reader streams whole tables out of a Cassandra cluster
type Reader struct {
	session *gocql.Session
	config  *types.CassandraConfig
	logger  *zap.Logger
}

func NewReader(host string, cfg *types.CassandraConfig, logger *zap.Logger) (*Reader, error) {
	consistency, err := gocql.ParseConsistencyWrapper(cfg.Consistency)
	if err != nil {
		return nil, fmt.Errorf("invalid cassandra consistency '%s': %w", cfg.Consistency, err)
	}

	cluster := gocql.NewCluster(host)
	cluster.Port = cfg.Port
	cluster.Timeout = cfg.Timeout
	cluster.Consistency = consistency
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	logger.Info("connecting to cassandra", zap.String("host", host), zap.Int("port", cfg.Port))
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cassandra at %s:%d: %w", host, cfg.Port, err)
	}
	return &Reader{session: session, config: cfg, logger: logger}, nil
}

func (r *Reader) Close() {
	r.session.Close()
}

func SelectAllQuery(keyspace string, table string) string {
	return fmt.Sprintf("SELECT * FROM %s.%s", keyspace, table)
}

// ReadTable starts a paged full scan of keyspace.table
func (r *Reader) ReadTable(ctx context.Context, keyspace string, table string) (*RowIterator, error) {
	query := SelectAllQuery(keyspace, table)
	r.logger.Info("reading table", zap.String("query", query), zap.Int("pageSize", r.config.PageSize))
	iter := r.session.Query(query).WithContext(ctx).PageSize(r.config.PageSize).Iter()

	infos := iter.Columns()
	if len(infos) == 0 {
		if err := iter.Close(); err != nil {
			return nil, fmt.Errorf("failed to read %s.%s: %w", keyspace, table, err)
		}
		return nil, fmt.Errorf("table %s.%s returned no column metadata", keyspace, table)
	}
	return newRowIterator(iter, infos), nil
}

// RowIterator converts scanned rows into export rows. Call Err after Next returns false.
type RowIterator struct {
	iter    *gocql.Iter
	scanner gocql.Scanner
	columns []types.ExportColumn
	dests   []interface{}
	err     error
}

func newRowIterator(iter *gocql.Iter, infos []gocql.ColumnInfo) *RowIterator {
	return &RowIterator{
		iter:    iter,
		scanner: iter.Scanner(),
		columns: ExportColumns(infos),
		dests: lo.Map(infos, func(info gocql.ColumnInfo, _ int) interface{} {
			return nullableDest(info.TypeInfo)
		}),
	}
}

func (it *RowIterator) Columns() []types.ExportColumn {
	return it.columns
}

func (it *RowIterator) Next() (types.ExportRow, bool) {
	if it.err != nil || !it.scanner.Next() {
		return nil, false
	}
	if err := it.scanner.Scan(it.dests...); err != nil {
		it.err = fmt.Errorf("failed to scan row: %w", err)
		return nil, false
	}
	row := make(types.ExportRow, len(it.dests))
	for i, dest := range it.dests {
		v, err := ConvertValue(derefDest(dest), it.columns[i].Kind)
		if err != nil {
			it.err = fmt.Errorf("column %s: %w", it.columns[i].Name, err)
			return nil, false
		}
		row[i] = v
	}
	return row, true
}

func (it *RowIterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.scanner.Err()
}

func (it *RowIterator) Close() error {
	return it.iter.Close()
}

func ExportColumns(infos []gocql.ColumnInfo) []types.ExportColumn {
	return lo.Map(infos, func(info gocql.ColumnInfo, _ int) types.ExportColumn {
		return types.ExportColumn{Name: info.Name, Kind: KindForType(info.TypeInfo.Type())}
	})
}

// nullableDest allocates a **T for the column's go type so NULL cells scan as a nil *T
func nullableDest(info gocql.TypeInfo) interface{} {
	elem := reflect.TypeOf(info.New()).Elem()
	return reflect.New(reflect.PointerTo(elem)).Interface()
}

func derefDest(dest interface{}) interface{} {
	p := reflect.ValueOf(dest).Elem()
	if p.IsNil() {
		return nil
	}
	return p.Elem().Interface()
}
