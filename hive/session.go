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

package hive

import (
	"context"
	"fmt"
	"strings"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	"github.com/beltran/gohive"
	"go.uber.org/zap"
)

const defaultFetchSize = 1000

// Session is a HiveServer2 connection, usually to a Spark Thrift Server, used both as the table catalog and to run
// the metadata statements of the export.
type Session struct {
	conn   *gohive.Connection
	config *types.HiveConfig
	logger *zap.Logger
}

func NewSession(cfg *types.HiveConfig, logger *zap.Logger) (*Session, error) {
	configuration := gohive.NewConnectConfiguration()
	configuration.Username = cfg.Username
	configuration.Password = cfg.Password
	configuration.TransportMode = cfg.TransportMode
	configuration.HTTPPath = cfg.HTTPPath
	configuration.FetchSize = cfg.FetchSize
	if configuration.FetchSize <= 0 {
		configuration.FetchSize = defaultFetchSize
	}

	logger.Info("connecting to hive",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("auth", cfg.Auth),
		zap.String("transportMode", cfg.TransportMode))
	conn, err := gohive.Connect(cfg.Host, cfg.Port, cfg.Auth, configuration)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to hive at %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Session{conn: conn, config: cfg, logger: logger}, nil
}

func (s *Session) Close() error {
	return s.conn.Close()
}

// Query runs statement and reads every row. Values are rendered as text, NULL becomes an empty string.
func (s *Session) Query(ctx context.Context, statement string) (*types.ResultSet, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	s.logger.Debug("executing statement", zap.String("statement", statement))
	cursor := s.conn.Cursor()
	defer cursor.Close()

	cursor.Exec(ctx, statement)
	if cursor.Err != nil {
		return nil, fmt.Errorf("failed to execute '%s': %w", statement, cursor.Err)
	}

	description := cursor.Description()
	if cursor.Err != nil {
		return nil, fmt.Errorf("failed to describe result of '%s': %w", statement, cursor.Err)
	}
	columns := make([]string, 0, len(description))
	for _, d := range description {
		columns = append(columns, normalizeColumnName(d[0]))
	}

	result := types.NewResultSet(columns)
	for cursor.HasMore(ctx) {
		if cursor.Err != nil {
			return nil, fmt.Errorf("failed to fetch rows of '%s': %w", statement, cursor.Err)
		}
		row := cursor.RowMap(ctx)
		if cursor.Err != nil {
			return nil, fmt.Errorf("failed to read row of '%s': %w", statement, cursor.Err)
		}
		result.Rows = append(result.Rows, orderedValues(description, row))
	}
	if cursor.Err != nil {
		return nil, fmt.Errorf("failed to fetch rows of '%s': %w", statement, cursor.Err)
	}
	return result, nil
}

func (s *Session) DatabaseExists(ctx context.Context, name string) (bool, error) {
	rs, err := s.Query(ctx, ShowDatabasesQuery(name))
	if err != nil {
		return false, err
	}
	return databaseInResult(name, rs), nil
}

func (s *Session) ListTables(ctx context.Context, database string) ([]types.TableDescriptor, error) {
	rs, err := s.Query(ctx, ShowTablesQuery(database))
	if err != nil {
		return nil, err
	}
	return tablesFromResult(database, rs)
}

func ShowDatabasesQuery(name string) string {
	return fmt.Sprintf("SHOW DATABASES LIKE '%s'", name)
}

func ShowTablesQuery(database string) string {
	return fmt.Sprintf("SHOW TABLES IN `%s`", database)
}

// normalizeColumnName strips the "table." qualifier HiveServer2 adds when unique column names are enabled
func normalizeColumnName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

func orderedValues(description [][]string, row map[string]interface{}) []string {
	values := make([]string, 0, len(description))
	for _, d := range description {
		values = append(values, stringValue(row[d[0]]))
	}
	return values
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

func databaseInResult(name string, rs *types.ResultSet) bool {
	for _, row := range rs.Rows {
		if len(row) > 0 && strings.EqualFold(row[0], name) {
			return true
		}
	}
	return false
}

// tablesFromResult reads SHOW TABLES output. Spark returns (namespace, tableName, isTemporary) and lists session
// temporary views, which are skipped. HiveServer2 returns a single tab_name column.
func tablesFromResult(database string, rs *types.ResultSet) ([]types.TableDescriptor, error) {
	nameIdx := rs.ColumnIndex("tableName")
	if nameIdx < 0 {
		nameIdx = rs.ColumnIndex("tab_name")
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("unexpected SHOW TABLES result columns: %v", rs.Columns)
	}
	tempIdx := rs.ColumnIndex("isTemporary")

	tables := make([]types.TableDescriptor, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		if nameIdx >= len(row) {
			continue
		}
		if tempIdx >= 0 && tempIdx < len(row) && strings.EqualFold(row[tempIdx], "true") {
			continue
		}
		tables = append(tables, types.TableDescriptor{Database: database, Name: row[nameIdx]})
	}
	return tables, nil
}
